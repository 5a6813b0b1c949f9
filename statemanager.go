package eventkit

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// QueryFilter narrows a select query with an additional predicate. It is the
// SQL-level counterpart of an in-memory state predicate; the two must be kept
// logically equivalent by the caller registering them.
type QueryFilter func(*bun.SelectQuery) *bun.SelectQuery

// Transition describes a guarded move between stored states.
//
// From may name a stored state, a group, or a conditional state; an empty From
// means the transition is valid from any state. To must name a stored state.
// If, when set, is an additional guard evaluated after the From check.
type Transition[E any] struct {
	Name    string
	From    string
	To      string
	If      func(*E) bool
	Title   string
	Message string
}

type conditionalState[E any] struct {
	name   string
	base   string
	check  func(*E) bool
	exists func(context.Context, dbkit.IDB, *E) (bool, error)
	filter QueryFilter
	label  string
}

// StateManager wraps one integer state column on an entity type with named
// states, state groups, conditional (derived) states and guarded transitions.
//
// A StateManager is configured once at startup with a fluent builder and is
// immutable afterwards:
//
//	var ProjectStates = NewStateManager("project", "state",
//	    func(p *Project) int { return p.State },
//	    func(p *Project, v int) { p.State = v }).
//	    State("draft", ProjectStateDraft, "Draft").
//	    State("published", ProjectStatePublished, "Published").
//	    Group("publishable", "draft", "withdrawn").
//	    AddTransition(Transition[Project]{Name: "publish", From: "publishable", To: "published"})
//
// Conditional states are derived from live attributes and never stored;
// existence conditionals additionally require a database round trip and are
// only available through Evaluate.
type StateManager[E any] struct {
	entity       string
	column       string
	get          func(*E) int
	set          func(*E, int)
	values       map[string]int
	names        map[int]string
	labels       map[string]string
	groups       map[string][]string
	conditionals map[string]conditionalState[E]
	transitions  map[string]Transition[E]
}

// NewStateManager creates a StateManager for one integer column of entity type E.
// The get/set accessors bind the manager to the column; entity names the type
// in errors and column names it in generated query filters.
func NewStateManager[E any](entity, column string, get func(*E) int, set func(*E, int)) *StateManager[E] {
	return &StateManager[E]{
		entity:       entity,
		column:       column,
		get:          get,
		set:          set,
		values:       make(map[string]int),
		names:        make(map[int]string),
		labels:       make(map[string]string),
		groups:       make(map[string][]string),
		conditionals: make(map[string]conditionalState[E]),
		transitions:  make(map[string]Transition[E]),
	}
}

// State registers a stored state with its column value and display label.
func (sm *StateManager[E]) State(name string, value int, label string) *StateManager[E] {
	sm.values[name] = value
	sm.names[value] = name
	sm.labels[name] = label
	return sm
}

// Group registers a named group of states. Members may be stored states or
// conditional states; group membership is evaluated per member.
func (sm *StateManager[E]) Group(name string, members ...string) *StateManager[E] {
	sm.groups[name] = members
	return sm
}

// Conditional registers a derived state: valid only when the stored value
// satisfies base, and additionally when check holds on the loaded entity.
// filter, when non-nil, is the SQL-level predicate equivalent of check and is
// composed with base's filter; pass nil if the state is never queried.
func (sm *StateManager[E]) Conditional(name, base string, check func(*E) bool, filter QueryFilter, label string) *StateManager[E] {
	sm.conditionals[name] = conditionalState[E]{
		name:   name,
		base:   base,
		check:  check,
		filter: filter,
		label:  label,
	}
	sm.labels[name] = label
	return sm
}

// ExistsConditional registers a derived state whose predicate requires a
// database query (e.g. "has any proposals"). It is evaluated only through
// Evaluate; Is reports false for it.
func (sm *StateManager[E]) ExistsConditional(name, base string, exists func(context.Context, dbkit.IDB, *E) (bool, error), filter QueryFilter, label string) *StateManager[E] {
	sm.conditionals[name] = conditionalState[E]{
		name:   name,
		base:   base,
		exists: exists,
		filter: filter,
		label:  label,
	}
	sm.labels[name] = label
	return sm
}

// AddTransition registers a guarded transition.
func (sm *StateManager[E]) AddTransition(t Transition[E]) *StateManager[E] {
	sm.transitions[t.Name] = t
	return sm
}

// Value returns the column value for a stored state name.
func (sm *StateManager[E]) Value(name string) int {
	return sm.values[name]
}

// CurrentName returns the name of the entity's stored state.
func (sm *StateManager[E]) CurrentName(e *E) string {
	return sm.names[sm.get(e)]
}

// Label returns the display label of a state, group or conditional state.
func (sm *StateManager[E]) Label(name string) string {
	return sm.labels[name]
}

// Is reports whether the entity is in the named state, group or conditional
// state, using only loaded attributes. Existence conditionals report false
// here; use Evaluate for those.
func (sm *StateManager[E]) Is(e *E, name string) bool {
	if v, ok := sm.values[name]; ok {
		return sm.get(e) == v
	}
	if members, ok := sm.groups[name]; ok {
		for _, member := range members {
			if sm.Is(e, member) {
				return true
			}
		}
		return false
	}
	if c, ok := sm.conditionals[name]; ok {
		if c.check == nil {
			return false
		}
		return sm.Is(e, c.base) && c.check(e)
	}
	return false
}

// Evaluate reports whether the entity is in the named state, resolving
// existence conditionals through the database.
func (sm *StateManager[E]) Evaluate(ctx context.Context, db dbkit.IDB, e *E, name string) (bool, error) {
	if c, ok := sm.conditionals[name]; ok && c.exists != nil {
		base, err := sm.Evaluate(ctx, db, e, c.base)
		if err != nil || !base {
			return false, err
		}
		return c.exists(ctx, db, e)
	}
	if members, ok := sm.groups[name]; ok {
		for _, member := range members {
			in, err := sm.Evaluate(ctx, db, e, member)
			if err != nil {
				return false, err
			}
			if in {
				return true, nil
			}
		}
		return false, nil
	}
	return sm.Is(e, name), nil
}

// Filter returns a query filter selecting rows in the named state, group or
// conditional state. The second return is false when no SQL form is known
// (conditional registered without a filter).
func (sm *StateManager[E]) Filter(name string) (QueryFilter, bool) {
	if v, ok := sm.values[name]; ok {
		return func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("? = ?", bun.Ident(sm.column), v)
		}, true
	}
	if members, ok := sm.groups[name]; ok {
		var values []int
		var conds []QueryFilter
		for _, member := range members {
			if v, stored := sm.values[member]; stored {
				values = append(values, v)
				continue
			}
			f, known := sm.Filter(member)
			if !known {
				return nil, false
			}
			conds = append(conds, f)
		}
		return func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.WhereGroup(" AND ", func(g *bun.SelectQuery) *bun.SelectQuery {
				if len(values) > 0 {
					g = g.Where("? IN (?)", bun.Ident(sm.column), bun.In(values))
				}
				for _, cond := range conds {
					g = g.WhereGroup(" OR ", cond)
				}
				return g
			})
		}, true
	}
	if c, ok := sm.conditionals[name]; ok {
		if c.filter == nil {
			return nil, false
		}
		base, known := sm.Filter(c.base)
		if !known {
			return nil, false
		}
		return func(q *bun.SelectQuery) *bun.SelectQuery {
			return c.filter(base(q))
		}, true
	}
	return nil, false
}

// Require verifies the entity is in the named state or group without changing
// it. It returns ErrInvalidTransition when the check fails; used for guard-only
// operations such as posting to a commentset.
func (sm *StateManager[E]) Require(e *E, name string) error {
	if !sm.Is(e, name) {
		return NewError(ErrInvalidTransition, "entity is not in state "+name).
			WithEntity(sm.entity, "").
			WithTransition("", sm.CurrentName(e))
	}
	return nil
}

// Apply executes the named transition: it verifies the From guard (and If,
// when present), runs body for side effects, then sets the state column to To.
// A failed guard returns ErrInvalidTransition and leaves the entity untouched;
// the body is never run. Calling a transition from a disallowed state is always
// an error, never a silent no-op.
func (sm *StateManager[E]) Apply(e *E, name string, body func() error) error {
	t, ok := sm.transitions[name]
	if !ok {
		return NewError(ErrInvalidTransition, "unknown transition "+name).
			WithEntity(sm.entity, "")
	}
	if t.From != "" && !sm.Is(e, t.From) {
		return NewError(ErrInvalidTransition, "transition "+name+" requires state "+t.From).
			WithEntity(sm.entity, "").
			WithTransition(name, sm.CurrentName(e))
	}
	if t.If != nil && !t.If(e) {
		return NewError(ErrInvalidTransition, "transition "+name+" guard not met").
			WithEntity(sm.entity, "").
			WithTransition(name, sm.CurrentName(e))
	}
	if body != nil {
		if err := body(); err != nil {
			return err
		}
	}
	sm.set(e, sm.values[t.To])
	return nil
}

// TransitionNames returns the names of all registered transitions.
func (sm *StateManager[E]) TransitionNames() []string {
	names := make([]string, 0, len(sm.transitions))
	for name := range sm.transitions {
		names = append(names, name)
	}
	return names
}

// AvailableTransitions returns the transitions whose guards currently pass for
// the entity, for presenting action menus.
func (sm *StateManager[E]) AvailableTransitions(e *E) []Transition[E] {
	var available []Transition[E]
	for _, t := range sm.transitions {
		if t.From != "" && !sm.Is(e, t.From) {
			continue
		}
		if t.If != nil && !t.If(e) {
			continue
		}
		available = append(available, t)
	}
	return available
}
