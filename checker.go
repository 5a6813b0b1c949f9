package eventkit

// Checker answers access questions for one actor on one entity, combining
// the role set computed by the role resolution engine with the registry's
// access tables. It is typically created by Service.CheckerFor and stored in
// context for use in handlers.
//
// A Checker is a snapshot: it holds the roles as resolved at creation time
// and never re-queries. Create a fresh one per request.
type Checker struct {
	actorID  string
	entity   string
	entityID string
	roles    RoleSet
	registry *Registry
}

// NewChecker creates a Checker from an already-resolved role set.
func NewChecker(actorID, entity, entityID string, roles RoleSet, registry *Registry) *Checker {
	return &Checker{
		actorID:  actorID,
		entity:   entity,
		entityID: entityID,
		roles:    roles,
		registry: registry,
	}
}

// ActorID returns the actor this checker is for.
func (c *Checker) ActorID() string {
	return c.actorID
}

// Entity returns the entity type and ID this checker is scoped to.
func (c *Checker) Entity() (string, string) {
	return c.entity, c.entityID
}

// Has checks if the actor holds a specific role on the entity.
//
// Example:
//
//	if checker.Has("editor") {
//	    // Actor can edit this project
//	}
func (c *Checker) Has(role string) bool {
	return c.roles.Has(role)
}

// HasAny checks if the actor holds any of the specified roles.
func (c *Checker) HasAny(roles ...string) bool {
	return c.roles.HasAny(roles...)
}

// HasAll checks if the actor holds all of the specified roles.
func (c *Checker) HasAll(roles ...string) bool {
	for _, role := range roles {
		if !c.roles.Has(role) {
			return false
		}
	}
	return true
}

// Roles returns the actor's resolved role names, sorted.
func (c *Checker) Roles() []string {
	return c.roles.Names()
}

// CanRead checks if any of the actor's roles grants read access to a field.
//
// Example:
//
//	if checker.CanRead("cfp_start_at") {
//	    // Field is visible to this actor
//	}
func (c *Checker) CanRead(field string) bool {
	return c.matchAccess(field, (*RoleAccess).ReadPatterns)
}

// CanWrite checks if any of the actor's roles grants write access to a field.
func (c *Checker) CanWrite(field string) bool {
	return c.matchAccess(field, (*RoleAccess).WritePatterns)
}

// CanCall checks if any of the actor's roles grants access to a method.
//
// Example:
//
//	if checker.CanCall("publish") {
//	    // Actor may publish this project
//	}
func (c *Checker) CanCall(method string) bool {
	return c.matchAccess(method, (*RoleAccess).CallPatterns)
}

func (c *Checker) matchAccess(name string, patterns func(*RoleAccess) []string) bool {
	def := c.registry.GetEntity(c.entity)
	if def == nil {
		return false
	}
	for role := range c.roles {
		access := def.GetRole(role)
		if access == nil {
			continue
		}
		if MatchAnyAccess(patterns(access), name) {
			return true
		}
	}
	return false
}

// ReadableFields returns which of the given fields the actor may read.
// Access tables hold patterns, so the caller supplies the full field list.
func (c *Checker) ReadableFields(all []string) []string {
	return c.expand(all, (*RoleAccess).ReadPatterns)
}

// WritableFields returns which of the given fields the actor may write.
func (c *Checker) WritableFields(all []string) []string {
	return c.expand(all, (*RoleAccess).WritePatterns)
}

// CallableMethods returns which of the given methods the actor may call.
func (c *Checker) CallableMethods(all []string) []string {
	return c.expand(all, (*RoleAccess).CallPatterns)
}

func (c *Checker) expand(all []string, patterns func(*RoleAccess) []string) []string {
	def := c.registry.GetEntity(c.entity)
	if def == nil {
		return nil
	}

	var merged []string
	for role := range c.roles {
		access := def.GetRole(role)
		if access == nil {
			continue
		}
		merged = append(merged, patterns(access)...)
	}
	return DefaultMatcher.Expand(merged, all)
}

// Require returns ErrUnauthorized unless the actor holds at least one of the
// roles. Convenience for guard clauses in handlers.
func (c *Checker) Require(roles ...string) error {
	if c.HasAny(roles...) {
		return nil
	}
	e := NewError(ErrUnauthorized, "actor lacks required role").
		WithEntity(c.entity, c.entityID).
		WithActor(c.actorID)
	if len(roles) == 1 {
		e = e.WithRole(roles[0])
	}
	return e
}

// IsEmpty returns true if the actor holds no roles on the entity.
func (c *Checker) IsEmpty() bool {
	return len(c.roles) == 0
}
