package eventkit

import (
	"fmt"
	"sync"
)

// Registry holds the declarative access tables for the application: per
// entity type, per role, which fields may be read or written and which
// methods may be called. It is created at startup and should be treated as
// immutable after initialization.
//
// The registry never decides who holds a role — that is the role resolution
// engine's job. It only maps role names to access.
type Registry struct {
	mu       sync.RWMutex
	entities map[string]*EntityDefinition
}

// EntityDefinition defines an entity type (e.g., "project", "comment") and
// the access granted by each role on it.
type EntityDefinition struct {
	name     string
	roles    map[string]*RoleAccess
	registry *Registry
}

// RoleAccess defines what a role may do with an entity: readable fields,
// writable fields and callable methods. Patterns support wildcards (see
// AccessMatcher).
type RoleAccess struct {
	name       string
	entityName string
	read       []string
	write      []string
	call       []string
	entity     *EntityDefinition
}

// NewRegistry creates a new access registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]*EntityDefinition),
	}
}

// DefineEntity starts defining a new entity type.
// Returns an EntityDefinition builder for fluent configuration.
//
// Example:
//
//	registry.DefineEntity("project").
//	    Role("editor").Read("*").Write("title", "tagline").Call("publish").
//	    Role("reader").Read("title", "tagline")
func (r *Registry) DefineEntity(name string) *EntityDefinition {
	r.mu.Lock()
	defer r.mu.Unlock()

	entity := &EntityDefinition{
		name:     name,
		roles:    make(map[string]*RoleAccess),
		registry: r,
	}
	r.entities[name] = entity
	return entity
}

// GetEntity returns the definition for an entity type.
// Returns nil if the entity type is not defined.
func (r *Registry) GetEntity(name string) *EntityDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entities[name]
}

// GetEntities returns all defined entity type names.
func (r *Registry) GetEntities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entities))
	for name := range r.entities {
		names = append(names, name)
	}
	return names
}

// ValidateEntity checks if an entity type is defined.
func (r *Registry) ValidateEntity(entity string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.entities[entity]; !exists {
		return fmt.Errorf("%w: entity type %q not defined", ErrInvalidEntity, entity)
	}
	return nil
}

// ValidateRole checks if a role is defined for an entity type.
func (r *Registry) ValidateRole(role, entity string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.entities[entity]
	if !exists {
		return fmt.Errorf("%w: entity type %q not defined", ErrInvalidEntity, entity)
	}

	if _, exists := def.roles[role]; !exists {
		return fmt.Errorf("%w: role %q not defined for entity %q", ErrInvalidRole, role, entity)
	}
	return nil
}

// GetRole returns the access definition for a role on an entity type.
func (r *Registry) GetRole(role, entity string) *RoleAccess {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.entities[entity]
	if !exists {
		return nil
	}
	return def.roles[role]
}

// Role starts defining a new role's access on this entity.
// Returns a RoleAccess builder for fluent configuration.
//
// Example:
//
//	entity.Role("editor").
//	    Read("*").
//	    Write("title", "tagline", "instructions").
//	    Call("publish", "withdraw")
func (e *EntityDefinition) Role(name string) *RoleAccess {
	role := &RoleAccess{
		name:       name,
		entityName: e.name,
		entity:     e,
	}
	e.roles[name] = role
	return role
}

// GetRole returns a role access definition by name within this entity.
func (e *EntityDefinition) GetRole(name string) *RoleAccess {
	return e.roles[name]
}

// GetRoles returns all role names defined for this entity.
func (e *EntityDefinition) GetRoles() []string {
	names := make([]string, 0, len(e.roles))
	for name := range e.roles {
		names = append(names, name)
	}
	return names
}

// Name returns the entity type name.
func (e *EntityDefinition) Name() string {
	return e.name
}

// Read adds readable field patterns to this role.
// Supports wildcards: "*" (everything), "cfp_*" (prefix).
func (r *RoleAccess) Read(fields ...string) *RoleAccess {
	r.read = append(r.read, fields...)
	return r
}

// Write adds writable field patterns to this role.
func (r *RoleAccess) Write(fields ...string) *RoleAccess {
	r.write = append(r.write, fields...)
	return r
}

// Call adds callable method patterns to this role.
func (r *RoleAccess) Call(methods ...string) *RoleAccess {
	r.call = append(r.call, methods...)
	return r
}

// ReadPatterns returns the readable field patterns for this role.
func (r *RoleAccess) ReadPatterns() []string {
	return r.read
}

// WritePatterns returns the writable field patterns for this role.
func (r *RoleAccess) WritePatterns() []string {
	return r.write
}

// CallPatterns returns the callable method patterns for this role.
func (r *RoleAccess) CallPatterns() []string {
	return r.call
}

// Name returns the role name.
func (r *RoleAccess) Name() string {
	return r.name
}

// EntityName returns the entity type this role access belongs to.
func (r *RoleAccess) EntityName() string {
	return r.entityName
}

// Role continues defining roles on the parent entity (fluent API).
func (r *RoleAccess) Role(name string) *RoleAccess {
	return r.entity.Role(name)
}

// DefineEntity continues defining entities on the registry (fluent API).
func (r *RoleAccess) DefineEntity(name string) *EntityDefinition {
	return r.entity.registry.DefineEntity(name)
}

// DefaultRegistry returns the access tables for the stock entity types. An
// application can start from this and add entities, or build its own from
// scratch with NewRegistry.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.DefineEntity("project").
		Role("editor").
		Read("*").
		Write("title", "tagline", "instructions", "start_at", "end_at", "cfp_start_at", "cfp_end_at").
		Call("publish", "withdraw", "delete", "open_cfp", "close_cfp", "reorder_proposals").
		Role("promoter").
		Read("*").
		Call("grant_crew", "amend_crew", "revoke_crew", "grant_sponsor", "amend_sponsor", "revoke_sponsor", "reorder_sponsors").
		Role("usher").
		Read("*").
		Call("check_in").
		Role("crew").
		Read("*").
		Role("participant").
		Read("*").
		Role("profile_admin").
		Read("*").
		Call("grant_crew", "amend_crew", "revoke_crew", "delete").
		Role("invitee").
		Read("title", "tagline", "start_at", "end_at").
		Call("accept_invite").
		Role("reader").
		Read("title", "tagline", "start_at", "end_at", "cfp_start_at", "cfp_end_at")

	r.DefineEntity("profile").
		Role("owner").
		Read("*").
		Write("*").
		Call("*").
		Role("admin").
		Read("*").
		Write("name").
		Call("make_public", "make_private").
		Role("reader").
		Read("name")

	r.DefineEntity("proposal").
		Role("submitter").
		Read("*").
		Write("title", "body").
		Call("delete").
		Role("project_editor").
		Read("*").
		Write("title", "body").
		Call("delete", "reorder").
		Role("project_crew").
		Read("*").
		Role("reader").
		Read("title", "body", "created_at")

	r.DefineEntity("commentset").
		Role("project_editor").
		Read("*").
		Call("post_comment", "disable_comments", "enable_comments", "delete_comment", "mark_spam", "mark_not_spam").
		Role("project_crew").
		Read("*").
		Call("post_comment").
		Role("project_participant").
		Read("*").
		Call("post_comment").
		Role("document_subscriber").
		Read("*").
		Call("mute", "unmute", "update_last_seen").
		Role("reader").
		Read("*")

	r.DefineEntity("comment").
		Role("author").
		Read("*").
		Write("message").
		Call("edit", "delete").
		Role("project_editor").
		Read("*").
		Call("delete", "mark_spam", "mark_not_spam").
		Role("reader").
		Read("message", "user_id", "created_at", "edited_at")

	return r
}
