package eventkit

import "sort"

// RoleSet is an ephemeral, per-request set of role names computed for one
// actor on one entity. It is never persisted, never cached across requests and
// never shared between actors; grants are additive so there is no precedence
// to resolve.
type RoleSet map[string]struct{}

// NewRoleSet creates a RoleSet from an initial list of role names.
func NewRoleSet(roles ...string) RoleSet {
	rs := make(RoleSet, len(roles))
	rs.Add(roles...)
	return rs
}

// Add inserts role names into the set.
func (rs RoleSet) Add(roles ...string) {
	for _, role := range roles {
		rs[role] = struct{}{}
	}
}

// Has reports whether the set contains a role.
func (rs RoleSet) Has(role string) bool {
	_, ok := rs[role]
	return ok
}

// HasAny reports whether the set contains at least one of the roles.
func (rs RoleSet) HasAny(roles ...string) bool {
	for _, role := range roles {
		if rs.Has(role) {
			return true
		}
	}
	return false
}

// Union merges another role set into this one and returns the receiver.
func (rs RoleSet) Union(other RoleSet) RoleSet {
	for role := range other {
		rs[role] = struct{}{}
	}
	return rs
}

// Remap returns the roles granted on a related entity by mapping this set
// through a grants-via table. Roles absent from the table grant nothing.
func (rs RoleSet) Remap(table map[string][]string) RoleSet {
	mapped := make(RoleSet)
	for role := range rs {
		mapped.Add(table[role]...)
	}
	return mapped
}

// Names returns the sorted role names, for stable logging and tests.
func (rs RoleSet) Names() []string {
	names := make([]string, 0, len(rs))
	for role := range rs {
		names = append(names, role)
	}
	sort.Strings(names)
	return names
}

// Anchor is an opaque proof token presented alongside (or instead of) an
// authenticated actor: possession of the token grants limited roles resolved
// by entity-specific logic. The only anchor form this module understands is
// the ID of an active invite membership record, which grants the invitee
// view role on the record's parent.
type Anchor string

// Role remap tables (the grants-via mechanism): granting entity X's role R to
// a related entity as role R'.

// ProjectCrewRoleMap maps a crew membership record's offered roles to the
// roles they grant on the parent project.
var ProjectCrewRoleMap = map[string][]string{
	"editor":      {"editor", "project_editor"},
	"promoter":    {"promoter", "project_promoter"},
	"usher":       {"usher", "project_usher"},
	"participant": {"participant", "project_participant"},
	"crew":        {"crew", "project_crew"},
}

// ProjectChildRoleMap remaps a project's roles into the namespace of entities
// attached to the project (commentsets, proposals, sessions).
var ProjectChildRoleMap = map[string][]string{
	"editor":      {"project_editor"},
	"promoter":    {"project_promoter"},
	"usher":       {"project_usher"},
	"crew":        {"project_crew"},
	"participant": {"project_participant"},
	"reader":      {"reader"},
}

// ProfileProjectRoleMap remaps an account's roles into a hosted project's
// namespace: account admins administer the account page, not the project
// content.
var ProfileProjectRoleMap = map[string][]string{
	"admin": {"profile_admin"},
}

// CommentsetSubscriberRoleMap remaps a subscription membership's offered
// roles onto the commentset.
var CommentsetSubscriberRoleMap = map[string][]string{
	"document_subscriber": {"document_subscriber"},
}
