package eventkit

import (
	"time"

	"github.com/uptrace/bun"
)

// User account status values.
const (
	UserStatusActive    = 1
	UserStatusSuspended = 2
)

// User is the authenticated identity behind accounts and memberships. The
// identity service owns the full user record; this is the slice the role and
// lifecycle engines consult.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID     string `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name   string `bun:"name,notnull"`
	Status int    `bun:"status,notnull,default:1"`

	// LikelyThrowaway marks accounts the signup pipeline flagged as
	// disposable. Accounts owned by such users cannot go public.
	LikelyThrowaway bool `bun:"likely_throwaway,notnull,default:false"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// IsActive reports whether the user account is in good standing.
func (u *User) IsActive() bool {
	return u != nil && u.Status == UserStatusActive
}

// Organization status values.
const (
	OrganizationStatusActive    = 1
	OrganizationStatusSuspended = 2
)

// Organization is a legal entity that can own an account. Organization
// membership management is outside this module; only the owning relationship
// matters here.
type Organization struct {
	bun.BaseModel `bun:"table:organizations,alias:org"`

	ID     string `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name   string `bun:"name,notnull"`
	Status int    `bun:"status,notnull,default:1"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// IsActive reports whether the organization is in good standing.
func (o *Organization) IsActive() bool {
	return o != nil && o.Status == OrganizationStatusActive
}
