package eventkit

import (
	"time"

	"github.com/uptrace/bun"
)

// Profile state column values.
const (
	ProfileStateAuto    = 1
	ProfileStatePublic  = 2
	ProfileStatePrivate = 3
)

// Profile is the public-facing account identity wrapping either a user or an
// organization, holding the reserved name namespace. Exactly one of UserID,
// OrganizationID or Reserved identifies the owner kind.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:pr"`

	ID   string `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name string `bun:"name,notnull,unique"`

	UserID         *string `bun:"user_id,type:uuid,unique"`
	OrganizationID *string `bun:"organization_id,type:uuid,unique"`
	Reserved       bool    `bun:"reserved,notnull,default:false"`

	State int `bun:"state,notnull,default:1"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	User         *User         `bun:"rel:belongs-to,join:user_id=id"`
	Organization *Organization `bun:"rel:belongs-to,join:organization_id=id"`
}

// IsActive reports whether the profile's owner is in good standing. Reserved
// profiles have no owner and are never active. The owner relations must be
// loaded; an unloaded owner counts as inactive.
func (p *Profile) IsActive() bool {
	if p.Reserved {
		return false
	}
	if p.UserID != nil {
		return p.User.IsActive()
	}
	if p.OrganizationID != nil {
		return p.Organization.IsActive()
	}
	return false
}

// ActiveProfileFilter is the query-level counterpart of Profile.IsActive.
func ActiveProfileFilter(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Where(
		`(pr.reserved IS FALSE AND (`+
			`(pr.user_id IS NOT NULL AND EXISTS (SELECT 1 FROM users u WHERE u.id = pr.user_id AND u.status = ?)) OR `+
			`(pr.organization_id IS NOT NULL AND EXISTS (SELECT 1 FROM organizations org WHERE org.id = pr.organization_id AND org.status = ?))))`,
		UserStatusActive, OrganizationStatusActive)
}

// publishable reports whether the profile may be taken public: not already
// public, not a reserved name, owner active, and — for user-owned profiles —
// the owner is not flagged as a likely throwaway account.
func (p *Profile) publishable() bool {
	if !p.IsActive() {
		return false
	}
	if p.UserID != nil && p.User != nil && p.User.LikelyThrowaway {
		return false
	}
	return true
}

// ProfileStates manages the profile visibility state machine.
//
// Profiles start in auto (visibility decided by heuristics elsewhere) and can
// be explicitly made public or private. Going public requires the publishable
// guard; going private only requires not already being private.
var ProfileStates = NewStateManager("profile", "state",
	func(p *Profile) int { return p.State },
	func(p *Profile, v int) { p.State = v }).
	State("auto", ProfileStateAuto, "Autogenerated").
	State("public", ProfileStatePublic, "Public").
	State("private", ProfileStatePrivate, "Private").
	Group("not_public", "auto", "private").
	Group("not_private", "auto", "public").
	Conditional("active_and_public", "public",
		func(p *Profile) bool { return p.IsActive() },
		func(q *bun.SelectQuery) *bun.SelectQuery { return ActiveProfileFilter(q) },
		"Active and public").
	Conditional("publishable", "not_public",
		func(p *Profile) bool { return p.publishable() },
		nil, // consulted as a transition guard, never queried
		"Can be made public").
	AddTransition(Transition[Profile]{
		Name: "make_public", From: "publishable", To: "public",
		Title: "Make public",
	}).
	AddTransition(Transition[Profile]{
		Name: "make_private", From: "not_private", To: "private",
		Title: "Make private",
	})

// MakePublic takes the profile public. Fails with ErrInvalidTransition unless
// the profile is publishable.
func (p *Profile) MakePublic() error {
	return ProfileStates.Apply(p, "make_public", nil)
}

// MakePrivate takes the profile private. Fails with ErrInvalidTransition when
// the profile is already private.
func (p *Profile) MakePrivate() error {
	return ProfileStates.Apply(p, "make_private", nil)
}
