package eventkit

import (
	"time"

	"github.com/uptrace/bun"
)

// CommentsetMembership is a user's subscription to a comment thread: it
// drives notification dispatch and read tracking. Muting keeps the
// subscription (and the document_subscriber role) while opting out of
// notifications.
type CommentsetMembership struct {
	bun.BaseModel `bun:"table:commentset_memberships,alias:csm"`

	MembershipBase

	UserID       string `bun:"user_id,notnull,type:uuid"`
	CommentsetID string `bun:"commentset_id,notnull,type:uuid"`

	IsMuted    bool      `bun:"is_muted,notnull,default:false"`
	LastSeenAt time.Time `bun:"last_seen_at,notnull,default:current_timestamp"`

	User       *User       `bun:"rel:belongs-to,join:user_id=id"`
	Commentset *Commentset `bun:"rel:belongs-to,join:commentset_id=id"`
}

func (m *CommentsetMembership) Base() *MembershipBase { return &m.MembershipBase }
func (m *CommentsetMembership) SubjectID() string     { return m.UserID }
func (m *CommentsetMembership) ParentID() string      { return m.CommentsetID }
func (m *CommentsetMembership) SubjectColumn() string { return "user_id" }
func (m *CommentsetMembership) ParentColumn() string  { return "commentset_id" }

// OfferedRoles returns the subscriber role. Muted subscribers keep it; muting
// affects notification dispatch only.
func (m *CommentsetMembership) OfferedRoles() RoleSet {
	return NewRoleSet("document_subscriber")
}

// Revise returns a successor copy carrying the data columns.
func (m *CommentsetMembership) Revise() *CommentsetMembership {
	return &CommentsetMembership{
		UserID:       m.UserID,
		CommentsetID: m.CommentsetID,
		IsMuted:      m.IsMuted,
		LastSeenAt:   m.LastSeenAt,
	}
}
