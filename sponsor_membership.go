package eventkit

import (
	"time"

	"github.com/uptrace/bun"
)

// ProjectSponsorMembership records an account profile sponsoring a project.
// Sponsors are listed in a curated order maintained by the reorder engine;
// the reorder scope skips revoked records so past sponsors never block a
// sequence slot. Sponsorship grants no roles.
type ProjectSponsorMembership struct {
	bun.BaseModel `bun:"table:project_sponsor_memberships,alias:psm"`

	MembershipBase

	ProfileID string `bun:"profile_id,notnull,type:uuid"`
	ProjectID string `bun:"project_id,notnull,type:uuid"`

	Seq        int    `bun:"seq,notnull"`
	IsPromoted bool   `bun:"is_promoted,notnull,default:false"`
	Label      string `bun:"label"`
	Title      string `bun:"title"`

	// CreatedAt is the reorder tie-breaker when sequence numbers collide.
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`

	Profile *Profile `bun:"rel:belongs-to,join:profile_id=id"`
	Project *Project `bun:"rel:belongs-to,join:project_id=id"`
}

func (m *ProjectSponsorMembership) Base() *MembershipBase { return &m.MembershipBase }
func (m *ProjectSponsorMembership) SubjectID() string     { return m.ProfileID }
func (m *ProjectSponsorMembership) ParentID() string      { return m.ProjectID }
func (m *ProjectSponsorMembership) SubjectColumn() string { return "profile_id" }
func (m *ProjectSponsorMembership) ParentColumn() string  { return "project_id" }

// OfferedRoles returns the empty set: sponsorship is a listing, not access.
func (m *ProjectSponsorMembership) OfferedRoles() RoleSet {
	return NewRoleSet()
}

// Revise returns a successor copy carrying the data columns, including the
// sequence position.
func (m *ProjectSponsorMembership) Revise() *ProjectSponsorMembership {
	return &ProjectSponsorMembership{
		ProfileID:  m.ProfileID,
		ProjectID:  m.ProjectID,
		Seq:        m.Seq,
		IsPromoted: m.IsPromoted,
		Label:      m.Label,
		Title:      m.Title,
	}
}

func (m *ProjectSponsorMembership) ReorderID() string       { return m.ID }
func (m *ProjectSponsorMembership) ReorderParentID() string { return m.ProjectID }
func (m *ProjectSponsorMembership) ReorderSeq() int         { return m.Seq }
func (m *ProjectSponsorMembership) SetReorderSeq(seq int)   { m.Seq = seq }

// ReorderScope limits sequence competition to active sponsor records of the
// same project.
func (m *ProjectSponsorMembership) ReorderScope(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Where("project_id = ?", m.ProjectID).Where("revoked_at IS NULL")
}
