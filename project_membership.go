package eventkit

import (
	"github.com/uptrace/bun"
)

// ProjectCrewMembership grants a user a crew position on a project through
// one or more capability flags. At least one flag must be set; the check
// constraint in the migration backs this.
//
// Crew members always hold crew and participant in addition to the roles
// implied by their flags.
type ProjectCrewMembership struct {
	bun.BaseModel `bun:"table:project_crew_memberships,alias:pcm"`

	MembershipBase

	UserID    string `bun:"user_id,notnull,type:uuid"`
	ProjectID string `bun:"project_id,notnull,type:uuid"`

	IsEditor   bool `bun:"is_editor,notnull,default:false"`
	IsPromoter bool `bun:"is_promoter,notnull,default:false"`
	IsUsher    bool `bun:"is_usher,notnull,default:false"`

	// Label is a free-form position title ("Reviewer", "MC") with no role
	// semantics.
	Label string `bun:"label"`

	User    *User    `bun:"rel:belongs-to,join:user_id=id"`
	Project *Project `bun:"rel:belongs-to,join:project_id=id"`
}

func (m *ProjectCrewMembership) Base() *MembershipBase { return &m.MembershipBase }
func (m *ProjectCrewMembership) SubjectID() string     { return m.UserID }
func (m *ProjectCrewMembership) ParentID() string      { return m.ProjectID }
func (m *ProjectCrewMembership) SubjectColumn() string { return "user_id" }
func (m *ProjectCrewMembership) ParentColumn() string  { return "project_id" }

// HasAnyRoleFlag reports whether at least one capability flag is set. A crew
// record with no flags grants nothing and is rejected on grant and replace.
func (m *ProjectCrewMembership) HasAnyRoleFlag() bool {
	return m.IsEditor || m.IsPromoter || m.IsUsher
}

// OfferedRoles returns the roles this record grants on the project.
func (m *ProjectCrewMembership) OfferedRoles() RoleSet {
	roles := NewRoleSet("crew", "participant")
	if m.IsEditor {
		roles.Add("editor")
	}
	if m.IsPromoter {
		roles.Add("promoter")
	}
	if m.IsUsher {
		roles.Add("usher")
	}
	return roles
}

// Revise returns a successor copy carrying the data columns; the audit base
// is filled in by ReplaceMembership.
func (m *ProjectCrewMembership) Revise() *ProjectCrewMembership {
	return &ProjectCrewMembership{
		UserID:     m.UserID,
		ProjectID:  m.ProjectID,
		IsEditor:   m.IsEditor,
		IsPromoter: m.IsPromoter,
		IsUsher:    m.IsUsher,
		Label:      m.Label,
	}
}
