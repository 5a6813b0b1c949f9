package eventkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRoleSetBasics verifies add, has and has-any semantics.
func TestRoleSetBasics(t *testing.T) {
	rs := NewRoleSet("editor", "crew")

	assert.True(t, rs.Has("editor"))
	assert.True(t, rs.Has("crew"))
	assert.False(t, rs.Has("promoter"))

	rs.Add("promoter")
	assert.True(t, rs.Has("promoter"))

	assert.True(t, rs.HasAny("usher", "editor"))
	assert.False(t, rs.HasAny("usher", "participant"))
	assert.False(t, rs.HasAny())
}

// TestRoleSetAddIsIdempotent verifies duplicate adds don't grow the set.
func TestRoleSetAddIsIdempotent(t *testing.T) {
	rs := NewRoleSet("editor")
	rs.Add("editor", "editor")

	assert.Len(t, rs, 1)
}

// TestRoleSetUnion verifies union merges in place and returns the receiver.
func TestRoleSetUnion(t *testing.T) {
	a := NewRoleSet("editor")
	b := NewRoleSet("promoter", "editor")

	got := a.Union(b)

	assert.Equal(t, a, got)
	assert.ElementsMatch(t, []string{"editor", "promoter"}, a.Names())
	// The other set is untouched.
	assert.ElementsMatch(t, []string{"editor", "promoter"}, b.Names())
}

// TestRoleSetNames verifies names come back sorted.
func TestRoleSetNames(t *testing.T) {
	rs := NewRoleSet("usher", "crew", "editor")

	assert.Equal(t, []string{"crew", "editor", "usher"}, rs.Names())
	assert.Empty(t, NewRoleSet().Names())
}

// TestRoleSetRemap verifies remapping through a grants-via table.
func TestRoleSetRemap(t *testing.T) {
	rs := NewRoleSet("editor", "participant")

	mapped := rs.Remap(ProjectCrewRoleMap)

	assert.ElementsMatch(t,
		[]string{"editor", "project_editor", "participant", "project_participant"},
		mapped.Names())
	// The source set is unchanged.
	assert.ElementsMatch(t, []string{"editor", "participant"}, rs.Names())
}

// TestRoleSetRemapDropsUnmappedRoles verifies roles absent from the table grant nothing.
func TestRoleSetRemapDropsUnmappedRoles(t *testing.T) {
	rs := NewRoleSet("editor", "invitee", "profile_admin")

	mapped := rs.Remap(ProjectChildRoleMap)

	assert.Equal(t, []string{"project_editor"}, mapped.Names())
}

// TestProjectChildRoleMapExcludesPromoterNamespace verifies a project's full
// crew role set narrows as expected when remapped onto a child document.
func TestProjectChildRoleMapExcludesPromoterNamespace(t *testing.T) {
	projectRoles := NewRoleSet("editor", "crew", "participant", "reader")

	onProposal := projectRoles.Remap(ProjectChildRoleMap)

	assert.ElementsMatch(t,
		[]string{"project_editor", "project_crew", "project_participant", "reader"},
		onProposal.Names())
	// The bare editor role never crosses the boundary.
	assert.False(t, onProposal.Has("editor"))
}

// TestProfileProjectRoleMap verifies account admins become profile_admin on projects.
func TestProfileProjectRoleMap(t *testing.T) {
	profileRoles := NewRoleSet("owner", "admin", "reader")

	onProject := profileRoles.Remap(ProfileProjectRoleMap)

	assert.Equal(t, []string{"profile_admin"}, onProject.Names())
}

// TestCommentsetSubscriberRoleMap verifies the subscriber role passes through.
func TestCommentsetSubscriberRoleMap(t *testing.T) {
	rs := NewRoleSet("document_subscriber")

	assert.Equal(t, []string{"document_subscriber"},
		rs.Remap(CommentsetSubscriberRoleMap).Names())
}
