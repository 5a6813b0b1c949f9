package eventkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newProjectChecker(roles ...string) *Checker {
	return NewChecker("user-1", "project", "project-1", NewRoleSet(roles...), DefaultRegistry())
}

// TestCheckerHas verifies role membership queries.
func TestCheckerHas(t *testing.T) {
	c := newProjectChecker("editor", "crew")

	assert.True(t, c.Has("editor"))
	assert.False(t, c.Has("promoter"))
	assert.True(t, c.HasAny("promoter", "crew"))
	assert.False(t, c.HasAny("promoter", "usher"))
	assert.True(t, c.HasAll("editor", "crew"))
	assert.False(t, c.HasAll("editor", "promoter"))
}

// TestCheckerIdentity verifies the checker reports its binding.
func TestCheckerIdentity(t *testing.T) {
	c := newProjectChecker("editor")

	assert.Equal(t, "user-1", c.ActorID())
	entity, entityID := c.Entity()
	assert.Equal(t, "project", entity)
	assert.Equal(t, "project-1", entityID)
	assert.Equal(t, []string{"editor"}, c.Roles())
	assert.False(t, c.IsEmpty())
	assert.True(t, newProjectChecker().IsEmpty())
}

// TestCheckerCanCall verifies method access through the registry tables.
func TestCheckerCanCall(t *testing.T) {
	editor := newProjectChecker("editor")
	assert.True(t, editor.CanCall("publish"))
	assert.True(t, editor.CanCall("open_cfp"))
	assert.False(t, editor.CanCall("grant_crew"))

	promoter := newProjectChecker("promoter")
	assert.True(t, promoter.CanCall("grant_crew"))
	assert.False(t, promoter.CanCall("publish"))

	// Roles combine additively.
	both := newProjectChecker("editor", "promoter")
	assert.True(t, both.CanCall("publish"))
	assert.True(t, both.CanCall("grant_crew"))

	reader := newProjectChecker("reader")
	assert.False(t, reader.CanCall("publish"))
}

// TestCheckerCanReadWrite verifies field access, wildcard patterns included.
func TestCheckerCanReadWrite(t *testing.T) {
	editor := newProjectChecker("editor")
	assert.True(t, editor.CanRead("state"))
	assert.True(t, editor.CanWrite("title"))
	assert.True(t, editor.CanWrite("cfp_start_at"))
	assert.False(t, editor.CanWrite("state"))

	reader := newProjectChecker("reader")
	assert.True(t, reader.CanRead("title"))
	assert.True(t, reader.CanRead("cfp_end_at"))
	assert.False(t, reader.CanRead("state"))
	assert.False(t, reader.CanWrite("title"))
}

// TestCheckerUnknownRoleGrantsNothing verifies roles absent from the tables are inert.
func TestCheckerUnknownRoleGrantsNothing(t *testing.T) {
	c := newProjectChecker("superuser")

	assert.True(t, c.Has("superuser"))
	assert.False(t, c.CanRead("title"))
	assert.False(t, c.CanCall("publish"))
}

// TestCheckerUnknownEntity verifies an unregistered entity denies everything.
func TestCheckerUnknownEntity(t *testing.T) {
	c := NewChecker("user-1", "venue", "venue-1", NewRoleSet("editor"), DefaultRegistry())

	assert.False(t, c.CanRead("title"))
	assert.False(t, c.CanWrite("title"))
	assert.False(t, c.CanCall("publish"))
	assert.Nil(t, c.ReadableFields([]string{"title"}))
}

// TestCheckerReadableFields verifies field expansion merges all held roles.
func TestCheckerReadableFields(t *testing.T) {
	all := []string{"title", "tagline", "state", "cfp_start_at"}

	reader := newProjectChecker("reader")
	assert.ElementsMatch(t,
		[]string{"title", "tagline", "cfp_start_at"},
		reader.ReadableFields(all))

	editor := newProjectChecker("editor")
	assert.ElementsMatch(t, all, editor.ReadableFields(all))
	assert.ElementsMatch(t,
		[]string{"title", "tagline", "cfp_start_at"},
		editor.WritableFields(all))
}

// TestCheckerCallableMethods verifies method expansion.
func TestCheckerCallableMethods(t *testing.T) {
	all := []string{"publish", "withdraw", "grant_crew", "check_in"}

	usher := newProjectChecker("usher")
	assert.Equal(t, []string{"check_in"}, usher.CallableMethods(all))
}

// TestCheckerRequire verifies the guard clause helper.
func TestCheckerRequire(t *testing.T) {
	c := newProjectChecker("editor")

	assert.NoError(t, c.Require("editor"))
	assert.NoError(t, c.Require("promoter", "editor"))

	err := c.Require("promoter")
	assert.ErrorIs(t, err, ErrUnauthorized)

	var ek *Error
	assert.ErrorAs(t, err, &ek)
	assert.Equal(t, "project", ek.Entity)
	assert.Equal(t, "project-1", ek.EntityID)
	assert.Equal(t, "user-1", ek.ActorID)
	assert.Equal(t, "promoter", ek.Role)
}
