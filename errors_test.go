package eventkit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrorFormatting verifies message composition with and without context.
func TestErrorFormatting(t *testing.T) {
	bare := NewError(ErrInvalidTransition, "")
	assert.Equal(t, "eventkit: invalid transition", bare.Error())

	withMsg := NewError(ErrInvalidTransition, "transition publish requires state publishable")
	assert.Equal(t, "eventkit: invalid transition: transition publish requires state publishable", withMsg.Error())
}

// TestErrorUnwrap verifies errors.Is and errors.As see through the wrapper.
func TestErrorUnwrap(t *testing.T) {
	err := NewError(ErrMembershipRevoked, "record was revoked concurrently").
		WithSubject("user-1")

	assert.ErrorIs(t, err, ErrMembershipRevoked)
	assert.NotErrorIs(t, err, ErrDuplicateMembership)
	assert.Equal(t, ErrMembershipRevoked, errors.Unwrap(err))

	var ek *Error
	assert.ErrorAs(t, err, &ek)
	assert.Equal(t, "user-1", ek.SubjectID)
}

// TestErrorIsSurvivesFurtherWrapping verifies classification after fmt wrapping.
func TestErrorIsSurvivesFurtherWrapping(t *testing.T) {
	inner := NewError(ErrUnauthorized, "actor lacks required role")
	outer := fmt.Errorf("handling request: %w", inner)

	assert.True(t, IsUnauthorized(outer))

	var ek *Error
	assert.ErrorAs(t, outer, &ek)
}

// TestErrorWithSetters verifies the fluent context setters.
func TestErrorWithSetters(t *testing.T) {
	err := NewError(ErrInvalidTransition, "guard not met").
		WithEntity("project", "project-1").
		WithTransition("publish", "published").
		WithRole("editor").
		WithSubject("user-2").
		WithActor("user-1")

	assert.Equal(t, "project", err.Entity)
	assert.Equal(t, "project-1", err.EntityID)
	assert.Equal(t, "publish", err.Transition)
	assert.Equal(t, "published", err.State)
	assert.Equal(t, "editor", err.Role)
	assert.Equal(t, "user-2", err.SubjectID)
	assert.Equal(t, "user-1", err.ActorID)
}

// TestErrorClassifiers verifies each Is* helper matches only its sentinel.
func TestErrorClassifiers(t *testing.T) {
	tests := []struct {
		name     string
		sentinel error
		check    func(error) bool
	}{
		{"invalid transition", ErrInvalidTransition, IsInvalidTransition},
		{"membership revoked", ErrMembershipRevoked, IsMembershipRevoked},
		{"duplicate membership", ErrDuplicateMembership, IsDuplicateMembership},
		{"parent resolution", ErrParentResolution, IsParentResolution},
		{"missing record", ErrMissingRecord, IsMissingRecord},
		{"reorder precondition", ErrReorderPrecondition, IsReorderPrecondition},
		{"invalid entity", ErrInvalidEntity, IsInvalidEntity},
		{"invalid role", ErrInvalidRole, IsInvalidRole},
		{"unauthorized", ErrUnauthorized, IsUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.sentinel))
			assert.True(t, tt.check(NewError(tt.sentinel, "wrapped")))
			assert.False(t, tt.check(errors.New("unrelated")))
			assert.False(t, tt.check(nil))
		})
	}
}

// TestErrorClassifiersAreDisjoint verifies a wrapped sentinel matches exactly one classifier.
func TestErrorClassifiersAreDisjoint(t *testing.T) {
	err := NewError(ErrDuplicateMembership, "active record exists")

	assert.True(t, IsDuplicateMembership(err))
	assert.False(t, IsMembershipRevoked(err))
	assert.False(t, IsUnauthorized(err))
	assert.False(t, IsInvalidTransition(err))
}
