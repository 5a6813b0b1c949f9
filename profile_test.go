package eventkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func userProfile(state int, user *User) *Profile {
	id := "user-1"
	if user != nil {
		user.ID = id
	}
	return &Profile{State: state, UserID: &id, User: user}
}

// TestProfileIsActive verifies owner standing flows through to the profile.
func TestProfileIsActive(t *testing.T) {
	active := userProfile(ProfileStateAuto, &User{Status: UserStatusActive})
	assert.True(t, active.IsActive())

	suspended := userProfile(ProfileStateAuto, &User{Status: UserStatusSuspended})
	assert.False(t, suspended.IsActive())

	// Owner relation not loaded counts as inactive.
	unloaded := userProfile(ProfileStateAuto, nil)
	assert.False(t, unloaded.IsActive())

	reserved := &Profile{State: ProfileStateAuto, Reserved: true}
	assert.False(t, reserved.IsActive())

	orgID := "org-1"
	orgOwned := &Profile{
		State:          ProfileStateAuto,
		OrganizationID: &orgID,
		Organization:   &Organization{ID: orgID, Status: OrganizationStatusActive},
	}
	assert.True(t, orgOwned.IsActive())
}

// TestProfileMakePublic verifies the publishable guard end to end.
func TestProfileMakePublic(t *testing.T) {
	p := userProfile(ProfileStateAuto, &User{Status: UserStatusActive})

	assert.NoError(t, p.MakePublic())
	assert.Equal(t, ProfileStatePublic, p.State)
}

// TestProfileMakePublicAlreadyPublic verifies going public twice fails.
func TestProfileMakePublicAlreadyPublic(t *testing.T) {
	p := userProfile(ProfileStatePublic, &User{Status: UserStatusActive})

	assert.ErrorIs(t, p.MakePublic(), ErrInvalidTransition)
}

// TestProfileMakePublicThrowawayOwner verifies flagged accounts cannot go public.
func TestProfileMakePublicThrowawayOwner(t *testing.T) {
	p := userProfile(ProfileStateAuto, &User{Status: UserStatusActive, LikelyThrowaway: true})

	err := p.MakePublic()

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, ProfileStateAuto, p.State)
}

// TestProfileMakePublicSuspendedOwner verifies suspended owners cannot go public.
func TestProfileMakePublicSuspendedOwner(t *testing.T) {
	p := userProfile(ProfileStatePrivate, &User{Status: UserStatusSuspended})

	assert.ErrorIs(t, p.MakePublic(), ErrInvalidTransition)
	assert.Equal(t, ProfileStatePrivate, p.State)
}

// TestProfileMakePublicReserved verifies reserved names never go public.
func TestProfileMakePublicReserved(t *testing.T) {
	p := &Profile{State: ProfileStateAuto, Reserved: true}

	assert.ErrorIs(t, p.MakePublic(), ErrInvalidTransition)
}

// TestProfileMakePrivate verifies the private transition and its guard.
func TestProfileMakePrivate(t *testing.T) {
	p := userProfile(ProfileStatePublic, &User{Status: UserStatusActive})
	assert.NoError(t, p.MakePrivate())
	assert.Equal(t, ProfileStatePrivate, p.State)

	// Auto profiles can go private without any owner checks.
	auto := &Profile{State: ProfileStateAuto}
	assert.NoError(t, auto.MakePrivate())

	assert.ErrorIs(t, p.MakePrivate(), ErrInvalidTransition)
}

// TestProfileActiveAndPublic verifies the derived state behind universal reader grants.
func TestProfileActiveAndPublic(t *testing.T) {
	publicActive := userProfile(ProfileStatePublic, &User{Status: UserStatusActive})
	assert.True(t, ProfileStates.Is(publicActive, "active_and_public"))

	publicSuspended := userProfile(ProfileStatePublic, &User{Status: UserStatusSuspended})
	assert.False(t, ProfileStates.Is(publicSuspended, "active_and_public"))

	privateActive := userProfile(ProfileStatePrivate, &User{Status: UserStatusActive})
	assert.False(t, ProfileStates.Is(privateActive, "active_and_public"))
}
