package eventkit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestStateManagerStoredStates verifies stored state registration and lookup.
func TestStateManagerStoredStates(t *testing.T) {
	p := &Project{State: ProjectStateDraft}

	assert.True(t, ProjectStates.Is(p, "draft"))
	assert.False(t, ProjectStates.Is(p, "published"))
	assert.Equal(t, "draft", ProjectStates.CurrentName(p))
	assert.Equal(t, ProjectStatePublished, ProjectStates.Value("published"))
	assert.Equal(t, "Draft", ProjectStates.Label("draft"))
}

// TestStateManagerGroups verifies group membership evaluation.
func TestStateManagerGroups(t *testing.T) {
	draft := &Project{State: ProjectStateDraft}
	published := &Project{State: ProjectStatePublished}
	withdrawn := &Project{State: ProjectStateWithdrawn}
	deleted := &Project{State: ProjectStateDeleted}

	assert.True(t, ProjectStates.Is(draft, "publishable"))
	assert.True(t, ProjectStates.Is(withdrawn, "publishable"))
	assert.False(t, ProjectStates.Is(published, "publishable"))
	assert.False(t, ProjectStates.Is(deleted, "publishable"))

	assert.True(t, ProjectStates.Is(draft, "deletable"))
	assert.True(t, ProjectStates.Is(published, "deletable"))
	assert.True(t, ProjectStates.Is(withdrawn, "deletable"))
	assert.False(t, ProjectStates.Is(deleted, "deletable"))
}

// TestStateManagerConditionals verifies derived states computed from loaded attributes.
func TestStateManagerConditionals(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name    string
		project Project
		state   string
		want    bool
	}{
		{"published with past end is past", Project{State: ProjectStatePublished, StartAt: &past, EndAt: &past}, "past", true},
		{"published with future end is not past", Project{State: ProjectStatePublished, EndAt: &future}, "past", false},
		{"draft with past end is not past", Project{State: ProjectStateDraft, EndAt: &past}, "past", false},
		{"running project is live", Project{State: ProjectStatePublished, StartAt: &past, EndAt: &future}, "live", true},
		{"future project is upcoming", Project{State: ProjectStatePublished, StartAt: &future}, "upcoming", true},
		{"unscheduled published project", Project{State: ProjectStatePublished}, "published_without_sessions", true},
		{"scheduled published project", Project{State: ProjectStatePublished, StartAt: &future}, "published_without_sessions", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProjectStates.Is(&tt.project, tt.state))
		})
	}
}

// TestStateManagerExistsConditionalIsFalse verifies Is never answers existence conditionals.
func TestStateManagerExistsConditionalIsFalse(t *testing.T) {
	p := &Project{State: ProjectStateDraft, CFPState: CFPStatePublic}

	// has_proposals requires a database; without one Is must report false.
	assert.False(t, ProjectCFPStates.Is(p, "has_proposals"))
}

// TestStateManagerApply verifies a passing transition runs the body and moves the state.
func TestStateManagerApply(t *testing.T) {
	p := &Project{State: ProjectStateDraft}
	ran := false

	err := ProjectStates.Apply(p, "publish", func() error {
		ran = true
		return nil
	})

	assert.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, ProjectStatePublished, p.State)
}

// TestStateManagerApplyGuardMatrix verifies every disallowed (state, transition) pair fails.
func TestStateManagerApplyGuardMatrix(t *testing.T) {
	tests := []struct {
		name       string
		state      int
		transition string
		wantErr    bool
	}{
		{"publish from draft", ProjectStateDraft, "publish", false},
		{"publish from published", ProjectStatePublished, "publish", true},
		{"publish from withdrawn", ProjectStateWithdrawn, "publish", false},
		{"publish from deleted", ProjectStateDeleted, "publish", true},
		{"withdraw from draft", ProjectStateDraft, "withdraw", true},
		{"withdraw from published", ProjectStatePublished, "withdraw", false},
		{"withdraw from withdrawn", ProjectStateWithdrawn, "withdraw", true},
		{"withdraw from deleted", ProjectStateDeleted, "withdraw", true},
		{"delete from draft", ProjectStateDraft, "delete", false},
		{"delete from published", ProjectStatePublished, "delete", false},
		{"delete from withdrawn", ProjectStateWithdrawn, "delete", false},
		{"delete from deleted", ProjectStateDeleted, "delete", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Project{State: tt.state}
			err := ProjectStates.Apply(p, tt.transition, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.state, p.State, "failed transition must not modify the entity")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestStateManagerApplyUnknownTransition verifies unknown transition names fail.
func TestStateManagerApplyUnknownTransition(t *testing.T) {
	p := &Project{State: ProjectStateDraft}
	err := ProjectStates.Apply(p, "launch", nil)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, ProjectStateDraft, p.State)
}

// TestStateManagerApplyBodyError verifies a body error aborts before the state change.
func TestStateManagerApplyBodyError(t *testing.T) {
	p := &Project{State: ProjectStateDraft}
	boom := NewError(ErrDatabaseError, "insert failed")

	err := ProjectStates.Apply(p, "publish", func() error { return boom })

	assert.ErrorIs(t, err, ErrDatabaseError)
	assert.Equal(t, ProjectStateDraft, p.State)
}

// TestStateManagerApplyIfGuard verifies the If guard is consulted after From.
func TestStateManagerApplyIfGuard(t *testing.T) {
	sm := NewStateManager("widget", "state",
		func(p *Project) int { return p.State },
		func(p *Project, v int) { p.State = v }).
		State("off", 1, "Off").
		State("on", 2, "On").
		AddTransition(Transition[Project]{
			Name: "activate", From: "off", To: "on",
			If: func(p *Project) bool { return p.Title != "" },
		})

	unnamed := &Project{State: 1}
	err := sm.Apply(unnamed, "activate", nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 1, unnamed.State)

	named := &Project{State: 1, Title: "GopherConf"}
	assert.NoError(t, sm.Apply(named, "activate", nil))
	assert.Equal(t, 2, named.State)
}

// TestStateManagerRequire verifies the guard-only check.
func TestStateManagerRequire(t *testing.T) {
	open := &Commentset{State: CommentsetStateOpen}
	disabled := &Commentset{State: CommentsetStateDisabled}

	assert.NoError(t, CommentsetStates.Require(open, "not_disabled"))

	err := CommentsetStates.Require(disabled, "not_disabled")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, CommentsetStateDisabled, disabled.State)
}

// TestStateManagerFilter verifies query filters are known for stored states and groups.
func TestStateManagerFilter(t *testing.T) {
	_, ok := ProjectStates.Filter("published")
	assert.True(t, ok)

	_, ok = ProjectStates.Filter("publishable")
	assert.True(t, ok)

	_, ok = ProjectStates.Filter("live")
	assert.True(t, ok)

	// publishable on profiles is registered without a SQL form.
	_, ok = ProfileStates.Filter("publishable")
	assert.False(t, ok)

	_, ok = ProjectStates.Filter("no_such_state")
	assert.False(t, ok)
}

// TestStateManagerTransitionNames verifies transition enumeration.
func TestStateManagerTransitionNames(t *testing.T) {
	names := ProjectStates.TransitionNames()

	assert.Len(t, names, 3)
	assert.Contains(t, names, "publish")
	assert.Contains(t, names, "withdraw")
	assert.Contains(t, names, "delete")
}

// TestStateManagerAvailableTransitions verifies the action menu respects guards.
func TestStateManagerAvailableTransitions(t *testing.T) {
	draft := &Project{State: ProjectStateDraft}
	available := ProjectStates.AvailableTransitions(draft)

	names := make([]string, 0, len(available))
	for _, tr := range available {
		names = append(names, tr.Name)
	}
	assert.Contains(t, names, "publish")
	assert.Contains(t, names, "delete")
	assert.NotContains(t, names, "withdraw")

	deleted := &Project{State: ProjectStateDeleted}
	assert.Empty(t, ProjectStates.AvailableTransitions(deleted))
}

// TestCFPStateOpenable verifies the CFP openable group covers closed, none and expired.
func TestCFPStateOpenable(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)

	tests := []struct {
		name    string
		project Project
		want    bool
	}{
		{"none is openable", Project{CFPState: CFPStateNone}, true},
		{"closed is openable", Project{CFPState: CFPStateClosed}, true},
		{"expired public is openable", Project{CFPState: CFPStatePublic, CFPEndAt: &past}, true},
		{"open public is not openable", Project{CFPState: CFPStatePublic, CFPEndAt: &future}, false},
		{"open-ended public is not openable", Project{CFPState: CFPStatePublic}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProjectCFPStates.Is(&tt.project, "openable"))
		})
	}
}
