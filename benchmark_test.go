package eventkit

import (
	"testing"
	"time"
)

// Role resolution builds and unions role sets on every request; these
// benchmarks keep the hot paths honest. All run without a database.

func BenchmarkRoleSetAdd(b *testing.B) {
	for i := 0; i < b.N; i++ {
		rs := NewRoleSet()
		rs.Add("editor", "promoter", "usher", "crew", "participant")
	}
}

func BenchmarkRoleSetUnion(b *testing.B) {
	other := NewRoleSet("project_editor", "project_crew", "reader")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rs := NewRoleSet("editor", "crew", "participant")
		rs.Union(other)
	}
}

func BenchmarkRoleSetRemap(b *testing.B) {
	rs := NewRoleSet("editor", "promoter", "usher", "crew", "participant")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = rs.Remap(ProjectCrewRoleMap)
	}
}

func BenchmarkAccessMatcherMatch(b *testing.B) {
	am := NewAccessMatcher()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		am.Match("cfp_*", "cfp_start_at")
	}
}

func BenchmarkCheckerCanCall(b *testing.B) {
	checker := NewChecker("user-1", "project", "project-1",
		NewRoleSet("editor", "crew", "participant"), DefaultRegistry())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		checker.CanCall("publish")
	}
}

func BenchmarkStateManagerIs(b *testing.B) {
	now := time.Now().UTC()
	later := now.Add(time.Hour)
	p := &Project{State: ProjectStatePublished, StartAt: &now, EndAt: &later}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ProjectStates.Is(p, "live")
	}
}

func BenchmarkStateManagerApply(b *testing.B) {
	for i := 0; i < b.N; i++ {
		p := &Project{State: ProjectStateDraft}
		_ = ProjectStates.Apply(p, "publish", nil)
	}
}
