package eventkit

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// Project state column values.
const (
	ProjectStateDraft     = 1
	ProjectStatePublished = 2
	ProjectStateWithdrawn = 3
	ProjectStateDeleted   = 4
)

// Project CFP (call for proposals) state column values.
const (
	CFPStateNone   = 1
	CFPStatePublic = 2
	CFPStateClosed = 3
)

// Project is an event or conference hosted under an account profile. It owns
// a commentset (created alongside the project, removed with it) and carries
// two independent state columns: the publication lifecycle and the CFP
// sub-state.
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID        string `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	ProfileID string `bun:"profile_id,notnull,type:uuid"`
	UserID    string `bun:"user_id,notnull,type:uuid"` // creator

	Title        string `bun:"title,notnull"`
	Tagline      string `bun:"tagline"`
	Instructions string `bun:"instructions"` // CFP instructions, may be empty

	State    int `bun:"state,notnull,default:1"`
	CFPState int `bun:"cfp_state,notnull,default:1"`

	// Schedule bounds. A published project without a scheduled start is in
	// the published_without_sessions derived state.
	StartAt *time.Time `bun:"start_at"`
	EndAt   *time.Time `bun:"end_at"`

	CFPStartAt *time.Time `bun:"cfp_start_at"`
	CFPEndAt   *time.Time `bun:"cfp_end_at"`

	// FirstPublishedAt is set exactly once; PublishedAt tracks the latest
	// publish.
	FirstPublishedAt *time.Time `bun:"first_published_at"`
	PublishedAt      *time.Time `bun:"published_at"`

	CommentsetID string `bun:"commentset_id,notnull,type:uuid"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	Profile    *Profile    `bun:"rel:belongs-to,join:profile_id=id"`
	Commentset *Commentset `bun:"rel:belongs-to,join:commentset_id=id"`
}

// ProjectStates manages the project publication lifecycle.
var ProjectStates = NewStateManager("project", "state",
	func(p *Project) int { return p.State },
	func(p *Project, v int) { p.State = v }).
	State("draft", ProjectStateDraft, "Draft").
	State("published", ProjectStatePublished, "Published").
	State("withdrawn", ProjectStateWithdrawn, "Withdrawn").
	State("deleted", ProjectStateDeleted, "Deleted").
	Group("deletable", "draft", "published", "withdrawn").
	Group("publishable", "draft", "withdrawn").
	Conditional("past", "published",
		func(p *Project) bool {
			return p.EndAt != nil && !p.EndAt.After(time.Now().UTC())
		},
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("p.end_at IS NOT NULL AND p.end_at <= now()")
		},
		"Past").
	Conditional("live", "published",
		func(p *Project) bool {
			now := time.Now().UTC()
			return p.StartAt != nil && p.EndAt != nil &&
				!p.StartAt.After(now) && now.Before(*p.EndAt)
		},
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("p.start_at IS NOT NULL AND p.start_at <= now() AND p.end_at > now()")
		},
		"Live").
	Conditional("upcoming", "published",
		func(p *Project) bool {
			return p.StartAt != nil && time.Now().UTC().Before(*p.StartAt)
		},
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("p.start_at IS NOT NULL AND p.start_at > now()")
		},
		"Upcoming").
	Conditional("published_without_sessions", "published",
		func(p *Project) bool { return p.StartAt == nil },
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("p.start_at IS NULL")
		},
		"Published without sessions").
	AddTransition(Transition[Project]{
		Name: "publish", From: "publishable", To: "published",
		Title: "Publish",
	}).
	AddTransition(Transition[Project]{
		Name: "withdraw", From: "published", To: "withdrawn",
		Title: "Withdraw",
	}).
	AddTransition(Transition[Project]{
		Name: "delete", From: "deletable", To: "deleted",
		Title: "Delete",
	})

// ProjectCFPStates manages the call-for-proposals sub-state, independent of
// the publication lifecycle.
var ProjectCFPStates = NewStateManager("project_cfp", "cfp_state",
	func(p *Project) int { return p.CFPState },
	func(p *Project, v int) { p.CFPState = v }).
	State("none", CFPStateNone, "Not enabled").
	State("public", CFPStatePublic, "Open").
	State("closed", CFPStateClosed, "Closed").
	Group("any", "none", "public", "closed").
	Conditional("draft", "none",
		func(p *Project) bool { return p.Instructions != "" },
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("p.instructions <> ''")
		},
		"Draft").
	Conditional("open", "public",
		func(p *Project) bool {
			return p.CFPEndAt == nil || time.Now().UTC().Before(*p.CFPEndAt)
		},
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("(p.cfp_end_at IS NULL OR p.cfp_end_at > now())")
		},
		"Open").
	Conditional("expired", "public",
		func(p *Project) bool {
			return p.CFPEndAt != nil && !p.CFPEndAt.After(time.Now().UTC())
		},
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("p.cfp_end_at IS NOT NULL AND p.cfp_end_at <= now()")
		},
		"Expired").
	ExistsConditional("has_proposals", "any",
		func(ctx context.Context, db dbkit.IDB, p *Project) (bool, error) {
			return dbkit.Exists[Proposal](ctx, db, func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Where("project_id = ?", p.ID)
			})
		},
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("EXISTS (SELECT 1 FROM proposals prop WHERE prop.project_id = p.id)")
		},
		"Has proposals").
	ExistsConditional("has_sessions", "any",
		func(ctx context.Context, db dbkit.IDB, p *Project) (bool, error) {
			return dbkit.Exists[Session](ctx, db, func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Where("project_id = ?", p.ID)
			})
		},
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("EXISTS (SELECT 1 FROM sessions sess WHERE sess.project_id = p.id)")
		},
		"Has sessions").
	Group("openable", "closed", "none", "expired").
	Group("unavailable", "closed", "expired").
	AddTransition(Transition[Project]{
		Name: "open_cfp", From: "openable", To: "public",
		Title: "Open CFP",
	}).
	AddTransition(Transition[Project]{
		Name: "close_cfp", From: "public", To: "closed",
		Title: "Close CFP",
	})

// Publish moves the project from draft or withdrawn to published. The first
// return value reports whether this was the project's first publish;
// FirstPublishedAt is set exactly once while PublishedAt always updates.
func (p *Project) Publish() (bool, error) {
	first := false
	err := ProjectStates.Apply(p, "publish", func() error {
		now := time.Now().UTC()
		if p.FirstPublishedAt == nil {
			first = true
			p.FirstPublishedAt = &now
		}
		p.PublishedAt = &now
		return nil
	})
	if err != nil {
		return false, err
	}
	return first, nil
}

// Withdraw takes a published project off the air.
func (p *Project) Withdraw() error {
	return ProjectStates.Apply(p, "withdraw", nil)
}

// Delete marks the project deleted. Removal of the project row and its owned
// commentset happens at the service layer.
func (p *Project) Delete() error {
	return ProjectStates.Apply(p, "delete", nil)
}

// OpenCFP opens the call for proposals. A closing date already in the past is
// cleared (reopening after expiry), and the opening date is stamped on first
// open only.
func (p *Project) OpenCFP() error {
	return ProjectCFPStates.Apply(p, "open_cfp", func() error {
		now := time.Now().UTC()
		if p.CFPEndAt != nil && !p.CFPEndAt.After(now) {
			p.CFPEndAt = nil
		}
		if p.CFPStartAt == nil {
			p.CFPStartAt = &now
		}
		return nil
	})
}

// CloseCFP closes an open call for proposals.
func (p *Project) CloseCFP() error {
	return ProjectCFPStates.Apply(p, "close_cfp", nil)
}
