package eventkit

import (
	"time"

	"github.com/uptrace/bun"
)

// Proposal is a submission to a project's call for proposals. Proposals are
// ordered among siblings of the same project through the reorder engine and
// own a commentset for reviewer discussion.
type Proposal struct {
	bun.BaseModel `bun:"table:proposals,alias:prop"`

	ID        string `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	ProjectID string `bun:"project_id,notnull,type:uuid"`
	UserID    string `bun:"user_id,notnull,type:uuid"` // submitter

	Title string `bun:"title,notnull"`
	Body  string `bun:"body"`

	Seq int `bun:"seq,notnull"`

	CommentsetID string `bun:"commentset_id,notnull,type:uuid"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	Project    *Project    `bun:"rel:belongs-to,join:project_id=id"`
	Commentset *Commentset `bun:"rel:belongs-to,join:commentset_id=id"`
}

func (p *Proposal) ReorderID() string       { return p.ID }
func (p *Proposal) ReorderParentID() string { return p.ProjectID }
func (p *Proposal) ReorderSeq() int         { return p.Seq }
func (p *Proposal) SetReorderSeq(seq int)   { p.Seq = seq }

// ReorderScope limits sequence competition to siblings of the same project.
func (p *Proposal) ReorderScope(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Where("project_id = ?", p.ProjectID)
}

// Session is a scheduled slot in a project's programme. Sessions back the
// has_sessions derived CFP state; scheduling itself lives elsewhere.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:sess"`

	ID        string `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	ProjectID string `bun:"project_id,notnull,type:uuid"`

	Title   string     `bun:"title,notnull"`
	StartAt *time.Time `bun:"start_at"`
	EndAt   *time.Time `bun:"end_at"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	Project *Project `bun:"rel:belongs-to,join:project_id=id"`
}
