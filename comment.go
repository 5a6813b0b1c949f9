package eventkit

import (
	"time"

	"github.com/uptrace/bun"
)

// Commentset state column values.
const (
	CommentsetStateDisabled      = 1
	CommentsetStateOpen          = 2
	CommentsetStateParticipants  = 3
	CommentsetStateCollaborators = 4
)

// Commentset set types: the kind of document the comment thread hangs off.
const (
	CommentsetTypeProject = 1 + iota
	CommentsetTypeProposal
	CommentsetTypeUpdate
	CommentsetTypeComment
)

// Commentset is a comment thread container owned by exactly one document
// (project or proposal here). The owning document is resolved by lookup, not
// stored; a commentset nobody owns is a data integrity fault surfaced as
// ErrParentResolution during role resolution.
type Commentset struct {
	bun.BaseModel `bun:"table:commentsets,alias:cs"`

	ID      string `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	SetType int    `bun:"set_type,notnull"`
	State   int    `bun:"state,notnull,default:2"`

	// Denormalized for listing: maintained by the comment operations.
	Count         int        `bun:"count,notnull,default:0"`
	LastCommentAt *time.Time `bun:"last_comment_at"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// CommentsetStates manages who may post to a commentset. The participants and
// collaborators states narrow posting to subsets of actors; that narrowing is
// interpreted by the role checker, not the state machine.
var CommentsetStates = NewStateManager("commentset", "state",
	func(cs *Commentset) int { return cs.State },
	func(cs *Commentset, v int) { cs.State = v }).
	State("disabled", CommentsetStateDisabled, "Comments disabled").
	State("open", CommentsetStateOpen, "Open").
	State("participants", CommentsetStateParticipants, "Participants only").
	State("collaborators", CommentsetStateCollaborators, "Collaborators only").
	Group("not_disabled", "open", "participants", "collaborators").
	AddTransition(Transition[Commentset]{
		Name: "disable_comments", From: "open", To: "disabled",
		Title: "Disable comments",
	}).
	AddTransition(Transition[Commentset]{
		Name: "enable_comments", From: "disabled", To: "open",
		Title: "Enable comments",
	})

// DisableComments turns off posting on an open commentset.
func (cs *Commentset) DisableComments() error {
	return CommentsetStates.Apply(cs, "disable_comments", nil)
}

// EnableComments re-opens a disabled commentset.
func (cs *Commentset) EnableComments() error {
	return CommentsetStates.Apply(cs, "enable_comments", nil)
}

// RequireNotDisabled is the posting guard: ErrInvalidTransition when the
// commentset is disabled.
func (cs *Commentset) RequireNotDisabled() error {
	return CommentsetStates.Require(cs, "not_disabled")
}

// Comment state column values.
const (
	CommentStateSubmitted = 1
	CommentStateScreened  = 2
	CommentStateHidden    = 3
	CommentStateSpam      = 4
	CommentStateDeleted   = 5
	CommentStateVerified  = 6
)

// Placeholder texts shown in place of removed content.
const (
	messageDeleted = "[deleted]"
	messageRemoved = "[removed]"
)

// Comment is a single message in a commentset, threaded via InReplyToID.
// A deleted comment that still has replies is kept as an anonymized
// placeholder so the thread structure survives; UserID and Message are
// cleared at that point.
type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:c"`

	ID           string  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	CommentsetID string  `bun:"commentset_id,notnull,type:uuid"`
	UserID       *string `bun:"user_id,type:uuid"`
	InReplyToID  *string `bun:"in_reply_to_id,type:uuid"`

	Message string `bun:"message,notnull"`
	State   int    `bun:"state,notnull,default:1"`

	EditedAt  *time.Time `bun:"edited_at"`
	CreatedAt time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time  `bun:"updated_at,notnull,default:current_timestamp"`

	Commentset *Commentset `bun:"rel:belongs-to,join:commentset_id=id"`
	User       *User       `bun:"rel:belongs-to,join:user_id=id"`
}

// CommentStates manages comment moderation.
var CommentStates = NewStateManager("comment", "state",
	func(c *Comment) int { return c.State },
	func(c *Comment, v int) { c.State = v }).
	State("submitted", CommentStateSubmitted, "Submitted").
	State("screened", CommentStateScreened, "Screened").
	State("hidden", CommentStateHidden, "Hidden").
	State("spam", CommentStateSpam, "Spam").
	State("deleted", CommentStateDeleted, "Deleted").
	State("verified", CommentStateVerified, "Verified").
	Group("public", "submitted", "verified").
	Group("removed", "spam", "deleted").
	Group("reportable", "submitted", "screened", "hidden").
	Group("verifiable", "submitted", "screened", "hidden", "spam").
	AddTransition(Transition[Comment]{
		Name: "delete", From: "", To: "deleted",
		Title: "Delete",
	}).
	AddTransition(Transition[Comment]{
		Name: "mark_spam", From: "", To: "spam",
		Title: "Mark as spam",
	}).
	AddTransition(Transition[Comment]{
		Name: "mark_not_spam", From: "verifiable", To: "verified",
		Title: "Mark as not spam",
	})

// DisplayMessage returns the message text, substituting a placeholder for
// deleted and spam comments.
func (c *Comment) DisplayMessage() string {
	switch {
	case CommentStates.Is(c, "deleted"):
		return messageDeleted
	case CommentStates.Is(c, "spam"):
		return messageRemoved
	}
	return c.Message
}

// AuthorID returns the comment author's user ID, or empty for anonymized and
// removed comments.
func (c *Comment) AuthorID() string {
	if c.UserID == nil || CommentStates.Is(c, "removed") {
		return ""
	}
	return *c.UserID
}

// Anonymize marks the comment deleted in place, clearing author and message
// but keeping the row so replies stay attached. Used when the comment has
// replies; reply-less comments are removed outright by the delete operation.
func (c *Comment) Anonymize() error {
	return CommentStates.Apply(c, "delete", func() error {
		c.UserID = nil
		c.Message = ""
		return nil
	})
}

// MarkSpam marks the comment as spam. Valid from any state.
func (c *Comment) MarkSpam() error {
	return CommentStates.Apply(c, "mark_spam", nil)
}

// MarkNotSpam restores a comment from moderation to verified. Only valid from
// the verifiable states; a deleted comment stays deleted.
func (c *Comment) MarkNotSpam() error {
	return CommentStates.Apply(c, "mark_not_spam", nil)
}
