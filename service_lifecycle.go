package eventkit

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// PROJECT LIFECYCLE
// ============================================================================

// CreateProject creates a project under an account profile, together with its
// commentset and the creator's self-granted crew membership (editor and
// promoter). Everything happens in one transaction.
func (s *Service) CreateProject(ctx context.Context, p *Project) (*Project, error) {
	actorID, err := RequireActorID(ctx)
	if err != nil {
		return nil, err
	}

	err = s.Transaction(ctx, func(txs *Service) error {
		cs := &Commentset{SetType: CommentsetTypeProject}
		result, err := txs.db.NewInsert().Model(cs).Exec(ctx)
		if err = dbkit.WithErr(result, err, "CreateProject").Err(); err != nil {
			return err
		}

		p.UserID = actorID
		p.CommentsetID = cs.ID
		if p.State == 0 {
			p.State = ProjectStateDraft
		}
		if p.CFPState == 0 {
			p.CFPState = CFPStateNone
		}
		result, err = txs.db.NewInsert().Model(p).Exec(ctx)
		if err = dbkit.WithErr(result, err, "CreateProject").Err(); err != nil {
			return err
		}

		_, err = GrantMembership(ctx, txs.db, &ProjectCrewMembership{
			UserID:     actorID,
			ProjectID:  p.ID,
			IsEditor:   true,
			IsPromoter: true,
		}, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("project_id", p.ID).
		Str("profile_id", p.ProfileID).
		Str("user_id", actorID).
		Msg("project created")

	entry := s.auditEntry(ctx, AuditActionGranted, "project", p.ID)
	entry.SubjectID = actorID
	entry.NewRoles = []string{"editor", "promoter"}
	s.logAudit(ctx, entry)

	return p, nil
}

// PublishProject publishes a draft or withdrawn project. Returns whether this
// was the project's first publish.
func (s *Service) PublishProject(ctx context.Context, p *Project) (bool, error) {
	if _, err := RequireActorID(ctx); err != nil {
		return false, err
	}

	first, err := p.Publish()
	if err != nil {
		return false, err
	}
	if err := s.updateProject(ctx, p, "state", "first_published_at", "published_at"); err != nil {
		return false, err
	}

	s.log.Info().Str("project_id", p.ID).Bool("first", first).Msg("project published")
	s.auditTransition(ctx, "project", p.ID, "publish")
	return first, nil
}

// WithdrawProject takes a published project off the air.
func (s *Service) WithdrawProject(ctx context.Context, p *Project) error {
	return s.applyProjectTransition(ctx, p, "withdraw", p.Withdraw)
}

// DeleteProject marks a project deleted. The row is retained; listings exclude
// deleted projects through the state column.
func (s *Service) DeleteProject(ctx context.Context, p *Project) error {
	return s.applyProjectTransition(ctx, p, "delete", p.Delete)
}

func (s *Service) applyProjectTransition(ctx context.Context, p *Project, name string, apply func() error) error {
	if _, err := RequireActorID(ctx); err != nil {
		return err
	}
	if err := apply(); err != nil {
		return err
	}
	if err := s.updateProject(ctx, p, "state"); err != nil {
		return err
	}

	s.log.Info().Str("project_id", p.ID).Str("transition", name).Msg("project transitioned")
	s.auditTransition(ctx, "project", p.ID, name)
	return nil
}

// OpenCFP opens a project's call for proposals. Valid from the none, closed
// and expired states; an expired closing date is cleared on reopen.
func (s *Service) OpenCFP(ctx context.Context, p *Project) error {
	if _, err := RequireActorID(ctx); err != nil {
		return err
	}
	if err := p.OpenCFP(); err != nil {
		return err
	}
	if err := s.updateProject(ctx, p, "cfp_state", "cfp_start_at", "cfp_end_at"); err != nil {
		return err
	}

	s.log.Info().Str("project_id", p.ID).Msg("cfp opened")
	s.auditTransition(ctx, "project", p.ID, "open_cfp")
	return nil
}

// CloseCFP closes an open call for proposals.
func (s *Service) CloseCFP(ctx context.Context, p *Project) error {
	if _, err := RequireActorID(ctx); err != nil {
		return err
	}
	if err := p.CloseCFP(); err != nil {
		return err
	}
	if err := s.updateProject(ctx, p, "cfp_state"); err != nil {
		return err
	}

	s.log.Info().Str("project_id", p.ID).Msg("cfp closed")
	s.auditTransition(ctx, "project", p.ID, "close_cfp")
	return nil
}

// updateProject persists the named columns plus the updated_at stamp.
func (s *Service) updateProject(ctx context.Context, p *Project, columns ...string) error {
	p.UpdatedAt = time.Now().UTC()
	result, err := s.db.NewUpdate().Model(p).
		Column(append(columns, "updated_at")...).
		WherePK().
		Exec(ctx)
	return dbkit.WithErr(result, err, "UpdateProject").Err()
}

// auditTransition records a state transition in the audit log.
func (s *Service) auditTransition(ctx context.Context, entity, entityID, transition string) {
	entry := s.auditEntry(ctx, AuditActionTransitioned, entity, entityID)
	entry.Transition = transition
	s.logAudit(ctx, entry)
}

// ============================================================================
// PROFILE LIFECYCLE
// ============================================================================

// MakeProfilePublic takes a profile public. The profile must be loaded with
// its owner relations (GetProfile does this); an inactive owner, a reserved
// name or a likely-throwaway user account all fail the publishable guard.
func (s *Service) MakeProfilePublic(ctx context.Context, p *Profile) error {
	return s.applyProfileTransition(ctx, p, "make_public", p.MakePublic)
}

// MakeProfilePrivate takes a profile private.
func (s *Service) MakeProfilePrivate(ctx context.Context, p *Profile) error {
	return s.applyProfileTransition(ctx, p, "make_private", p.MakePrivate)
}

func (s *Service) applyProfileTransition(ctx context.Context, p *Profile, name string, apply func() error) error {
	if _, err := RequireActorID(ctx); err != nil {
		return err
	}
	if err := apply(); err != nil {
		return err
	}

	p.UpdatedAt = time.Now().UTC()
	result, err := s.db.NewUpdate().Model(p).
		Column("state", "updated_at").
		WherePK().
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "UpdateProfile").Err(); err != nil {
		return err
	}

	s.log.Info().Str("profile_id", p.ID).Str("transition", name).Msg("profile transitioned")
	s.auditTransition(ctx, "profile", p.ID, name)
	return nil
}

// ============================================================================
// PROPOSALS
// ============================================================================

// CreateProposal submits a proposal to a project's open call for proposals.
// The proposal gets its own commentset, the next sequence number among its
// siblings, and its submitter auto-subscribed to the discussion thread.
func (s *Service) CreateProposal(ctx context.Context, project *Project, prop *Proposal) (*Proposal, error) {
	actorID, err := RequireActorID(ctx)
	if err != nil {
		return nil, err
	}
	if err := ProjectCFPStates.Require(project, "open"); err != nil {
		return nil, err
	}

	err = s.Transaction(ctx, func(txs *Service) error {
		cs := &Commentset{SetType: CommentsetTypeProposal}
		result, err := txs.db.NewInsert().Model(cs).Exec(ctx)
		if err = dbkit.WithErr(result, err, "CreateProposal").Err(); err != nil {
			return err
		}

		prop.ProjectID = project.ID
		prop.UserID = actorID
		prop.CommentsetID = cs.ID
		seq, err := NextSeq(ctx, txs.db, prop)
		if err != nil {
			return err
		}
		prop.Seq = seq

		result, err = txs.db.NewInsert().Model(prop).Exec(ctx)
		if err = dbkit.WithErr(result, err, "CreateProposal").Err(); err != nil {
			return err
		}

		_, err = txs.AddSubscriber(ctx, cs.ID, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("proposal_id", prop.ID).
		Str("project_id", project.ID).
		Str("user_id", actorID).
		Int("seq", prop.Seq).
		Msg("proposal created")

	return prop, nil
}

// ============================================================================
// COMMENTS
// ============================================================================

// PostComment adds a comment to a commentset and auto-subscribes its author.
// Posting to a disabled commentset fails with ErrInvalidTransition. The
// commentset's denormalized count and last-comment timestamp are maintained in
// the same transaction.
func (s *Service) PostComment(ctx context.Context, cs *Commentset, c *Comment) (*Comment, error) {
	actorID, err := RequireActorID(ctx)
	if err != nil {
		return nil, err
	}
	if err := cs.RequireNotDisabled(); err != nil {
		return nil, err
	}

	err = s.Transaction(ctx, func(txs *Service) error {
		c.CommentsetID = cs.ID
		c.UserID = &actorID
		if c.State == 0 {
			c.State = CommentStateSubmitted
		}
		result, err := txs.db.NewInsert().Model(c).Exec(ctx)
		if err = dbkit.WithErr(result, err, "PostComment").Err(); err != nil {
			return err
		}

		now := time.Now().UTC()
		result, err = txs.db.NewUpdate().Model(cs).
			Set("count = count + 1").
			Set("last_comment_at = ?", now).
			Set("updated_at = ?", now).
			WherePK().
			Exec(ctx)
		if err = dbkit.WithErr(result, err, "PostComment").Err(); err != nil {
			return err
		}
		cs.Count++
		cs.LastCommentAt = &now

		_, err = txs.AddSubscriber(ctx, cs.ID, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("comment_id", c.ID).
		Str("commentset_id", cs.ID).
		Str("user_id", actorID).
		Msg("comment posted")

	return c, nil
}

// DeleteComment removes a comment. A comment with replies is anonymized in
// place so the thread structure survives; a reply-less comment is removed
// outright, and the removal then walks up the reply chain deleting anonymized
// ancestors that no longer hold any replies.
func (s *Service) DeleteComment(ctx context.Context, c *Comment) error {
	if _, err := RequireActorID(ctx); err != nil {
		return err
	}

	err := s.Transaction(ctx, func(txs *Service) error {
		hasReplies, err := commentHasReplies(ctx, txs.db, c.ID)
		if err != nil {
			return err
		}

		if hasReplies {
			if err := c.Anonymize(); err != nil {
				return err
			}
			result, err := txs.db.NewUpdate().Model(c).
				Column("state", "user_id", "message", "updated_at").
				WherePK().
				Exec(ctx)
			return dbkit.WithErr(result, err, "DeleteComment").Err()
		}

		parentID := c.InReplyToID
		if err := txs.removeComment(ctx, c.ID, c.CommentsetID); err != nil {
			return err
		}
		return txs.pruneDeletedAncestors(ctx, parentID)
	})
	if err != nil {
		return err
	}

	s.log.Debug().
		Str("comment_id", c.ID).
		Str("commentset_id", c.CommentsetID).
		Msg("comment deleted")
	s.auditTransition(ctx, "comment", c.ID, "delete")

	return nil
}

// pruneDeletedAncestors walks up a reply chain removing anonymized placeholder
// comments whose last reply just disappeared. The depth cap guards against a
// corrupted chain cycling.
func (s *Service) pruneDeletedAncestors(ctx context.Context, parentID *string) error {
	for depth := 0; parentID != nil && depth < 100; depth++ {
		parent := new(Comment)
		err := dbkit.WithErr1(s.db.NewSelect().Model(parent).
			Where("id = ?", *parentID).
			Limit(1).
			Scan(ctx), "PruneDeletedAncestors").Err()
		if err != nil {
			if dbkit.IsNotFound(err) {
				return nil
			}
			return err
		}
		if !CommentStates.Is(parent, "deleted") {
			return nil
		}

		hasReplies, err := commentHasReplies(ctx, s.db, parent.ID)
		if err != nil {
			return err
		}
		if hasReplies {
			return nil
		}

		if err := s.removeComment(ctx, parent.ID, parent.CommentsetID); err != nil {
			return err
		}
		parentID = parent.InReplyToID
	}
	return nil
}

// removeComment hard-deletes a comment row and decrements its commentset's
// counter.
func (s *Service) removeComment(ctx context.Context, commentID, commentsetID string) error {
	result, err := s.db.NewUpdate().Model((*Commentset)(nil)).
		Set("count = greatest(count - 1, 0)").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", commentsetID).
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "RemoveComment").Err(); err != nil {
		return err
	}

	_, err = s.db.NewRaw("DELETE FROM comments WHERE id = ?", commentID).Exec(ctx)
	return dbkit.WithErr1(err, "RemoveComment").Err()
}

func commentHasReplies(ctx context.Context, db dbkit.IDB, commentID string) (bool, error) {
	return dbkit.Exists[Comment](ctx, db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("in_reply_to_id = ?", commentID)
	})
}

// MarkCommentSpam moves a comment to the spam state. Valid from any state.
func (s *Service) MarkCommentSpam(ctx context.Context, c *Comment) error {
	return s.applyCommentTransition(ctx, c, "mark_spam", c.MarkSpam)
}

// MarkCommentNotSpam restores a moderated comment to verified. A deleted
// comment stays deleted.
func (s *Service) MarkCommentNotSpam(ctx context.Context, c *Comment) error {
	return s.applyCommentTransition(ctx, c, "mark_not_spam", c.MarkNotSpam)
}

func (s *Service) applyCommentTransition(ctx context.Context, c *Comment, name string, apply func() error) error {
	if _, err := RequireActorID(ctx); err != nil {
		return err
	}
	if err := apply(); err != nil {
		return err
	}

	c.UpdatedAt = time.Now().UTC()
	result, err := s.db.NewUpdate().Model(c).
		Column("state", "updated_at").
		WherePK().
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "UpdateComment").Err(); err != nil {
		return err
	}

	s.log.Debug().Str("comment_id", c.ID).Str("transition", name).Msg("comment transitioned")
	s.auditTransition(ctx, "comment", c.ID, name)
	return nil
}

// DisableComments turns off posting on a commentset.
func (s *Service) DisableComments(ctx context.Context, cs *Commentset) error {
	return s.applyCommentsetTransition(ctx, cs, "disable_comments", cs.DisableComments)
}

// EnableComments re-opens a disabled commentset.
func (s *Service) EnableComments(ctx context.Context, cs *Commentset) error {
	return s.applyCommentsetTransition(ctx, cs, "enable_comments", cs.EnableComments)
}

func (s *Service) applyCommentsetTransition(ctx context.Context, cs *Commentset, name string, apply func() error) error {
	if _, err := RequireActorID(ctx); err != nil {
		return err
	}
	if err := apply(); err != nil {
		return err
	}

	cs.UpdatedAt = time.Now().UTC()
	result, err := s.db.NewUpdate().Model(cs).
		Column("state", "updated_at").
		WherePK().
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "UpdateCommentset").Err(); err != nil {
		return err
	}

	s.log.Info().Str("commentset_id", cs.ID).Str("transition", name).Msg("commentset transitioned")
	s.auditTransition(ctx, "commentset", cs.ID, name)
	return nil
}
