package eventkit

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// INTERNAL HELPERS
// ============================================================================

// byID loads a row by primary key, mapping not-found to ErrMissingRecord.
func byID[M any](ctx context.Context, db dbkit.IDB, entity, id string) (*M, error) {
	m := new(M)
	err := dbkit.WithErr1(db.NewSelect().Model(m).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx), "ByID").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, NewError(ErrMissingRecord, entity+" not found").
				WithEntity(entity, id)
		}
		return nil, err
	}
	return m, nil
}

// GetProject loads a project by ID.
func (s *Service) GetProject(ctx context.Context, id string) (*Project, error) {
	return byID[Project](ctx, s.db, "project", id)
}

// GetProfile loads a profile by ID with its owner relations, which the
// profile state predicates need.
func (s *Service) GetProfile(ctx context.Context, id string) (*Profile, error) {
	p := new(Profile)
	err := dbkit.WithErr1(s.db.NewSelect().Model(p).
		Relation("User").
		Relation("Organization").
		Where("pr.id = ?", id).
		Limit(1).
		Scan(ctx), "GetProfile").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, NewError(ErrMissingRecord, "profile not found").
				WithEntity("profile", id)
		}
		return nil, err
	}
	return p, nil
}

// GetProposal loads a proposal by ID.
func (s *Service) GetProposal(ctx context.Context, id string) (*Proposal, error) {
	return byID[Proposal](ctx, s.db, "proposal", id)
}

// GetCommentset loads a commentset by ID.
func (s *Service) GetCommentset(ctx context.Context, id string) (*Commentset, error) {
	return byID[Commentset](ctx, s.db, "commentset", id)
}

// GetComment loads a comment by ID.
func (s *Service) GetComment(ctx context.Context, id string) (*Comment, error) {
	return byID[Comment](ctx, s.db, "comment", id)
}

// commentsetParent resolves the document a commentset hangs off: a project
// first, then a proposal. Exactly one of the returns is non-nil on success.
// A commentset nobody owns is a data integrity fault, not an empty result:
// returning no roles for it would read as "no access" and mask the bug.
func (s *Service) commentsetParent(ctx context.Context, commentsetID string) (*Project, *Proposal, error) {
	project := new(Project)
	err := dbkit.WithErr1(s.db.NewSelect().Model(project).
		Where("commentset_id = ?", commentsetID).
		Limit(1).
		Scan(ctx), "CommentsetParentProject").Err()
	if err == nil {
		return project, nil, nil
	}
	if !dbkit.IsNotFound(err) {
		return nil, nil, err
	}

	proposal := new(Proposal)
	err = dbkit.WithErr1(s.db.NewSelect().Model(proposal).
		Where("commentset_id = ?", commentsetID).
		Limit(1).
		Scan(ctx), "CommentsetParentProposal").Err()
	if err == nil {
		return nil, proposal, nil
	}
	if !dbkit.IsNotFound(err) {
		return nil, nil, err
	}

	return nil, nil, NewError(ErrParentResolution, "commentset has no owning document").
		WithEntity("commentset", commentsetID)
}

// auditEntry builds an audit entry pre-filled with the request metadata from
// context.
func (s *Service) auditEntry(ctx context.Context, action AuditAction, entity, entityID string) *AuditEntry {
	audit := GetAuditContext(ctx)
	return &AuditEntry{
		ActorID:   audit.ActorID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		IPAddress: audit.IPAddress,
		UserAgent: audit.UserAgent,
		RequestID: audit.RequestID,
	}
}

// logAudit writes an audit entry. Failures are logged, never propagated: the
// audited operation has already committed its intent.
func (s *Service) logAudit(ctx context.Context, entry *AuditEntry) {
	_, err := s.db.NewInsert().Model(entry.ToModel()).Exec(ctx)
	if err = dbkit.WithErr1(err, "LogAudit").Err(); err != nil {
		s.log.Warn().Err(err).
			Str("action", string(entry.Action)).
			Str("entity", entry.Entity).
			Str("entity_id", entry.EntityID).
			Msg("audit log write failed")
	}
}

// ============================================================================
// RETRY SUPPORT
// ============================================================================

// TransactionWithRetry runs fn in a transaction, retrying on transient
// database errors (serialization failures, deadlocks, connection drops) with
// exponential backoff. Domain errors (ErrInvalidTransition,
// ErrDuplicateMembership, ...) are never retried: they report state, not
// infrastructure.
func (s *Service) TransactionWithRetry(ctx context.Context, maxAttempts int, fn func(txs *Service) error) error {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := s.Transaction(ctx, fn)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isTransientTransactionError(err) {
			return err
		}
		if attempt == maxAttempts-1 {
			break
		}

		// Exponential backoff with jitter
		backoff := time.Duration(1<<uint(attempt)) * 100 * time.Millisecond
		jitter := time.Duration(float64(backoff) * 0.1 * (0.5 + rand.Float64()))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff + jitter):
		}
	}

	return lastErr
}

// isTransientTransactionError checks if an error is transient and can be
// retried.
func isTransientTransactionError(err error) bool {
	if err == nil {
		return false
	}

	// Domain errors are deterministic.
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return false
	}

	// Context errors end the attempt loop at the caller.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	errStr := strings.ToLower(err.Error())
	transientErrors := []string{
		"serialization",
		"deadlock",
		"lock wait timeout",
		"connection refused",
		"connection reset",
		"broken pipe",
		"temporary failure",
		"try again",
		"resource temporarily unavailable",
	}
	for _, transient := range transientErrors {
		if strings.Contains(errStr, transient) {
			return true
		}
	}
	return false
}
