package eventkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
	"github.com/rs/zerolog"
)

// Service provides membership management, role resolution and entity
// lifecycle operations. It integrates with the database through dbkit with
// enhanced error handling.
//
// Error Handling:
// All database operations use dbkit's chainable error wrapping to provide
// detailed context about failed operations. Domain failures carry eventkit
// sentinels (ErrDuplicateMembership, ErrInvalidTransition, ...) and database
// failures preserve dbkit's classification.
//
// Example error handling:
//
//	_, err := service.GrantCrewMembership(ctx, membership)
//	if err != nil {
//	    if eventkit.IsDuplicateMembership(err) {
//	        // An active record exists; amend it instead
//	    }
//	    if dbkit.IsNotFound(err) {
//	        // Handle not found scenarios
//	    }
//	}
type Service struct {
	db        dbkit.IDB
	registry  *Registry
	log       zerolog.Logger
	txMonitor *transactionMonitor
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger. The default is a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// WithRegistry replaces the default access registry.
func WithRegistry(registry *Registry) Option {
	return func(s *Service) {
		s.registry = registry
	}
}

// NewService creates a new EventKit service.
//
// Example:
//
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	service := eventkit.NewService(db,
//	    eventkit.WithLogger(log))
func NewService(db dbkit.IDB, opts ...Option) *Service {
	s := &Service{
		db:        db,
		registry:  DefaultRegistry(),
		log:       zerolog.Nop(),
		txMonitor: newTransactionMonitor(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the access registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// withDB returns a copy of the service bound to a different database handle,
// used to run operations inside a transaction. The registry, logger and
// transaction monitor are shared.
func (s *Service) withDB(db dbkit.IDB) *Service {
	clone := *s
	clone.db = db
	return &clone
}

// ============================================================================
// AUDIT LOG
// ============================================================================

// GetAuditLog retrieves membership audit log entries with optional filters.
func (s *Service) GetAuditLog(ctx context.Context, filter AuditLogFilter) ([]MembershipAuditLog, error) {
	var logs []MembershipAuditLog
	q := s.db.NewSelect().Model(&logs)
	if filter.ActorID != "" {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if filter.SubjectID != "" {
		q = q.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.Entity != "" {
		q = q.Where("entity = ?", filter.Entity)
	}
	if filter.EntityID != "" {
		q = q.Where("entity_id = ?", filter.EntityID)
	}
	if filter.RecordID != "" {
		q = q.Where("record_id = ?", filter.RecordID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if !filter.Since.IsZero() {
		q = q.Where("timestamp >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		q = q.Where("timestamp <= ?", filter.Until)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 100 // Default limit
	}
	q = q.Limit(limit)

	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	q = q.Order("timestamp DESC")
	err := dbkit.WithErr1(q.Scan(ctx), "GetAuditLog").Err()
	if err != nil {
		return nil, err
	}

	return logs, nil
}
