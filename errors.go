package eventkit

import (
	"errors"
	"fmt"
)

// Sentinel errors for EventKit operations.
var (
	// ErrInvalidTransition is returned when a state transition's guard is not met.
	// The wrapped entity state is never modified when this error is returned.
	ErrInvalidTransition = errors.New("eventkit: invalid transition")

	// ErrMembershipRevoked is returned on replace or revoke of an already-revoked
	// membership record. It indicates a race or a stale reference; callers should
	// re-fetch the active record and retry at a higher level if appropriate.
	ErrMembershipRevoked = errors.New("eventkit: membership already revoked")

	// ErrDuplicateMembership is returned when granting a membership while an
	// active record for the same subject and parent exists. Callers should
	// replace the existing record instead.
	ErrDuplicateMembership = errors.New("eventkit: active membership exists")

	// ErrParentResolution is returned when an entity that structurally requires
	// a parent for role computation has none. This is a data integrity fault,
	// not a recoverable condition.
	ErrParentResolution = errors.New("eventkit: cannot resolve parent entity")

	// ErrReorderPrecondition is returned when a reorder is attempted across
	// different parents or with unassigned sequence numbers.
	ErrReorderPrecondition = errors.New("eventkit: reorder precondition failed")

	// ErrInvalidEntity is returned when an entity type is not defined in the registry.
	ErrInvalidEntity = errors.New("eventkit: invalid entity type")

	// ErrInvalidRole is returned when a role is not defined for an entity type.
	ErrInvalidRole = errors.New("eventkit: invalid role")

	// ErrInvalidPattern is returned when a field or method access pattern is
	// malformed.
	ErrInvalidPattern = errors.New("eventkit: invalid access pattern")

	// ErrMissingRecord is returned when an operation requires a persisted record
	// that could not be found.
	ErrMissingRecord = errors.New("eventkit: record not found")

	// ErrNoActorID is returned when an actor ID is required (grants, revocations,
	// transitions with audit) but none is present in the context or arguments.
	ErrNoActorID = errors.New("eventkit: no actor ID")

	// ErrUnauthorized is returned when an actor's role set does not allow an action.
	ErrUnauthorized = errors.New("eventkit: unauthorized")

	// ErrDatabaseError is returned when a database operation fails.
	ErrDatabaseError = errors.New("eventkit: database error")
)

// Error wraps a sentinel error with additional context.
type Error struct {
	Err        error  // Underlying sentinel error
	Message    string // Additional context
	Entity     string // Entity type involved ("project", "comment", ...)
	EntityID   string // Entity ID involved
	Transition string // Transition involved (if applicable)
	State      string // Entity state at the time of the error (if applicable)
	Role       string // Role involved (if applicable)
	SubjectID  string // Membership subject involved (if applicable)
	ActorID    string // Actor who triggered the error (if applicable)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a target error.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new Error with context.
func NewError(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
	}
}

// WithEntity adds entity information to the error.
func (e *Error) WithEntity(entity, entityID string) *Error {
	e.Entity = entity
	e.EntityID = entityID
	return e
}

// WithTransition adds the attempted transition and current state to the error.
func (e *Error) WithTransition(transition, state string) *Error {
	e.Transition = transition
	e.State = state
	return e
}

// WithRole adds role information to the error.
func (e *Error) WithRole(role string) *Error {
	e.Role = role
	return e
}

// WithSubject adds the membership subject to the error.
func (e *Error) WithSubject(subjectID string) *Error {
	e.SubjectID = subjectID
	return e
}

// WithActor adds actor information to the error.
func (e *Error) WithActor(actorID string) *Error {
	e.ActorID = actorID
	return e
}

// IsInvalidTransition checks if an error is a failed state transition guard.
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

// IsMembershipRevoked checks if an error is a stale-membership failure.
func IsMembershipRevoked(err error) bool {
	return errors.Is(err, ErrMembershipRevoked)
}

// IsDuplicateMembership checks if an error is a duplicate active grant.
func IsDuplicateMembership(err error) bool {
	return errors.Is(err, ErrDuplicateMembership)
}

// IsParentResolution checks if an error is a parent resolution integrity fault.
func IsParentResolution(err error) bool {
	return errors.Is(err, ErrParentResolution)
}

// IsMissingRecord checks if an error is a missing persisted record.
func IsMissingRecord(err error) bool {
	return errors.Is(err, ErrMissingRecord)
}

// IsReorderPrecondition checks if an error is a reorder precondition failure.
func IsReorderPrecondition(err error) bool {
	return errors.Is(err, ErrReorderPrecondition)
}

// IsInvalidEntity checks if an error is an unknown entity type.
func IsInvalidEntity(err error) bool {
	return errors.Is(err, ErrInvalidEntity)
}

// IsInvalidRole checks if an error is an unknown or disallowed role.
func IsInvalidRole(err error) bool {
	return errors.Is(err, ErrInvalidRole)
}

// IsUnauthorized checks if an error is an authorization error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
