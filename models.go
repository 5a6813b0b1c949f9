package eventkit

import (
	"time"

	"github.com/uptrace/bun"
)

// MembershipAuditLog records membership and lifecycle activity for compliance
// and debugging. Membership records are already append-only; the audit log
// adds the request context (who, from where) and the role sets in effect
// around the change.
type MembershipAuditLog struct {
	bun.BaseModel `bun:"table:membership_audit_log,alias:mal"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Timestamp time.Time `bun:"timestamp,notnull,default:current_timestamp"`

	// Who performed the action
	ActorID string `bun:"actor_id,notnull"`

	// What action was performed
	Action string `bun:"action,notnull"` // "granted", "amended", "revoked", "accepted", "transitioned"

	// Target of the action
	Entity    string `bun:"entity,notnull"` // "project", "commentset", ...
	EntityID  string `bun:"entity_id,notnull"`
	SubjectID string `bun:"subject_id"` // membership subject; empty for lifecycle actions
	RecordID  string `bun:"record_id"`  // membership record or entity row involved

	// For lifecycle actions: the transition name applied
	Transition string `bun:"transition"`

	// Context: what roles did the subject hold around the change?
	PreviousRoles []string `bun:"previous_roles,type:text[]"`
	NewRoles      []string `bun:"new_roles,type:text[]"`

	// Request metadata for forensics
	IPAddress string `bun:"ip_address"`
	UserAgent string `bun:"user_agent"`
	RequestID string `bun:"request_id"`

	// Additional context (JSON)
	Metadata map[string]any `bun:"metadata,type:jsonb"`
}

// AuditAction represents the type of action in the audit log.
type AuditAction string

const (
	AuditActionGranted      AuditAction = "granted"
	AuditActionAmended      AuditAction = "amended"
	AuditActionRevoked      AuditAction = "revoked"
	AuditActionAccepted     AuditAction = "accepted"
	AuditActionTransitioned AuditAction = "transitioned"
)

// AuditEntry is used to create new audit log entries.
type AuditEntry struct {
	ActorID       string
	Action        AuditAction
	Entity        string
	EntityID      string
	SubjectID     string
	RecordID      string
	Transition    string
	PreviousRoles []string
	NewRoles      []string
	IPAddress     string
	UserAgent     string
	RequestID     string
	Metadata      map[string]any
}

// ToModel converts an AuditEntry to a MembershipAuditLog model.
func (e *AuditEntry) ToModel() *MembershipAuditLog {
	return &MembershipAuditLog{
		ActorID:       e.ActorID,
		Action:        string(e.Action),
		Entity:        e.Entity,
		EntityID:      e.EntityID,
		SubjectID:     e.SubjectID,
		RecordID:      e.RecordID,
		Transition:    e.Transition,
		PreviousRoles: e.PreviousRoles,
		NewRoles:      e.NewRoles,
		IPAddress:     e.IPAddress,
		UserAgent:     e.UserAgent,
		RequestID:     e.RequestID,
		Metadata:      e.Metadata,
		Timestamp:     time.Now(),
	}
}
