package eventkit

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// RecordType describes how a membership record came to exist.
type RecordType int

const (
	// RecordTypeInvite is a grant that requires acceptance by the subject.
	RecordTypeInvite RecordType = iota + 1
	// RecordTypeAccept is the successor record created when an invite is accepted.
	RecordTypeAccept
	// RecordTypeDirectAdd is a grant made directly by an actor with authority.
	RecordTypeDirectAdd
	// RecordTypeAmend is the successor record created by a replace.
	RecordTypeAmend
)

// String returns the record type label.
func (rt RecordType) String() string {
	switch rt {
	case RecordTypeInvite:
		return "invite"
	case RecordTypeAccept:
		return "accept"
	case RecordTypeDirectAdd:
		return "direct_add"
	case RecordTypeAmend:
		return "amend"
	}
	return "unknown"
}

// MembershipBase holds the immutable audit columns shared by every membership
// record: who granted it, when, and — exactly once — who revoked it and when.
//
// Records are append-only. Data columns on an active record are never mutated
// in place: any change goes through ReplaceMembership, which revokes the
// current record and inserts an amended successor, preserving a full audit
// trail. A revoked record never un-revokes.
type MembershipBase struct {
	ID          string     `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	RecordType  RecordType `bun:"record_type,notnull"`
	GrantedAt   time.Time  `bun:"granted_at,notnull,default:current_timestamp"`
	GrantedByID string     `bun:"granted_by_id"`
	RevokedAt   *time.Time `bun:"revoked_at"`
	RevokedByID string     `bun:"revoked_by_id"`
}

// IsActive reports whether the record has not been revoked.
func (b *MembershipBase) IsActive() bool {
	return b.RevokedAt == nil
}

// IsInvite reports whether the record is a pending invite: granted as an
// invite and not yet replaced by an accept record or revoked.
func (b *MembershipBase) IsInvite() bool {
	return b.RecordType == RecordTypeInvite && b.IsActive()
}

// MembershipRecord is the contract a concrete membership type satisfies to
// participate in the generic grant/replace/revoke operations.
type MembershipRecord interface {
	// Base returns the shared audit columns.
	Base() *MembershipBase
	// SubjectID identifies who holds the membership (user or account ID).
	SubjectID() string
	// ParentID identifies the entity the membership applies to.
	ParentID() string
	// SubjectColumn and ParentColumn name the FK columns for query helpers.
	SubjectColumn() string
	ParentColumn() string
	// OfferedRoles returns the role names implied by the record's capability
	// flags. Only meaningful on active records.
	OfferedRoles() RoleSet
}

// MembershipPtr constrains a pointer to a concrete membership model.
type MembershipPtr[M any] interface {
	*M
	MembershipRecord
}

// Revisable is a membership that can produce a successor copy of itself:
// subject, parent and all data columns are copied; the audit base of the copy
// is zeroed and filled in by ReplaceMembership.
type Revisable[M any, PM MembershipPtr[M]] interface {
	MembershipPtr[M]
	Revise() PM
}

// IsSelfGranted reports whether the subject created their own record
// (e.g. a creator's automatic crew membership).
func IsSelfGranted(m MembershipRecord) bool {
	return m.Base().GrantedByID != "" && m.Base().GrantedByID == m.SubjectID()
}

// IsSelfRevoked reports whether the subject revoked their own record.
func IsSelfRevoked(m MembershipRecord) bool {
	return m.Base().RevokedByID != "" && m.Base().RevokedByID == m.SubjectID()
}

// ActiveMembership returns the single active (unrevoked) membership record for
// a subject and parent, or nil when none exists. The at-most-one-active
// invariant is backed by a partial unique index on every membership table.
func ActiveMembership[M any, PM MembershipPtr[M]](ctx context.Context, db dbkit.IDB, subjectID, parentID string) (PM, error) {
	m := PM(new(M))
	err := dbkit.WithErr1(db.NewSelect().Model(m).
		Where("? = ?", bun.Ident(m.SubjectColumn()), subjectID).
		Where("? = ?", bun.Ident(m.ParentColumn()), parentID).
		Where("revoked_at IS NULL").
		Limit(1).
		Scan(ctx), "ActiveMembership").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// GrantMembership inserts a new membership record for m's subject and parent.
// It fails with ErrDuplicateMembership when an active record already exists;
// the caller should replace that record instead. The record type defaults to
// direct-add when unset.
func GrantMembership[M any, PM MembershipPtr[M]](ctx context.Context, db dbkit.IDB, m PM, actorID string) (PM, error) {
	existing, err := ActiveMembership[M, PM](ctx, db, m.SubjectID(), m.ParentID())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewError(ErrDuplicateMembership, "an active record exists for this subject and parent").
			WithSubject(m.SubjectID()).
			WithEntity(m.ParentColumn(), m.ParentID()).
			WithActor(actorID)
	}

	base := m.Base()
	if base.RecordType == 0 {
		base.RecordType = RecordTypeDirectAdd
	}
	if base.GrantedAt.IsZero() {
		base.GrantedAt = time.Now().UTC()
	}
	base.GrantedByID = actorID

	result, err := db.NewInsert().Model(m).Exec(ctx)
	err = dbkit.WithErr(result, err, "GrantMembership").Err()
	if err != nil {
		if dbkit.IsDuplicate(err) {
			// Lost the race against a concurrent grant; the partial unique
			// index is the authority.
			return nil, NewError(ErrDuplicateMembership, "an active record exists for this subject and parent").
				WithSubject(m.SubjectID()).
				WithEntity(m.ParentColumn(), m.ParentID()).
				WithActor(actorID)
		}
		return nil, err
	}
	return m, nil
}

// ReplaceMembership atomically revokes the current record and inserts an
// amended successor: all data columns are copied from current, then amend (if
// non-nil) applies overrides. The successor carries record type amend unless
// amend overrides it (invite acceptance sets accept). Fails with
// ErrMembershipRevoked when current is already revoked, including when a
// concurrent writer revoked it first. Callers run this inside a transaction.
func ReplaceMembership[M any, PM Revisable[M, PM]](ctx context.Context, db dbkit.IDB, current PM, actorID string, amend func(PM)) (PM, error) {
	base := current.Base()
	if !base.IsActive() {
		return nil, NewError(ErrMembershipRevoked, "cannot replace a revoked record").
			WithSubject(current.SubjectID()).
			WithEntity(current.ParentColumn(), current.ParentID()).
			WithActor(actorID)
	}

	now := time.Now().UTC()
	succ := current.Revise()
	*succ.Base() = MembershipBase{
		RecordType:  RecordTypeAmend,
		GrantedAt:   now,
		GrantedByID: actorID,
	}
	if amend != nil {
		amend(succ)
	}

	if err := revokeRow(ctx, db, current, actorID, now); err != nil {
		return nil, err
	}

	result, err := db.NewInsert().Model(succ).Exec(ctx)
	err = dbkit.WithErr(result, err, "ReplaceMembership").Err()
	if err != nil {
		return nil, err
	}
	return succ, nil
}

// RevokeMembership terminates the record without creating a successor. Fails
// with ErrMembershipRevoked when the record is already revoked: a second
// revocation indicates a race or a logic bug upstream and is never swallowed.
func RevokeMembership[M any, PM MembershipPtr[M]](ctx context.Context, db dbkit.IDB, current PM, actorID string) error {
	if !current.Base().IsActive() {
		return NewError(ErrMembershipRevoked, "record is already revoked").
			WithSubject(current.SubjectID()).
			WithEntity(current.ParentColumn(), current.ParentID()).
			WithActor(actorID)
	}
	return revokeRow(ctx, db, current, actorID, time.Now().UTC())
}

// revokeRow sets revoked_at/revoked_by on the stored row, guarded so that a
// concurrently revoked row surfaces as ErrMembershipRevoked rather than being
// silently re-revoked. The loaded record is updated to match.
func revokeRow(ctx context.Context, db dbkit.IDB, m MembershipRecord, actorID string, at time.Time) error {
	result, err := db.NewUpdate().Model(m).
		Set("revoked_at = ?", at).
		Set("revoked_by_id = ?", actorID).
		WherePK().
		Where("revoked_at IS NULL").
		Exec(ctx)
	err = dbkit.WithErr(result, err, "RevokeMembership").Err()
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return NewError(ErrMembershipRevoked, "record was revoked concurrently").
			WithSubject(m.SubjectID()).
			WithActor(actorID)
	}
	base := m.Base()
	base.RevokedAt = &at
	base.RevokedByID = actorID
	return nil
}
