package eventkit

import (
	"context"
)

// ============================================================================
// CREW MEMBERSHIPS
// ============================================================================

// GrantCrewMembership adds a user to a project's crew directly (no invite
// step). At least one role flag must be set. Fails with
// ErrDuplicateMembership when the user already holds an active crew record on
// the project; amend that record instead.
func (s *Service) GrantCrewMembership(ctx context.Context, m *ProjectCrewMembership) (*ProjectCrewMembership, error) {
	return s.grantCrew(ctx, m, RecordTypeDirectAdd)
}

// InviteCrewMember creates a pending crew invite. The invite offers no roles
// until accepted; its record ID doubles as the anchor token for the claim
// link sent to the invitee.
func (s *Service) InviteCrewMember(ctx context.Context, m *ProjectCrewMembership) (*ProjectCrewMembership, error) {
	return s.grantCrew(ctx, m, RecordTypeInvite)
}

func (s *Service) grantCrew(ctx context.Context, m *ProjectCrewMembership, rt RecordType) (*ProjectCrewMembership, error) {
	actorID, err := RequireActorID(ctx)
	if err != nil {
		return nil, err
	}
	if !m.HasAnyRoleFlag() {
		return nil, NewError(ErrInvalidRole, "crew membership requires at least one role flag").
			WithEntity("project", m.ProjectID).
			WithSubject(m.UserID)
	}

	m.RecordType = rt
	granted, err := GrantMembership(ctx, s.db, m, actorID)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("project_id", granted.ProjectID).
		Str("user_id", granted.UserID).
		Str("record_id", granted.ID).
		Str("record_type", rt.String()).
		Strs("roles", granted.OfferedRoles().Names()).
		Msg("crew membership granted")

	entry := s.auditEntry(ctx, AuditActionGranted, "project", granted.ProjectID)
	entry.SubjectID = granted.UserID
	entry.RecordID = granted.ID
	if rt != RecordTypeInvite {
		entry.NewRoles = granted.OfferedRoles().Names()
	}
	s.logAudit(ctx, entry)

	return granted, nil
}

// AmendCrewMembership changes a crew record's role flags or label by
// replacing it: the current record is revoked and an amended successor
// inserted, preserving the audit trail. Runs in a transaction; a successor
// with no role flags rolls the whole amendment back.
func (s *Service) AmendCrewMembership(ctx context.Context, current *ProjectCrewMembership, amend func(*ProjectCrewMembership)) (*ProjectCrewMembership, error) {
	actorID, err := RequireActorID(ctx)
	if err != nil {
		return nil, err
	}

	var succ *ProjectCrewMembership
	err = s.Transaction(ctx, func(txs *Service) error {
		var err error
		succ, err = ReplaceMembership(ctx, txs.db, current, actorID, amend)
		if err != nil {
			return err
		}
		if !succ.HasAnyRoleFlag() {
			return NewError(ErrInvalidRole, "crew membership requires at least one role flag").
				WithEntity("project", succ.ProjectID).
				WithSubject(succ.UserID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("project_id", succ.ProjectID).
		Str("user_id", succ.UserID).
		Str("record_id", succ.ID).
		Str("replaces", current.ID).
		Msg("crew membership amended")

	entry := s.auditEntry(ctx, AuditActionAmended, "project", succ.ProjectID)
	entry.SubjectID = succ.UserID
	entry.RecordID = succ.ID
	entry.PreviousRoles = current.OfferedRoles().Names()
	entry.NewRoles = succ.OfferedRoles().Names()
	s.logAudit(ctx, entry)

	return succ, nil
}

// AcceptCrewInvite converts a pending invite into an accepted membership.
// Only the invited user can accept, and only while the invite is active.
func (s *Service) AcceptCrewInvite(ctx context.Context, invite *ProjectCrewMembership) (*ProjectCrewMembership, error) {
	actorID, err := RequireActorID(ctx)
	if err != nil {
		return nil, err
	}
	if actorID != invite.UserID {
		return nil, NewError(ErrUnauthorized, "only the invited user can accept an invite").
			WithEntity("project", invite.ProjectID).
			WithSubject(invite.UserID).
			WithActor(actorID)
	}
	if !invite.IsInvite() {
		return nil, NewError(ErrMembershipRevoked, "record is not a pending invite").
			WithEntity("project", invite.ProjectID).
			WithSubject(invite.UserID)
	}

	var accepted *ProjectCrewMembership
	err = s.Transaction(ctx, func(txs *Service) error {
		var err error
		accepted, err = ReplaceMembership(ctx, txs.db, invite, actorID, func(m *ProjectCrewMembership) {
			m.RecordType = RecordTypeAccept
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("project_id", accepted.ProjectID).
		Str("user_id", accepted.UserID).
		Str("record_id", accepted.ID).
		Msg("crew invite accepted")

	entry := s.auditEntry(ctx, AuditActionAccepted, "project", accepted.ProjectID)
	entry.SubjectID = accepted.UserID
	entry.RecordID = accepted.ID
	entry.NewRoles = accepted.OfferedRoles().Names()
	s.logAudit(ctx, entry)

	return accepted, nil
}

// RevokeCrewMembership removes a user from a project's crew. Fails with
// ErrMembershipRevoked when the record is already revoked.
func (s *Service) RevokeCrewMembership(ctx context.Context, current *ProjectCrewMembership) error {
	actorID, err := RequireActorID(ctx)
	if err != nil {
		return err
	}
	if err := RevokeMembership(ctx, s.db, current, actorID); err != nil {
		return err
	}

	s.log.Info().
		Str("project_id", current.ProjectID).
		Str("user_id", current.UserID).
		Str("record_id", current.ID).
		Msg("crew membership revoked")

	entry := s.auditEntry(ctx, AuditActionRevoked, "project", current.ProjectID)
	entry.SubjectID = current.UserID
	entry.RecordID = current.ID
	entry.PreviousRoles = current.OfferedRoles().Names()
	s.logAudit(ctx, entry)

	return nil
}

// CrewMembershipFor returns the active crew record for a user on a project,
// or nil when none exists.
func (s *Service) CrewMembershipFor(ctx context.Context, userID, projectID string) (*ProjectCrewMembership, error) {
	return ActiveMembership[ProjectCrewMembership](ctx, s.db, userID, projectID)
}

// ============================================================================
// SPONSOR MEMBERSHIPS
// ============================================================================

// GrantSponsorMembership adds a sponsoring profile to a project. When Seq is
// unset the sponsor is appended at the end of the active sponsor sequence.
func (s *Service) GrantSponsorMembership(ctx context.Context, m *ProjectSponsorMembership) (*ProjectSponsorMembership, error) {
	actorID, err := RequireActorID(ctx)
	if err != nil {
		return nil, err
	}

	var granted *ProjectSponsorMembership
	err = s.Transaction(ctx, func(txs *Service) error {
		if m.Seq == 0 {
			seq, err := NextSeq(ctx, txs.db, m)
			if err != nil {
				return err
			}
			m.Seq = seq
		}
		var err error
		granted, err = GrantMembership(ctx, txs.db, m, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("project_id", granted.ProjectID).
		Str("profile_id", granted.ProfileID).
		Str("record_id", granted.ID).
		Int("seq", granted.Seq).
		Msg("sponsor membership granted")

	entry := s.auditEntry(ctx, AuditActionGranted, "project", granted.ProjectID)
	entry.SubjectID = granted.ProfileID
	entry.RecordID = granted.ID
	s.logAudit(ctx, entry)

	return granted, nil
}

// AmendSponsorMembership changes a sponsor record's attributes by replacing
// it. The sequence position carries over unless the amend function changes it.
func (s *Service) AmendSponsorMembership(ctx context.Context, current *ProjectSponsorMembership, amend func(*ProjectSponsorMembership)) (*ProjectSponsorMembership, error) {
	actorID, err := RequireActorID(ctx)
	if err != nil {
		return nil, err
	}

	var succ *ProjectSponsorMembership
	err = s.Transaction(ctx, func(txs *Service) error {
		var err error
		succ, err = ReplaceMembership(ctx, txs.db, current, actorID, amend)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("project_id", succ.ProjectID).
		Str("profile_id", succ.ProfileID).
		Str("record_id", succ.ID).
		Str("replaces", current.ID).
		Msg("sponsor membership amended")

	entry := s.auditEntry(ctx, AuditActionAmended, "project", succ.ProjectID)
	entry.SubjectID = succ.ProfileID
	entry.RecordID = succ.ID
	s.logAudit(ctx, entry)

	return succ, nil
}

// RevokeSponsorMembership ends a sponsorship. The revoked record keeps its
// sequence number but stops competing for a slot: the reorder scope excludes
// revoked records.
func (s *Service) RevokeSponsorMembership(ctx context.Context, current *ProjectSponsorMembership) error {
	actorID, err := RequireActorID(ctx)
	if err != nil {
		return err
	}
	if err := RevokeMembership(ctx, s.db, current, actorID); err != nil {
		return err
	}

	s.log.Info().
		Str("project_id", current.ProjectID).
		Str("profile_id", current.ProfileID).
		Str("record_id", current.ID).
		Msg("sponsor membership revoked")

	entry := s.auditEntry(ctx, AuditActionRevoked, "project", current.ProjectID)
	entry.SubjectID = current.ProfileID
	entry.RecordID = current.ID
	s.logAudit(ctx, entry)

	return nil
}

// SponsorMembershipFor returns the active sponsor record for a profile on a
// project, or nil when none exists.
func (s *Service) SponsorMembershipFor(ctx context.Context, profileID, projectID string) (*ProjectSponsorMembership, error) {
	return ActiveMembership[ProjectSponsorMembership](ctx, s.db, profileID, projectID)
}
