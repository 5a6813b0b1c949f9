package eventkit

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// DATA RETRIEVAL
// ============================================================================

// ActiveCrewMemberships retrieves all active crew records of a project.
func (s *Service) ActiveCrewMemberships(ctx context.Context, projectID string) ([]ProjectCrewMembership, error) {
	return s.crewMemberships(ctx, projectID, nil)
}

// ActiveEditorMemberships retrieves the active crew records holding the editor
// flag on a project.
func (s *Service) ActiveEditorMemberships(ctx context.Context, projectID string) ([]ProjectCrewMembership, error) {
	return s.crewMemberships(ctx, projectID, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("is_editor IS TRUE")
	})
}

// ActivePromoterMemberships retrieves the active crew records holding the
// promoter flag on a project.
func (s *Service) ActivePromoterMemberships(ctx context.Context, projectID string) ([]ProjectCrewMembership, error) {
	return s.crewMemberships(ctx, projectID, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("is_promoter IS TRUE")
	})
}

// ActiveUsherMemberships retrieves the active crew records holding the usher
// flag on a project.
func (s *Service) ActiveUsherMemberships(ctx context.Context, projectID string) ([]ProjectCrewMembership, error) {
	return s.crewMemberships(ctx, projectID, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("is_usher IS TRUE")
	})
}

func (s *Service) crewMemberships(ctx context.Context, projectID string, filter QueryFilter) ([]ProjectCrewMembership, error) {
	var memberships []ProjectCrewMembership
	q := s.db.NewSelect().Model(&memberships).
		Where("project_id = ?", projectID).
		Where("revoked_at IS NULL").
		Where("record_type <> ?", RecordTypeInvite).
		Order("granted_at ASC")
	if filter != nil {
		q = filter(q)
	}
	err := dbkit.WithErr1(q.Scan(ctx), "CrewMemberships").Err()
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

// PendingCrewInvites retrieves the unanswered crew invites of a project.
func (s *Service) PendingCrewInvites(ctx context.Context, projectID string) ([]ProjectCrewMembership, error) {
	var invites []ProjectCrewMembership
	err := dbkit.WithErr1(s.db.NewSelect().Model(&invites).
		Where("project_id = ?", projectID).
		Where("record_type = ?", RecordTypeInvite).
		Where("revoked_at IS NULL").
		Order("granted_at ASC").
		Scan(ctx), "PendingCrewInvites").Err()
	if err != nil {
		return nil, err
	}
	return invites, nil
}

// CrewMembershipsForUser retrieves a user's active crew records across all
// projects, newest grant first.
func (s *Service) CrewMembershipsForUser(ctx context.Context, userID string) ([]ProjectCrewMembership, error) {
	var memberships []ProjectCrewMembership
	err := dbkit.WithErr1(s.db.NewSelect().Model(&memberships).
		Where("user_id = ?", userID).
		Where("revoked_at IS NULL").
		Where("record_type <> ?", RecordTypeInvite).
		Order("granted_at DESC").
		Scan(ctx), "CrewMembershipsForUser").Err()
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

// ActiveSponsorMemberships retrieves a project's active sponsors in display
// order.
func (s *Service) ActiveSponsorMemberships(ctx context.Context, projectID string) ([]ProjectSponsorMembership, error) {
	var memberships []ProjectSponsorMembership
	err := dbkit.WithErr1(s.db.NewSelect().Model(&memberships).
		Where("project_id = ?", projectID).
		Where("revoked_at IS NULL").
		Order("seq ASC").
		Scan(ctx), "ActiveSponsorMemberships").Err()
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

// CountCrewMembers returns the number of active (accepted) crew members on a
// project.
func (s *Service) CountCrewMembers(ctx context.Context, projectID string) (int, error) {
	return dbkit.Count[ProjectCrewMembership](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("project_id = ?", projectID).
			Where("revoked_at IS NULL").
			Where("record_type <> ?", RecordTypeInvite)
	})
}

// CountSubscribers returns the number of active subscriptions on a commentset,
// muted included.
func (s *Service) CountSubscribers(ctx context.Context, commentsetID string) (int, error) {
	return dbkit.Count[CommentsetMembership](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("commentset_id = ?", commentsetID).
			Where("revoked_at IS NULL")
	})
}

// ============================================================================
// DERIVED-STATE LISTINGS
// ============================================================================

// ListProjects retrieves an account's projects in a named state, including
// derived states ("live", "upcoming", "past"). Deleted projects never appear.
// An unknown state name returns an empty list.
func (s *Service) ListProjects(ctx context.Context, profileID, state string) ([]Project, error) {
	filter, ok := ProjectStates.Filter(state)
	if !ok {
		return []Project{}, nil
	}

	var projects []Project
	q := s.db.NewSelect().Model(&projects).
		Where("p.profile_id = ?", profileID).
		Where("p.state <> ?", ProjectStateDeleted).
		Order("p.created_at DESC")
	if filter != nil {
		q = filter(q)
	}
	err := dbkit.WithErr1(q.Scan(ctx), "ListProjects").Err()
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// ListOpenCFPProjects retrieves published projects whose call for proposals is
// currently open, across all accounts.
func (s *Service) ListOpenCFPProjects(ctx context.Context) ([]Project, error) {
	filter, _ := ProjectCFPStates.Filter("open")

	var projects []Project
	q := s.db.NewSelect().Model(&projects).
		Where("p.state = ?", ProjectStatePublished).
		Order("p.cfp_end_at ASC NULLS LAST")
	if filter != nil {
		q = filter(q)
	}
	err := dbkit.WithErr1(q.Scan(ctx), "ListOpenCFPProjects").Err()
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// ListProposals retrieves a project's proposals in sibling order.
func (s *Service) ListProposals(ctx context.Context, projectID string) ([]Proposal, error) {
	var proposals []Proposal
	err := dbkit.WithErr1(s.db.NewSelect().Model(&proposals).
		Where("project_id = ?", projectID).
		Order("seq ASC").
		Scan(ctx), "ListProposals").Err()
	if err != nil {
		return nil, err
	}
	return proposals, nil
}

// ListComments retrieves a commentset's comments oldest first. Removed
// comments are included; render them through DisplayMessage.
func (s *Service) ListComments(ctx context.Context, commentsetID string) ([]Comment, error) {
	var comments []Comment
	err := dbkit.WithErr1(s.db.NewSelect().Model(&comments).
		Where("commentset_id = ?", commentsetID).
		Order("created_at ASC").
		Scan(ctx), "ListComments").Err()
	if err != nil {
		return nil, err
	}
	return comments, nil
}
