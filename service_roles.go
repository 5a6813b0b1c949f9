package eventkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// ROLE RESOLUTION
// ============================================================================
//
// Roles are resolved per request by walking: roles offered by the actor's
// active membership record on the entity, roles remapped from a related
// entity's role set (the grants-via tables in roles.go), universal grants
// derived from lifecycle state, and anchors. Role sets are additive unions;
// nothing is persisted or cached across requests.

// RolesForProfile computes the roles a user holds on an account profile.
//
// The profile's owning user holds owner and admin. Active public profiles
// grant reader to everyone, anonymous included. Organization-owned profiles
// derive no per-member roles here: organization membership management is a
// separate concern.
func (s *Service) RolesForProfile(ctx context.Context, profile *Profile, userID string, anchors []Anchor) (RoleSet, error) {
	roles := NewRoleSet()

	if userID != "" && profile.UserID != nil && *profile.UserID == userID {
		roles.Add("owner", "admin")
	}
	if ProfileStates.Is(profile, "active_and_public") {
		roles.Add("reader")
	}

	return roles, nil
}

// RolesForProject computes the roles a user holds on a project.
//
// Sources, all unioned: reader for everyone on published projects, the
// account's roles remapped through ProfileProjectRoleMap, the user's active
// crew record's offered roles remapped through ProjectCrewRoleMap, and
// invitee for the subject of a pending invite or the bearer of its anchor
// token.
func (s *Service) RolesForProject(ctx context.Context, project *Project, userID string, anchors []Anchor) (RoleSet, error) {
	roles := NewRoleSet()

	if ProjectStates.Is(project, "published") {
		roles.Add("reader")
	}

	// A project without its account is structurally broken.
	profile, err := s.GetProfile(ctx, project.ProfileID)
	if err != nil {
		if IsMissingRecord(err) {
			return nil, NewError(ErrParentResolution, "project has no account profile").
				WithEntity("project", project.ID)
		}
		return nil, err
	}
	profileRoles, err := s.RolesForProfile(ctx, profile, userID, anchors)
	if err != nil {
		return nil, err
	}
	roles.Union(profileRoles.Remap(ProfileProjectRoleMap))

	if userID != "" {
		m, err := s.CrewMembershipFor(ctx, userID, project.ID)
		if err != nil {
			return nil, err
		}
		if m != nil {
			if m.IsInvite() {
				// Pending invites grant nothing but visibility of the invite.
				roles.Add("invitee")
			} else {
				roles.Union(m.OfferedRoles().Remap(ProjectCrewRoleMap))
			}
		}
	}

	for _, anchor := range anchors {
		invite, err := s.crewInviteByID(ctx, string(anchor), project.ID)
		if err != nil {
			return nil, err
		}
		if invite != nil {
			roles.Add("invitee")
		}
	}

	return roles, nil
}

// RolesForProposal computes the roles a user holds on a proposal: the parent
// project's roles remapped through ProjectChildRoleMap, plus submitter for
// the proposing user.
func (s *Service) RolesForProposal(ctx context.Context, proposal *Proposal, userID string, anchors []Anchor) (RoleSet, error) {
	project, err := s.GetProject(ctx, proposal.ProjectID)
	if err != nil {
		if IsMissingRecord(err) {
			return nil, NewError(ErrParentResolution, "proposal has no project").
				WithEntity("proposal", proposal.ID)
		}
		return nil, err
	}

	projectRoles, err := s.RolesForProject(ctx, project, userID, anchors)
	if err != nil {
		return nil, err
	}
	roles := projectRoles.Remap(ProjectChildRoleMap)

	if userID != "" && proposal.UserID == userID {
		roles.Add("submitter")
	}

	return roles, nil
}

// RolesForCommentset computes the roles a user holds on a commentset: the
// owning document's roles remapped through ProjectChildRoleMap, plus the
// subscriber role from an active subscription. A commentset with no owning
// document fails with ErrParentResolution.
func (s *Service) RolesForCommentset(ctx context.Context, cs *Commentset, userID string, anchors []Anchor) (RoleSet, error) {
	roles := NewRoleSet()

	project, proposal, err := s.commentsetParent(ctx, cs.ID)
	if err != nil {
		return nil, err
	}
	switch {
	case project != nil:
		projectRoles, err := s.RolesForProject(ctx, project, userID, anchors)
		if err != nil {
			return nil, err
		}
		roles.Union(projectRoles.Remap(ProjectChildRoleMap))
	case proposal != nil:
		proposalRoles, err := s.RolesForProposal(ctx, proposal, userID, anchors)
		if err != nil {
			return nil, err
		}
		roles.Union(proposalRoles)
	}

	if userID != "" {
		m, err := s.SubscriberMembershipFor(ctx, userID, cs.ID)
		if err != nil {
			return nil, err
		}
		if m != nil {
			roles.Union(m.OfferedRoles().Remap(CommentsetSubscriberRoleMap))
		}
	}

	return roles, nil
}

// RolesForComment computes the roles a user holds on a comment: the
// commentset's roles pass through unchanged, the author role for the
// comment's (non-anonymized) author, and reader for everyone while the
// comment is publicly visible.
func (s *Service) RolesForComment(ctx context.Context, comment *Comment, userID string, anchors []Anchor) (RoleSet, error) {
	cs, err := s.GetCommentset(ctx, comment.CommentsetID)
	if err != nil {
		if IsMissingRecord(err) {
			return nil, NewError(ErrParentResolution, "comment has no commentset").
				WithEntity("comment", comment.ID)
		}
		return nil, err
	}

	roles, err := s.RolesForCommentset(ctx, cs, userID, anchors)
	if err != nil {
		return nil, err
	}

	if userID != "" && comment.AuthorID() == userID {
		roles.Add("author")
	}
	if CommentStates.Is(comment, "public") {
		roles.Add("reader")
	}

	return roles, nil
}

// CheckerFor loads an entity, resolves the user's roles on it and returns a
// Checker bound to the registry's access tables.
//
// Example:
//
//	checker, err := service.CheckerFor(ctx, "project", projectID, userID, eventkit.GetAnchors(ctx))
//	if err != nil {
//	    return err
//	}
//	if !checker.CanCall("publish") {
//	    return errPermissionDenied
//	}
func (s *Service) CheckerFor(ctx context.Context, entity, entityID, userID string, anchors []Anchor) (*Checker, error) {
	var roles RoleSet
	var err error

	switch entity {
	case "project":
		var project *Project
		if project, err = s.GetProject(ctx, entityID); err == nil {
			roles, err = s.RolesForProject(ctx, project, userID, anchors)
		}
	case "profile":
		var profile *Profile
		if profile, err = s.GetProfile(ctx, entityID); err == nil {
			roles, err = s.RolesForProfile(ctx, profile, userID, anchors)
		}
	case "proposal":
		var proposal *Proposal
		if proposal, err = s.GetProposal(ctx, entityID); err == nil {
			roles, err = s.RolesForProposal(ctx, proposal, userID, anchors)
		}
	case "commentset":
		var cs *Commentset
		if cs, err = s.GetCommentset(ctx, entityID); err == nil {
			roles, err = s.RolesForCommentset(ctx, cs, userID, anchors)
		}
	case "comment":
		var comment *Comment
		if comment, err = s.GetComment(ctx, entityID); err == nil {
			roles, err = s.RolesForComment(ctx, comment, userID, anchors)
		}
	default:
		return nil, NewError(ErrInvalidEntity, "no role resolution for entity type "+entity).
			WithEntity(entity, entityID)
	}
	if err != nil {
		return nil, err
	}

	return NewChecker(userID, entity, entityID, roles, s.registry), nil
}

// crewInviteByID looks up a pending crew invite by record ID, scoped to a
// project. Returns nil when no active invite matches: an unknown or stale
// anchor is simply ignored.
func (s *Service) crewInviteByID(ctx context.Context, recordID, projectID string) (*ProjectCrewMembership, error) {
	m := new(ProjectCrewMembership)
	err := dbkit.WithErr1(s.db.NewSelect().Model(m).
		Where("id = ?", recordID).
		Where("project_id = ?", projectID).
		Where("record_type = ?", RecordTypeInvite).
		Where("revoked_at IS NULL").
		Limit(1).
		Scan(ctx), "CrewInviteByID").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}
