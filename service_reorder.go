package eventkit

import (
	"context"
)

// ============================================================================
// REORDERING
// ============================================================================
//
// The generic reorder engine lives in reorder.go; these wrappers bind it to
// the concrete ordered collections and supply the transaction the range lock
// requires.

// ReorderProposalBefore moves a proposal immediately before another proposal
// of the same project.
func (s *Service) ReorderProposalBefore(ctx context.Context, prop, other *Proposal) error {
	return s.reorder(ctx, "proposal", prop.ID, func(txs *Service) error {
		return ReorderBefore(ctx, txs.db, prop, other)
	})
}

// ReorderProposalAfter moves a proposal immediately after another proposal of
// the same project.
func (s *Service) ReorderProposalAfter(ctx context.Context, prop, other *Proposal) error {
	return s.reorder(ctx, "proposal", prop.ID, func(txs *Service) error {
		return ReorderAfter(ctx, txs.db, prop, other)
	})
}

// ReorderSponsorBefore moves a sponsor immediately before another sponsor of
// the same project. Revoked sponsor records do not compete for slots.
func (s *Service) ReorderSponsorBefore(ctx context.Context, m, other *ProjectSponsorMembership) error {
	return s.reorder(ctx, "project", m.ProjectID, func(txs *Service) error {
		return ReorderBefore(ctx, txs.db, m, other)
	})
}

// ReorderSponsorAfter moves a sponsor immediately after another sponsor of the
// same project.
func (s *Service) ReorderSponsorAfter(ctx context.Context, m, other *ProjectSponsorMembership) error {
	return s.reorder(ctx, "project", m.ProjectID, func(txs *Service) error {
		return ReorderAfter(ctx, txs.db, m, other)
	})
}

func (s *Service) reorder(ctx context.Context, entity, entityID string, fn func(txs *Service) error) error {
	if _, err := RequireActorID(ctx); err != nil {
		return err
	}
	if err := s.Transaction(ctx, fn); err != nil {
		return err
	}

	s.log.Debug().
		Str("entity", entity).
		Str("entity_id", entityID).
		Msg("reordered")
	return nil
}
