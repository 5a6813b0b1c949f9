package eventkit

import (
	"context"
	"time"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// COMMENTSET SUBSCRIPTIONS
// ============================================================================

// AddSubscriber subscribes a user to a commentset. Subscribing an already
// subscribed user is a no-op; a muted subscription is unmuted by replacement.
// Returns the active subscription record.
func (s *Service) AddSubscriber(ctx context.Context, commentsetID, userID string) (*CommentsetMembership, error) {
	actorID, err := RequireActorID(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := ActiveMembership[CommentsetMembership](ctx, s.db, userID, commentsetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if !existing.IsMuted {
			return existing, nil
		}
		var succ *CommentsetMembership
		err = s.Transaction(ctx, func(txs *Service) error {
			var err error
			succ, err = ReplaceMembership(ctx, txs.db, existing, actorID, func(m *CommentsetMembership) {
				m.IsMuted = false
			})
			return err
		})
		if err != nil {
			return nil, err
		}
		s.log.Debug().
			Str("commentset_id", commentsetID).
			Str("user_id", userID).
			Msg("subscriber unmuted on re-add")
		return succ, nil
	}

	m := &CommentsetMembership{
		UserID:       userID,
		CommentsetID: commentsetID,
		LastSeenAt:   time.Now().UTC(),
	}
	granted, err := GrantMembership(ctx, s.db, m, actorID)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("commentset_id", commentsetID).
		Str("user_id", userID).
		Str("record_id", granted.ID).
		Msg("subscriber added")

	return granted, nil
}

// MuteSubscriber stops notifications for a user without removing the
// subscription. Returns false (and does nothing) when the user has no active
// subscription; muting is a preference toggle, not an integrity operation.
func (s *Service) MuteSubscriber(ctx context.Context, commentsetID, userID string) (bool, error) {
	return s.setSubscriberMuted(ctx, commentsetID, userID, true)
}

// UnmuteSubscriber re-enables notifications for a subscribed user. Returns
// false when the user has no active subscription.
func (s *Service) UnmuteSubscriber(ctx context.Context, commentsetID, userID string) (bool, error) {
	return s.setSubscriberMuted(ctx, commentsetID, userID, false)
}

func (s *Service) setSubscriberMuted(ctx context.Context, commentsetID, userID string, muted bool) (bool, error) {
	actorID, err := RequireActorID(ctx)
	if err != nil {
		return false, err
	}

	existing, err := ActiveMembership[CommentsetMembership](ctx, s.db, userID, commentsetID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	if existing.IsMuted == muted {
		return true, nil
	}

	err = s.Transaction(ctx, func(txs *Service) error {
		_, err := ReplaceMembership(ctx, txs.db, existing, actorID, func(m *CommentsetMembership) {
			m.IsMuted = muted
		})
		return err
	})
	if err != nil {
		return false, err
	}

	s.log.Debug().
		Str("commentset_id", commentsetID).
		Str("user_id", userID).
		Bool("muted", muted).
		Msg("subscriber mute state changed")

	return true, nil
}

// RemoveSubscriber ends a user's subscription. Returns false when the user
// has no active subscription.
func (s *Service) RemoveSubscriber(ctx context.Context, commentsetID, userID string) (bool, error) {
	actorID, err := RequireActorID(ctx)
	if err != nil {
		return false, err
	}

	existing, err := ActiveMembership[CommentsetMembership](ctx, s.db, userID, commentsetID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	if err := RevokeMembership(ctx, s.db, existing, actorID); err != nil {
		return false, err
	}

	s.log.Debug().
		Str("commentset_id", commentsetID).
		Str("user_id", userID).
		Str("record_id", existing.ID).
		Msg("subscriber removed")

	return true, nil
}

// UpdateLastSeen records that a subscribed user has viewed the thread, by
// replacing the record with a fresh last-seen timestamp. Returns false when
// the user has no active subscription.
func (s *Service) UpdateLastSeen(ctx context.Context, commentsetID, userID string) (bool, error) {
	actorID, err := RequireActorID(ctx)
	if err != nil {
		return false, err
	}

	existing, err := ActiveMembership[CommentsetMembership](ctx, s.db, userID, commentsetID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	err = s.Transaction(ctx, func(txs *Service) error {
		_, err := ReplaceMembership(ctx, txs.db, existing, actorID, func(m *CommentsetMembership) {
			m.LastSeenAt = time.Now().UTC()
		})
		return err
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// ActiveSubscriberMemberships returns all active subscriptions of a
// commentset, muted included.
func (s *Service) ActiveSubscriberMemberships(ctx context.Context, commentsetID string) ([]CommentsetMembership, error) {
	var memberships []CommentsetMembership
	err := dbkit.WithErr1(s.db.NewSelect().Model(&memberships).
		Where("commentset_id = ?", commentsetID).
		Where("revoked_at IS NULL").
		Order("granted_at ASC").
		Scan(ctx), "ActiveSubscriberMemberships").Err()
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

// UnmutedSubscriberMemberships returns the active, unmuted subscriptions of a
// commentset: the set notification dispatch fans out to.
func (s *Service) UnmutedSubscriberMemberships(ctx context.Context, commentsetID string) ([]CommentsetMembership, error) {
	var memberships []CommentsetMembership
	err := dbkit.WithErr1(s.db.NewSelect().Model(&memberships).
		Where("commentset_id = ?", commentsetID).
		Where("revoked_at IS NULL").
		Where("is_muted IS FALSE").
		Order("granted_at ASC").
		Scan(ctx), "UnmutedSubscriberMemberships").Err()
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

// SubscriberMembershipFor returns the active subscription record for a user
// on a commentset, or nil when none exists.
func (s *Service) SubscriberMembershipFor(ctx context.Context, userID, commentsetID string) (*CommentsetMembership, error) {
	return ActiveMembership[CommentsetMembership](ctx, s.db, userID, commentsetID)
}
