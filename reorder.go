package eventkit

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// Reorderable is the contract a model satisfies to participate in sibling
// reordering: an integer sequence number scoped to a parent, with created_at
// as the tie-breaker when sequence numbers collide. Sequence numbers start at
// 1; zero means unassigned. The type precondition of the reorder engine
// (self and other must be the same concrete type) is enforced by the type
// system through the shared type parameter.
type Reorderable interface {
	ReorderID() string
	ReorderParentID() string
	ReorderSeq() int
	SetReorderSeq(int)
	// ReorderScope narrows a query to the siblings this record competes with.
	// The default scope is "same parent"; types with extra criteria (sponsor
	// memberships exclude revoked records) add them here.
	ReorderScope(*bun.SelectQuery) *bun.SelectQuery
}

// ReorderablePtr constrains a pointer to a concrete reorderable model.
type ReorderablePtr[M any] interface {
	*M
	Reorderable
}

// ReorderBefore moves self immediately before other among siblings sharing
// the same parent scope. See ReorderItem.
func ReorderBefore[M any, PM ReorderablePtr[M]](ctx context.Context, db dbkit.IDB, self, other PM) error {
	return ReorderItem[M, PM](ctx, db, self, other, true)
}

// ReorderAfter moves self immediately after other among siblings sharing the
// same parent scope. See ReorderItem.
func ReorderAfter[M any, PM ReorderablePtr[M]](ctx context.Context, db dbkit.IDB, self, other PM) error {
	return ReorderItem[M, PM](ctx, db, self, other, false)
}

// ReorderItem moves self immediately before or after other, renumbering only
// the records between the two endpoints (a minimal-disturbance rotation).
//
// The affected sequence range is locked with SELECT ... FOR UPDATE so that
// concurrent reorders on overlapping ranges serialize; reorders on disjoint
// ranges proceed concurrently. Each intermediate write is persisted
// immediately to guarantee deterministic write ordering and to survive a
// unique constraint on seq. Callers run this inside a transaction.
//
// Precondition violations (different parent scope, unassigned sequence
// numbers) are errors, not silent corrections. Moving a record that is
// already in the desired relative order is a no-op.
func ReorderItem[M any, PM ReorderablePtr[M]](ctx context.Context, db dbkit.IDB, self, other PM, before bool) error {
	if self.ReorderParentID() != other.ReorderParentID() {
		return NewError(ErrReorderPrecondition, "other must have the same parent").
			WithEntity("reorder", self.ReorderID())
	}
	if self.ReorderSeq() == 0 || other.ReorderSeq() == 0 {
		return NewError(ErrReorderPrecondition, "sequence numbers must be pre-assigned").
			WithEntity("reorder", self.ReorderID())
	}

	var orderExpr string
	if before {
		if self.ReorderSeq() <= other.ReorderSeq() {
			// Already before or equal. Nothing to do.
			return nil
		}
		orderExpr = "seq DESC, created_at DESC"
	} else {
		if self.ReorderSeq() >= other.ReorderSeq() {
			// Already after or equal. Nothing to do.
			return nil
		}
		orderExpr = "seq ASC, created_at ASC"
	}

	lo, hi := self.ReorderSeq(), other.ReorderSeq()
	if lo > hi {
		lo, hi = hi, lo
	}

	// Lock every sibling in the affected range. The scan direction decides
	// which record donates its sequence number to which during the rotation.
	var items []M
	q := db.NewSelect().Model(&items)
	q = self.ReorderScope(q)
	err := dbkit.WithErr1(q.
		Where("seq >= ?", lo).
		Where("seq <= ?", hi).
		OrderExpr(orderExpr).
		For("UPDATE").
		Scan(ctx), "ReorderItem").Err()
	if err != nil {
		return err
	}

	// Drop leading records that share self's sequence number but are not
	// self: ties are broken deterministically by created_at.
	start := -1
	for i := range items {
		if PM(&items[i]).ReorderID() == self.ReorderID() {
			start = i
			break
		}
	}
	if start < 0 {
		return NewError(ErrReorderPrecondition, "record not found in its own reorder scope").
			WithEntity("reorder", self.ReorderID())
	}
	items = items[start:]

	// Park self on an out-of-range number first so intermediate states never
	// collide with a unique constraint on seq.
	var parked int
	parkQ := db.NewSelect().ColumnExpr("coalesce(max(seq) + 1, 1)").Model((*M)(nil))
	parkQ = self.ReorderScope(parkQ)
	err = dbkit.WithErr1(parkQ.Scan(ctx, &parked), "ReorderItemPark").Err()
	if err != nil {
		return err
	}
	vacated := self.ReorderSeq()
	self.SetReorderSeq(parked)
	if err = updateSeq[M, PM](ctx, db, self); err != nil {
		return err
	}

	// Rotate: each record in the walk takes the number vacated by the
	// previous one, stopping once other has been reassigned.
	for i := 1; i < len(items); i++ {
		item := PM(&items[i])
		itemSeq := item.ReorderSeq()
		item.SetReorderSeq(vacated)
		vacated = itemSeq
		if err = updateSeq[M, PM](ctx, db, item); err != nil {
			return err
		}
		if item.ReorderID() == other.ReorderID() {
			// Don't bother renumbering anything past other.
			break
		}
	}

	// Self takes the number other vacated.
	self.SetReorderSeq(vacated)
	return updateSeq[M, PM](ctx, db, self)
}

func updateSeq[M any, PM ReorderablePtr[M]](ctx context.Context, db dbkit.IDB, item PM) error {
	result, err := db.NewUpdate().Model(item).
		Column("seq").
		WherePK().
		Exec(ctx)
	return dbkit.WithErr(result, err, "ReorderItemUpdateSeq").Err()
}

// NextSeq returns the next free sequence number at the end of a record's
// sibling scope, for appending newly created records.
func NextSeq[M any, PM ReorderablePtr[M]](ctx context.Context, db dbkit.IDB, scope PM) (int, error) {
	var next int
	q := db.NewSelect().ColumnExpr("coalesce(max(seq) + 1, 1)").Model((*M)(nil))
	q = scope.ReorderScope(q)
	err := dbkit.WithErr1(q.Scan(ctx, &next), "NextSeq").Err()
	if err != nil {
		return 0, err
	}
	return next, nil
}
