package eventkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Precondition failures and no-op detection happen before any query; these
// tests run without a database. The rotation itself is covered by the
// integration suite.

// TestReorderDifferentParents verifies cross-parent reorders are rejected.
func TestReorderDifferentParents(t *testing.T) {
	a := &Proposal{ID: "a", ProjectID: "project-1", Seq: 1}
	b := &Proposal{ID: "b", ProjectID: "project-2", Seq: 2}

	err := ReorderBefore(context.Background(), nil, a, b)
	assert.ErrorIs(t, err, ErrReorderPrecondition)

	err = ReorderAfter(context.Background(), nil, a, b)
	assert.ErrorIs(t, err, ErrReorderPrecondition)
}

// TestReorderUnassignedSeq verifies zero sequence numbers are rejected.
func TestReorderUnassignedSeq(t *testing.T) {
	unassigned := &Proposal{ID: "a", ProjectID: "project-1", Seq: 0}
	placed := &Proposal{ID: "b", ProjectID: "project-1", Seq: 2}

	err := ReorderBefore(context.Background(), nil, unassigned, placed)
	assert.ErrorIs(t, err, ErrReorderPrecondition)

	err = ReorderBefore(context.Background(), nil, placed, unassigned)
	assert.ErrorIs(t, err, ErrReorderPrecondition)
}

// TestReorderAlreadyOrdered verifies in-order moves are no-ops.
func TestReorderAlreadyOrdered(t *testing.T) {
	first := &Proposal{ID: "a", ProjectID: "project-1", Seq: 1}
	second := &Proposal{ID: "b", ProjectID: "project-1", Seq: 2}

	// first is already before second.
	assert.NoError(t, ReorderBefore(context.Background(), nil, first, second))
	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, 2, second.Seq)

	// second is already after first.
	assert.NoError(t, ReorderAfter(context.Background(), nil, second, first))
	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, 2, second.Seq)
}

// TestReorderSelfIsNoOp verifies moving a record relative to itself does nothing.
func TestReorderSelfIsNoOp(t *testing.T) {
	p := &Proposal{ID: "a", ProjectID: "project-1", Seq: 3}

	assert.NoError(t, ReorderBefore(context.Background(), nil, p, p))
	assert.NoError(t, ReorderAfter(context.Background(), nil, p, p))
	assert.Equal(t, 3, p.Seq)
}

// TestReorderSponsorPreconditions verifies the sponsor membership wiring too.
func TestReorderSponsorPreconditions(t *testing.T) {
	a := &ProjectSponsorMembership{MembershipBase: MembershipBase{ID: "a"}, ProjectID: "project-1", Seq: 2}
	b := &ProjectSponsorMembership{MembershipBase: MembershipBase{ID: "b"}, ProjectID: "project-2", Seq: 1}

	err := ReorderBefore(context.Background(), nil, a, b)
	assert.ErrorIs(t, err, ErrReorderPrecondition)

	// Same parent, already in order.
	b.ProjectID = "project-1"
	assert.NoError(t, ReorderAfter(context.Background(), nil, a, b))
}
