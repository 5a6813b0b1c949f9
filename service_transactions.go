package eventkit

import (
	"context"
	"fmt"
	"time"

	"github.com/fernandezvara/dbkit"
)

// Transaction executes a function within a database transaction with
// automatic commit/rollback. The function receives a Service bound to the
// transaction; operations on the outer service are not part of it. If the
// function returns an error, the transaction is rolled back. Nested calls use
// savepoints.
//
// Replace and reorder operations must run inside a transaction: they issue
// multiple dependent writes (revoke+insert, rotation steps) whose partial
// application would violate their invariants.
//
// Example:
//
//	err := service.Transaction(ctx, func(txs *eventkit.Service) error {
//	    current, err := txs.CrewMembershipFor(ctx, userID, projectID)
//	    if err != nil {
//	        return err
//	    }
//	    return txs.RevokeCrewMembership(ctx, current)
//	})
func (s *Service) Transaction(ctx context.Context, fn func(txs *Service) error) error {
	start := time.Now()
	var err error

	// A service already bound to a transaction nests via savepoint.
	if tx, ok := s.db.(*dbkit.Tx); ok {
		err = tx.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(s.withDB(tx))
		})
	} else if db, ok := s.db.(*dbkit.DBKit); ok {
		err = db.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(s.withDB(tx))
		})
	} else {
		err = fmt.Errorf("transaction support requires a dbkit.DBKit or dbkit.Tx instance")
	}

	duration := time.Since(start)
	s.txMonitor.recordTransaction(duration, err == nil)

	return err
}

// TransactionWithOptions executes a function within a database transaction
// with custom options. Supports read-only transactions, isolation levels, and
// other transaction parameters.
//
// Example:
//
//	err := service.TransactionWithOptions(ctx, dbkit.SerializableTxOptions(), func(txs *eventkit.Service) error {
//	    // High isolation level operations
//	    return txs.ReorderProposalBefore(ctx, prop, target)
//	})
func (s *Service) TransactionWithOptions(ctx context.Context, opts dbkit.TxOptions, fn func(txs *Service) error) error {
	start := time.Now()
	var err error

	if tx, ok := s.db.(*dbkit.Tx); ok {
		// Already in a transaction; savepoints do not take options.
		err = tx.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(s.withDB(tx))
		})
	} else if db, ok := s.db.(*dbkit.DBKit); ok {
		err = db.TransactionWithOptions(ctx, opts, func(tx *dbkit.Tx) error {
			return fn(s.withDB(tx))
		})
	} else {
		err = fmt.Errorf("transaction support requires a dbkit.DBKit or dbkit.Tx instance")
	}

	duration := time.Since(start)
	s.txMonitor.recordTransaction(duration, err == nil)

	return err
}

// ReadOnlyTransaction executes a function within a read-only database
// transaction. Useful for multi-query reads that want a consistent snapshot,
// such as resolving roles across several membership tables.
//
// Example:
//
//	err := service.ReadOnlyTransaction(ctx, func(txs *eventkit.Service) error {
//	    roles, err := txs.RolesForProject(ctx, project, userID, nil)
//	    if err != nil {
//	        return err
//	    }
//	    members, err := txs.ActiveCrewMemberships(ctx, project.ID)
//	    return err
//	})
func (s *Service) ReadOnlyTransaction(ctx context.Context, fn func(txs *Service) error) error {
	return s.TransactionWithOptions(ctx, dbkit.ReadOnlyTxOptions(), fn)
}
