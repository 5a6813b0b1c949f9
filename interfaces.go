package eventkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// Database defines the database operations interface for dependency injection.
type Database interface {
	dbkit.IDB
}

// TransactionManager defines the transaction management interface.
type TransactionManager interface {
	Transaction(ctx context.Context, fn func(txs *Service) error) error
	TransactionWithOptions(ctx context.Context, opts dbkit.TxOptions, fn func(txs *Service) error) error
	ReadOnlyTransaction(ctx context.Context, fn func(txs *Service) error) error
}

// MigrationManager defines the migration management interface.
type MigrationManager interface {
	Migrations() []dbkit.Migration
}

// HealthMonitor defines the health monitoring interface.
type HealthMonitor interface {
	Health(ctx context.Context) dbkit.HealthStatus
	IsHealthy(ctx context.Context) bool
	Ping(ctx context.Context) error
	GetPoolStats() dbkit.PoolStats
}

// PoolManager defines the connection pool management interface.
type PoolManager interface {
	ConfigureConnectionPool(config PoolConfig) error
	GetConnectionPoolConfig() (*PoolConfig, error)
	OptimizeConnectionPool() error
	ResetConnectionPool() error
}

// RoleResolver defines the role resolution interface: computing the ephemeral
// role set an actor holds on an entity.
type RoleResolver interface {
	RolesForProfile(ctx context.Context, profile *Profile, userID string, anchors []Anchor) (RoleSet, error)
	RolesForProject(ctx context.Context, project *Project, userID string, anchors []Anchor) (RoleSet, error)
	RolesForProposal(ctx context.Context, proposal *Proposal, userID string, anchors []Anchor) (RoleSet, error)
	RolesForCommentset(ctx context.Context, cs *Commentset, userID string, anchors []Anchor) (RoleSet, error)
	RolesForComment(ctx context.Context, comment *Comment, userID string, anchors []Anchor) (RoleSet, error)
	CheckerFor(ctx context.Context, entity, entityID, userID string, anchors []Anchor) (*Checker, error)
}

// TransactionMonitor defines the transaction monitoring interface.
type TransactionMonitor interface {
	GetTransactionMetrics() TransactionMetrics
	ResetTransactionMetrics()
	IsTransactionHealthy() bool
}
