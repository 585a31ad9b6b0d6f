// Package db defines the contract for PostgreSQL connection management
// used by the publish workflow. The implementation lives in
// internal/iodb.
package db

import (
	"context"

	"github.com/gnames/gnbintax/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Operator defines basic database management operations. It provides
// connection lifecycle management and exposes the pgxpool.Pool so
// higher-level components can run specialized SQL (CopyFrom bulk
// inserts, truncation) internally.
type Operator interface {
	// Connect establishes a connection pool to the database.
	Connect(context.Context, *config.DatabaseConfig) error

	// Close closes the database connection pool.
	Close() error

	// Pool returns the underlying pgxpool.Pool for bulk inserts and
	// custom queries.
	Pool() *pgxpool.Pool

	// TableExists checks if a table exists in the database.
	TableExists(ctx context.Context, tableName string) (bool, error)
}
