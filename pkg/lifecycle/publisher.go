package lifecycle

import (
	"context"

	"github.com/gnames/gnbintax/pkg/config"
	"github.com/gnames/gnbintax/pkg/lineage"
)

// SchemaManager defines database schema management for the published
// reference table. It uses GORM AutoMigrate, so schema management is
// idempotent - safe to run multiple times.
type SchemaManager interface {
	// Create creates the reference table schema using GORM AutoMigrate.
	Create(ctx context.Context, cfg *config.Config) error

	// Drop removes all gnbintax tables from the database.
	Drop(ctx context.Context, cfg *config.Config) error
}

// Publisher bulk-loads a finalized lineage table into the reference
// database consumed by downstream format writers.
type Publisher interface {
	// Publish replaces the stored reference table with the given rows.
	Publish(ctx context.Context, cfg *config.Config, rows []lineage.Row) error
}

// BaselineStore persists consensus results between runs so BINs already
// reconciled can short-circuit recomputation.
type BaselineStore interface {
	// Load returns the stored lineage rows, or nil when the store is
	// empty or absent.
	Load(ctx context.Context) ([]lineage.Row, error)

	// Save replaces the stored rows with the given finalized table.
	Save(ctx context.Context, rows []lineage.Row) error

	// Close releases the underlying database handle.
	Close() error
}
