// Package ioschema implements SchemaManager interface for
// database schema management. This is an impure I/O package
// that wraps GORM AutoMigrate functionality.
package ioschema

import (
	"context"
	"fmt"

	"github.com/gnames/gnbintax/pkg/config"
	"github.com/gnames/gnbintax/pkg/db"
	"github.com/gnames/gnbintax/pkg/lifecycle"
	"github.com/gnames/gnbintax/pkg/schema"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// manager implements the lifecycle.SchemaManager interface
// using GORM AutoMigrate.
type manager struct {
	operator db.Operator
}

// NewManager creates a new SchemaManager.
func NewManager(op db.Operator) lifecycle.SchemaManager {
	return &manager{operator: op}
}

// Create creates the reference table schema using GORM
// AutoMigrate. Also applies collation settings so rank labels
// sort bytewise, matching the order of the TSV exports.
func (m *manager) Create(
	ctx context.Context,
	cfg *config.Config,
) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	sqlDB := stdlib.OpenDBFromPool(pool)

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{},
	)
	if err != nil {
		return GORMConnectionError(err)
	}

	if err := schema.Migrate(gormDB); err != nil {
		return CreateSchemaError(err)
	}

	if err := m.setCollation(ctx); err != nil {
		return err
	}

	return nil
}

// Drop removes all gnbintax tables from the database.
func (m *manager) Drop(
	ctx context.Context,
	cfg *config.Config,
) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	for _, model := range schema.AllModels() {
		table := tableName(model)
		q := fmt.Sprintf(
			`DROP TABLE IF EXISTS %q CASCADE`, table,
		)
		if _, err := pool.Exec(ctx, q); err != nil {
			return DropSchemaError(table, err)
		}
	}

	return nil
}

// setCollation sets "C" collation on varchar columns holding
// rank labels and BIN identifiers.
func (m *manager) setCollation(ctx context.Context) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	type columnDef struct {
		table, column string
		varchar       int
	}

	columns := []columnDef{
		{"bin_lineages", "bin_uri", 50},
		{"bin_lineages", "kingdom", 255},
		{"bin_lineages", "phylum", 255},
		{"bin_lineages", "class", 255},
		{"bin_lineages", "order", 255},
		{"bin_lineages", "family", 255},
		{"bin_lineages", "genus", 255},
		{"bin_lineages", "species", 255},
	}

	qStr := `ALTER TABLE %q ALTER COLUMN %q ` +
		`TYPE VARCHAR(%d) COLLATE "C"`

	for _, col := range columns {
		q := fmt.Sprintf(qStr, col.table, col.column, col.varchar)
		if _, err := pool.Exec(ctx, q); err != nil {
			return CollationError(col.table, col.column, err)
		}
	}

	return nil
}

// tableName resolves a model's table name through the GORM
// naming interface.
func tableName(model interface{}) string {
	type tabler interface {
		TableName() string
	}
	if t, ok := model.(tabler); ok {
		return t.TableName()
	}
	return ""
}
