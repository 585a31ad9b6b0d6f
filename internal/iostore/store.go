// Package iostore persists consensus lineages between runs in an
// embedded sqlite database, so a later run can reuse them as its
// baseline and skip recomputation for BINs it does not touch.
package iostore

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/gnames/gnbintax/pkg/lifecycle"
	"github.com/gnames/gnbintax/pkg/lineage"
	"github.com/gnames/gnbintax/pkg/rank"

	_ "modernc.org/sqlite"
)

// sep joins rank labels inside the lineages table. The unit separator
// never appears in taxonomic labels.
const sep = "\x1f"

const ddl = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS lineages (
	bin_uri TEXT PRIMARY KEY,
	labels  TEXT NOT NULL
);
`

type store struct {
	db    *sql.DB
	ranks rank.Set
}

// New opens (or creates) the baseline store at path.
func New(path string, ranks rank.Set) (lifecycle.BaselineStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, NewStoreOpenError(path, err)
	}
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, NewStoreOpenError(path, err)
	}
	return &store{db: db, ranks: ranks}, nil
}

// Load returns the stored lineage rows. A store written with a
// different rank schema is ignored with a warning: its rows cannot be
// mapped onto the configured ranks.
func (s *store) Load(ctx context.Context) ([]lineage.Row, error) {
	stored, err := s.storedRanks(ctx)
	if err != nil {
		return nil, err
	}
	if stored == "" {
		return nil, nil
	}
	if stored != strings.Join(s.ranks, sep) {
		slog.Warn(
			"Baseline store has a different rank schema, ignoring it",
			"stored", strings.ReplaceAll(stored, sep, ","),
		)
		return nil, nil
	}

	rows, err := s.db.QueryContext(
		ctx, "SELECT bin_uri, labels FROM lineages",
	)
	if err != nil {
		return nil, NewStoreQueryError(err)
	}
	defer rows.Close()

	var res []lineage.Row
	for rows.Next() {
		var bin, labels string
		if err := rows.Scan(&bin, &labels); err != nil {
			return nil, NewStoreQueryError(err)
		}
		res = append(res, lineage.Row{
			BIN:    bin,
			Labels: strings.Split(labels, sep),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, NewStoreQueryError(err)
	}

	slog.Info("Loaded baseline lineages", "rows", len(res))
	return res, nil
}

// Save replaces the stored rows with the given finalized table.
func (s *store) Save(ctx context.Context, rows []lineage.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NewStoreSaveError(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM lineages"); err != nil {
		return NewStoreSaveError(err)
	}
	if _, err := tx.ExecContext(
		ctx,
		"INSERT OR REPLACE INTO meta (key, value) VALUES ('ranks', ?)",
		strings.Join(s.ranks, sep),
	); err != nil {
		return NewStoreSaveError(err)
	}

	stmt, err := tx.PrepareContext(
		ctx, "INSERT INTO lineages (bin_uri, labels) VALUES (?, ?)",
	)
	if err != nil {
		return NewStoreSaveError(err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.ExecContext(
			ctx, row.BIN, strings.Join(row.Labels, sep),
		)
		if err != nil {
			return NewStoreSaveError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return NewStoreSaveError(err)
	}
	slog.Info("Saved baseline lineages", "rows", len(rows))
	return nil
}

// Close releases the underlying database handle.
func (s *store) Close() error {
	return s.db.Close()
}

func (s *store) storedRanks(ctx context.Context) (string, error) {
	var res string
	err := s.db.QueryRowContext(
		ctx, "SELECT value FROM meta WHERE key = 'ranks'",
	).Scan(&res)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", NewStoreQueryError(err)
	}
	return res, nil
}
