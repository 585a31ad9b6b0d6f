// Package iopublish implements the Publisher interface that
// bulk-loads finalized lineages into PostgreSQL. This is an
// impure I/O package that wraps pgx CopyFrom functionality.
package iopublish

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnbintax/pkg/config"
	"github.com/gnames/gnbintax/pkg/db"
	"github.com/gnames/gnbintax/pkg/errcode"
	"github.com/gnames/gnbintax/pkg/lifecycle"
	"github.com/gnames/gnbintax/pkg/lineage"
	"github.com/gnames/gnbintax/pkg/schema"
	"github.com/gnames/gnuuid"
	"github.com/jackc/pgx/v5"
)

// publisher implements lifecycle.Publisher on top of a
// connected db.Operator.
type publisher struct {
	operator db.Operator
}

// New creates a new Publisher.
func New(op db.Operator) lifecycle.Publisher {
	return &publisher{operator: op}
}

// Publish replaces the content of bin_lineages with the given
// rows. Rows must follow the canonical rank order, because the
// table columns are fixed.
func (p *publisher) Publish(
	ctx context.Context,
	cfg *config.Config,
	rows []lineage.Row,
) error {
	if len(rows) == 0 {
		return &gn.Error{
			Code: errcode.PublishEmptyTableError,
			Msg:  "Nothing to publish, the lineage table is empty",
			Err:  fmt.Errorf("empty lineage table"),
		}
	}

	if !slices.Equal(cfg.Ranks, config.DefaultRanks()) {
		return &gn.Error{
			Code: errcode.PublishRankSchemaError,
			Msg: "Cannot publish with rank schema <em>%s</em>, " +
				"the reference table requires <em>%s</em>",
			Vars: []any{
				strings.Join(cfg.Ranks, ","),
				strings.Join(config.DefaultRanks(), ","),
			},
			Err: fmt.Errorf("non-canonical rank schema"),
		}
	}

	pool := p.operator.Pool()

	table := schema.BinLineage{}.TableName()
	q := fmt.Sprintf(`TRUNCATE TABLE %q`, table)
	if _, err := pool.Exec(ctx, q); err != nil {
		return &gn.Error{
			Code: errcode.PublishTruncateError,
			Msg:  "Cannot clear reference table before publishing",
			Err:  fmt.Errorf("truncate %s: %w", table, err),
		}
	}

	columns := []string{
		"id", "bin_uri",
		"kingdom", "phylum", "class", "order",
		"family", "genus", "species",
		"classification",
	}

	batchSize := cfg.Database.BatchSize
	if batchSize <= 0 {
		batchSize = 50_000
	}

	var totalSaved int64
	for i := 0; i < len(rows); i += batchSize {
		end := min(i+batchSize, len(rows))
		batch := rows[i:end]

		copyRows := make([][]any, len(batch))
		for j, row := range batch {
			copyRows[j] = copyRow(row)
		}

		copyCount, err := pool.CopyFrom(
			ctx,
			pgx.Identifier{table},
			columns,
			pgx.CopyFromRows(copyRows),
		)
		if err != nil {
			return &gn.Error{
				Code: errcode.PublishCopyError,
				Msg:  "Failed to save lineages to reference table",
				Err:  fmt.Errorf("copy from: %w", err),
			}
		}
		totalSaved += copyCount

		slog.Info("Publishing lineages",
			"saved", humanize.Comma(totalSaved),
			"total", humanize.Comma(int64(len(rows))),
		)
	}

	slog.Info("Completed publishing lineages",
		"total", humanize.Comma(totalSaved))
	return nil
}

// copyRow converts a lineage row into CopyFrom values. The row
// ID is a UUID v5 of the BIN and its breadcrumb, so unchanged
// lineages keep their IDs across publishes.
func copyRow(row lineage.Row) []any {
	breadcrumb := strings.Join(row.Labels, ";")

	id := gnuuid.New(row.BIN + "|" + breadcrumb).String()

	vals := make([]any, 0, len(row.Labels)+3)
	vals = append(vals, id, row.BIN)
	for _, label := range row.Labels {
		vals = append(vals, label)
	}
	vals = append(vals, breadcrumb)
	return vals
}
