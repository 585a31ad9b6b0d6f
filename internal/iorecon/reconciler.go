// Package iorecon implements the reconciliation orchestrator. It moves
// an occurrence table through the run states: grouped by BIN, reduced
// to one consensus lineage per ambiguous BIN across a worker pool,
// repaired to a strict tree, and merged with an optional baseline.
package iorecon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnbintax/pkg/config"
	"github.com/gnames/gnbintax/pkg/consensus"
	"github.com/gnames/gnbintax/pkg/errcode"
	"github.com/gnames/gnbintax/pkg/lifecycle"
	"github.com/gnames/gnbintax/pkg/lineage"
	"github.com/gnames/gnbintax/pkg/unique"
	"golang.org/x/sync/errgroup"
)

// binGroup is one unit of work for the consensus workers.
type binGroup struct {
	bin  string
	recs []lineage.Record
}

type reconciler struct {
	cfg    *config.Config
	method consensus.Method
}

// New creates a Reconciler configured from cfg.
func New(cfg *config.Config) (lifecycle.Reconciler, error) {
	method, err := consensus.ParseMethod(cfg.Consensus.Method)
	if err != nil {
		return nil, err
	}
	return &reconciler{cfg: cfg, method: method}, nil
}

// Reconcile computes the authoritative lineage table for all BINs of
// the input. A failure on any BIN group aborts the whole run.
func (r *reconciler) Reconcile(
	ctx context.Context,
	table *lineage.Table,
	baseline []lineage.Row,
) (*lifecycle.Result, error) {
	ranks := table.Ranks

	slog.Info("Filling unassigned ranks", "records", len(table.Records))
	filled, err := table.FillMissing()
	if err != nil {
		return nil, err
	}

	// Aggregation merges identical candidate lineages per BIN and sums
	// their weights, so each surviving record is one vote group.
	agg := filled.Aggregate()
	groups, unclustered := agg.GroupByBIN()
	if len(unclustered) > 0 {
		slog.Warn(
			"Skipping records without BIN",
			"records", len(unclustered),
		)
		gn.Info(
			"<em>Skipped %s records without a BIN identifier</em>",
			humanize.Comma(int64(len(unclustered))),
		)
	}

	rows := make([]lineage.Row, 0, len(groups))
	ambiguous := make(map[string][]lineage.Record)
	for bin, recs := range groups {
		if len(recs) == 1 {
			rows = append(rows, lineage.Row{
				BIN:    bin,
				Labels: recs[0].Labels,
			})
			continue
		}
		ambiguous[bin] = recs
	}
	slog.Info(
		"Grouped records by BIN",
		"bins", len(groups),
		"unambiguous", len(groups)-len(ambiguous),
		"ambiguous", len(ambiguous),
	)
	gn.Info(
		"Found <em>%s</em> BINs, <em>%s</em> with conflicting lineages",
		humanize.Comma(int64(len(groups))),
		humanize.Comma(int64(len(ambiguous))),
	)

	consensusRows, err := r.computeConsensus(ctx, ambiguous, ranks)
	if err != nil {
		return nil, err
	}
	rows = append(rows, consensusRows...)

	conflicts := unique.FindConflicts(rows, ranks)
	if n := conflicts.Count(); n > 0 {
		slog.Info("Found non-unique lineages", "conflicts", n)
		gn.Info(
			"Repairing <em>%s</em> rank/label pairs with non-unique lineages",
			humanize.Comma(int64(n)),
		)
	}
	repaired, decisions, err := unique.Repair(rows, ranks)
	if err != nil {
		return nil, err
	}
	for _, d := range decisions {
		slog.Info(
			"Repair decision",
			"rank", d.Rank,
			"label", d.Label,
			"decision", d.Kind(),
			"removedBins", len(d.RemovedBINs),
		)
	}

	res := &lifecycle.Result{Rows: repaired, Repairs: decisions}
	mergeBaseline(res, baseline)

	sort.Slice(res.Rows, func(i, j int) bool {
		return res.Rows[i].BIN < res.Rows[j].BIN
	})
	slog.Info("Reconciliation finished", "bins", len(res.Rows))
	return res, nil
}

// computeConsensus fans the ambiguous BIN groups out to a fixed-size
// worker pool and collects one consensus lineage per group. Groups are
// independent and read-only with respect to each other; completion
// order carries no meaning.
func (r *reconciler) computeConsensus(
	ctx context.Context,
	ambiguous map[string][]lineage.Record,
	ranks []string,
) ([]lineage.Row, error) {
	if len(ambiguous) == 0 {
		return nil, nil
	}

	params := consensus.Params{
		Ranks:              ranks,
		Threshold:          r.cfg.Consensus.Threshold,
		Method:             r.method,
		ExcludeMissingData: r.cfg.Consensus.ExcludeMissingData,
	}
	jobsNum := r.cfg.JobsNumber
	if jobsNum == 0 {
		jobsNum = 4
	}

	chIn := make(chan binGroup)
	chOut := make(chan lineage.Row)

	g, gCtx := errgroup.WithContext(ctx)

	// Stage 1: stream BIN groups to the workers.
	g.Go(func() error {
		defer close(chIn)
		for bin, recs := range ambiguous {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			case chIn <- binGroup{bin: bin, recs: recs}:
			}
		}
		return nil
	})

	// Stage 2: consensus workers.
	var wg sync.WaitGroup
	for i := 0; i < jobsNum; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for grp := range chIn {
				row, err := consensus.Calculate(grp.bin, grp.recs, params)
				if err != nil {
					return err
				}
				select {
				case <-gCtx.Done():
					return gCtx.Err()
				case chOut <- row:
				}
			}
			return nil
		})
	}

	// Close chOut when workers are done.
	go func() {
		wg.Wait()
		close(chOut)
	}()

	// Stage 3: collect results; order is irrelevant.
	bar := newProgressBar(len(ambiguous), "Consensus: ")
	defer bar.Finish()
	rows := make([]lineage.Row, 0, len(ambiguous))
	g.Go(func() error {
		for row := range chOut {
			rows = append(rows, row)
			bar.Increment()
		}
		return nil
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return nil, &gn.Error{
			Code: errcode.ReconcileWorkerError,
			Msg:  "Consensus computation failed",
			Err:  fmt.Errorf("consensus pipeline: %w", err),
		}
	}
	if err != nil {
		return nil, err
	}

	slog.Info("Computed consensus lineages", "bins", len(rows))
	return rows, nil
}

// mergeBaseline keeps baseline rows for BINs absent from the fresh
// result. Fresh rows always take precedence; superseded baseline
// entries that differ are reported for audit, never silently dropped.
func mergeBaseline(res *lifecycle.Result, baseline []lineage.Row) {
	if len(baseline) == 0 {
		return
	}
	fresh := make(map[string]lineage.Row, len(res.Rows))
	for _, row := range res.Rows {
		fresh[row.BIN] = row
	}

	kept := 0
	for _, row := range baseline {
		cur, ok := fresh[row.BIN]
		if !ok {
			res.Rows = append(res.Rows, row)
			kept++
			continue
		}
		if !sameLabels(cur.Labels, row.Labels) {
			res.DroppedBaseline = append(res.DroppedBaseline, row.BIN)
		}
	}
	sort.Strings(res.DroppedBaseline)
	slog.Info(
		"Merged baseline",
		"baselineRows", len(baseline),
		"kept", kept,
		"superseded", len(res.DroppedBaseline),
	)
}

func sameLabels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
