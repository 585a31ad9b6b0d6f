/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnbintax/internal/iorecon"
	"github.com/gnames/gnbintax/internal/iostore"
	"github.com/gnames/gnbintax/internal/iotable"
	"github.com/gnames/gnbintax/pkg/config"
	"github.com/gnames/gnbintax/pkg/lifecycle"
	"github.com/gnames/gnbintax/pkg/lineage"
	"github.com/gnames/gnbintax/pkg/namecheck"
	"github.com/spf13/cobra"
)

// getConsensusCmd returns the consensus command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getConsensusCmd() *cobra.Command {
	var (
		output     string
		threshold  float64
		method     string
		exclude    bool
		jobs       int
		auditPath  string
		baseline   bool
		checkNames bool
	)

	consensusCmd := &cobra.Command{
		Use:   "consensus <records.tsv>",
		Short: "Compute one consensus lineage per BIN",
		Long: `Compute the authoritative taxonomic lineage for every BIN in an
occurrence record table.

This command:
  1. Fills unassigned ranks with deterministic placeholder labels
  2. Runs a weighted consensus vote per BIN, deepest rank first
  3. Repairs labels that appear under more than one parent lineage
  4. Writes one row per BIN: bin_uri plus one column per rank

Input is a tab-separated file (".gz" for gzip) with a bin_uri column,
one column per configured rank, and optional record_id and n (weight)
columns.

With --baseline, lineages from previous runs are kept for BINs absent
from the input, and the finished table is cached for the next run.

Examples:
  gnbintax consensus records.tsv -o lineages.tsv
  gnbintax consensus records.tsv.gz -t 90 -m rank
  gnbintax consensus records.tsv --baseline --audit run.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var flagOpts []config.Option
			if cmd.Flags().Changed("threshold") {
				flagOpts = append(flagOpts, config.OptThreshold(threshold))
			}
			if cmd.Flags().Changed("method") {
				flagOpts = append(flagOpts, config.OptMethod(method))
			}
			if cmd.Flags().Changed("exclude-missing") {
				flagOpts = append(flagOpts, config.OptExcludeMissingData(exclude))
			}
			if cmd.Flags().Changed("jobs") {
				flagOpts = append(flagOpts, config.OptJobsNumber(jobs))
			}
			cfg.Update(flagOpts)

			return runConsensus(args[0], output, auditPath,
				baseline, checkNames)
		},
	}

	consensusCmd.Flags().StringVarP(&output, "output", "o",
		"consensus.tsv", "output file for the lineage table")
	consensusCmd.Flags().Float64VarP(&threshold, "threshold", "t",
		80, "agreement percentage required to resolve a rank")
	consensusCmd.Flags().StringVarP(&method, "method", "m",
		"full", `grouping method, "full" or "rank"`)
	consensusCmd.Flags().BoolVar(&exclude, "exclude-missing",
		false, "drop placeholder lineages from the vote")
	consensusCmd.Flags().IntVarP(&jobs, "jobs", "j",
		0, "number of concurrent workers")
	consensusCmd.Flags().StringVar(&auditPath, "audit",
		"", "write a JSON audit of all decisions to this file")
	consensusCmd.Flags().BoolVar(&baseline, "baseline",
		false, "merge and update the cached baseline table")
	consensusCmd.Flags().BoolVar(&checkNames, "check-names",
		false, "report labels that do not parse as scientific names")

	return consensusCmd
}

func runConsensus(
	input, output, auditPath string,
	baseline, checkNames bool,
) error {
	ctx := context.Background()

	table, err := iotable.ReadRecords(input, cfg.Ranks)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var baselineRows []lineage.Row
	var baselineStore lifecycle.BaselineStore
	if baseline {
		baselineStore, err = iostore.New(
			config.StoreFilePath(homeDir), cfg.Ranks,
		)
		if err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
		defer baselineStore.Close()

		baselineRows, err = baselineStore.Load(ctx)
		if err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
	}

	rec, err := iorecon.New(cfg)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	res, err := rec.Reconcile(ctx, table, baselineRows)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iotable.WriteRows(output, cfg.Ranks, res.Rows); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if auditPath != "" {
		if err = iorecon.WriteAudit(auditPath, cfg, res); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
		gn.Info("Audit written to <em>%s</em>", auditPath)
	}

	if baseline {
		if err = baselineStore.Save(ctx, res.Rows); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
		gn.Info("Baseline table updated")
	}

	if checkNames {
		reportSuspiciousNames(res.Rows)
	}

	gn.Info("Consensus table with <em>%d</em> lineages written to <em>%s</em>",
		len(res.Rows), output)
	return nil
}

// reportSuspiciousNames warns about terminal labels that gnparser
// cannot parse as scientific names. Advisory only, never fails a run.
func reportSuspiciousNames(rows []lineage.Row) {
	pool := namecheck.NewPool(cfg.JobsNumber)
	defer pool.Close()

	names := namecheck.Suspicious(rows, cfg.Ranks, pool)
	if len(names) == 0 {
		gn.Info("All terminal labels parse as scientific names")
		return
	}
	gn.Warn("Found <em>%d</em> labels that do not parse as names:",
		len(names))
	gn.Warn(strings.Join(names, ", "))
}
