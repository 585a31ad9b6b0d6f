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
	"sort"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnbintax/internal/iotable"
	"github.com/gnames/gnbintax/pkg/unique"
	"github.com/spf13/cobra"
)

// getConflictsCmd returns the conflicts command.
func getConflictsCmd() *cobra.Command {
	var (
		repair bool
		output string
	)

	conflictsCmd := &cobra.Command{
		Use:   "conflicts <lineages.tsv>",
		Short: "Report labels that appear under several parents",
		Long: `Report every rank label of a lineage table that appears under more
than one parent lineage. Such labels break grouping for downstream
consumers that key on a single rank column.

With --repair, conflicting labels are resolved: a label is either
disambiguated by prefixing it with its parent label, or lineages that
inherited it through placeholder ancestors are excluded. The repaired
table is written to the output file.

Examples:
  gnbintax conflicts consensus.tsv
  gnbintax conflicts consensus.tsv --repair -o repaired.tsv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConflicts(args[0], output, repair)
		},
	}

	conflictsCmd.Flags().BoolVar(&repair, "repair", false,
		"resolve conflicts and write the repaired table")
	conflictsCmd.Flags().StringVarP(&output, "output", "o",
		"repaired.tsv", "output file for the repaired table")

	return conflictsCmd
}

func runConflicts(input, output string, repair bool) error {
	rows, err := iotable.ReadRows(input, cfg.Ranks)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	conflicts := unique.FindConflicts(rows, cfg.Ranks)
	if conflicts.IsEmpty() {
		gn.Info("No conflicting labels found in <em>%s</em>", input)
		return nil
	}

	reportConflicts(conflicts)

	if !repair {
		return nil
	}

	repaired, decisions, err := unique.Repair(rows, cfg.Ranks)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	for _, d := range decisions {
		gn.Info("Repair: rank <em>%s</em> label <em>%s</em>: %s",
			d.Rank, d.Label, d.Kind())
	}

	if err = iotable.WriteRows(output, cfg.Ranks, repaired); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	gn.Info("Repaired table with <em>%d</em> lineages written to <em>%s</em>",
		len(repaired), output)
	return nil
}

func reportConflicts(conflicts unique.Conflicts) {
	gn.Warn("Found <em>%d</em> labels under multiple parents:",
		conflicts.Count())

	ranks := make([]string, 0, len(conflicts))
	for rnk := range conflicts {
		ranks = append(ranks, rnk)
	}
	sort.Strings(ranks)
	for _, rnk := range ranks {
		gn.Warn("  %s: %s", rnk, strings.Join(conflicts[rnk], ", "))
	}
}
