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
	"github.com/gnames/gn"
	"github.com/gnames/gnbintax/internal/iotable"
	"github.com/spf13/cobra"
)

// getFillCmd returns the fill command.
func getFillCmd() *cobra.Command {
	var output string

	fillCmd := &cobra.Command{
		Use:   "fill <records.tsv>",
		Short: "Fill unassigned ranks with placeholder labels",
		Long: `Fill every unassigned rank of an occurrence record table with a
deterministic placeholder derived from the nearest assigned ancestor.

The first gap below a known label becomes "<ancestor>_X"; each further
consecutive gap appends one more "X". A genuine label in between resets
the pattern. Identical partial lineages always produce identical
placeholders, so filled tables are comparable across runs.

The output keeps record granularity: record_id, bin_uri, one column
per rank, and the vote weight n.

Examples:
  gnbintax fill records.tsv -o filled.tsv
  gnbintax fill records.tsv.gz -o filled.tsv.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFill(args[0], output)
		},
	}

	fillCmd.Flags().StringVarP(&output, "output", "o",
		"filled.tsv", "output file for the filled record table")

	return fillCmd
}

func runFill(input, output string) error {
	table, err := iotable.ReadRecords(input, cfg.Ranks)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	filled, err := table.FillMissing()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iotable.WriteRecords(output, filled); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("Filled table with <em>%d</em> records written to <em>%s</em>",
		len(filled.Records), output)
	return nil
}
