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
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnbintax/internal/iodb"
	"github.com/gnames/gnbintax/internal/iopublish"
	"github.com/gnames/gnbintax/internal/ioschema"
	"github.com/gnames/gnbintax/internal/iotable"
	"github.com/gnames/gnbintax/pkg/schema"
	"github.com/spf13/cobra"
)

// getPublishCmd returns the publish command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getPublishCmd() *cobra.Command {
	var (
		force    bool
		recreate bool
	)

	publishCmd := &cobra.Command{
		Use:   "publish <lineages.tsv>",
		Short: "Load a consensus lineage table into PostgreSQL",
		Long: `Load a finished consensus lineage table into the PostgreSQL
reference database consumed by downstream format writers.

This command:
  1. Connects to PostgreSQL using configuration settings
  2. Creates the bin_lineages table if needed, using GORM AutoMigrate
  3. Replaces the table content via bulk COPY

Row IDs are UUIDs derived from the BIN and its classification, so
unchanged lineages keep their IDs across publishes.

Use --force to replace existing data without confirmation.
Use --recreate to drop and rebuild the schema first.

Examples:
  gnbintax publish consensus.tsv
  gnbintax publish consensus.tsv --force
  gnbintax publish consensus.tsv --recreate -f`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(args[0], force, recreate)
		},
	}

	publishCmd.Flags().BoolVarP(&force, "force", "f",
		false, "replace existing data without confirmation")
	publishCmd.Flags().BoolVar(&recreate, "recreate",
		false, "drop and rebuild the schema before publishing")

	return publishCmd
}

func runPublish(input string, force, recreate bool) error {
	ctx := context.Background()

	rows, err := iotable.ReadRows(input, cfg.Ranks)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Create database operator
	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer op.Close()

	gn.Info("Connected to database: %s@%s:%d/%s",
		cfg.Database.User, cfg.Database.Host,
		cfg.Database.Port, cfg.Database.Database)

	table := schema.BinLineage{}.TableName()
	hasTable, err := op.TableExists(ctx, table)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if hasTable && !force {
		gn.Warn("\nWarning: the reference table already exists.")
		gn.Warn("Publishing will replace ALL of its data.")
		fmt.Print("\nDo you want to continue? (yes/no): ")

		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			gn.Warn("Failed to read user input")
			return err
		}

		response = strings.TrimSpace(strings.ToLower(response))
		if response != "yes" && response != "y" {
			gn.Info("Aborted. No changes made.")
			return nil
		}
	}

	// Create schema manager
	sm := ioschema.NewManager(op)

	if recreate && hasTable {
		gn.Info("Dropping existing schema (--recreate enabled)...")
		if err := sm.Drop(ctx, cfg); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
	}

	// AutoMigrate is idempotent, safe when the table already exists
	gn.Info("Ensuring schema with GORM AutoMigrate...")
	if err := sm.Create(ctx, cfg); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	pub := iopublish.New(op)
	if err := pub.Publish(ctx, cfg, rows); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("\nPublished <em>%d</em> lineages to <em>%s</em>",
		len(rows), table)
	return nil
}
