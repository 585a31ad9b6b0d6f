// Package lifecycle defines the interfaces of the reconciliation run.
// Implementations live in internal/io* packages; pure algorithms live
// in pkg/consensus, pkg/lineage and pkg/unique.
package lifecycle

import (
	"context"

	"github.com/gnames/gnbintax/pkg/lineage"
	"github.com/gnames/gnbintax/pkg/unique"
)

// Result is the terminal state of a reconciliation run: one
// conflict-free lineage per BIN, plus the audit trail of every repair
// and baseline decision taken along the way.
type Result struct {
	// Rows holds exactly one lineage per BIN, covering every BIN of the
	// input table and, when a baseline was supplied, every baseline BIN
	// not recomputed in this run.
	Rows []lineage.Row

	// Repairs are the uniqueness-repair decisions, in application order.
	Repairs []unique.Decision

	// DroppedBaseline lists baseline BINs whose prior lineage was
	// superseded by a freshly computed one that differs from it.
	DroppedBaseline []string
}

// Reconciler drives a table of occurrence records through the
// reconciliation states: grouped by BIN, reduced to one consensus
// lineage per ambiguous BIN, repaired to a strict tree, and finally
// merged with an optional baseline. A failure on any BIN group aborts
// the whole run; there is no partial-result recovery.
type Reconciler interface {
	// Reconcile computes the authoritative lineage table. The baseline
	// may be nil; freshly computed lineages always win over baseline
	// entries for BINs present in both.
	Reconcile(
		ctx context.Context,
		table *lineage.Table,
		baseline []lineage.Row,
	) (*Result, error)
}
