// Package unique enforces the strict-tree invariant of a lineage table:
// a taxonomic label at any rank must map to exactly one parent lineage.
//
// The validator reports labels observed under more than one distinct
// ancestor path. The repairer removes conflicting rows whose ancestry
// is wholly placeholder-derived when that restores uniqueness, and
// otherwise renames the label by prefixing it with its parent label,
// one distinct-ancestor subgroup at a time. Every decision is recorded
// for audit.
package unique

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnbintax/pkg/errcode"
	"github.com/gnames/gnbintax/pkg/lineage"
	"github.com/gnames/gnbintax/pkg/rank"
)

// Conflicts maps a rank name to the sorted labels that violate
// uniqueness at that rank.
type Conflicts map[string][]string

// IsEmpty reports whether no rank has conflicting labels.
func (c Conflicts) IsEmpty() bool {
	for _, labels := range c {
		if len(labels) > 0 {
			return false
		}
	}
	return true
}

// Count returns the total number of conflicting rank/label pairs.
func (c Conflicts) Count() int {
	n := 0
	for _, labels := range c {
		n += len(labels)
	}
	return n
}

// FindConflicts scans the table once per rank, groups rows by label and
// counts distinct ancestor paths within each label group. A label is
// reported when its rows do not all share an identical ancestor
// lineage. The scan is linear in the table size; labels are never
// compared pairwise.
func FindConflicts(rows []lineage.Row, ranks rank.Set) Conflicts {
	res := make(Conflicts)
	for i, rnk := range ranks {
		if i == 0 {
			// The root rank has no ancestors to disagree on.
			continue
		}
		ancestors := make(map[string]map[string]struct{})
		for _, row := range rows {
			label := row.Labels[i]
			path := strings.Join(row.Labels[:i], ";")
			if _, ok := ancestors[label]; !ok {
				ancestors[label] = make(map[string]struct{})
			}
			ancestors[label][path] = struct{}{}
		}
		var labels []string
		for label, paths := range ancestors {
			if len(paths) > 1 {
				labels = append(labels, label)
			}
		}
		if len(labels) > 0 {
			sort.Strings(labels)
			res[rnk] = labels
		}
	}
	return res
}

// Action values recorded in repair decisions.
const (
	ActionRemoved  = "removed"
	ActionPrefixed = "prefixed-with-parent"
)

// Decision is one audit record of the repairer: what was done to a
// conflicting rank/label pair.
type Decision struct {
	Rank        string   `json:"rank"`
	Label       string   `json:"label"`
	Action      string   `json:"action"`
	RemovedBINs []string `json:"removedBins,omitempty"`
	NewLabels   []string `json:"newLabels,omitempty"`
}

// Kind renders the decision in its audit-log form, e.g.
// "removed-3-records" or "prefixed-with-parent".
func (d Decision) Kind() string {
	if d.Action == ActionRemoved {
		return fmt.Sprintf("removed-%d-records", len(d.RemovedBINs))
	}
	return d.Action
}

// maxPasses bounds the repair loop. Renames can cascade fresh
// conflicts at deeper ranks, but each pass strictly disambiguates
// labels, so the bound is never reached on well-formed input.
const maxPasses = 10

// Repair returns a copy of the table satisfying the post-condition
// that FindConflicts on the result is empty. Every input row is either
// retained (possibly with renamed labels) or excluded; all decisions
// are returned for audit. An already conflict-free table comes back
// unchanged with no decisions.
func Repair(
	rows []lineage.Row,
	ranks rank.Set,
) ([]lineage.Row, []Decision, error) {
	table := make([]lineage.Row, len(rows))
	for i, row := range rows {
		table[i] = row.Clone()
	}

	var decisions []Decision
	for pass := 0; pass < maxPasses; pass++ {
		conflicts := FindConflicts(table, ranks)
		if conflicts.IsEmpty() {
			return table, decisions, nil
		}
		var passDecisions []Decision
		table, passDecisions = repairPass(table, conflicts, ranks)
		decisions = append(decisions, passDecisions...)
	}

	return nil, decisions, &gn.Error{
		Code: errcode.RepairUnresolvableError,
		Msg:  "Lineage conflicts remain after repair",
		Err: fmt.Errorf(
			"conflicts not resolved after %d repair passes", maxPasses,
		),
	}
}

// repairPass processes every conflicting rank/label pair once,
// ancestor ranks before descendant ranks so repairs are stable when
// conflicts cascade. Rows marked for exclusion stay visible until the
// end of the pass: a removal decision at one rank cannot be
// invalidated by a later rank's removal of the same rows.
func repairPass(
	table []lineage.Row,
	conflicts Conflicts,
	ranks rank.Set,
) ([]lineage.Row, []Decision) {
	removed := make(map[int]struct{})
	var decisions []Decision

	for i, rnk := range ranks {
		for _, label := range conflicts[rnk] {
			var subgroup []int
			for j := range table {
				if table[j].Labels[i] == label {
					subgroup = append(subgroup, j)
				}
			}
			if len(subgroup) == 0 {
				// The label was already renamed by a shallower repair.
				continue
			}
			d, ok := tryRemoval(table, subgroup, i, rnk, label, removed)
			if !ok {
				d = renameSubgroup(table, subgroup, i, rnk, label)
			}
			decisions = append(decisions, d)
		}
	}

	kept := make([]lineage.Row, 0, len(table))
	for j := range table {
		if _, ok := removed[j]; !ok {
			kept = append(kept, table[j])
		}
	}
	return kept, decisions
}

// tryRemoval checks whether dropping the rows of the subgroup whose
// full ancestor path is placeholder-derived leaves a single distinct
// ancestor path. On success the candidates are marked for exclusion
// and a removal decision is returned.
func tryRemoval(
	table []lineage.Row,
	subgroup []int,
	idx int,
	rnk, label string,
	removed map[int]struct{},
) (Decision, bool) {
	var candidates []int
	paths := make(map[string]struct{})
	for _, j := range subgroup {
		if placeholderAncestry(table[j].Labels, idx) {
			candidates = append(candidates, j)
			continue
		}
		paths[strings.Join(table[j].Labels[:idx], ";")] = struct{}{}
	}
	if len(paths) != 1 || len(candidates) == 0 {
		return Decision{}, false
	}

	bins := make([]string, 0, len(candidates))
	for _, j := range candidates {
		removed[j] = struct{}{}
		bins = append(bins, table[j].BIN)
	}
	sort.Strings(bins)
	return Decision{
		Rank:        rnk,
		Label:       label,
		Action:      ActionRemoved,
		RemovedBINs: bins,
	}, true
}

// renameSubgroup disambiguates a conflicting label by prefixing it
// with the immediate parent label of each row, so every distinct
// ancestor path gets a path-specific name. The rename is applied at
// the conflicting rank and every deeper rank carrying the label,
// keeping placeholder chains and unresolved markers consistent.
func renameSubgroup(
	table []lineage.Row,
	subgroup []int,
	idx int,
	rnk, label string,
) Decision {
	newLabels := make(map[string]struct{})
	for _, j := range subgroup {
		parent := table[j].Labels[idx-1]
		renamed := parent + "_" + label
		newLabels[renamed] = struct{}{}
		for k := idx; k < len(table[j].Labels); k++ {
			table[j].Labels[k] = strings.ReplaceAll(
				table[j].Labels[k], label, renamed,
			)
		}
	}

	labels := make([]string, 0, len(newLabels))
	for l := range newLabels {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return Decision{
		Rank:      rnk,
		Label:     label,
		Action:    ActionPrefixed,
		NewLabels: labels,
	}
}

// placeholderAncestry reports whether every ancestor rank below the
// root is placeholder-derived, i.e. the row's ancestry above the
// conflicting rank carries no genuine classification.
func placeholderAncestry(labels []string, idx int) bool {
	for i := 1; i < idx; i++ {
		if !rank.IsPlaceholder(labels[i]) {
			return false
		}
	}
	return true
}
