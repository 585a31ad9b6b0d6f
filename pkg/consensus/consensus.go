// Package consensus reduces the candidate lineages of one BIN to a
// single authoritative lineage by weighted threshold vote.
//
// The calculator iterates rank depths from most to least specific. At
// each depth records are grouped (by the whole lineage tuple for the
// "full" method, by the single rank label for the "rank" method),
// weights are summed per group and turned into percentages of the BIN
// total. The first depth at which exactly one group reaches the
// threshold wins; deeper ranks get "unresolved.<label>" markers.
//
// Results are order-independent: grouping and tie-breaks depend only on
// label and weight content, never on input record order, so BIN groups
// can be processed by unordered workers.
package consensus

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnbintax/pkg/errcode"
	"github.com/gnames/gnbintax/pkg/lineage"
	"github.com/gnames/gnbintax/pkg/rank"
)

// Method selects the grouping strategy of the vote.
type Method int

const (
	// MethodFull groups records by the tuple of labels from the root
	// down to the tested rank.
	MethodFull Method = iota

	// MethodRank groups records by the tested rank's label alone,
	// ignoring ancestor ranks during the quorum test.
	MethodRank
)

// String implements fmt.Stringer.
func (m Method) String() string {
	switch m {
	case MethodFull:
		return "full"
	case MethodRank:
		return "rank"
	}
	return "unknown"
}

// ParseMethod converts a string flag to a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full":
		return MethodFull, nil
	case "rank":
		return MethodRank, nil
	}
	return MethodFull, &gn.Error{
		Code: errcode.ConsensusMethodError,
		Msg:  fmt.Sprintf("Unknown consensus method <em>%s</em>", s),
		Err:  fmt.Errorf("unknown consensus method %q", s),
	}
}

// Params holds the knobs of one consensus computation.
type Params struct {
	Ranks rank.Set

	// Threshold is the agreement percentage in (0, 100]. The comparison
	// is inclusive: a group landing exactly on the threshold qualifies.
	Threshold float64

	Method Method

	// ExcludeMissingData discards groups whose labels carry placeholder
	// suffixes before percentages are computed.
	ExcludeMissingData bool
}

// group is one candidate lineage (or single label) with its summed
// vote weight.
type group struct {
	key    string
	labels []string
	weight int
}

// Calculate computes the consensus lineage for the records of one BIN.
// All records must belong to the given BIN and carry fully filled
// lineages.
func Calculate(
	bin string,
	recs []lineage.Record,
	p Params,
) (lineage.Row, error) {
	var row lineage.Row

	if len(p.Ranks) == 0 {
		return row, &gn.Error{
			Code: errcode.ConsensusNoRanksError,
			Msg: fmt.Sprintf(
				"No ranks configured for consensus of BIN <em>%s</em>", bin,
			),
			Err: fmt.Errorf("bin %q: empty rank list", bin),
		}
	}
	if len(recs) == 0 {
		return row, &gn.Error{
			Code: errcode.ConsensusEmptyGroupError,
			Msg:  fmt.Sprintf("BIN <em>%s</em> has no records", bin),
			Err:  fmt.Errorf("bin %q: empty record group", bin),
		}
	}
	if p.Threshold <= 0 || p.Threshold > 100 {
		return row, &gn.Error{
			Code: errcode.ConsensusThresholdError,
			Msg: fmt.Sprintf(
				"Threshold %v is outside (0, 100]", p.Threshold,
			),
			Err: fmt.Errorf("threshold %v outside (0, 100]", p.Threshold),
		}
	}

	var resolved []string
	switch p.Method {
	case MethodRank:
		resolved = consensusByRank(recs, p)
	default:
		resolved = consensusByLineage(recs, p)
	}

	labels := make([]string, len(p.Ranks))
	copy(labels, resolved)
	lastKnown := resolved[len(resolved)-1]
	for i := len(resolved); i < len(p.Ranks); i++ {
		labels[i] = rank.Unresolved(lastKnown)
	}
	return lineage.Row{BIN: bin, Labels: labels}, nil
}

// consensusByLineage implements the "full" method: iterate depth i from
// all ranks down to the root, group records by labels[:i], and stop at
// the first depth where exactly one group reaches the threshold.
// Termination at the root is guaranteed: when even the root depth has
// no single qualifying group, the heaviest root group wins.
func consensusByLineage(recs []lineage.Record, p Params) []string {
	for i := len(p.Ranks); i >= 1; i-- {
		groups := groupByDepth(recs, i)
		kept, total := filterGroups(groups, p.ExcludeMissingData)
		qualifying := quorum(kept, total, p.Threshold)
		if len(qualifying) == 1 {
			return qualifying[0].labels
		}
		if i == 1 {
			return heaviest(kept, groups).labels
		}
	}
	// Unreachable: the loop always returns at i == 1.
	return nil
}

// consensusByRank implements the "rank" method: the quorum test at
// depth i considers only the label at ranks[i-1]. Once a single label
// wins, ancestor labels are taken from the best-scoring ancestor
// combination among records carrying the winning label.
func consensusByRank(recs []lineage.Record, p Params) []string {
	for i := len(p.Ranks); i >= 1; i-- {
		groups := groupByRank(recs, i-1)
		kept, total := filterGroups(groups, p.ExcludeMissingData)
		qualifying := quorum(kept, total, p.Threshold)
		if len(qualifying) == 1 {
			win := qualifying[0].labels[0]
			return append(bestAncestors(recs, i-1, win), win)
		}
		if i == 1 {
			return heaviest(kept, groups).labels
		}
	}
	return nil
}

// groupByDepth groups records by the tuple of labels at ranks[0:depth].
func groupByDepth(recs []lineage.Record, depth int) map[string]*group {
	groups := make(map[string]*group)
	for _, rec := range recs {
		labels := rec.Labels[:depth]
		key := strings.Join(labels, "\x1f")
		if g, ok := groups[key]; ok {
			g.weight += rec.Weight
			continue
		}
		groups[key] = &group{key: key, labels: labels, weight: rec.Weight}
	}
	return groups
}

// groupByRank groups records by the single label at ranks[idx].
func groupByRank(recs []lineage.Record, idx int) map[string]*group {
	groups := make(map[string]*group)
	for _, rec := range recs {
		key := rec.Labels[idx]
		if g, ok := groups[key]; ok {
			g.weight += rec.Weight
			continue
		}
		groups[key] = &group{
			key:    key,
			labels: []string{key},
			weight: rec.Weight,
		}
	}
	return groups
}

// filterGroups drops placeholder-labelled groups when requested and
// returns the surviving groups with their summed weight, which becomes
// the denominator of the percentage computation.
func filterGroups(
	groups map[string]*group,
	excludeMissing bool,
) ([]*group, int) {
	kept := make([]*group, 0, len(groups))
	total := 0
	for _, g := range groups {
		if excludeMissing && hasPlaceholder(g.labels) {
			continue
		}
		kept = append(kept, g)
		total += g.weight
	}
	return kept, total
}

func hasPlaceholder(labels []string) bool {
	for _, l := range labels {
		if rank.IsPlaceholder(l) {
			return true
		}
	}
	return false
}

// quorum returns the groups whose share of the total weight meets or
// exceeds the threshold. The comparison avoids a division so that a
// group landing exactly on the threshold always qualifies.
func quorum(groups []*group, total int, threshold float64) []*group {
	var res []*group
	if total == 0 {
		return res
	}
	for _, g := range groups {
		if float64(g.weight)*100 >= threshold*float64(total) {
			res = append(res, g)
		}
	}
	return res
}

// heaviest picks the group with the highest weight, breaking ties by
// the lexicographically smallest key so the choice never depends on
// input order. Used only at the root depth, where a single root
// grouping is expected and a split is a modeling violation resolved in
// favor of the dominant root.
func heaviest(kept []*group, all map[string]*group) *group {
	cands := kept
	if len(cands) == 0 {
		cands = make([]*group, 0, len(all))
		for _, g := range all {
			cands = append(cands, g)
		}
	}
	best := cands[0]
	for _, g := range cands[1:] {
		if g.weight > best.weight ||
			(g.weight == best.weight && g.key < best.key) {
			best = g
		}
	}
	return best
}

// ancestorCombo is one distinct ancestor tuple observed among records
// that share the winning label, scored for the rank-method refinement.
type ancestorCombo struct {
	key          string
	labels       []string
	weight       int
	placeholders int
}

// bestAncestors resolves the ancestor labels for a rank-method winner.
// Among records carrying the winning label at ranks[idx], distinct
// ancestor combinations are ranked by placeholder count (fewer first),
// then by total vote weight (higher first), then by ancestor string for
// determinism.
func bestAncestors(
	recs []lineage.Record,
	idx int,
	winner string,
) []string {
	combos := make(map[string]*ancestorCombo)
	for _, rec := range recs {
		if rec.Labels[idx] != winner {
			continue
		}
		labels := rec.Labels[:idx]
		key := strings.Join(labels, "\x1f")
		if c, ok := combos[key]; ok {
			c.weight += rec.Weight
			continue
		}
		n := 0
		for _, l := range labels {
			if rank.IsPlaceholder(l) {
				n++
			}
		}
		combos[key] = &ancestorCombo{
			key:          key,
			labels:       labels,
			weight:       rec.Weight,
			placeholders: n,
		}
	}

	list := make([]*ancestorCombo, 0, len(combos))
	for _, c := range combos {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].placeholders != list[j].placeholders {
			return list[i].placeholders < list[j].placeholders
		}
		if list[i].weight != list[j].weight {
			return list[i].weight > list[j].weight
		}
		return list[i].key < list[j].key
	})
	return append([]string{}, list[0].labels...)
}
