// Package lineage defines the in-memory table of occurrence records and
// resolved lineages that the consensus and reconciliation components
// operate on. It replaces the columnar dataframe idioms of upstream
// pipelines with explicit typed rows: grouping and reduction passes work
// on slices, not on whole-table transformations.
package lineage

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnbintax/pkg/errcode"
	"github.com/gnames/gnbintax/pkg/rank"
)

// Record is one occurrence: a unique identifier, a BIN cluster
// identifier (empty means unclustered), a candidate lineage and a vote
// weight. Labels are parallel to the configured rank set; an empty
// string means the rank is not yet classified.
type Record struct {
	ID     string
	BIN    string
	Labels []string
	Weight int
}

// Row is one authoritative lineage keyed by BIN. Rows are what the
// consensus calculator emits and what the uniqueness validator and
// repairer operate on.
type Row struct {
	BIN    string
	Labels []string
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	return Row{BIN: r.BIN, Labels: slices.Clone(r.Labels)}
}

// Table is an ordered collection of occurrence records sharing one rank
// schema.
type Table struct {
	Ranks   rank.Set
	Records []Record
}

// Fill produces a fully classified copy of labels by propagating
// placeholder chains from the last known ancestor downward. A missing
// rank below a genuine label gets "_X"; a missing rank below a
// placeholder label extends the chain with a bare "X". The parent's
// suffix decides, so chains grow correctly even when the input itself
// already carries placeholder labels.
//
// The root rank must never be empty: a record without a root
// classification is malformed input, not a resolvable ambiguity.
func Fill(labels []string, ranks rank.Set) ([]string, error) {
	if len(labels) != len(ranks) {
		return nil, &gn.Error{
			Code: errcode.LineageLengthError,
			Msg: fmt.Sprintf(
				"Lineage has %d labels for %d ranks", len(labels), len(ranks),
			),
			Err: fmt.Errorf(
				"lineage length %d does not match %d ranks",
				len(labels), len(ranks),
			),
		}
	}
	if labels[0] == "" {
		return nil, &gn.Error{
			Code: errcode.LineageRootNullError,
			Msg: fmt.Sprintf(
				"Root rank <em>%s</em> has no label", ranks.Root(),
			),
			Err: fmt.Errorf("missing %s label", ranks.Root()),
		}
	}

	res := slices.Clone(labels)
	for i := 1; i < len(res); i++ {
		if res[i] == "" {
			res[i] = rank.ExtendPlaceholder(res[i-1])
		}
	}
	return res, nil
}

// FillMissing returns a copy of the table with every record fully
// classified. The first malformed record aborts with its identifier.
func (t *Table) FillMissing() (*Table, error) {
	res := &Table{
		Ranks:   t.Ranks,
		Records: make([]Record, len(t.Records)),
	}
	for i, rec := range t.Records {
		labels, err := Fill(rec.Labels, t.Ranks)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", rec.ID, err)
		}
		rec.Labels = labels
		res.Records[i] = rec
	}
	return res, nil
}

// GroupByBIN partitions records into per-BIN groups. Records without a
// BIN identifier are returned separately as unclustered.
func (t *Table) GroupByBIN() (map[string][]Record, []Record) {
	groups := make(map[string][]Record)
	var unclustered []Record
	for _, rec := range t.Records {
		if rec.BIN == "" {
			unclustered = append(unclustered, rec)
			continue
		}
		groups[rec.BIN] = append(groups[rec.BIN], rec)
	}
	return groups, unclustered
}

// Aggregate merges records that share a BIN and an identical lineage,
// summing their weights. This mirrors the group-by + count step the
// consensus vote expects: each surviving record represents all
// occurrences that voted for the same candidate lineage.
func (t *Table) Aggregate() *Table {
	byKey := make(map[string]*Record)
	for _, rec := range t.Records {
		key := rec.BIN + "\x1f" + strings.Join(rec.Labels, "\x1f")
		if a, ok := byKey[key]; ok {
			a.Weight += rec.Weight
			continue
		}
		byKey[key] = &rec
	}

	recs := make([]Record, 0, len(byKey))
	for _, a := range byKey {
		recs = append(recs, *a)
	}
	// Stable output regardless of map iteration order.
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].BIN != recs[j].BIN {
			return recs[i].BIN < recs[j].BIN
		}
		return strings.Join(recs[i].Labels, "\x1f") <
			strings.Join(recs[j].Labels, "\x1f")
	})
	return &Table{Ranks: t.Ranks, Records: recs}
}
