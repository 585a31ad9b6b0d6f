// Package namecheck provides a pool of gnparser instances for checking
// that resolved terminal labels are well-formed scientific names.
// This is a pure package - parsing is computation, not I/O. The check
// is a reporting aid only; it never mutates lineages.
package namecheck

import (
	"runtime"

	"github.com/gnames/gnbintax/pkg/lineage"
	"github.com/gnames/gnbintax/pkg/rank"
	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/gnames/gnparser"
)

// Pool provides reusable gnparser instances for concurrent name
// checking.
type Pool interface {
	// Parseable reports whether the label parses as a scientific name.
	// Safe for concurrent use.
	Parseable(label string) bool

	// Close shuts down the parser pool and releases resources.
	// After calling Close, the pool should not be used.
	Close()
}

type poolImpl struct {
	ch chan gnparser.GNparser
}

// NewPool creates a parser pool with the specified number of workers.
// If jobsNum is 0, it defaults to runtime.NumCPU(). Parsers use the
// zoological code, matching the animal-dominated BIN data.
func NewPool(jobsNum int) Pool {
	size := jobsNum
	if size == 0 {
		size = runtime.NumCPU()
	}
	cfg := gnparser.NewConfig(
		gnparser.OptCode(nomcode.Zoological),
	)
	return &poolImpl{ch: gnparser.NewPool(cfg, size)}
}

func (p *poolImpl) Parseable(label string) bool {
	prs := <-p.ch
	res := prs.ParseName(label)
	p.ch <- prs
	return res.Parsed
}

func (p *poolImpl) Close() {
	if p.ch != nil {
		close(p.ch)
		for range p.ch {
		}
	}
}

// Suspicious returns the terminal-rank labels of the table that are
// neither placeholder-derived nor unresolved markers and still fail to
// parse as scientific names. Each label is reported once, sorted by
// first appearance.
func Suspicious(rows []lineage.Row, ranks rank.Set, p Pool) []string {
	last := len(ranks) - 1
	seen := make(map[string]struct{})
	var res []string
	for _, row := range rows {
		label := row.Labels[last]
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		if rank.IsPlaceholder(label) || rank.IsUnresolved(label) {
			continue
		}
		if !p.Parseable(label) {
			res = append(res, label)
		}
	}
	return res
}
