// Package rank defines the ordered taxonomic rank schema shared by the
// placeholder filler, the consensus calculator and the uniqueness
// validator. Rank order is semantically load-bearing: rank i is always
// the parent-level of rank i+1.
//
// The package is also the single home of the placeholder convention.
// A placeholder label carries a trailing run of 'X' characters
// (Insecta_X, Insecta_XX) and denotes "rank unknown, inherited from an
// ancestor". All components must use the predicates defined here;
// duplicating the pattern risks semantic drift between them.
package rank

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnbintax/pkg/errcode"
)

// Set is an ordered list of rank names, parent before child.
type Set []string

// New validates rank names and returns them as a Set.
// Ranks must be non-empty and unique.
func New(ranks []string) (Set, error) {
	if len(ranks) == 0 {
		return nil, &gn.Error{
			Code: errcode.RankEmptyError,
			Msg:  "Rank list cannot be empty",
			Err:  fmt.Errorf("empty rank list"),
		}
	}
	seen := make(map[string]struct{}, len(ranks))
	for _, r := range ranks {
		if _, ok := seen[r]; ok {
			return nil, &gn.Error{
				Code: errcode.RankDuplicateError,
				Msg:  fmt.Sprintf("Rank <em>%s</em> appears more than once", r),
				Err:  fmt.Errorf("duplicate rank %q", r),
			}
		}
		seen[r] = struct{}{}
	}
	return Set(slices.Clone(ranks)), nil
}

// Index returns the position of a rank, or -1 when absent.
func (s Set) Index(rank string) int {
	return slices.Index(s, rank)
}

// Root returns the first (coarsest) rank.
func (s Set) Root() string {
	return s[0]
}

// Ancestors returns the ranks shallower than the rank at index i.
func (s Set) Ancestors(i int) Set {
	return s[:i]
}

var placeholderRx = regexp.MustCompile(`_X+$`)

// IsPlaceholder reports whether a label is placeholder-derived, i.e.
// ends with an underscore followed by one or more X characters.
func IsPlaceholder(label string) bool {
	return placeholderRx.MatchString(label)
}

// ExtendPlaceholder derives the placeholder label for a missing rank
// from its parent's label. A fresh chain starts with "_X"; an existing
// chain grows by one literal X.
func ExtendPlaceholder(parent string) string {
	if IsPlaceholder(parent) {
		return parent + "X"
	}
	return parent + "_X"
}

// UnresolvedPrefix marks rank labels deeper than the consensus could
// resolve.
const UnresolvedPrefix = "unresolved."

// Unresolved returns the synthetic marker for a rank that could not be
// resolved below the given last known label.
func Unresolved(lastKnown string) string {
	return UnresolvedPrefix + lastKnown
}

// IsUnresolved reports whether a label is an unresolved marker.
func IsUnresolved(label string) bool {
	return strings.HasPrefix(label, UnresolvedPrefix)
}
