// Package nodeset provides the ordered, deduplicated identifier sets that
// group resolution produces and operations consume.
package nodeset

import (
	"slices"
	"strings"

	"github.com/shastaops/csmgo/internal/xname"
)

// Set is a collection of identifiers, sorted by xname order with duplicates
// removed. The zero value is the empty set. Sets are immutable: every
// operation returns a new Set, so a Set handed to a caller never changes
// underneath it.
type Set struct {
	ids []xname.XName
}

// New builds a Set from the given identifiers.
func New(ids ...xname.XName) Set {
	out := slices.Clone(ids)
	slices.SortFunc(out, xname.Compare)
	out = slices.CompactFunc(out, func(a, b xname.XName) bool { return xname.Compare(a, b) == 0 })
	return Set{ids: out}
}

// FromStrings parses each element and builds a Set. The first parse failure
// aborts the whole conversion.
func FromStrings(texts []string) (Set, error) {
	ids := make([]xname.XName, 0, len(texts))
	for _, t := range texts {
		x, err := xname.Parse(t)
		if err != nil {
			return Set{}, err
		}
		ids = append(ids, x)
	}
	return New(ids...), nil
}

// Members returns the identifiers in order. The slice is a copy.
func (s Set) Members() []xname.XName {
	return slices.Clone(s.ids)
}

// Strings returns the canonical string form of every member, in order.
func (s Set) Strings() []string {
	out := make([]string, len(s.ids))
	for i, x := range s.ids {
		out[i] = x.String()
	}
	return out
}

// Len reports the number of members.
func (s Set) Len() int { return len(s.ids) }

// IsEmpty reports whether the set has no members. An empty set is a valid
// resolution outcome, not an error.
func (s Set) IsEmpty() bool { return len(s.ids) == 0 }

// Contains reports membership via binary search.
func (s Set) Contains(x xname.XName) bool {
	_, found := slices.BinarySearchFunc(s.ids, x, xname.Compare)
	return found
}

// Equal reports whether both sets hold exactly the same members.
func (s Set) Equal(o Set) bool {
	return slices.EqualFunc(s.ids, o.ids, func(a, b xname.XName) bool { return xname.Compare(a, b) == 0 })
}

// Union returns the members present in either set.
func (s Set) Union(o Set) Set {
	return New(append(slices.Clone(s.ids), o.ids...)...)
}

// Intersect returns the members present in both sets.
func (s Set) Intersect(o Set) Set {
	var out []xname.XName
	for _, x := range s.ids {
		if o.Contains(x) {
			out = append(out, x)
		}
	}
	return Set{ids: out}
}

// Difference returns the members of s not present in o.
func (s Set) Difference(o Set) Set {
	var out []xname.XName
	for _, x := range s.ids {
		if !o.Contains(x) {
			out = append(out, x)
		}
	}
	return Set{ids: out}
}

// String joins the members with commas, for log lines and error context.
func (s Set) String() string {
	return strings.Join(s.Strings(), ",")
}
