package domain

import "sort"

// FactorSet is the set of canonical data-factor identifiers referenced by one
// artifact's source. Indicator references carry the "indicator:" prefix so they
// never collide with plain field references of the same literal name.
type FactorSet map[string]struct{}

// IndicatorPrefix distinguishes indicator accessor references from plain
// data-field references.
const IndicatorPrefix = "indicator:"

// NewFactorSet creates a FactorSet from the given identifiers.
func NewFactorSet(ids ...string) FactorSet {
	fs := make(FactorSet, len(ids))
	for _, id := range ids {
		fs[id] = struct{}{}
	}
	return fs
}

// Add inserts a factor identifier.
func (fs FactorSet) Add(id string) {
	fs[id] = struct{}{}
}

// Contains reports whether id is in the set.
func (fs FactorSet) Contains(id string) bool {
	_, ok := fs[id]
	return ok
}

// Sorted returns the identifiers in ascending order for deterministic output.
func (fs FactorSet) Sorted() []string {
	out := make([]string, 0, len(fs))
	for id := range fs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Jaccard returns |fs ∩ other| / |fs ∪ other|, or 0 if the union is empty.
func (fs FactorSet) Jaccard(other FactorSet) float64 {
	union := len(fs)
	intersection := 0
	for id := range other {
		if _, ok := fs[id]; ok {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
