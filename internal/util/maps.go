package util

import (
	"cmp"
	"slices"
)

// CountedKeys returns the map's keys ordered by descending count, with ties
// broken by ascending key. Useful for turning tallies into stable rankings.
func CountedKeys[K cmp.Ordered](m map[K]int) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b K) int {
		if m[a] != m[b] {
			return cmp.Compare(m[b], m[a])
		}
		return cmp.Compare(a, b)
	})
	return keys
}
