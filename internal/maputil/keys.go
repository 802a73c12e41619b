// Package maputil holds small generic map helpers.
package maputil

import (
	"cmp"
	"maps"
	"slices"
)

// SortedKeys returns the keys of m in ascending order. The result is never
// nil, so ranging over it and comparing it in tests behave the same for an
// empty or nil map.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	keys = slices.AppendSeq(keys, maps.Keys(m))
	slices.Sort(keys)
	return keys
}
