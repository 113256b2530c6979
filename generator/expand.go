package generator

import (
	"iter"

	"github.com/CatConfLang/ddt/params"
	"github.com/CatConfLang/ddt/types"
)

// Expand yields the Cartesian product of sets, the last set varying
// fastest. Each entry is unpacked to its set's depth plus unpackAll before
// it is merged. Every iteration reloads the sets.
func Expand(sets []*params.Resolved, unpackAll int) iter.Seq[types.Combination] {
	return func(yield func(types.Combination) bool) {
		product(loadEntries(sets, unpackAll), types.Identity(), yield)
	}
}

// Union yields the entries of each set in turn, each merged on its own
// into a combination. With no sets it yields the identity once, like
// Expand.
func Union(sets []*params.Resolved, unpackAll int) iter.Seq[types.Combination] {
	return func(yield func(types.Combination) bool) {
		if len(sets) == 0 {
			yield(types.Identity())
			return
		}
		for _, entries := range loadEntries(sets, unpackAll) {
			for _, e := range entries {
				if !yield(types.Identity().Merge(e)) {
					return
				}
			}
		}
	}
}

// loadEntries loads every set and unpacks its entries.
func loadEntries(sets []*params.Resolved, unpackAll int) [][]types.Entry {
	lists := make([][]types.Entry, len(sets))
	for i, set := range sets {
		entries := set.Collect()
		depth := set.Depth + unpackAll
		for j := range entries {
			if entries[j].Failure == nil {
				entries[j].Args = types.Unpack(entries[j].Args, depth)
			}
		}
		lists[i] = entries
	}
	return lists
}

func product(lists [][]types.Entry, acc types.Combination, yield func(types.Combination) bool) bool {
	if len(lists) == 0 {
		return yield(acc)
	}
	for _, e := range lists[0] {
		if !product(lists[1:], acc.Merge(e), yield) {
			return false
		}
	}
	return true
}

// Count returns the number of combinations Expand yields for sets.
func Count(sets []*params.Resolved) int {
	n := 1
	for _, set := range sets {
		n *= set.Len()
	}
	return n
}
