package search

import "slices"

// idSet is an unordered set of record ids.
type idSet map[int64]struct{}

func newIDSet(ids ...int64) idSet {
	s := make(idSet, len(ids))
	s.add(ids...)
	return s
}

func (s idSet) add(ids ...int64) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// intersect keeps only ids also present in other.
func (s idSet) intersect(other []int64) idSet {
	keep := newIDSet(other...)
	out := make(idSet, min(len(s), len(keep)))
	for id := range s {
		if _, ok := keep[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

func (s idSet) sorted() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
