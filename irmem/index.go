package irmem

import "sort"

// allocationIndex is an ordered map from aligned_start to *Allocation,
// implemented as a slice kept sorted by aligned_start and searched with
// sort.Search (binary search). No ordered-map/B-tree library appears
// anywhere in the reference corpus (see DESIGN.md); a slice plus the
// standard library's sort.Search gives the same O(log n) two-probe lookup
// IRMemoryMap.cpp relies on (lower_bound, then step back at most once)
// without reaching for a data structure nothing in the corpus uses.
type allocationIndex struct {
	allocs []*Allocation
}

// lowerBound returns the index of the first allocation whose aligned_start
// is >= addr (len(allocs) if none).
func (idx *allocationIndex) lowerBound(addr uint64) int {
	return sort.Search(len(idx.allocs), func(i int) bool {
		return idx.allocs[i].alignedStart >= addr
	})
}

func (idx *allocationIndex) insert(a *Allocation) {
	i := idx.lowerBound(a.alignedStart)
	idx.allocs = append(idx.allocs, nil)
	copy(idx.allocs[i+1:], idx.allocs[i:])
	idx.allocs[i] = a
}

// findExact returns the allocation keyed exactly at addr.
func (idx *allocationIndex) findExact(addr uint64) (*Allocation, bool) {
	i := idx.lowerBound(addr)
	if i < len(idx.allocs) && idx.allocs[i].alignedStart == addr {
		return idx.allocs[i], true
	}
	return nil, false
}

// erase removes the allocation keyed exactly at addr, if any.
func (idx *allocationIndex) erase(addr uint64) {
	i := idx.lowerBound(addr)
	if i < len(idx.allocs) && idx.allocs[i].alignedStart == addr {
		idx.allocs = append(idx.allocs[:i], idx.allocs[i+1:]...)
	}
}

// findContaining locates the unique allocation whose interval encloses
// [addr, addr+size). Two-probe: take the first key >= addr; if that key is
// strictly past addr, step back one. Exhaustive because intervals are
// disjoint and keyed by start (IRMemoryMap::FindAllocation).
func (idx *allocationIndex) findContaining(addr, size uint64) (*Allocation, bool) {
	i := idx.lowerBound(addr)
	if i == len(idx.allocs) || idx.allocs[i].alignedStart > addr {
		if i == 0 {
			return nil, false
		}
		i--
	}
	a := idx.allocs[i]
	if a.alignedStart <= addr && a.alignedStart+a.size >= addr+size {
		return a, true
	}
	return nil, false
}

// intersects reports whether any live allocation's interval intersects
// [addr, addr+size). Only the candidate at-or-after addr and its immediate
// predecessor need checking: adjacency of disjoint intervals makes any
// non-adjacent candidate impossible (IRMemoryMap::IntersectsAllocation).
func (idx *allocationIndex) intersects(addr, size uint64) bool {
	i := idx.lowerBound(addr)
	if i < len(idx.allocs) && intervalsIntersect(addr, size, idx.allocs[i].alignedStart, idx.allocs[i].size) {
		return true
	}
	if i > 0 && intervalsIntersect(addr, size, idx.allocs[i-1].alignedStart, idx.allocs[i-1].size) {
		return true
	}
	return false
}

// last returns the allocation with the greatest aligned_start, used by the
// host pseudo-heap's bump search.
func (idx *allocationIndex) last() (*Allocation, bool) {
	if len(idx.allocs) == 0 {
		return nil, false
	}
	return idx.allocs[len(idx.allocs)-1], true
}

func (idx *allocationIndex) empty() bool { return len(idx.allocs) == 0 }

// intervalsIntersect reports whether half-open intervals [a1, a1+s1) and
// [a2, a2+s2) overlap.
func intervalsIntersect(a1, s1, a2, s2 uint64) bool {
	return a2 < a1+s1 && a1 < a2+s2
}
