package ann

import (
	"fmt"
	"sort"
)

// Exact is a brute-force Index. Every query scans all items, so results
// are exact and ties are broken by the lowest id.
type Exact struct {
	items []Item
	dim   int
}

// NewExact returns an empty linear-scan index.
func NewExact() *Exact {
	return &Exact{}
}

// Build copies items into the index.
func (e *Exact) Build(items []Item) error {
	dim, err := checkItems(items)
	if err != nil {
		return err
	}
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})
	e.items = sorted
	e.dim = dim
	return nil
}

// Query returns the k nearest ids. searchEffort is ignored.
func (e *Exact) Query(v Vector, k int, _ int) ([]int, error) {
	if !e.Built() {
		return nil, ErrNotBuilt
	}
	if len(v) != e.dim {
		return nil, fmt.Errorf("query has %d components, want %d: %w",
			len(v), e.dim, ErrDimensionMismatch)
	}
	k = clampK(k, len(e.items))
	if k == 1 {
		best, bestDist := 0, SquaredDistance(e.items[0].Vector, v)
		for i := 1; i < len(e.items); i++ {
			if d := SquaredDistance(e.items[i].Vector, v); d < bestDist {
				best, bestDist = i, d
			}
		}
		return []int{e.items[best].ID}, nil
	}

	ranked := make([]neighbor, len(e.items))
	for i, it := range e.items {
		ranked[i] = neighbor{id: it.ID, dist: SquaredDistance(it.Vector, v)}
	}
	return topK(ranked, k), nil
}

// Built reports whether Build has succeeded.
func (e *Exact) Built() bool { return e.items != nil }

// Len returns the number of items.
func (e *Exact) Len() int { return len(e.items) }

// Dim returns the vector dimensionality.
func (e *Exact) Dim() int { return e.dim }

type neighbor struct {
	id   int
	dist int64
}

// topK sorts candidates by distance, then id, and returns the first k ids.
func topK(candidates []neighbor, k int) []int {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].id < candidates[j].id
	})
	if k > len(candidates) {
		k = len(candidates)
	}
	ids := make([]int, k)
	for i := range ids {
		ids[i] = candidates[i].id
	}
	return ids
}
