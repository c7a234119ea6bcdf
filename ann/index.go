// Package ann provides nearest-neighbor search over fixed-length intensity
// vectors. Two implementations share the Index interface: Forest, an
// approximate random-projection forest, and Exact, a linear scan.
package ann

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch is returned when a vector's length differs from
	// the dimensionality the index was built with.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrNotBuilt is returned when an index is queried before Build.
	ErrNotBuilt = errors.New("index not built")

	// ErrEmpty is returned when Build is called without any items.
	ErrEmpty = errors.New("no items to index")
)

// Vector is a flattened row-major sequence of 8-bit intensities.
type Vector []uint8

// Item is a vector together with the caller-assigned id it is indexed under.
type Item struct {
	ID     int
	Vector Vector
}

// Index is the minimal contract a nearest-neighbor structure has to meet.
// Implementations are immutable once Build returns and must be safe for
// concurrent Query calls from that point on.
type Index interface {
	// Build indexes items. The dimensionality is taken from the first item.
	Build(items []Item) error

	// Query returns up to k ids ordered by increasing distance to v.
	// searchEffort bounds the amount of work an approximate index may
	// spend; exact indexes ignore it.
	Query(v Vector, k int, searchEffort int) ([]int, error)

	// Built reports whether Build has completed successfully.
	Built() bool

	// Len returns the number of indexed items.
	Len() int

	// Dim returns the dimensionality of the indexed vectors.
	Dim() int
}

// SquaredDistance returns the squared Euclidean distance between a and b.
// Both vectors must have the same length.
func SquaredDistance(a, b Vector) int64 {
	var sum int64
	for i := range a {
		d := int64(a[i]) - int64(b[i])
		sum += d * d
	}
	return sum
}

// checkItems validates that items share one dimensionality and returns it.
func checkItems(items []Item) (int, error) {
	if len(items) == 0 {
		return 0, ErrEmpty
	}
	dim := len(items[0].Vector)
	for _, it := range items[1:] {
		if len(it.Vector) != dim {
			return 0, fmt.Errorf("item %d has %d components, want %d: %w",
				it.ID, len(it.Vector), dim, ErrDimensionMismatch)
		}
	}
	return dim, nil
}

// clampK limits k to [1, n].
func clampK(k, n int) int {
	if k < 1 {
		return 1
	}
	if k > n {
		return n
	}
	return k
}
