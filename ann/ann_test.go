package ann

import (
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
)

// randomItems returns n items of dimension dim with ids 0..n-1.
func randomItems(rng *rand.Rand, n, dim int) []Item {
	items := make([]Item, n)
	for i := range items {
		v := make(Vector, dim)
		for d := range v {
			v[d] = uint8(rng.IntN(256))
		}
		items[i] = Item{ID: i, Vector: v}
	}
	return items
}

func indexes() map[string]func() Index {
	return map[string]func() Index{
		"exact":  func() Index { return NewExact() },
		"forest": func() Index { return NewForest(WithSeed(7), WithTrees(10), WithLeafSize(4)) },
	}
}

func TestBuildDimensionMismatch(t *testing.T) {
	t.Parallel()

	items := []Item{
		{ID: 0, Vector: Vector{1, 2, 3}},
		{ID: 1, Vector: Vector{1, 2, 3}},
		{ID: 2, Vector: Vector{1, 2}},
	}
	for name, newIndex := range indexes() {
		idx := newIndex()
		err := idx.Build(items)
		if !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("%s: expected ErrDimensionMismatch, got %v", name, err)
		}
		if idx.Built() {
			t.Errorf("%s: index should not be built after a failed Build", name)
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	t.Parallel()

	for name, newIndex := range indexes() {
		if err := newIndex().Build(nil); !errors.Is(err, ErrEmpty) {
			t.Errorf("%s: expected ErrEmpty, got %v", name, err)
		}
	}
}

func TestQueryBeforeBuild(t *testing.T) {
	t.Parallel()

	for name, newIndex := range indexes() {
		_, err := newIndex().Query(Vector{0}, 1, 0)
		if !errors.Is(err, ErrNotBuilt) {
			t.Errorf("%s: expected ErrNotBuilt, got %v", name, err)
		}
	}
}

func TestQueryDimensionMismatch(t *testing.T) {
	t.Parallel()

	items := []Item{{ID: 0, Vector: Vector{0, 0}}, {ID: 1, Vector: Vector{9, 9}}}
	for name, newIndex := range indexes() {
		idx := newIndex()
		if err := idx.Build(items); err != nil {
			t.Fatalf("%s: Build: %v", name, err)
		}
		if _, err := idx.Query(Vector{1, 2, 3}, 1, 0); !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("%s: expected ErrDimensionMismatch, got %v", name, err)
		}
	}
}

func TestQueryReturnsBuiltIDs(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	items := randomItems(rng, 200, 64)
	// Shift ids away from positions so fabricated ids would show up.
	valid := make(map[int]bool, len(items))
	for i := range items {
		items[i].ID = 1000 + i*3
		valid[items[i].ID] = true
	}

	for name, newIndex := range indexes() {
		idx := newIndex()
		if err := idx.Build(items); err != nil {
			t.Fatalf("%s: Build: %v", name, err)
		}
		if idx.Len() != len(items) || idx.Dim() != 64 {
			t.Errorf("%s: Len/Dim = %d/%d, want %d/64", name, idx.Len(), idx.Dim(), len(items))
		}
		for q := 0; q < 50; q++ {
			query := randomItems(rng, 1, 64)[0].Vector
			ids, err := idx.Query(query, 3, 20)
			if err != nil {
				t.Fatalf("%s: Query: %v", name, err)
			}
			if len(ids) != 3 {
				t.Fatalf("%s: expected 3 ids, got %d", name, len(ids))
			}
			for _, id := range ids {
				if !valid[id] {
					t.Errorf("%s: query returned unknown id %d", name, id)
				}
			}
		}
	}
}

func TestExactTieBreaksOnLowestID(t *testing.T) {
	t.Parallel()

	idx := NewExact()
	items := []Item{
		{ID: 5, Vector: Vector{10, 10}},
		{ID: 2, Vector: Vector{10, 10}},
		{ID: 9, Vector: Vector{200, 200}},
	}
	if err := idx.Build(items); err != nil {
		t.Fatal(err)
	}
	ids, err := idx.Query(Vector{10, 10}, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if ids[0] != 2 {
		t.Errorf("expected lowest tied id 2, got %d", ids[0])
	}
}

func TestForestFindsExactMatches(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(3, 4))
	items := randomItems(rng, 300, 32)
	forest := NewForest(WithSeed(11), WithTrees(20), WithLeafSize(8))
	if err := forest.Build(items); err != nil {
		t.Fatal(err)
	}

	// Querying with an indexed vector always reaches its own leaf first,
	// so the item itself must be returned.
	for _, it := range items {
		ids, err := forest.Query(it.Vector, 1, 0)
		if err != nil {
			t.Fatal(err)
		}
		if ids[0] != it.ID {
			t.Errorf("query for item %d returned %d", it.ID, ids[0])
		}
	}
}

func TestForestRecallAgainstExact(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(5, 6))
	items := randomItems(rng, 500, 16)
	exact := NewExact()
	forest := NewForest(WithSeed(13), WithTrees(50))
	if err := exact.Build(items); err != nil {
		t.Fatal(err)
	}
	if err := forest.Build(items); err != nil {
		t.Fatal(err)
	}

	const queries = 200
	hits := 0
	for q := 0; q < queries; q++ {
		query := randomItems(rng, 1, 16)[0].Vector
		want, _ := exact.Query(query, 1, 0)
		// A search effort covering every item makes the forest exhaustive.
		got, err := forest.Query(query, 1, len(items))
		if err != nil {
			t.Fatal(err)
		}
		if SquaredDistance(items[got[0]].Vector, query) == SquaredDistance(items[want[0]].Vector, query) {
			hits++
		}
	}
	if hits != queries {
		t.Errorf("exhaustive forest search matched exact search %d/%d times", hits, queries)
	}
}

func TestForestIdenticalVectors(t *testing.T) {
	t.Parallel()

	items := make([]Item, 40)
	for i := range items {
		items[i] = Item{ID: i, Vector: Vector{7, 7, 7, 7}}
	}
	forest := NewForest(WithSeed(1), WithLeafSize(2))
	if err := forest.Build(items); err != nil {
		t.Fatal(err)
	}
	ids, err := forest.Query(Vector{7, 7, 7, 7}, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if ids[0] < 0 || ids[0] >= len(items) {
		t.Errorf("unexpected id %d", ids[0])
	}
}

func TestForestSeedReproducible(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(8, 9))
	items := randomItems(rng, 100, 8)
	queries := randomItems(rng, 30, 8)

	a := NewForest(WithSeed(42), WithTrees(3), WithLeafSize(4))
	b := NewForest(WithSeed(42), WithTrees(3), WithLeafSize(4))
	if err := a.Build(items); err != nil {
		t.Fatal(err)
	}
	if err := b.Build(items); err != nil {
		t.Fatal(err)
	}
	for _, q := range queries {
		ra, _ := a.Query(q.Vector, 2, 10)
		rb, _ := b.Query(q.Vector, 2, 10)
		if ra[0] != rb[0] || ra[1] != rb[1] {
			t.Errorf("same seed gave different results: %v vs %v", ra, rb)
		}
	}
}

func TestForestConcurrentQueries(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(10, 11))
	items := randomItems(rng, 100, 16)
	forest := NewForest(WithSeed(3))
	if err := forest.Build(items); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, it := range items {
				ids, err := forest.Query(it.Vector, 1, 0)
				if err != nil {
					t.Error(err)
					return
				}
				if ids[0] != it.ID {
					t.Errorf("concurrent query for %d returned %d", it.ID, ids[0])
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestSquaredDistance(t *testing.T) {
	tests := []struct {
		a, b Vector
		want int64
	}{
		{Vector{0, 0}, Vector{0, 0}, 0},
		{Vector{0, 0}, Vector{3, 4}, 25},
		{Vector{255}, Vector{0}, 65025},
	}
	for _, tt := range tests {
		if got := SquaredDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("SquaredDistance(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
