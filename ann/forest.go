package ann

import (
	"container/heap"
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	// DefaultTrees is the number of trees built when no option is given.
	DefaultTrees = 50

	// DefaultLeafSize is the largest number of items stored in one leaf.
	DefaultLeafSize = 16

	// splitAttempts bounds how many random pivot pairs are tried before a
	// node gives up splitting and becomes an oversized leaf.
	splitAttempts = 8
)

// Forest is an approximate Index made of random-projection trees. Each
// tree recursively splits its items by the hyperplane that bisects two
// randomly chosen items. More trees raise the chance that the true nearest
// neighbor shares a leaf with the query, at the cost of build time, memory
// and query latency.
type Forest struct {
	trees    int
	leafSize int
	seed     uint64
	seeded   bool

	items []Item
	roots []*forestNode
	dim   int
}

// ForestOption configures a Forest.
type ForestOption func(*Forest)

// WithTrees sets the number of trees. Values below 1 are raised to 1.
func WithTrees(n int) ForestOption {
	return func(f *Forest) {
		f.trees = max(n, 1)
	}
}

// WithLeafSize sets the maximum number of items kept in a leaf.
func WithLeafSize(n int) ForestOption {
	return func(f *Forest) {
		f.leafSize = max(n, 1)
	}
}

// WithSeed makes the random pivot selection reproducible.
func WithSeed(seed uint64) ForestOption {
	return func(f *Forest) {
		f.seed = seed
		f.seeded = true
	}
}

// NewForest returns an unbuilt forest.
func NewForest(opts ...ForestOption) *Forest {
	f := &Forest{
		trees:    DefaultTrees,
		leafSize: DefaultLeafSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// forestNode is either an inner node holding a hyperplane or a leaf
// holding positions into Forest.items.
type forestNode struct {
	normal      []float64
	offset      float64
	left, right *forestNode
	members     []int32
}

func (n *forestNode) isLeaf() bool { return n.normal == nil }

// margin returns the signed distance-like value of v relative to the
// node's hyperplane. Positive margins descend right.
func (n *forestNode) margin(v Vector) float64 {
	m := n.offset
	for i, c := range v {
		m += n.normal[i] * float64(c)
	}
	return m
}

// Build constructs all trees over items.
func (f *Forest) Build(items []Item) error {
	dim, err := checkItems(items)
	if err != nil {
		return err
	}

	seed := f.seed
	if !f.seeded {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	f.items = make([]Item, len(items))
	copy(f.items, items)
	f.dim = dim

	roots := make([]*forestNode, f.trees)
	for t := range roots {
		members := make([]int32, len(items))
		for i := range members {
			members[i] = int32(i)
		}
		roots[t] = f.buildNode(members, rng)
	}
	f.roots = roots
	return nil
}

// buildNode splits members until every leaf holds at most leafSize items.
func (f *Forest) buildNode(members []int32, rng *rand.Rand) *forestNode {
	if len(members) <= f.leafSize {
		return &forestNode{members: members}
	}

	for attempt := 0; attempt < splitAttempts; attempt++ {
		normal, offset, ok := f.pickHyperplane(members, rng)
		if !ok {
			continue
		}
		node := &forestNode{normal: normal, offset: offset}
		var left, right []int32
		for _, m := range members {
			side := node.margin(f.items[m].Vector)
			if side > 0 || (side == 0 && rng.IntN(2) == 0) {
				right = append(right, m)
			} else {
				left = append(left, m)
			}
		}
		if len(left) == 0 || len(right) == 0 {
			continue
		}
		node.left = f.buildNode(left, rng)
		node.right = f.buildNode(right, rng)
		return node
	}

	// Every pivot pair failed to separate the members, which happens
	// when they are (nearly) identical. Keep them together.
	return &forestNode{members: members}
}

// pickHyperplane chooses two distinct members and returns the hyperplane
// bisecting them. ok is false if the two vectors are identical.
func (f *Forest) pickHyperplane(members []int32, rng *rand.Rand) ([]float64, float64, bool) {
	i := rng.IntN(len(members))
	j := rng.IntN(len(members) - 1)
	if j >= i {
		j++
	}
	p := f.items[members[i]].Vector
	q := f.items[members[j]].Vector

	normal := make([]float64, f.dim)
	var norm, offset float64
	for d := range normal {
		diff := float64(p[d]) - float64(q[d])
		normal[d] = diff
		norm += diff * diff
	}
	if norm == 0 {
		return nil, 0, false
	}
	norm = math.Sqrt(norm)
	for d := range normal {
		normal[d] /= norm
		mid := (float64(p[d]) + float64(q[d])) / 2
		offset -= normal[d] * mid
	}
	return normal, offset, true
}

// Query returns up to k ids nearest to v. The traversal visits nodes
// across all trees in order of how close v lies to their splitting
// hyperplanes and stops once searchEffort distinct candidates have been
// collected. searchEffort <= 0 uses trees*k.
func (f *Forest) Query(v Vector, k int, searchEffort int) ([]int, error) {
	if !f.Built() {
		return nil, ErrNotBuilt
	}
	if len(v) != f.dim {
		return nil, fmt.Errorf("query has %d components, want %d: %w",
			len(v), f.dim, ErrDimensionMismatch)
	}
	k = clampK(k, len(f.items))
	if searchEffort <= 0 {
		searchEffort = f.trees * k
	}
	searchEffort = max(searchEffort, k)

	pq := make(nodeQueue, 0, len(f.roots))
	for _, root := range f.roots {
		pq = append(pq, queuedNode{node: root, priority: math.Inf(1)})
	}
	heap.Init(&pq)

	seen := make(map[int32]struct{}, searchEffort)
	var candidates []neighbor
	for pq.Len() > 0 && len(candidates) < searchEffort {
		top := heap.Pop(&pq).(queuedNode)
		node := top.node
		if node.isLeaf() {
			for _, m := range node.members {
				if _, ok := seen[m]; ok {
					continue
				}
				seen[m] = struct{}{}
				it := f.items[m]
				candidates = append(candidates, neighbor{
					id:   it.ID,
					dist: SquaredDistance(it.Vector, v),
				})
			}
			continue
		}
		margin := node.margin(v)
		heap.Push(&pq, queuedNode{node: node.right, priority: math.Min(top.priority, margin)})
		heap.Push(&pq, queuedNode{node: node.left, priority: math.Min(top.priority, -margin)})
	}

	return topK(candidates, k), nil
}

// Built reports whether Build has succeeded.
func (f *Forest) Built() bool { return f.roots != nil }

// Len returns the number of items.
func (f *Forest) Len() int { return len(f.items) }

// Dim returns the vector dimensionality.
func (f *Forest) Dim() int { return f.dim }

type queuedNode struct {
	node     *forestNode
	priority float64
}

// nodeQueue is a max-heap of nodes ordered by priority: nodes whose
// hyperplanes lie furthest on the query's side are explored first.
type nodeQueue []queuedNode

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].priority > q[j].priority }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(queuedNode)) }
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
