// Package hnsw is an in-process Hierarchical Navigable Small World index
// over squared Euclidean distance.
//
// The graph is built once from the full matrix and never mutated afterwards,
// so an Index is safe for concurrent searches.
package hnsw

import (
	"container/heap"
	"context"
	"math"
	"math/rand"
	"sort"

	"corpusqa/internal/domain"
	"corpusqa/internal/vectorstore"
)

// Config holds the graph parameters. Zero values fall back to DefaultConfig.
type Config struct {
	M              int
	EfConstruction int
	EfSearch       int
	Seed           int64
}

func DefaultConfig() Config {
	return Config{M: 32, EfConstruction: 200, EfSearch: 50, Seed: 42}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.M < 2 {
		c.M = d.M
	}
	if c.EfConstruction <= 0 {
		c.EfConstruction = d.EfConstruction
	}
	if c.EfSearch <= 0 {
		c.EfSearch = d.EfSearch
	}
	if c.Seed == 0 {
		c.Seed = d.Seed
	}
	return c
}

type Builder struct {
	cfg Config
}

func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg.withDefaults()}
}

// Build inserts every row in order; row i becomes id i.
func (b *Builder) Build(ctx context.Context, vectors [][]float32) (domain.VectorIndex, error) {
	dim, err := vectorstore.Validate(vectors)
	if err != nil {
		return nil, err
	}
	ix := &Index{
		cfg:     b.cfg,
		dim:     dim,
		vectors: make([][]float32, len(vectors)),
		links:   make([][][]int, len(vectors)),
	}
	rng := rand.New(rand.NewSource(b.cfg.Seed))
	ml := 1 / math.Log(float64(b.cfg.M))
	for i, v := range vectors {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		ix.vectors[i] = append([]float32(nil), v...)
		level := int(-math.Log(1-rng.Float64()) * ml)
		ix.insert(i, level)
	}
	return ix, nil
}

type Index struct {
	cfg      Config
	dim      int
	vectors  [][]float32
	links    [][][]int // links[id][level]
	entry    int
	maxLevel int
}

func (ix *Index) Name() string { return "hnsw" }
func (ix *Index) Len() int     { return len(ix.vectors) }

// maxConn is the degree bound of a layer: 2M on the base layer, M above it.
func (ix *Index) maxConn(level int) int {
	if level == 0 {
		return 2 * ix.cfg.M
	}
	return ix.cfg.M
}

func (ix *Index) dist(id int, q []float32) float32 {
	return vectorstore.SquaredL2(ix.vectors[id], q)
}

func (ix *Index) insert(id, level int) {
	ix.links[id] = make([][]int, level+1)
	if id == 0 {
		ix.entry, ix.maxLevel = 0, level
		return
	}
	q := ix.vectors[id]
	ep := candidate{id: ix.entry, dist: ix.dist(ix.entry, q)}
	for l := ix.maxLevel; l > level; l-- {
		ep = ix.greedy(q, ep, l)
	}
	eps := []candidate{ep}
	for l := min(level, ix.maxLevel); l >= 0; l-- {
		found := ix.searchLayer(q, eps, ix.cfg.EfConstruction, l)
		selected := ix.selectNeighbors(found, ix.maxConn(l))
		ix.links[id][l] = ids(selected)
		for _, nb := range selected {
			ix.connect(nb.id, id, l)
		}
		eps = found
	}
	if level > ix.maxLevel {
		ix.entry, ix.maxLevel = id, level
	}
}

// connect adds a back link from node to id and shrinks node's list when it
// overflows.
func (ix *Index) connect(node, id, level int) {
	ix.links[node][level] = append(ix.links[node][level], id)
	if len(ix.links[node][level]) <= ix.maxConn(level) {
		return
	}
	base := ix.vectors[node]
	cands := make([]candidate, len(ix.links[node][level]))
	for i, n := range ix.links[node][level] {
		cands[i] = candidate{id: n, dist: ix.dist(n, base)}
	}
	sortCandidates(cands)
	ix.links[node][level] = ids(ix.selectNeighbors(cands, ix.maxConn(level)))
}

// selectNeighbors applies the diversity heuristic to candidates sorted by
// distance: a candidate is kept only if it is closer to the base than to any
// already kept neighbor. Remaining slots are filled with the closest pruned
// candidates.
func (ix *Index) selectNeighbors(cands []candidate, m int) []candidate {
	if len(cands) <= m {
		return append([]candidate(nil), cands...)
	}
	kept := make([]candidate, 0, m)
	var pruned []candidate
	for _, c := range cands {
		if len(kept) == m {
			break
		}
		good := true
		for _, k := range kept {
			if vectorstore.SquaredL2(ix.vectors[c.id], ix.vectors[k.id]) < c.dist {
				good = false
				break
			}
		}
		if good {
			kept = append(kept, c)
		} else {
			pruned = append(pruned, c)
		}
	}
	for _, c := range pruned {
		if len(kept) == m {
			break
		}
		kept = append(kept, c)
	}
	sortCandidates(kept)
	return kept
}

func (ix *Index) greedy(q []float32, ep candidate, level int) candidate {
	for changed := true; changed; {
		changed = false
		for _, n := range ix.links[ep.id][level] {
			if d := ix.dist(n, q); d < ep.dist {
				ep = candidate{id: n, dist: d}
				changed = true
			}
		}
	}
	return ep
}

// searchLayer returns up to ef nearest nodes found on level, closest first.
func (ix *Index) searchLayer(q []float32, eps []candidate, ef, level int) []candidate {
	visited := make(map[int]struct{}, ef*4)
	cands := &minHeap{}
	results := &maxHeap{}
	for _, ep := range eps {
		if _, ok := visited[ep.id]; ok {
			continue
		}
		visited[ep.id] = struct{}{}
		heap.Push(cands, ep)
		heap.Push(results, ep)
		if results.Len() > ef {
			heap.Pop(results)
		}
	}
	for cands.Len() > 0 {
		c := heap.Pop(cands).(candidate)
		if results.Len() >= ef && c.dist > (*results)[0].dist {
			break
		}
		for _, n := range ix.links[c.id][level] {
			if _, ok := visited[n]; ok {
				continue
			}
			visited[n] = struct{}{}
			d := ix.dist(n, q)
			if results.Len() < ef || d < (*results)[0].dist {
				nc := candidate{id: n, dist: d}
				heap.Push(cands, nc)
				heap.Push(results, nc)
				if results.Len() > ef {
					heap.Pop(results)
				}
			}
		}
	}
	out := make([]candidate, results.Len())
	copy(out, *results)
	sortCandidates(out)
	return out
}

// Search returns min(k, Len()) distinct ids ordered by ascending distance.
func (ix *Index) Search(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error) {
	if len(ix.vectors) == 0 {
		return nil, vectorstore.ErrEmptyIndex
	}
	if err := vectorstore.CheckQuery(vector, ix.dim); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}
	if k > len(ix.vectors) {
		k = len(ix.vectors)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ep := candidate{id: ix.entry, dist: ix.dist(ix.entry, vector)}
	for l := ix.maxLevel; l > 0; l-- {
		ep = ix.greedy(vector, ep, l)
	}
	found := ix.searchLayer(vector, []candidate{ep}, max(ix.cfg.EfSearch, k), 0)
	if len(found) < k {
		found = ix.topUp(vector, found, k)
	}
	out := make([]domain.Neighbor, k)
	for i := range out {
		out[i] = domain.Neighbor{ID: found[i].id, Distance: found[i].dist}
	}
	return out, nil
}

// topUp completes a short graph result with an exact scan of the nodes the
// walk never reached.
func (ix *Index) topUp(q []float32, found []candidate, k int) []candidate {
	seen := make(map[int]struct{}, len(found))
	for _, c := range found {
		seen[c.id] = struct{}{}
	}
	rest := make([]candidate, 0, len(ix.vectors)-len(found))
	for id := range ix.vectors {
		if _, ok := seen[id]; !ok {
			rest = append(rest, candidate{id: id, dist: ix.dist(id, q)})
		}
	}
	sortCandidates(rest)
	need := k - len(found)
	if need > len(rest) {
		need = len(rest)
	}
	out := append(found, rest[:need]...)
	sortCandidates(out)
	return out
}

type candidate struct {
	id   int
	dist float32
}

func closer(a, b candidate) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.id < b.id
}

func sortCandidates(cs []candidate) {
	sort.Slice(cs, func(i, j int) bool { return closer(cs[i], cs[j]) })
}

func ids(cs []candidate) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = c.id
	}
	return out
}

type minHeap []candidate

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return closer(h[i], h[j]) }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(candidate)) }
func (h *minHeap) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}

// maxHeap keeps the farthest result on top.
type maxHeap []candidate

func (h maxHeap) Len() int           { return len(h) }
func (h maxHeap) Less(i, j int) bool { return closer(h[j], h[i]) }
func (h maxHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x any)        { *h = append(*h, x.(candidate)) }
func (h *maxHeap) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}
