package memory

import (
	"context"
	"sort"

	"corpusqa/internal/domain"
	"corpusqa/internal/vectorstore"
)

// Builder builds exact in-memory indexes.
type Builder struct{}

func NewBuilder() Builder { return Builder{} }

func (Builder) Build(ctx context.Context, vectors [][]float32) (domain.VectorIndex, error) {
	dim, err := vectorstore.Validate(vectors)
	if err != nil {
		return nil, err
	}
	rows := make([][]float32, len(vectors))
	for i, v := range vectors {
		rows[i] = append([]float32(nil), v...)
	}
	return &Index{dimension: dim, vectors: rows}, nil
}

// Index is a brute-force squared-L2 scan. Immutable once built.
type Index struct {
	dimension int
	vectors   [][]float32
}

func (s *Index) Name() string { return "memory" }
func (s *Index) Len() int     { return len(s.vectors) }

func (s *Index) Search(ctx context.Context, vector []float32, topK int) ([]domain.Neighbor, error) {
	if len(s.vectors) == 0 {
		return nil, vectorstore.ErrEmptyIndex
	}
	if err := vectorstore.CheckQuery(vector, s.dimension); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, nil
	}
	hits := make([]domain.Neighbor, len(s.vectors))
	for i := range s.vectors {
		hits[i] = domain.Neighbor{ID: i, Distance: vectorstore.SquaredL2(s.vectors[i], vector)}
	}
	// ties keep the lower id first
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Distance < hits[b].Distance })
	if topK > len(hits) {
		topK = len(hits)
	}
	return hits[:topK], nil
}
