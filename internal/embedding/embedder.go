package embedding

import "context"

// Embedder converts text into fixed-dimension float32 vectors.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	// Name identifies the embedder and its model; it keys the embedding cache.
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
