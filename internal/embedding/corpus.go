package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"corpusqa/internal/vectorcache"
)

// DefaultBatchSize bounds how many fragments are sent to the embedder at once.
const DefaultBatchSize = 32

// EmbedAll embeds texts in batches of batchSize and returns one row per text,
// in input order.
func EmbedAll(ctx context.Context, emb Embedder, texts []string, batchSize int) ([][]float32, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	rows := make([][]float32, 0, len(texts))
	dim := 0
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := emb.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		if len(vecs) != end-start {
			return nil, fmt.Errorf("embed batch %d-%d: got %d vectors for %d texts", start, end, len(vecs), end-start)
		}
		for i, v := range vecs {
			if dim == 0 {
				dim = len(v)
			}
			if len(v) == 0 || len(v) != dim {
				return nil, fmt.Errorf("embed batch %d-%d: vector %d has dimension %d, want %d", start, end, start+i, len(v), dim)
			}
		}
		rows = append(rows, vecs...)
	}
	return rows, nil
}

// EmbedCorpus returns the embedding matrix for fragments, reusing the cached
// matrix when its fingerprint matches the current fragments and embedder.
// A stale or unreadable cache is recomputed and overwritten.
func EmbedCorpus(ctx context.Context, emb Embedder, cache vectorcache.Store, fragments []string, batchSize int, logger *slog.Logger) ([][]float32, error) {
	if len(fragments) == 0 {
		return nil, errors.New("no fragments to embed")
	}
	if cache == nil {
		cache = vectorcache.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	fp := vectorcache.Fingerprint(emb.Name(), fragments)

	cached, err := cache.Load(ctx)
	switch {
	case err != nil:
		logger.Warn("embedding cache unreadable, recomputing", "err", err)
	case cached != nil && cached.Fingerprint == fp && len(cached.Rows) == len(fragments):
		logger.Info("loaded cached embeddings", "rows", len(cached.Rows), "dim", cached.Dimension)
		return cached.Rows, nil
	case cached != nil:
		logger.Warn("embedding cache is stale, recomputing",
			"cached_rows", len(cached.Rows), "fragments", len(fragments), "cached_model", cached.Model)
	}

	logger.Info("computing embeddings", "fragments", len(fragments), "batch_size", batchSize, "embedder", emb.Name())
	rows, err := EmbedAll(ctx, emb, fragments, batchSize)
	if err != nil {
		return nil, err
	}
	m := &vectorcache.Matrix{Fingerprint: fp, Model: emb.Name(), Dimension: len(rows[0]), Rows: rows}
	if err := cache.Save(ctx, m); err != nil {
		logger.Warn("failed to persist embedding cache", "err", err)
	}
	return rows, nil
}
