package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corpusqa/internal/vectorcache"
)

type countingEmbedder struct {
	name    string
	calls   int
	batches []int
	fail    bool
}

func (e *countingEmbedder) Name() string           { return e.name }
func (e *countingEmbedder) Prepare([]string) error { return nil }
func (e *countingEmbedder) Dimension() int         { return 2 }

func (e *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	e.batches = append(e.batches, len(texts))
	if e.fail {
		return nil, errors.New("boom")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

type memoryCache struct {
	m     *vectorcache.Matrix
	saves int
}

func (c *memoryCache) Load(context.Context) (*vectorcache.Matrix, error) { return c.m, nil }
func (c *memoryCache) Save(_ context.Context, m *vectorcache.Matrix) error {
	c.m = m
	c.saves++
	return nil
}

func TestEmbedAllBatches(t *testing.T) {
	emb := &countingEmbedder{name: "fake"}
	texts := make([]string, 70)
	for i := range texts {
		texts[i] = "x"
	}
	rows, err := EmbedAll(context.Background(), emb, texts, 32)
	require.NoError(t, err)
	assert.Len(t, rows, 70)
	assert.Equal(t, []int{32, 32, 6}, emb.batches)
}

func TestEmbedAllPropagatesError(t *testing.T) {
	_, err := EmbedAll(context.Background(), &countingEmbedder{fail: true}, []string{"a"}, 0)
	assert.Error(t, err)
}

func TestEmbedCorpusUsesCache(t *testing.T) {
	ctx := context.Background()
	frags := []string{"satu", "dua", "tiga"}
	cache := &memoryCache{}

	emb := &countingEmbedder{name: "fake"}
	first, err := EmbedCorpus(ctx, emb, cache, frags, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, emb.calls)
	assert.Equal(t, 1, cache.saves)
	assert.Equal(t, 2, cache.m.Dimension)

	again := &countingEmbedder{name: "fake"}
	second, err := EmbedCorpus(ctx, again, cache, frags, 2, nil)
	require.NoError(t, err)
	assert.Zero(t, again.calls)
	assert.Equal(t, first, second)
}

func TestEmbedCorpusRecomputesStaleCache(t *testing.T) {
	ctx := context.Background()
	cache := &memoryCache{}
	_, err := EmbedCorpus(ctx, &countingEmbedder{name: "fake"}, cache, []string{"a", "b"}, 32, nil)
	require.NoError(t, err)

	emb := &countingEmbedder{name: "fake"}
	rows, err := EmbedCorpus(ctx, emb, cache, []string{"a", "b", "c"}, 32, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, 1, emb.calls)
	assert.Equal(t, 2, cache.saves)

	other := &countingEmbedder{name: "other-model"}
	_, err = EmbedCorpus(ctx, other, cache, []string{"a", "b", "c"}, 32, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, other.calls)
}

func TestEmbedCorpusRejectsEmpty(t *testing.T) {
	_, err := EmbedCorpus(context.Background(), &countingEmbedder{}, nil, nil, 32, nil)
	assert.Error(t, err)
}
