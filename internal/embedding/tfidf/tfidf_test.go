package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedRequiresPrepare(t *testing.T) {
	_, err := NewEmbedder().EmbedBatch(context.Background(), []string{"halo"})
	assert.Error(t, err)
}

func TestPrepareRejectsEmptyCorpus(t *testing.T) {
	assert.Error(t, NewEmbedder().Prepare(nil))
	assert.Error(t, NewEmbedder().Prepare([]string{"dan yang di"}))
}

func TestEmbedBatchIsNormalizedAndDeterministic(t *testing.T) {
	e := NewEmbedder()
	corpus := []string{
		"Transaksi TRX001 pelanggan berada di Jakarta.",
		"Metode pembayaran QRIS digunakan sebanyak 2 kali.",
	}
	require.NoError(t, e.Prepare(corpus))
	assert.Greater(t, e.Dimension(), 0)

	a, err := e.EmbedBatch(context.Background(), corpus)
	require.NoError(t, err)
	b, err := e.EmbedBatch(context.Background(), corpus)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	for _, v := range a {
		require.Len(t, v, e.Dimension())
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
	}
}

func TestUnknownTokensGiveZeroVector(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"produk Vnelia"}))
	vecs, err := e.EmbedBatch(context.Background(), []string{"sesuatu lain"})
	require.NoError(t, err)
	for _, x := range vecs[0] {
		assert.Zero(t, x)
	}
}

func TestIdentifierTokenMatches(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"Transaksi TRX001 di Jakarta", "Transaksi TRX002 di Bandung"}))
	vecs, err := e.EmbedBatch(context.Background(), []string{"TRX001", "Transaksi TRX001 di Jakarta", "Transaksi TRX002 di Bandung"})
	require.NoError(t, err)
	dot := func(a, b []float32) (s float32) {
		for i := range a {
			s += a[i] * b[i]
		}
		return s
	}
	assert.Greater(t, dot(vecs[0], vecs[1]), dot(vecs[0], vecs[2]))
}
