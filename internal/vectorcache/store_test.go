package vectorcache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMatrix() *Matrix {
	return &Matrix{
		Fingerprint: Fingerprint("tfidf", []string{"a", "b"}),
		Model:       "tfidf",
		Dimension:   3,
		Rows:        [][]float32{{1, 0, 0.5}, {0, -1, 0.25}},
	}
}

func TestFingerprint(t *testing.T) {
	base := Fingerprint("m", []string{"ab", "c"})
	assert.Equal(t, base, Fingerprint("m", []string{"ab", "c"}))
	assert.NotEqual(t, base, Fingerprint("m", []string{"a", "bc"}))
	assert.NotEqual(t, base, Fingerprint("m", []string{"c", "ab"}))
	assert.NotEqual(t, base, Fingerprint("other", []string{"ab", "c"}))
	assert.NotEqual(t, base, Fingerprint("m", []string{"ab", "c", ""}))
}

func TestNoop(t *testing.T) {
	var s Store = Noop{}
	require.NoError(t, s.Save(context.Background(), sampleMatrix()))
	m, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache", "embeddings.gob")
	s := NewFileStore(path)

	m, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, m)

	require.NoError(t, s.Save(ctx, sampleMatrix()))
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	m, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleMatrix(), m)
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.gob")
	require.NoError(t, os.WriteFile(path, []byte("not gob"), 0o644))
	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer s.Close()

	m, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, m)

	require.NoError(t, s.Save(ctx, sampleMatrix()))
	m, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleMatrix(), m)

	next := &Matrix{Fingerprint: "x", Model: "openai:m", Dimension: 1, Rows: [][]float32{{2}}}
	require.NoError(t, s.Save(ctx, next))
	m, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, next, m)
}

func TestSQLiteStoreRejectsRaggedRows(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer s.Close()
	err = s.Save(context.Background(), &Matrix{Dimension: 2, Rows: [][]float32{{1, 2}, {3}}})
	assert.Error(t, err)
}
