// Package vectorcache persists the fragment embedding matrix between runs.
package vectorcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Matrix is a persisted embedding matrix. Rows[i] embeds fragment i.
type Matrix struct {
	Fingerprint string
	Model       string
	Dimension   int
	Rows        [][]float32
}

// Store loads and saves a single Matrix. Load returns (nil, nil) when nothing
// has been saved yet.
type Store interface {
	Load(ctx context.Context) (*Matrix, error)
	Save(ctx context.Context, m *Matrix) error
}

// Noop never holds a matrix, so embeddings are recomputed every run.
type Noop struct{}

func (Noop) Load(context.Context) (*Matrix, error) { return nil, nil }
func (Noop) Save(context.Context, *Matrix) error   { return nil }

// Fingerprint identifies the embedder and the exact ordered fragment list.
func Fingerprint(model string, fragments []string) string {
	h := sha256.New()
	var n [8]byte
	write := func(s string) {
		binary.LittleEndian.PutUint64(n[:], uint64(len(s)))
		h.Write(n[:])
		h.Write([]byte(s))
	}
	write(model)
	binary.LittleEndian.PutUint64(n[:], uint64(len(fragments)))
	h.Write(n[:])
	for _, f := range fragments {
		write(f)
	}
	return hex.EncodeToString(h.Sum(nil))
}
