package chunker

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alphabetText(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(byte('a' + i%26))
	}
	return b.String()
}

func newSplitter(t *testing.T, size, overlap int) *RecursiveSplitter {
	t.Helper()
	s, err := NewRecursiveSplitter(size, overlap, nil)
	require.NoError(t, err)
	return s
}

func TestSplitShortTextIsSingleWindow(t *testing.T) {
	s := newSplitter(t, 512, 128)
	assert.Equal(t, []string{"Vnelia VOC adalah produk unggulan."}, s.Split("Vnelia VOC adalah produk unggulan."))
}

func TestSplitEmptyText(t *testing.T) {
	s := newSplitter(t, 512, 128)
	assert.Empty(t, s.Split(""))
	assert.Empty(t, s.Split("   "))
}

func TestSplitHardCutsOverlapExactly(t *testing.T) {
	text := alphabetText(1000)
	s := newSplitter(t, 512, 128)

	windows := s.Split(text)
	require.Len(t, windows, 3)
	assert.Equal(t, text[0:512], windows[0])
	assert.Equal(t, text[384:896], windows[1])
	assert.Equal(t, text[768:1000], windows[2])
	for i := 1; i < len(windows); i++ {
		prev := windows[i-1]
		assert.Equal(t, prev[len(prev)-128:], windows[i][:128], "window %d overlap", i)
	}
}

func TestSplitRespectsSizeBound(t *testing.T) {
	var words []string
	for i := 0; i < 800; i++ {
		words = append(words, fmt.Sprintf("kata%d", i))
	}
	text := strings.Join(words, " ")
	s := newSplitter(t, 512, 128)

	windows := s.Split(text)
	require.Greater(t, len(windows), 1)
	joined := strings.Join(windows, " ")
	for _, w := range windows {
		assert.LessOrEqual(t, utf8.RuneCountInString(w), 512)
	}
	for _, w := range words {
		assert.Contains(t, joined, w)
	}
	// consecutive windows share a tail/head of at most the overlap
	for i := 1; i < len(windows); i++ {
		first := strings.Fields(windows[i])[0]
		assert.Contains(t, windows[i-1], first)
	}
}

func TestSplitKeepsSeparatorAtStartOfNextPiece(t *testing.T) {
	s := newSplitter(t, 10, 0)
	assert.Equal(t, []string{"Satu. Dua", ". Tiga."}, s.Split("Satu. Dua. Tiga."))
}

func TestSplitCountsRunes(t *testing.T) {
	text := strings.Repeat("é", 600)
	s := newSplitter(t, 512, 128)

	windows := s.Split(text)
	require.Len(t, windows, 2)
	assert.Equal(t, 512, utf8.RuneCountInString(windows[0]))
	assert.Equal(t, 216, utf8.RuneCountInString(windows[1]))
}

func TestNewRecursiveSplitterDefaultSeparators(t *testing.T) {
	s := newSplitter(t, 512, 0)
	assert.Equal(t, 0, s.overlap)
	assert.Equal(t, DefaultSeparators, s.separators)
}

func TestNewRecursiveSplitterRejectsBadWindow(t *testing.T) {
	for _, tc := range []struct{ size, overlap int }{
		{0, 0}, {-1, 0}, {512, 512}, {512, 600}, {512, -1},
	} {
		_, err := NewRecursiveSplitter(tc.size, tc.overlap, nil)
		assert.ErrorIs(t, err, ErrInvalidWindow, "size=%d overlap=%d", tc.size, tc.overlap)
	}
}

func TestSplitWithoutOverlap(t *testing.T) {
	text := alphabetText(1000)
	windows := newSplitter(t, 512, 0).Split(text)
	require.Len(t, windows, 2)
	assert.Equal(t, text[:512], windows[0])
	assert.Equal(t, text[512:], windows[1])
}
