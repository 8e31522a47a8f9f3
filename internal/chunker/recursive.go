package chunker

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultSeparators is the split preference list, largest unit first. The
// trailing "" falls back to single characters.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "? ", "! ", ", ", " ", ""}

// RecursiveSplitter splits long text into overlapping windows of at most
// chunkSize characters. It tries each separator in turn, keeping the separator
// at the start of the piece that follows it, and recurses into any piece that
// is still too long.
type RecursiveSplitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// ErrInvalidWindow is returned for a non-positive chunk size or an overlap
// outside [0, chunkSize).
var ErrInvalidWindow = errors.New("invalid chunk window")

func NewRecursiveSplitter(chunkSize, overlap int, separators []string) (*RecursiveSplitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d", ErrInvalidWindow, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidWindow, overlap, chunkSize)
	}
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	return &RecursiveSplitter{chunkSize: chunkSize, overlap: overlap, separators: separators}, nil
}

// Split returns the windows of text in order. Lengths are counted in runes.
func (s *RecursiveSplitter) Split(text string) []string {
	return s.split(text, s.separators)
}

func (s *RecursiveSplitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, sep := range separators {
		if sep == "" {
			separator = ""
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var out, good []string
	for _, piece := range splitKeepSeparator(text, separator) {
		if utf8.RuneCountInString(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			out = append(out, s.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, s.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		out = append(out, s.merge(good)...)
	}
	return out
}

// merge packs consecutive pieces into windows, carrying whole trailing pieces
// of up to overlap characters into the next window.
func (s *RecursiveSplitter) merge(pieces []string) []string {
	var (
		windows []string
		current []string
		lengths []int
		total   int
	)
	for _, p := range pieces {
		n := utf8.RuneCountInString(p)
		if total+n > s.chunkSize && len(current) > 0 {
			windows = appendWindow(windows, current)
			for total > s.overlap || (total+n > s.chunkSize && total > 0) {
				total -= lengths[0]
				current, lengths = current[1:], lengths[1:]
			}
		}
		current = append(current, p)
		lengths = append(lengths, n)
		total += n
	}
	return appendWindow(windows, current)
}

func appendWindow(windows, pieces []string) []string {
	w := strings.TrimSpace(strings.Join(pieces, ""))
	if w == "" {
		return windows
	}
	return append(windows, w)
}

func splitKeepSeparator(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	if parts[0] != "" {
		out = append(out, parts[0])
	}
	for _, p := range parts[1:] {
		out = append(out, sep+p)
	}
	return out
}
