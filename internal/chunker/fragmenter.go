package chunker

import (
	"fmt"
	"strings"

	"corpusqa/internal/domain"
	"corpusqa/internal/textutil"
)

// Options configures the Fragmenter. Every field is used as given; start
// from DefaultOptions to change only some of them.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
	GroupSize    int
	Separators   []string
}

// DefaultOptions gives 512-character windows overlapping by 128 and row
// fragments combined in pairs.
func DefaultOptions() Options {
	return Options{ChunkSize: 512, ChunkOverlap: 128, GroupSize: 2}
}

// Fragmenter turns the narrative document and the transaction rows into the
// single ordered fragment sequence the rest of the pipeline indexes.
type Fragmenter struct {
	splitter  *RecursiveSplitter
	groupSize int
}

func NewFragmenter(opts Options) (*Fragmenter, error) {
	if opts.GroupSize <= 0 {
		return nil, fmt.Errorf("group size must be positive, got %d", opts.GroupSize)
	}
	splitter, err := NewRecursiveSplitter(opts.ChunkSize, opts.ChunkOverlap, opts.Separators)
	if err != nil {
		return nil, err
	}
	return &Fragmenter{splitter: splitter, groupSize: opts.GroupSize}, nil
}

// Fragment returns document windows followed by grouped row fragments. The
// order is deterministic for a given input.
func (f *Fragmenter) Fragment(documentText string, rows []domain.Transaction) (domain.Corpus, error) {
	doc := textutil.CollapseWhitespace(documentText)
	var fragments []string
	if doc != "" {
		fragments = append(fragments, f.splitter.Split(doc)...)
	}
	rowFragments, err := RowFragments(rows)
	if err != nil {
		return domain.Corpus{}, err
	}
	fragments = append(fragments, Group(rowFragments, f.groupSize)...)
	return domain.Corpus{
		Fragments:    fragments,
		DocumentText: doc,
		RowText:      strings.Join(rowFragments, " "),
	}, nil
}
