package domain

import "context"

// Transaction is one row of the transaction table, with every field kept as
// the raw text read from the source.
type Transaction struct {
	TransactionID string
	TimeStamp     string
	Status        string
	Channel       string
	PaymentMethod string
	CustLocation  string
	Quantity      string
	ItemType      string
	PricePerUnit  string
	TotalRevenue  string
}

// Corpus is the output of fragmentation. Fragments[i] is the text that row i
// of the embedding matrix and id i of the vector index describe.
type Corpus struct {
	Fragments    []string
	DocumentText string
	RowText      string
}

// Neighbor is a single nearest-neighbor hit: a fragment id and its distance
// to the query (lower is closer).
type Neighbor struct {
	ID       int
	Distance float32
}

// DocumentReader extracts the plain text of a long-form document.
type DocumentReader interface {
	ExtractText(path string) (string, error)
}

// TableReader reads the ordered rows of the transaction table.
type TableReader interface {
	ReadRows(path string) ([]Transaction, error)
}

// VectorIndex is a read-only similarity index over the embedding matrix.
type VectorIndex interface {
	Name() string
	Len() int
	Search(ctx context.Context, vector []float32, k int) ([]Neighbor, error)
}

// IndexBuilder builds a VectorIndex once from the full embedding matrix.
type IndexBuilder interface {
	Build(ctx context.Context, vectors [][]float32) (VectorIndex, error)
}

// Completer sends a prompt to the completion service and returns the generated text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
