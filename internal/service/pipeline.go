package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"corpusqa/internal/chunker"
	"corpusqa/internal/domain"
	"corpusqa/internal/embedding"
	"corpusqa/internal/vectorcache"
)

const DefaultTopK = 4

// Deps are the collaborators a Pipeline is assembled from.
type Deps struct {
	Documents  domain.DocumentReader
	Tables     domain.TableReader
	Fragmenter *chunker.Fragmenter
	Embedder   embedding.Embedder
	Cache      vectorcache.Store
	Indexer    domain.IndexBuilder
	Completer  domain.Completer
	Summarizer domain.Summarizer // optional
	Logger     *slog.Logger
}

type Options struct {
	DocumentPath     string
	TablePath        string
	TopK             int
	BatchSize        int
	SummarySentences int
}

// Pipeline is the fully built corpus: fragments, their index and the
// completion client. It is read-only after Build and safe to share.
type Pipeline struct {
	corpus    domain.Corpus
	embedder  embedding.Embedder
	index     domain.VectorIndex
	completer domain.Completer
	topK      int
	summary   string
	logger    *slog.Logger
}

// Build reads both sources, fragments them, embeds the fragments (through the
// cache) and builds the index. Source and embedding failures abort the build.
func Build(ctx context.Context, deps Deps, opts Options) (*Pipeline, error) {
	if deps.Documents == nil || deps.Tables == nil || deps.Embedder == nil || deps.Indexer == nil || deps.Completer == nil {
		return nil, errors.New("pipeline: missing dependency")
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	frag := deps.Fragmenter
	if frag == nil {
		var err error
		if frag, err = chunker.NewFragmenter(chunker.DefaultOptions()); err != nil {
			return nil, err
		}
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	start := time.Now()

	docText, err := deps.Documents.ExtractText(opts.DocumentPath)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", opts.DocumentPath, err)
	}
	rows, err := deps.Tables.ReadRows(opts.TablePath)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", opts.TablePath, err)
	}
	corpus, err := frag.Fragment(docText, rows)
	if err != nil {
		return nil, fmt.Errorf("fragment corpus: %w", err)
	}
	if len(corpus.Fragments) == 0 {
		return nil, errors.New("corpus produced no fragments")
	}
	log.Info("corpus fragmented", "fragments", len(corpus.Fragments), "rows", len(rows), "document_chars", len(corpus.DocumentText))

	if err := deps.Embedder.Prepare(corpus.Fragments); err != nil {
		return nil, fmt.Errorf("prepare embedder: %w", err)
	}
	matrix, err := embedding.EmbedCorpus(ctx, deps.Embedder, deps.Cache, corpus.Fragments, opts.BatchSize, log)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}
	if d := deps.Embedder.Dimension(); d > 0 && len(matrix) > 0 && len(matrix[0]) != d {
		return nil, fmt.Errorf("embed corpus: vectors have %d dimensions, embedder reports %d", len(matrix[0]), d)
	}
	index, err := deps.Indexer.Build(ctx, matrix)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	var summary string
	if deps.Summarizer != nil && corpus.DocumentText != "" {
		summary, err = deps.Summarizer.Summarize(corpus.DocumentText, opts.SummarySentences)
		if err != nil {
			log.Warn("summarize document", "err", err)
		}
	}
	log.Info("pipeline ready",
		"index", index.Name(),
		"vectors", index.Len(),
		"embedder", deps.Embedder.Name(),
		"dim", deps.Embedder.Dimension(),
		"elapsed", time.Since(start).Round(time.Millisecond))

	return &Pipeline{
		corpus:    corpus,
		embedder:  deps.Embedder,
		index:     index,
		completer: deps.Completer,
		topK:      opts.TopK,
		summary:   summary,
		logger:    log,
	}, nil
}

// WithLogger returns a copy of p that logs to logger.
func (p *Pipeline) WithLogger(logger *slog.Logger) *Pipeline {
	cp := *p
	cp.logger = logger
	return &cp
}

func (p *Pipeline) Fragments() []string { return p.corpus.Fragments }
func (p *Pipeline) Summary() string     { return p.summary }
func (p *Pipeline) IndexName() string   { return p.index.Name() }

// Answer resolves question in the given mode. It never returns a Go error:
// failures are reported through Answer.Err and the pipeline stays usable.
func (p *Pipeline) Answer(ctx context.Context, question string, mode Mode) Answer {
	ans := Answer{RequestID: uuid.NewString(), Mode: mode}
	log := p.logger.With("request_id", ans.RequestID, "mode", string(mode))
	start := time.Now()

	switch mode {
	case ModeRAG:
		ids, contextText, err := p.retrieve(ctx, question)
		if err != nil {
			ans.Err = &AnswerError{Kind: KindRetrieval, Message: prefixRAG + err.Error()}
			log.Warn("retrieval failed", "err", err)
			return ans
		}
		ans.FragmentIDs = ids
		ans.Prompt = GroundedPrompt(contextText, question)
	case ModeAllDocs:
		if p.corpus.DocumentText == "" && p.corpus.RowText == "" {
			ans.Err = &AnswerError{Kind: KindRetrieval, Message: prefixAllDocs + "corpus text is empty"}
			log.Warn("all_docs context empty")
			return ans
		}
		ans.Prompt = GroundedPrompt(p.corpus.DocumentText+" "+p.corpus.RowText, question)
	default:
		ans.Prompt = BasePrompt(question)
	}

	text, err := p.completer.Complete(ctx, ans.Prompt)
	if err != nil {
		ans.Err = &AnswerError{Kind: KindCompletion, Message: prefixCompletion + err.Error()}
		log.Warn("completion failed", "err", err)
		return ans
	}
	ans.Text = text
	log.Info("answered", "prompt_chars", len(ans.Prompt), "fragments", ans.FragmentIDs, "elapsed", time.Since(start).Round(time.Millisecond))
	return ans
}

// retrieve returns the ids of the nearest fragments and their newline-joined
// text, nearest first.
func (p *Pipeline) retrieve(ctx context.Context, question string) ([]int, string, error) {
	vecs, err := p.embedder.EmbedBatch(ctx, []string{question})
	if err != nil {
		return nil, "", fmt.Errorf("embed question: %w", err)
	}
	if len(vecs) != 1 {
		return nil, "", fmt.Errorf("embed question: got %d vectors", len(vecs))
	}
	var ids []int
	if isZero(vecs[0]) {
		// nothing in the question is known to the embedder
		ids = lexicalRank(question, p.corpus.Fragments, p.topK)
	} else {
		hits, err := p.index.Search(ctx, vecs[0], p.topK)
		if err != nil {
			return nil, "", fmt.Errorf("search index: %w", err)
		}
		ids = make([]int, len(hits))
		for i, h := range hits {
			ids[i] = h.ID
		}
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		if id < 0 || id >= len(p.corpus.Fragments) {
			return nil, "", fmt.Errorf("index returned out-of-range id %d", id)
		}
		parts[i] = p.corpus.Fragments[id]
	}
	return ids, strings.Join(parts, "\n"), nil
}

func isZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
