package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"corpusqa/internal/domain"
	"corpusqa/internal/vectorstore"
)

const upsertBatch = 256

// Builder loads the embedding matrix into a Qdrant collection over its REST
// API. The collection is dropped and recreated on every build so point ids
// always equal fragment indices.
type Builder struct {
	cfg    Config
	client *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
	// HNSW parameters passed to Qdrant.
	M           int
	EfConstruct int
	EfSearch    int
}

func NewBuilder(cfg Config) *Builder {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if cfg.Collection == "" {
		cfg.Collection = "corpusqa"
	}
	return &Builder{cfg: cfg, client: &http.Client{Timeout: timeout}}
}

func (b *Builder) Build(ctx context.Context, vectors [][]float32) (domain.VectorIndex, error) {
	dim, err := vectorstore.Validate(vectors)
	if err != nil {
		return nil, err
	}
	coll := fmt.Sprintf("%s/collections/%s", b.cfg.URL, b.cfg.Collection)
	if err := b.do(ctx, http.MethodDelete, coll, nil, nil); err != nil {
		return nil, err
	}
	hnswCfg := map[string]any{}
	if b.cfg.M > 0 {
		hnswCfg["m"] = b.cfg.M
	}
	if b.cfg.EfConstruct > 0 {
		hnswCfg["ef_construct"] = b.cfg.EfConstruct
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dim,
			"distance": "Euclid",
		},
		"hnsw_config": hnswCfg,
	}
	if err := b.do(ctx, http.MethodPut, coll, body, nil); err != nil {
		return nil, err
	}
	for start := 0; start < len(vectors); start += upsertBatch {
		end := min(start+upsertBatch, len(vectors))
		points := make([]map[string]any, 0, end-start)
		for i := start; i < end; i++ {
			points = append(points, map[string]any{"id": i, "vector": vectors[i]})
		}
		if err := b.do(ctx, http.MethodPut, coll+"/points?wait=true", map[string]any{"points": points}, nil); err != nil {
			return nil, err
		}
	}
	return &Index{b: b, dimension: dim, count: len(vectors)}, nil
}

// Index searches a collection populated by Builder.
type Index struct {
	b         *Builder
	dimension int
	count     int
}

func (s *Index) Name() string { return "qdrant" }
func (s *Index) Len() int     { return s.count }

func (s *Index) Search(ctx context.Context, vector []float32, topK int) ([]domain.Neighbor, error) {
	if s.count == 0 {
		return nil, vectorstore.ErrEmptyIndex
	}
	if err := vectorstore.CheckQuery(vector, s.dimension); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": false,
	}
	if s.b.cfg.EfSearch > 0 {
		req["params"] = map[string]any{"hnsw_ef": max(s.b.cfg.EfSearch, topK)}
	}
	var resp struct {
		Result []struct {
			ID    int     `json:"id"`
			Score float32 `json:"score"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", s.b.cfg.URL, s.b.cfg.Collection)
	if err := s.b.do(ctx, http.MethodPost, url, req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.Neighbor, 0, len(resp.Result))
	for _, r := range resp.Result {
		if r.ID < 0 || r.ID >= s.count {
			return nil, fmt.Errorf("qdrant returned unknown point id %d", r.ID)
		}
		// Euclid scores are plain distances; square them to match the other backends.
		results = append(results, domain.Neighbor{ID: r.ID, Distance: r.Score * r.Score})
	}
	return results, nil
}

func (b *Builder) do(ctx context.Context, method, url string, body any, out any) error {
	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.cfg.APIKey != "" {
		req.Header.Set("api-key", b.cfg.APIKey)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// deleting a collection that does not exist yet is fine
	if method == http.MethodDelete && resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
