// Package qdrant provides a driven.VectorIndex backed by a Qdrant server
// through its REST API. Collections use cosine distance and are created on
// first upsert with the dimension of the incoming vectors.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
	"github.com/custodia-labs/rfpvault/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultURL     = "http://localhost:6333"
	DefaultTimeout = 15 * time.Second
)

// errCollectionMissing is returned by do when Qdrant answers 404.
var errCollectionMissing = errors.New("collection does not exist")

// Config holds configuration for the Qdrant index.
type Config struct {
	// URL is the Qdrant REST endpoint (default: http://localhost:6333).
	URL string

	// APIKey is sent in the api-key header when set.
	APIKey string

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration
}

// Index is a minimal REST client to Qdrant.
type Index struct {
	baseURL string
	apiKey  string
	client  *http.Client

	mu    sync.Mutex
	ready map[string]bool
}

// payload is stored alongside each point.
type payload struct {
	driven.VectorMetadata
	Content string `json:"content"`
}

type point struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload payload   `json:"payload"`
}

type matchValue struct {
	Value string `json:"value"`
}

type condition struct {
	Key   string     `json:"key"`
	Match matchValue `json:"match"`
}

type filter struct {
	Must []condition `json:"must"`
}

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
	Filter      *filter   `json:"filter,omitempty"`
}

type searchResponse struct {
	Result []struct {
		ID      any     `json:"id"`
		Score   float64 `json:"score"`
		Payload payload `json:"payload"`
	} `json:"result"`
}

// NewIndex creates a Qdrant-backed vector index.
func NewIndex(cfg Config) *Index {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Index{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		ready:   make(map[string]bool),
	}
}

// Upsert inserts or replaces points, creating the collection if needed.
func (x *Index) Upsert(ctx context.Context, collection string, records []driven.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := x.ensureCollection(ctx, collection, len(records[0].Embedding)); err != nil {
		return err
	}

	points := make([]point, len(records))
	for i, r := range records {
		points[i] = point{
			ID:      r.ID,
			Vector:  r.Embedding,
			Payload: payload{VectorMetadata: r.Metadata, Content: r.Content},
		}
	}
	body := map[string]any{"points": points}
	if err := x.do(ctx, http.MethodPut, x.collectionPath(collection)+"/points?wait=true", body, nil); err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	return nil
}

// Query searches the collection. A missing collection yields no hits.
func (x *Index) Query(ctx context.Context, collection string, embedding []float32, k int, f driven.VectorFilter) ([]driven.VectorHit, error) {
	if k <= 0 {
		return []driven.VectorHit{}, nil
	}
	req := searchRequest{
		Vector:      embedding,
		Limit:       k,
		WithPayload: true,
		Filter:      toFilter(f),
	}

	var resp searchResponse
	err := x.do(ctx, http.MethodPost, x.collectionPath(collection)+"/points/search", req, &resp)
	if errors.Is(err, errCollectionMissing) {
		return []driven.VectorHit{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	hits := make([]driven.VectorHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, driven.VectorHit{
			ID:       fmt.Sprint(r.ID),
			Content:  r.Payload.Content,
			Metadata: r.Payload.VectorMetadata,
			// Qdrant reports cosine similarity.
			Distance: 1 - r.Score,
		})
	}
	return hits, nil
}

// DeleteWhere removes matching points. An empty filter drops the collection.
func (x *Index) DeleteWhere(ctx context.Context, collection string, f driven.VectorFilter) error {
	flt := toFilter(f)
	if flt == nil {
		return x.DeleteCollection(ctx, collection)
	}
	body := map[string]any{"filter": flt}
	err := x.do(ctx, http.MethodPost, x.collectionPath(collection)+"/points/delete?wait=true", body, nil)
	if err != nil && !errors.Is(err, errCollectionMissing) {
		return fmt.Errorf("qdrant delete points: %w", err)
	}
	return nil
}

// DeleteCollection drops the collection. Missing collections are ignored.
func (x *Index) DeleteCollection(ctx context.Context, collection string) error {
	x.mu.Lock()
	delete(x.ready, collection)
	x.mu.Unlock()

	err := x.do(ctx, http.MethodDelete, x.collectionPath(collection), nil, nil)
	if err != nil && !errors.Is(err, errCollectionMissing) {
		return fmt.Errorf("qdrant delete collection: %w", err)
	}
	return nil
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

// ensureCollection creates the collection unless it is known to exist.
func (x *Index) ensureCollection(ctx context.Context, collection string, dimension int) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.ready[collection] {
		return nil
	}
	if dimension <= 0 {
		return errors.New("qdrant: invalid vector dimension")
	}

	err := x.do(ctx, http.MethodGet, x.collectionPath(collection), nil, nil)
	switch {
	case err == nil:
	case errors.Is(err, errCollectionMissing):
		body := map[string]any{
			"vectors": map[string]any{
				"size":     dimension,
				"distance": "Cosine",
			},
		}
		if err := x.do(ctx, http.MethodPut, x.collectionPath(collection), body, nil); err != nil {
			return fmt.Errorf("qdrant create collection %s: %w", collection, err)
		}
		logger.Debug("Created qdrant collection %s (dim %d)", collection, dimension)
	default:
		return fmt.Errorf("qdrant get collection %s: %w", collection, err)
	}

	x.ready[collection] = true
	return nil
}

func (x *Index) collectionPath(collection string) string {
	return "/collections/" + url.PathEscape(collection)
}

// do sends a JSON request and decodes the response into out when non-nil.
func (x *Index) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, x.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errCollectionMissing
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// toFilter converts a VectorFilter to a Qdrant must-filter, nil when empty.
func toFilter(f driven.VectorFilter) *filter {
	var must []condition
	if f.DocumentID != "" {
		must = append(must, condition{Key: "document_id", Match: matchValue{Value: f.DocumentID}})
	}
	if f.Category != "" {
		must = append(must, condition{Key: "category", Match: matchValue{Value: f.Category}})
	}
	if len(must) == 0 {
		return nil
	}
	return &filter{Must: must}
}
