package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Pavantext/NutriMood/domain"
)

// QdrantIndex is a minimal REST client to Qdrant. It assumes cosine
// distance and an existing collection.
type QdrantIndex struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

// Ensure QdrantIndex implements Index interface.
var _ Index = (*QdrantIndex)(nil)

// QdrantConfig contains connection details for a Qdrant index.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// NewQdrantIndex creates a Qdrant-backed index client.
func NewQdrantIndex(cfg QdrantConfig) *QdrantIndex {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &QdrantIndex{
		url:        strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Upsert writes records and their vectors as Qdrant points. Record
// fields travel in the point payload so Query can rebuild them.
func (q *QdrantIndex) Upsert(ctx context.Context, records []domain.FoodRecord, vectors [][]float64) error {
	if len(records) != len(vectors) {
		return fmt.Errorf("records and vectors length mismatch")
	}
	points := make([]map[string]any, len(records))
	for i, rec := range records {
		payload, err := recordPayload(rec)
		if err != nil {
			return err
		}
		points[i] = map[string]any{
			"id":      rec.ID,
			"vector":  vectors[i],
			"payload": payload,
		}
	}
	body := map[string]any{"points": points}
	return q.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", q.url, q.collection), body, nil)
}

// Query runs a nearest-neighbour search.
func (q *QdrantIndex) Query(ctx context.Context, vector []float64, topK int) ([]domain.ScoredFood, error) {
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64         `json:"score"`
			Payload json.RawMessage `json:"payload"`
		} `json:"result"`
	}
	if err := q.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/search", q.url, q.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.ScoredFood, 0, len(resp.Result))
	for _, r := range resp.Result {
		var rec domain.FoodRecord
		if err := json.Unmarshal(r.Payload, &rec); err != nil {
			continue
		}
		results = append(results, domain.ScoredFood{Record: rec, Score: r.Score})
	}
	return results, nil
}

func recordPayload(rec domain.FoodRecord) (map[string]any, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record %s: %w", rec.ID, err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (q *QdrantIndex) putJSON(ctx context.Context, url string, body, out any) error {
	return q.doJSON(ctx, http.MethodPut, url, body, out)
}

func (q *QdrantIndex) postJSON(ctx context.Context, url string, body, out any) error {
	return q.doJSON(ctx, http.MethodPost, url, body, out)
}

func (q *QdrantIndex) doJSON(ctx context.Context, method, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant error [%d]: %s", resp.StatusCode, string(respBody))
	}
	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}
