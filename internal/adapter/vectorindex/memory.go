package vectorindex

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Pavantext/NutriMood/domain"
)

// MemoryIndex is a brute-force cosine similarity index. Vectors are
// assumed L2-normalized.
type MemoryIndex struct {
	mu      sync.RWMutex
	records []domain.FoodRecord
	vectors [][]float64
}

// Ensure MemoryIndex implements Index interface.
var _ Index = (*MemoryIndex)(nil)

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// Upsert adds or replaces records by id.
func (m *MemoryIndex) Upsert(ctx context.Context, records []domain.FoodRecord, vectors [][]float64) error {
	if len(records) != len(vectors) {
		return errors.New("records and vectors length mismatch")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, rec := range records {
		replaced := false
		for j := range m.records {
			if m.records[j].ID == rec.ID {
				m.records[j] = rec
				m.vectors[j] = vectors[i]
				replaced = true
				break
			}
		}
		if !replaced {
			m.records = append(m.records, rec)
			m.vectors = append(m.vectors, vectors[i])
		}
	}
	return nil
}

// Query returns the topK nearest records by cosine similarity.
func (m *MemoryIndex) Query(ctx context.Context, vector []float64, topK int) ([]domain.ScoredFood, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	results := make([]domain.ScoredFood, len(m.records))
	for i := range m.records {
		results[i] = domain.ScoredFood{Record: m.records[i], Score: dot(m.vectors[i], vector)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
