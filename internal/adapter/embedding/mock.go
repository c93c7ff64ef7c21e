package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// MockDimension is the vector size produced by the mock embedder.
const MockDimension = 64

// MockEmbedder produces deterministic bag-of-words vectors by hashing
// tokens into a fixed number of buckets. Texts sharing words get
// similar vectors, which is enough for offline retrieval.
type MockEmbedder struct{}

// NewMockEmbedder creates a new mock embedder.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// Ensure MockEmbedder implements Embedder interface.
var _ Embedder = (*MockEmbedder)(nil)

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// Embed returns an L2-normalized hashed bag-of-words vector.
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float64, MockDimension)
	for _, tok := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%MockDimension]++
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}
