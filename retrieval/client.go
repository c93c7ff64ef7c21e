// Package retrieval turns query text into ranked food candidates.
package retrieval

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Pavantext/NutriMood/domain"
	"github.com/Pavantext/NutriMood/internal/adapter/embedding"
	"github.com/Pavantext/NutriMood/internal/adapter/vectorindex"
)

// MinViablePool is the smallest candidate pool worth diversity
// filtering; smaller top_k requests are raised to it.
const MinViablePool = 10

// Client wraps the embedding service and the vector index.
type Client struct {
	embedder embedding.Embedder
	index    vectorindex.Index
	log      *logrus.Logger
}

// NewClient creates a retrieval client.
func NewClient(embedder embedding.Embedder, index vectorindex.Index, log *logrus.Logger) *Client {
	return &Client{embedder: embedder, index: index, log: log}
}

// Retrieve embeds the query text and searches the index. Transport
// failures are recoverable: the candidate list comes back empty and the
// error lets the caller log and continue the turn.
func (c *Client) Retrieve(ctx context.Context, query string, topK int) ([]domain.FoodRecord, error) {
	if topK < MinViablePool {
		topK = MinViablePool
	}

	vector, err := c.embedder.Embed(ctx, query)
	if err != nil {
		c.log.WithError(err).Warn("embedding failed, continuing with no candidates")
		return nil, err
	}

	scored, err := c.index.Query(ctx, vector, topK)
	if err != nil {
		c.log.WithError(err).Warn("vector search failed, continuing with no candidates")
		return nil, err
	}

	records := make([]domain.FoodRecord, 0, len(scored))
	for _, s := range scored {
		records = append(records, s.Record)
	}
	return records, nil
}
