// Package vectorindex provides an abstraction for the vector index service.
package vectorindex

import (
	"context"

	"github.com/Pavantext/NutriMood/domain"
)

// Index stores food record embeddings and answers nearest-neighbour
// queries. Results come back in service-reported relevance order.
type Index interface {
	Upsert(ctx context.Context, records []domain.FoodRecord, vectors [][]float64) error
	Query(ctx context.Context, vector []float64, topK int) ([]domain.ScoredFood, error)
}
