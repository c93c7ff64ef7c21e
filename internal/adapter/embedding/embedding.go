// Package embedding provides an abstraction for text embedding clients.
package embedding

import "context"

// Embedder converts free text into a fixed-dimension numeric vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}
