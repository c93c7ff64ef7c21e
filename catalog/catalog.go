// Package catalog loads the menu file and seeds the vector index.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Pavantext/NutriMood/domain"
	"github.com/Pavantext/NutriMood/internal/adapter/embedding"
	"github.com/Pavantext/NutriMood/internal/adapter/vectorindex"
)

// Load reads a JSON array of food records from path.
func Load(path string) ([]domain.FoodRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var records []domain.FoodRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("catalog record %q has no id", r.Name)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("catalog reuses id %s", r.ID)
		}
		seen[r.ID] = true
	}
	return records, nil
}

// EmbeddingText renders the record the way it gets embedded: name,
// description, then the categorical tags.
func EmbeddingText(r domain.FoodRecord) string {
	var meta []string
	if r.Region != "" {
		meta = append(meta, "Region: "+r.Region)
	}
	if r.Mood != "" {
		meta = append(meta, "Mood: "+r.Mood)
	}
	if r.MealTime != "" {
		meta = append(meta, "Time: "+r.MealTime)
	}
	if r.Diet != "" {
		meta = append(meta, "Diet: "+r.Diet)
	}
	if r.Cuisine != "" {
		meta = append(meta, "Cuisine: "+r.Cuisine)
	}
	if r.SpiceLevel != "" {
		meta = append(meta, "Spice: "+r.SpiceLevel)
	}
	text := fmt.Sprintf("%s: %s", r.Name, r.Description)
	if len(meta) > 0 {
		text += " (" + strings.Join(meta, ", ") + ")"
	}
	return text
}

// Seed embeds every record and upserts it into the index.
func Seed(ctx context.Context, index vectorindex.Index, embedder embedding.Embedder, records []domain.FoodRecord) error {
	vectors := make([][]float64, len(records))
	for i, r := range records {
		vec, err := embedder.Embed(ctx, EmbeddingText(r))
		if err != nil {
			return fmt.Errorf("failed to embed record %s: %w", r.ID, err)
		}
		vectors[i] = vec
	}
	return index.Upsert(ctx, records, vectors)
}
