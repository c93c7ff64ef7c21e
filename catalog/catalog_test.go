package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Pavantext/NutriMood/domain"
	"github.com/Pavantext/NutriMood/internal/adapter/embedding"
	"github.com/Pavantext/NutriMood/internal/adapter/vectorindex"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "food_items.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write catalog file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeCatalog(t, `[
		{"id":"1","name":"Masala Dosa","description":"Crisp fermented crepe","region":"South India","diet":"Vegetarian"},
		{"id":"2","name":"Butter Chicken","description":"Buttery tomato gravy","region":"North India","diet":"Non-Vegetarian"}
	]`)

	records, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "1" || records[0].Name != "Masala Dosa" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	path := writeCatalog(t, `[
		{"id":"1","name":"Masala Dosa","description":"a"},
		{"id":"1","name":"Idli","description":"b"}
	]`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for duplicate ids")
	}
}

func TestLoadRejectsMissingID(t *testing.T) {
	path := writeCatalog(t, `[{"name":"Masala Dosa","description":"a"}]`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for a record without an id")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestEmbeddingText(t *testing.T) {
	r := domain.FoodRecord{
		ID:          "1",
		Name:        "Masala Dosa",
		Description: "Crisp fermented crepe with spiced potato filling",
		Region:      "South India",
		Diet:        "Vegetarian",
		SpiceLevel:  "Medium",
	}
	got := EmbeddingText(r)
	want := "Masala Dosa: Crisp fermented crepe with spiced potato filling (Region: South India, Diet: Vegetarian, Spice: Medium)"
	if got != want {
		t.Fatalf("unexpected embedding text:\n got: %s\nwant: %s", got, want)
	}

	bare := domain.FoodRecord{ID: "2", Name: "Idli", Description: "Steamed rice cake"}
	if got := EmbeddingText(bare); got != "Idli: Steamed rice cake" {
		t.Fatalf("unexpected embedding text for bare record: %s", got)
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	index := vectorindex.NewMemoryIndex()
	embedder := embedding.NewMockEmbedder()

	records := []domain.FoodRecord{
		{ID: "1", Name: "Masala Dosa", Description: "Crisp fermented crepe with spiced potato filling"},
		{ID: "2", Name: "Butter Chicken", Description: "Tandoori chicken in a buttery tomato gravy"},
	}
	if err := Seed(ctx, index, embedder, records); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	vec, err := embedder.Embed(ctx, "crispy crepe with potato")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	scored, err := index.Query(ctx, vec, 2)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(scored) != 2 {
		t.Fatalf("expected 2 results, got %d", len(scored))
	}
	if scored[0].Record.ID != "1" {
		t.Fatalf("expected the crepe to rank first, got %+v", scored[0].Record)
	}
}
