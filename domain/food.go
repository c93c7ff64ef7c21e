// Package domain defines the core domain models for the recommender.
package domain

// FoodRecord is the canonical representation of a menu item. IDs are
// stable and unique across the whole candidate universe; two records
// never share an id within a session's lifetime.
type FoodRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Region      string   `json:"region,omitempty"`
	Mood        string   `json:"mood,omitempty"`
	MealTime    string   `json:"time,omitempty"`
	Diet        string   `json:"diet,omitempty"`
	Cuisine     string   `json:"cuisine,omitempty"`
	SpiceLevel  string   `json:"spice_level,omitempty"`
	Price       string   `json:"price,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
}

// ScoredFood pairs a record with the index-reported relevance score.
type ScoredFood struct {
	Record FoodRecord `json:"record"`
	Score  float64    `json:"score"`
}
