package retrieval

import (
	"regexp"
	"strings"

	"github.com/Pavantext/NutriMood/domain"
)

// DefaultDiversityCap is the maximum number of candidates kept per
// similarity group.
const DefaultDiversityCap = 2

var nonWordRe = regexp.MustCompile(`[^a-z0-9 ]+`)

// EnforceDiversity caps near-duplicate candidates so the generation
// model sees genuinely distinct options. Candidates are grouped by a
// coarse similarity key and at most limit survive per group, preserving
// relative order. The function is stateless and idempotent.
func EnforceDiversity(candidates []domain.FoodRecord, limit int) []domain.FoodRecord {
	if limit <= 0 {
		limit = DefaultDiversityCap
	}
	counts := make(map[string]int, len(candidates))
	out := make([]domain.FoodRecord, 0, len(candidates))
	for _, c := range candidates {
		key := similarityKey(c)
		if counts[key] >= limit {
			continue
		}
		counts[key]++
		out = append(out, c)
	}
	return out
}

// similarityKey groups variants of the same dish: the first two
// normalized name tokens, falling back to cuisine/region category for
// single-token names.
func similarityKey(rec domain.FoodRecord) string {
	name := nonWordRe.ReplaceAllString(strings.ToLower(rec.Name), "")
	tokens := strings.Fields(name)
	switch {
	case len(tokens) >= 2:
		return tokens[0] + " " + tokens[1]
	case len(tokens) == 1:
		category := strings.ToLower(rec.Cuisine)
		if category == "" {
			category = strings.ToLower(rec.Region)
		}
		return tokens[0] + "|" + category
	default:
		return "|" + rec.ID
	}
}
