package convo

import (
	"strings"

	"github.com/Pavantext/NutriMood/domain"
)

// Keyword tables for preference extraction. Matching is substring-based
// over the lowercased utterance, longest cues first where one cue
// contains another.
var (
	dietaryCues = []struct{ cue, value string }{
		{"non-vegetarian", "non-vegetarian"},
		{"non vegetarian", "non-vegetarian"},
		{"non-veg", "non-vegetarian"},
		{"non veg", "non-vegetarian"},
		{"vegetarian", "vegetarian"},
		{"vegan", "vegan"},
		{"gluten-free", "gluten-free"},
		{"gluten free", "gluten-free"},
		{"halal", "halal"},
		{"jain", "jain"},
		{"eggless", "eggless"},
	}
	priceCues = []struct {
		cue   string
		value domain.PriceRange
	}{
		{"cheap", domain.PriceLow},
		{"budget", domain.PriceLow},
		{"affordable", domain.PriceLow},
		{"inexpensive", domain.PriceLow},
		{"not too pricey", domain.PriceLow},
		{"mid-range", domain.PriceMedium},
		{"moderate", domain.PriceMedium},
		{"reasonably priced", domain.PriceMedium},
		{"expensive", domain.PriceHigh},
		{"premium", domain.PriceHigh},
		{"fancy", domain.PriceHigh},
		{"lavish", domain.PriceHigh},
	}
	mealCues = []struct {
		cue   string
		value domain.MealType
	}{
		{"breakfast", domain.MealBreakfast},
		{"brunch", domain.MealBreakfast},
		{"lunch", domain.MealLunch},
		{"dinner", domain.MealDinner},
		{"supper", domain.MealDinner},
		{"snack", domain.MealSnack},
		{"tiffin", domain.MealSnack},
	}
	spiceCues = []struct {
		cue   string
		value domain.SpiceTolerance
	}{
		{"not spicy", domain.SpiceMild},
		{"not too spicy", domain.SpiceMild},
		{"mild", domain.SpiceMild},
		{"medium spicy", domain.SpiceMedium},
		{"medium spice", domain.SpiceMedium},
		{"extra spicy", domain.SpiceHot},
		{"very spicy", domain.SpiceHot},
		{"spicy", domain.SpiceHot},
		{"fiery", domain.SpiceHot},
	}
	cuisineCues = []string{
		"south indian", "north indian", "hyderabadi", "bengali", "punjabi",
		"gujarati", "rajasthani", "kerala", "chettinad", "goan",
		"chinese", "italian", "mexican", "thai", "continental", "mughlai",
	}
)

// ExtractPreferences scans an utterance for preference cues. Fields
// with no cue stay unset; the caller merges the result into state, so a
// miss here never erases a previously known preference.
func ExtractPreferences(utterance string) domain.Preferences {
	lower := strings.ToLower(utterance)
	var prefs domain.Preferences

	for _, d := range dietaryCues {
		if strings.Contains(lower, d.cue) && !containsFold(prefs.Dietary, d.value) {
			// "vegetarian" is a substring of "non-vegetarian"; the
			// longer cue already ran, so skip the shorter match.
			if d.value == "vegetarian" && containsFold(prefs.Dietary, "non-vegetarian") {
				continue
			}
			prefs.Dietary = append(prefs.Dietary, d.value)
		}
	}
	for _, p := range priceCues {
		if strings.Contains(lower, p.cue) {
			prefs.PriceRange = p.value
			break
		}
	}
	for _, m := range mealCues {
		if strings.Contains(lower, m.cue) {
			prefs.MealType = m.value
			break
		}
	}
	for _, s := range spiceCues {
		if strings.Contains(lower, s.cue) {
			prefs.SpiceLevel = s.value
			break
		}
	}
	for _, c := range cuisineCues {
		if strings.Contains(lower, c) && !containsFold(prefs.Cuisines, c) {
			prefs.Cuisines = append(prefs.Cuisines, c)
		}
	}
	return prefs
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
