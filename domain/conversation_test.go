package domain

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func makeExchange(i int, recommended ...FoodRecord) Exchange {
	return Exchange{
		ExchangeID:  fmt.Sprintf("ex_%d", i),
		Utterance:   fmt.Sprintf("utterance %d", i),
		Reply:       fmt.Sprintf("reply %d", i),
		Recommended: recommended,
		CreatedAt:   time.Now(),
	}
}

func TestRecordExchangeTruncatesFIFO(t *testing.T) {
	state := NewConversationState("s1")
	state.Window = 3

	for i := 0; i < 10; i++ {
		state.RecordExchange(makeExchange(i), Preferences{})
		if len(state.Exchanges) > 3 {
			t.Fatalf("history grew past window: %d", len(state.Exchanges))
		}
	}

	// Oldest entries are dropped first.
	if state.Exchanges[0].Utterance != "utterance 7" {
		t.Fatalf("expected oldest surviving exchange to be 7, got %q", state.Exchanges[0].Utterance)
	}
	if state.Exchanges[2].Utterance != "utterance 9" {
		t.Fatalf("expected newest exchange to be 9, got %q", state.Exchanges[2].Utterance)
	}
}

func TestPhaseTransitions(t *testing.T) {
	state := NewConversationState("s1")
	if state.Phase() != PhaseEmpty {
		t.Fatalf("fresh state should be EMPTY, got %s", state.Phase())
	}
	state.RecordExchange(makeExchange(0), Preferences{})
	if state.Phase() != PhaseActive {
		t.Fatalf("state with history should be ACTIVE, got %s", state.Phase())
	}
}

func TestPreferenceMergeNeverClears(t *testing.T) {
	state := NewConversationState("s1")
	state.RecordExchange(makeExchange(0), Preferences{
		PriceRange: PriceLow,
		Dietary:    []string{"vegetarian"},
	})

	// A later extraction that found nothing must leave prior state alone.
	state.RecordExchange(makeExchange(1), Preferences{})
	if state.Prefs.PriceRange != PriceLow {
		t.Fatalf("price range was erased: %q", state.Prefs.PriceRange)
	}
	if len(state.Prefs.Dietary) != 1 || state.Prefs.Dietary[0] != "vegetarian" {
		t.Fatalf("dietary was erased: %v", state.Prefs.Dietary)
	}

	// A later non-empty extraction overwrites or augments.
	state.RecordExchange(makeExchange(2), Preferences{
		PriceRange: PriceHigh,
		Dietary:    []string{"vegan"},
	})
	if state.Prefs.PriceRange != PriceHigh {
		t.Fatalf("price range should be overwritten, got %q", state.Prefs.PriceRange)
	}
	if len(state.Prefs.Dietary) != 2 {
		t.Fatalf("dietary should be augmented, got %v", state.Prefs.Dietary)
	}
}

func TestLastPointersUpdate(t *testing.T) {
	state := NewConversationState("s1")
	dosa := FoodRecord{ID: "1", Name: "Masala Dosa"}

	state.RecordExchange(makeExchange(0, dosa), Preferences{
		MealType: MealBreakfast,
		Cuisines: []string{"south indian"},
	})
	if state.Last.MealType != MealBreakfast {
		t.Fatalf("last meal type not set: %q", state.Last.MealType)
	}
	if state.Last.Cuisine != "south indian" {
		t.Fatalf("last cuisine not set: %q", state.Last.Cuisine)
	}
	if len(state.LastRecommended()) != 1 || state.LastRecommended()[0].ID != "1" {
		t.Fatalf("last recommended not set: %v", state.LastRecommended())
	}

	// An exchange with no recommendations keeps the previous list.
	state.RecordExchange(makeExchange(1), Preferences{})
	if len(state.LastRecommended()) != 1 {
		t.Fatalf("last recommended was erased: %v", state.LastRecommended())
	}
}

func TestContextTextOrderAndNames(t *testing.T) {
	state := NewConversationState("s1")
	dosa := FoodRecord{ID: "1", Name: "Masala Dosa", Description: "a long description that must not appear"}
	state.RecordExchange(makeExchange(0, dosa), Preferences{Dietary: []string{"vegetarian"}})
	state.RecordExchange(makeExchange(1), Preferences{})

	text := state.ContextText()
	first := strings.Index(text, "utterance 0")
	second := strings.Index(text, "utterance 1")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("context is not oldest-first:\n%s", text)
	}
	if !strings.Contains(text, "Masala Dosa") {
		t.Fatalf("context missing recommended item name:\n%s", text)
	}
	if strings.Contains(text, "a long description") {
		t.Fatalf("context should carry names only, not descriptions:\n%s", text)
	}
	if !strings.Contains(text, "dietary=vegetarian") {
		t.Fatalf("context missing active preferences:\n%s", text)
	}
}
