package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultHistoryWindow is the number of exchanges a session retains.
const DefaultHistoryWindow = 10

// Exchange is one recorded turn: the user utterance, the cleaned reply
// and the records actually recommended in that reply. Immutable once
// appended to a session's history.
type Exchange struct {
	ExchangeID  string       `json:"exchange_id"`
	Utterance   string       `json:"utterance"`
	Reply       string       `json:"reply"`
	Recommended []FoodRecord `json:"recommended,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// PriceRange buckets how much the user wants to spend.
type PriceRange string

const (
	PriceLow    PriceRange = "low"
	PriceMedium PriceRange = "medium"
	PriceHigh   PriceRange = "high"
)

// MealType is the meal slot the user is asking about.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// SpiceTolerance is the user's stated spice preference.
type SpiceTolerance string

const (
	SpiceMild   SpiceTolerance = "mild"
	SpiceMedium SpiceTolerance = "medium"
	SpiceHot    SpiceTolerance = "hot"
)

// Preferences are inferred user preferences. Every field is
// independently optional; merging never clears a previously set field.
type Preferences struct {
	Dietary    []string       `json:"dietary,omitempty"`
	PriceRange PriceRange     `json:"price_range,omitempty"`
	MealType   MealType       `json:"meal_type,omitempty"`
	Cuisines   []string       `json:"cuisines,omitempty"`
	SpiceLevel SpiceTolerance `json:"spice_level,omitempty"`
}

// IsZero reports whether no field carries a value.
func (p Preferences) IsZero() bool {
	return len(p.Dietary) == 0 && p.PriceRange == "" && p.MealType == "" &&
		len(p.Cuisines) == 0 && p.SpiceLevel == ""
}

// Merge folds update into p. Set fields overwrite or augment; unset
// fields in update leave p untouched, so a failed extraction can never
// erase known preferences.
func (p *Preferences) Merge(update Preferences) {
	p.Dietary = appendMissing(p.Dietary, update.Dietary)
	if update.PriceRange != "" {
		p.PriceRange = update.PriceRange
	}
	if update.MealType != "" {
		p.MealType = update.MealType
	}
	p.Cuisines = appendMissing(p.Cuisines, update.Cuisines)
	if update.SpiceLevel != "" {
		p.SpiceLevel = update.SpiceLevel
	}
}

func appendMissing(dst, src []string) []string {
	for _, s := range src {
		found := false
		for _, d := range dst {
			if strings.EqualFold(d, s) {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, s)
		}
	}
	return dst
}

// LastContext holds the most recent value seen for each preference axis
// plus the most recent recommendation list. Used as fallback context
// when augmenting follow-up queries.
type LastContext struct {
	MealType    MealType     `json:"meal_type,omitempty"`
	Dietary     string       `json:"dietary,omitempty"`
	PriceRange  PriceRange   `json:"price_range,omitempty"`
	Cuisine     string       `json:"cuisine,omitempty"`
	Recommended []FoodRecord `json:"recommended,omitempty"`
}

// Phase is the steady state of a session.
type Phase string

const (
	PhaseEmpty  Phase = "EMPTY"
	PhaseActive Phase = "ACTIVE"
)

// ConversationState is the per-session memory of recent exchanges,
// inferred preferences and last-seen context. Exactly one state exists
// per active session; it is mutated only by the orchestrator.
type ConversationState struct {
	SessionID string      `json:"session_id"`
	Window    int         `json:"window"`
	Exchanges []Exchange  `json:"exchanges,omitempty"`
	Prefs     Preferences `json:"prefs"`
	Last      LastContext `json:"last"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewConversationState creates an empty state for a session.
func NewConversationState(sessionID string) *ConversationState {
	now := time.Now().UTC()
	return &ConversationState{
		SessionID: sessionID,
		Window:    DefaultHistoryWindow,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Phase reports EMPTY until the first exchange is recorded.
func (s *ConversationState) Phase() Phase {
	if len(s.Exchanges) == 0 {
		return PhaseEmpty
	}
	return PhaseActive
}

// RecordExchange appends one exchange, truncates history to the
// window (oldest dropped first) and merges the extracted preferences
// and last-seen pointers.
func (s *ConversationState) RecordExchange(ex Exchange, extracted Preferences) {
	s.Exchanges = append(s.Exchanges, ex)
	window := s.Window
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	if n := len(s.Exchanges); n > window {
		s.Exchanges = append([]Exchange(nil), s.Exchanges[n-window:]...)
	}

	s.Prefs.Merge(extracted)
	if extracted.MealType != "" {
		s.Last.MealType = extracted.MealType
	}
	if len(extracted.Dietary) > 0 {
		s.Last.Dietary = extracted.Dietary[len(extracted.Dietary)-1]
	}
	if extracted.PriceRange != "" {
		s.Last.PriceRange = extracted.PriceRange
	}
	if len(extracted.Cuisines) > 0 {
		s.Last.Cuisine = extracted.Cuisines[len(extracted.Cuisines)-1]
	}
	if len(ex.Recommended) > 0 {
		s.Last.Recommended = ex.Recommended
	}
	s.UpdatedAt = time.Now().UTC()
}

// LastRecommended returns the most recent non-empty recommendation list.
func (s *ConversationState) LastRecommended() []FoodRecord {
	return s.Last.Recommended
}

// ContextText renders the bounded history oldest-first, followed by the
// active preferences. Recommended items appear by name only to bound
// prompt length.
func (s *ConversationState) ContextText() string {
	var b strings.Builder
	for _, ex := range s.Exchanges {
		fmt.Fprintf(&b, "User: %s\n", ex.Utterance)
		fmt.Fprintf(&b, "Assistant: %s\n", ex.Reply)
		if len(ex.Recommended) > 0 {
			names := make([]string, len(ex.Recommended))
			for i, r := range ex.Recommended {
				names[i] = r.Name
			}
			fmt.Fprintf(&b, "Foods recommended: %s\n", strings.Join(names, ", "))
		}
	}
	if prefs := s.PreferencesText(); prefs != "" {
		fmt.Fprintf(&b, "Active preferences: %s\n", prefs)
	}
	return strings.TrimRight(b.String(), "\n")
}

// PreferencesText renders the set preference fields as one line.
func (s *ConversationState) PreferencesText() string {
	var parts []string
	if len(s.Prefs.Dietary) > 0 {
		parts = append(parts, "dietary="+strings.Join(s.Prefs.Dietary, "/"))
	}
	if s.Prefs.PriceRange != "" {
		parts = append(parts, "price="+string(s.Prefs.PriceRange))
	}
	if s.Prefs.MealType != "" {
		parts = append(parts, "meal="+string(s.Prefs.MealType))
	}
	if len(s.Prefs.Cuisines) > 0 {
		parts = append(parts, "cuisine="+strings.Join(s.Prefs.Cuisines, "/"))
	}
	if s.Prefs.SpiceLevel != "" {
		parts = append(parts, "spice="+string(s.Prefs.SpiceLevel))
	}
	return strings.Join(parts, ", ")
}
