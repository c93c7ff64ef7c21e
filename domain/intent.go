package domain

// FollowupType classifies what kind of follow-up a turn is.
type FollowupType string

const (
	FollowupClarification FollowupType = "clarification"
	FollowupModification  FollowupType = "modification"
	FollowupComparison    FollowupType = "comparison"
	FollowupContinuation  FollowupType = "continuation"
	FollowupPreference    FollowupType = "preference"
	FollowupReference     FollowupType = "reference"
	FollowupPronoun       FollowupType = "pronoun"
	FollowupNone          FollowupType = "none"
)

// IntentAnalysis is the per-turn classification of an utterance against
// the session's state. Confidence, sentiment and urgency are advisory
// only; the pipeline never blocks on them being absent.
type IntentAnalysis struct {
	IsFollowup        bool         `json:"is_followup"`
	FollowupType      FollowupType `json:"followup_type"`
	ReferencedItems   []string     `json:"referenced_items,omitempty"`
	ContextReferences []string     `json:"context_references,omitempty"`
	Intent            string       `json:"intent,omitempty"`
	Confidence        float64      `json:"confidence,omitempty"`
	Sentiment         string       `json:"sentiment,omitempty"`
	Urgency           string       `json:"urgency,omitempty"`
}
