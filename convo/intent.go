package convo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Pavantext/NutriMood/domain"
	"github.com/Pavantext/NutriMood/internal/adapter/llm"
)

// Analyzer classifies an utterance against the session's state.
// Implementations must never leave the follow-up flag undefined: with
// no history the turn is not a follow-up, by definition.
type Analyzer interface {
	Analyze(ctx context.Context, utterance string, state *domain.ConversationState) domain.IntentAnalysis
}

// Follow-up cues. Known precision problem: several of these are
// extremely common words and will flag many ordinary new questions as
// follow-ups once history exists. Kept as-is pending a product call.
var (
	followupPhrases = []string{
		"what about", "how about", "what else", "tell me more", "more about",
		"anything else", "instead", "without", "compare", "versus", " vs ",
		"the first", "the second", "the third", "the last", "that one",
		"this one", "i prefer", "i like", "i love", "i don't like", "i hate",
	}
	followupWords = []string{
		"why", "which", "where", "when", "who", "how", "what", "and",
		"it", "that", "those", "them", "this", "they",
	}
	ordinals = []struct {
		cue   string
		index int
	}{
		{"first", 0},
		{"second", 1},
		{"third", 2},
	}
)

// HeuristicAnalyzer is the cheap, deterministic classifier and the
// guaranteed fallback when model-assisted analysis fails.
type HeuristicAnalyzer struct{}

// Ensure HeuristicAnalyzer implements Analyzer interface.
var _ Analyzer = HeuristicAnalyzer{}

// Analyze flags a follow-up when the utterance contains an
// interrogative or anaphoric cue and history is non-empty.
func (HeuristicAnalyzer) Analyze(ctx context.Context, utterance string, state *domain.ConversationState) domain.IntentAnalysis {
	if state == nil || state.Phase() == domain.PhaseEmpty {
		return domain.IntentAnalysis{
			IsFollowup:   false,
			FollowupType: domain.FollowupNone,
			Intent:       "new food request",
		}
	}

	lower := strings.ToLower(utterance)
	followup := hasPhraseCue(lower) || hasWordCue(lower)
	if !followup {
		return domain.IntentAnalysis{
			IsFollowup:   false,
			FollowupType: domain.FollowupNone,
			Intent:       "new food request",
		}
	}

	referenced := referencedItems(lower, state.LastRecommended())
	ftype := classifyFollowup(lower, referenced)
	intent := fmt.Sprintf("follow-up (%s)", ftype)
	if len(referenced) > 0 {
		intent += " about " + strings.Join(referenced, ", ")
	}
	return domain.IntentAnalysis{
		IsFollowup:      true,
		FollowupType:    ftype,
		ReferencedItems: referenced,
		Intent:          intent,
	}
}

func hasPhraseCue(lower string) bool {
	for _, p := range followupPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func hasWordCue(lower string) bool {
	for _, tok := range strings.Fields(nonLetters(lower)) {
		for _, w := range followupWords {
			if tok == w {
				return true
			}
		}
	}
	return false
}

func nonLetters(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return ' '
	}, s)
}

// referencedItems resolves item mentions: names of previously
// recommended records appearing in the utterance, plus ordinal
// references ("the first one") into the last recommendation list.
func referencedItems(lower string, last []domain.FoodRecord) []string {
	var out []string
	for _, rec := range last {
		if rec.Name != "" && strings.Contains(lower, strings.ToLower(rec.Name)) {
			out = append(out, rec.Name)
		}
	}
	for _, ord := range ordinals {
		if strings.Contains(lower, ord.cue) && ord.index < len(last) {
			if !containsFold(out, last[ord.index].Name) {
				out = append(out, last[ord.index].Name)
			}
		}
	}
	if strings.Contains(lower, "last one") && len(last) > 0 {
		name := last[len(last)-1].Name
		if !containsFold(out, name) {
			out = append(out, name)
		}
	}
	return out
}

func classifyFollowup(lower string, referenced []string) domain.FollowupType {
	switch {
	case containsAny(lower, "compare", "versus", " vs ", "difference", "better"):
		return domain.FollowupComparison
	case containsAny(lower, "instead", "without", "swap", "change", "but not"):
		return domain.FollowupModification
	case len(referenced) > 0 || containsAny(lower, "that one", "this one", "the first", "the second", "the third", "the last"):
		return domain.FollowupReference
	case containsAny(lower, "what else", "anything else", "more options", "what about", "how about"):
		return domain.FollowupContinuation
	case containsAny(lower, "i prefer", "i like", "i love", "i don't like", "i hate", "allergic"):
		return domain.FollowupPreference
	case containsAny(lower, "tell me more", "more about", "why", "how", "what", "which", "where", "when", "who"):
		return domain.FollowupClarification
	default:
		return domain.FollowupPronoun
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// LLMAnalyzer delegates classification to the generation model with a
// strict JSON-only instruction, falling back to the heuristic on any
// failure.
type LLMAnalyzer struct {
	client   llm.LLMClient
	model    string
	fallback HeuristicAnalyzer
	log      *logrus.Logger
}

// Ensure LLMAnalyzer implements Analyzer interface.
var _ Analyzer = (*LLMAnalyzer)(nil)

// NewLLMAnalyzer creates a model-assisted analyzer.
func NewLLMAnalyzer(client llm.LLMClient, model string, log *logrus.Logger) *LLMAnalyzer {
	return &LLMAnalyzer{client: client, model: model, log: log}
}

const intentInstruction = `You classify one user message in a food recommendation chat.
Return ONLY a JSON object, no prose, with exactly these fields:
{"is_followup": bool, "followup_type": "clarification|modification|comparison|continuation|preference|reference|pronoun|none", "referenced_items": [string], "context_references": [string], "intent": string, "confidence": number, "sentiment": string, "urgency": string}`

func (a *LLMAnalyzer) Analyze(ctx context.Context, utterance string, state *domain.ConversationState) domain.IntentAnalysis {
	// First turn of a session is never a follow-up, regardless of phrasing.
	if state == nil || state.Phase() == domain.PhaseEmpty {
		return a.fallback.Analyze(ctx, utterance, state)
	}

	prompt := fmt.Sprintf("%s\n\nConversation so far:\n%s\n\nUser message: %s", intentInstruction, state.ContextText(), utterance)
	resp, err := a.client.CreateChatCompletion(ctx, &llm.ChatCompletionRequest{
		Model: a.model,
		Messages: []llm.ChatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		a.log.WithError(err).Warn("intent classification call failed, using heuristic")
		return a.fallback.Analyze(ctx, utterance, state)
	}

	result, err := decodeIntentJSON(resp.Content())
	if err != nil {
		a.log.WithError(err).Warn("intent classification unparseable, using heuristic")
		return a.fallback.Analyze(ctx, utterance, state)
	}
	return result
}

func decodeIntentJSON(text string) (domain.IntentAnalysis, error) {
	// Models wrap JSON in fences or chatter; take the outermost object.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return domain.IntentAnalysis{}, fmt.Errorf("no JSON object in reply")
	}
	var result domain.IntentAnalysis
	if err := json.Unmarshal([]byte(text[start:end+1]), &result); err != nil {
		return domain.IntentAnalysis{}, fmt.Errorf("decode intent JSON: %w", err)
	}
	if !validFollowupType(result.FollowupType) {
		return domain.IntentAnalysis{}, fmt.Errorf("invalid followup_type %q", result.FollowupType)
	}
	if !result.IsFollowup {
		result.FollowupType = domain.FollowupNone
	}
	return result, nil
}

func validFollowupType(t domain.FollowupType) bool {
	switch t {
	case domain.FollowupClarification, domain.FollowupModification,
		domain.FollowupComparison, domain.FollowupContinuation,
		domain.FollowupPreference, domain.FollowupReference,
		domain.FollowupPronoun, domain.FollowupNone:
		return true
	}
	return false
}
