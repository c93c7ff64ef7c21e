package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Pavantext/NutriMood/convo"
	"github.com/Pavantext/NutriMood/domain"
	"github.com/Pavantext/NutriMood/internal/adapter/llm"
	"github.com/Pavantext/NutriMood/retrieval"
)

// fallbackReply is the fixed user-facing reply when generation fails.
const fallbackReply = "Sorry, I'm having trouble coming up with recommendations right now. Please try again in a moment."

// TurnResult is what the presentation layer gets back for one turn.
type TurnResult struct {
	ReplyText     string              `json:"reply_text"`
	Recommended   []domain.FoodRecord `json:"recommended_food_records"`
	IsFollowup    bool                `json:"is_followup"`
	FollowupType  domain.FollowupType `json:"followup_type"`
	IntentSummary string              `json:"intent_summary"`
}

// HandleTurn processes one user utterance for a session and returns the
// cleaned reply plus the validated recommendation list. External
// failures never escape: retrieval trouble shrinks the candidate pool
// to nothing and generation trouble yields the fixed fallback reply.
func (s *Service) HandleTurn(ctx context.Context, sessionID, utterance string) (*TurnResult, error) {
	lock := s.lockSession(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.store.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// 1. Classify the utterance against the session state.
	intent := s.analyzer.Analyze(ctx, utterance, state)

	// 2. Retrieve candidates using the possibly augmented query.
	query := buildQuery(utterance, state, intent)
	candidates, err := s.retriever.Retrieve(ctx, query, s.cfg.TopK)
	if err != nil {
		// Recoverable: the turn continues with no close matches.
		s.log.WithError(err).WithField("session_id", sessionID).Warn("retrieval degraded to empty candidate list")
		candidates = nil
	}
	candidates = retrieval.EnforceDiversity(candidates, s.cfg.DiversityCap)

	// 3. Build the prompt and call generation.
	prompt := convo.BuildPrompt(utterance, candidates, state, intent)
	resp, err := s.llmClient.CreateChatCompletion(ctx, &llm.ChatCompletionRequest{
		Model: s.cfg.LLMModel,
		Messages: []llm.ChatMessage{
			{Role: "user", Content: prompt},
		},
	})
	raw := resp.Content()
	if err != nil || strings.TrimSpace(raw) == "" {
		if err != nil {
			s.log.WithError(err).WithField("session_id", sessionID).Error("generation failed")
		} else {
			s.log.WithField("session_id", sessionID).Error("generation returned empty reply")
		}
		return &TurnResult{
			ReplyText:     fallbackReply,
			Recommended:   []domain.FoodRecord{},
			IsFollowup:    false,
			FollowupType:  domain.FollowupNone,
			IntentSummary: "error",
		}, nil
	}

	// 4. Parse the reply and drop ids the model was never offered.
	clean, rawIDs := convo.ParseReply(raw)
	validated := validateIDs(rawIDs, candidates)
	if dropped := len(rawIDs) - len(validated); dropped > 0 {
		s.log.WithFields(logrus.Fields{
			"session_id": sessionID,
			"dropped":    dropped,
		}).Warn("dropped recommendation ids not in the candidate set")
	}

	// 5. Record the exchange with only the validated list.
	extracted := convo.ExtractPreferences(utterance)
	state.RecordExchange(domain.Exchange{
		ExchangeID:  "ex_" + uuid.New().String()[:8],
		Utterance:   utterance,
		Reply:       clean,
		Recommended: validated,
		CreatedAt:   time.Now().UTC(),
	}, extracted)
	if err := s.store.Save(ctx, state); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Error("failed to save session state")
	}

	return &TurnResult{
		ReplyText:     clean,
		Recommended:   validated,
		IsFollowup:    intent.IsFollowup,
		FollowupType:  intent.FollowupType,
		IntentSummary: intent.Intent,
	}, nil
}

// buildQuery augments follow-up queries with prior context. The
// embedding model has no memory of its own, so names of previously
// recommended items, the last-known preference values and any
// referenced items get pushed into the query text itself.
func buildQuery(utterance string, state *domain.ConversationState, intent domain.IntentAnalysis) string {
	if !intent.IsFollowup || state == nil {
		return utterance
	}

	parts := []string{utterance}
	seen := map[string]bool{}
	add := func(term string) {
		term = strings.TrimSpace(term)
		if term == "" {
			return
		}
		key := strings.ToLower(term)
		if seen[key] {
			return
		}
		seen[key] = true
		parts = append(parts, term)
	}

	for _, item := range intent.ReferencedItems {
		add(item)
	}
	if len(intent.ReferencedItems) == 0 {
		for _, rec := range state.LastRecommended() {
			add(rec.Name)
		}
	}
	add(string(state.Last.MealType))
	add(state.Last.Dietary)
	add(string(state.Last.PriceRange))
	add(state.Last.Cuisine)
	return strings.Join(parts, " ")
}

// validateIDs maps parsed id strings onto this turn's candidates,
// silently dropping hallucinated ids and duplicates.
func validateIDs(ids []string, candidates []domain.FoodRecord) []domain.FoodRecord {
	byID := make(map[string]domain.FoodRecord, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}
	out := make([]domain.FoodRecord, 0, len(ids))
	taken := make(map[string]bool, len(ids))
	for _, id := range ids {
		rec, ok := byID[id]
		if !ok || taken[id] {
			continue
		}
		taken[id] = true
		out = append(out, rec)
	}
	return out
}
