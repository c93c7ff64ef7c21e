package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pavantext/NutriMood/catalog"
	"github.com/Pavantext/NutriMood/config"
	"github.com/Pavantext/NutriMood/convo"
	"github.com/Pavantext/NutriMood/domain"
	"github.com/Pavantext/NutriMood/internal/adapter/embedding"
	"github.com/Pavantext/NutriMood/internal/adapter/llm"
	"github.com/Pavantext/NutriMood/internal/adapter/vectorindex"
	"github.com/Pavantext/NutriMood/retrieval"
	"github.com/Pavantext/NutriMood/store"
)

var testMenu = []domain.FoodRecord{
	{ID: "1", Name: "Paneer Tikka", Description: "Char-grilled cottage cheese cubes in spiced yogurt", Region: "North India", Diet: "Vegetarian", SpiceLevel: "Medium", Price: "medium"},
	{ID: "2", Name: "Masala Dosa", Description: "Crisp fermented crepe with spiced potato filling", Region: "South India", Diet: "Vegetarian", SpiceLevel: "Medium", Price: "low"},
	{ID: "3", Name: "Butter Chicken", Description: "Tandoori chicken simmered in a buttery tomato gravy", Region: "North India", Diet: "Non-Vegetarian", SpiceLevel: "Mild", Price: "high"},
	{ID: "4", Name: "Pani Puri", Description: "Hollow crisps filled with tangy spiced water", Region: "North India", Diet: "Vegetarian", SpiceLevel: "Hot", Price: "low"},
}

// recordingClient captures the prompt sent on each generation call
// before delegating to the mock.
type recordingClient struct {
	*llm.MockClient
	mu      sync.Mutex
	prompts []string
}

func (c *recordingClient) CreateChatCompletion(ctx context.Context, req *llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	c.mu.Lock()
	if len(req.Messages) > 0 {
		c.prompts = append(c.prompts, req.Messages[len(req.Messages)-1].Content)
	}
	c.mu.Unlock()
	return c.MockClient.CreateChatCompletion(ctx, req)
}

// recordingEmbedder captures the query text handed to retrieval.
type recordingEmbedder struct {
	*embedding.MockEmbedder
	mu      sync.Mutex
	queries []string
}

func (e *recordingEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	e.mu.Lock()
	e.queries = append(e.queries, text)
	e.mu.Unlock()
	return e.MockEmbedder.Embed(ctx, text)
}

func (e *recordingEmbedder) lastQuery() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queries) == 0 {
		return ""
	}
	return e.queries[len(e.queries)-1]
}

func newTestService(t *testing.T) (*Service, *recordingClient, *recordingEmbedder) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	index := vectorindex.NewMemoryIndex()
	if err := catalog.Seed(context.Background(), index, embedding.NewMockEmbedder(), testMenu); err != nil {
		t.Fatalf("failed to seed index: %v", err)
	}

	embedder := &recordingEmbedder{MockEmbedder: embedding.NewMockEmbedder()}
	client := &recordingClient{MockClient: llm.NewMockClient()}
	cfg := &config.Config{
		LLMModel:      "mock-model",
		TopK:          15,
		HistoryWindow: 10,
		DiversityCap:  2,
	}

	svc := New(
		store.NewMemoryStore(cfg.HistoryWindow),
		retrieval.NewClient(embedder, index, log),
		convo.HeuristicAnalyzer{},
		client,
		cfg,
		log,
	)
	return svc, client, embedder
}

func TestHandleTurnRecordsExchange(t *testing.T) {
	svc, client, _ := newTestService(t)
	client.Enqueue("These should hit the spot. [FOOD_IDS:1,2]")

	result, err := svc.HandleTurn(context.Background(), "s1", "something spicy and vegetarian")
	require.NoError(t, err)

	assert.Equal(t, "These should hit the spot.", result.ReplyText)
	require.Len(t, result.Recommended, 2)
	assert.Equal(t, "Paneer Tikka", result.Recommended[0].Name)
	assert.Equal(t, "Masala Dosa", result.Recommended[1].Name)
	assert.False(t, result.IsFollowup)

	history, err := svc.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "something spicy and vegetarian", history[0].Utterance)
	assert.Len(t, history[0].Recommended, 2)

	state, err := svc.store.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Contains(t, state.Prefs.Dietary, "vegetarian")
}

func TestHandleTurnFollowupAugmentsQuery(t *testing.T) {
	svc, client, embedder := newTestService(t)
	client.Enqueue(
		"Try this. [FOOD_IDS:1]",
		"Something different then. [FOOD_IDS:2,4]",
	)

	_, err := svc.HandleTurn(context.Background(), "s1", "I want something vegetarian for lunch")
	require.NoError(t, err)

	result, err := svc.HandleTurn(context.Background(), "s1", "what else do you have")
	require.NoError(t, err)

	assert.True(t, result.IsFollowup)
	assert.Equal(t, domain.FollowupContinuation, result.FollowupType)

	// The follow-up query sent to the embedder carries names of the
	// previous recommendations and the remembered preference values.
	query := embedder.lastQuery()
	assert.Contains(t, query, "what else do you have")
	assert.Contains(t, query, "Paneer Tikka")
	assert.Contains(t, query, "vegetarian")
}

func TestHandleTurnFirstTurnNeverFollowup(t *testing.T) {
	svc, client, embedder := newTestService(t)
	client.Enqueue("Sure. [FOOD_IDS:3]")

	result, err := svc.HandleTurn(context.Background(), "s1", "what about butter chicken")
	require.NoError(t, err)

	assert.False(t, result.IsFollowup)
	assert.Equal(t, domain.FollowupNone, result.FollowupType)
	// No history means no augmentation either.
	assert.Equal(t, "what about butter chicken", embedder.lastQuery())
}

func TestHandleTurnDropsUnknownIDs(t *testing.T) {
	svc, client, _ := newTestService(t)
	client.Enqueue("Here you go. [FOOD_IDS:2,999,2]")

	result, err := svc.HandleTurn(context.Background(), "s1", "breakfast ideas")
	require.NoError(t, err)

	require.Len(t, result.Recommended, 1)
	assert.Equal(t, "2", result.Recommended[0].ID)
}

func TestHandleTurnGenerationFailure(t *testing.T) {
	svc, client, _ := newTestService(t)
	client.Fail(errors.New("upstream timeout"))

	result, err := svc.HandleTurn(context.Background(), "s1", "dinner ideas")
	require.NoError(t, err)

	assert.Equal(t, fallbackReply, result.ReplyText)
	assert.Empty(t, result.Recommended)

	// A failed turn leaves no trace in the conversation history.
	history, err := svc.History(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHandleTurnEmptyReply(t *testing.T) {
	svc, client, _ := newTestService(t)
	client.Enqueue("   \n  ")

	result, err := svc.HandleTurn(context.Background(), "s1", "dinner ideas")
	require.NoError(t, err)
	assert.Equal(t, fallbackReply, result.ReplyText)
	assert.Empty(t, result.Recommended)
}

func TestHandleTurnMockScriptlessEchoesCandidates(t *testing.T) {
	svc, _, _ := newTestService(t)

	// With nothing queued the mock picks ids straight from the prompt's
	// candidate lines, so the pipeline round-trips end to end offline.
	result, err := svc.HandleTurn(context.Background(), "s1", "crispy vegetarian snack")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Recommended)
	assert.NotContains(t, result.ReplyText, "[FOOD_IDS:")
}

func TestResetSession(t *testing.T) {
	svc, client, _ := newTestService(t)
	client.Enqueue("Enjoy. [FOOD_IDS:4]")

	_, err := svc.HandleTurn(context.Background(), "s1", "something tangy")
	require.NoError(t, err)

	require.NoError(t, svc.ResetSession(context.Background(), "s1"))

	history, err := svc.History(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, history)

	state, err := svc.store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestHistoryDuringConcurrentTurns(t *testing.T) {
	svc, _, _ := newTestService(t)

	// History polling while turns are in flight must serialize against
	// them rather than read the live exchange slice.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := svc.HandleTurn(context.Background(), "s1", "crispy vegetarian snack"); err != nil {
				t.Errorf("HandleTurn failed: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := svc.History(context.Background(), "s1"); err != nil {
				t.Errorf("History failed: %v", err)
			}
		}()
	}
	wg.Wait()

	history, err := svc.History(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, history, 8)
}

func TestHistoryReturnsSnapshot(t *testing.T) {
	svc, client, _ := newTestService(t)
	client.Enqueue("First. [FOOD_IDS:1]", "Second. [FOOD_IDS:2]")

	_, err := svc.HandleTurn(context.Background(), "s1", "something vegetarian")
	require.NoError(t, err)

	snapshot, err := svc.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, snapshot, 1)

	_, err = svc.HandleTurn(context.Background(), "s1", "what else do you have")
	require.NoError(t, err)

	// The earlier snapshot must not grow with the later turn.
	assert.Len(t, snapshot, 1)
	assert.Equal(t, "something vegetarian", snapshot[0].Utterance)
}

func TestResetSessionRetiresLockEntry(t *testing.T) {
	svc, client, _ := newTestService(t)
	client.Enqueue("Enjoy. [FOOD_IDS:4]")

	_, err := svc.HandleTurn(context.Background(), "s1", "something tangy")
	require.NoError(t, err)

	require.NoError(t, svc.ResetSession(context.Background(), "s1"))

	svc.mu.Lock()
	_, held := svc.sessionLocks["s1"]
	svc.mu.Unlock()
	assert.False(t, held, "reset session should not keep a lock entry")
}

func TestSessionIsolation(t *testing.T) {
	svc, client, _ := newTestService(t)
	client.Enqueue("For you. [FOOD_IDS:1]", "And for you. [FOOD_IDS:3]")

	_, err := svc.HandleTurn(context.Background(), "veg", "vegetarian please")
	require.NoError(t, err)
	_, err = svc.HandleTurn(context.Background(), "meat", "chicken please")
	require.NoError(t, err)

	vegHist, err := svc.History(context.Background(), "veg")
	require.NoError(t, err)
	meatHist, err := svc.History(context.Background(), "meat")
	require.NoError(t, err)

	require.Len(t, vegHist, 1)
	require.Len(t, meatHist, 1)
	assert.Equal(t, "Paneer Tikka", vegHist[0].Recommended[0].Name)
	assert.Equal(t, "Butter Chicken", meatHist[0].Recommended[0].Name)

	if strings.Contains(vegHist[0].Utterance, "chicken") {
		t.Fatal("sessions leaked into each other")
	}
}
