// Package service implements the per-turn orchestration of the
// recommendation pipeline.
package service

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Pavantext/NutriMood/config"
	"github.com/Pavantext/NutriMood/convo"
	"github.com/Pavantext/NutriMood/domain"
	"github.com/Pavantext/NutriMood/internal/adapter/llm"
	"github.com/Pavantext/NutriMood/retrieval"
	"github.com/Pavantext/NutriMood/store"
)

// Service drives one conversation turn at a time per session: intent
// analysis, retrieval, prompt building, generation, parsing, state
// update.
type Service struct {
	store     store.SessionStore
	retriever *retrieval.Client
	analyzer  convo.Analyzer
	llmClient llm.LLMClient
	cfg       *config.Config
	log       *logrus.Logger

	// Turns for the same session must not interleave; sessions are
	// independent and run in parallel.
	mu           sync.Mutex
	sessionLocks map[string]*sync.Mutex
}

// New creates the orchestration service.
func New(st store.SessionStore, retriever *retrieval.Client, analyzer convo.Analyzer, llmClient llm.LLMClient, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		store:        st,
		retriever:    retriever,
		analyzer:     analyzer,
		llmClient:    llmClient,
		cfg:          cfg,
		log:          log,
		sessionLocks: make(map[string]*sync.Mutex),
	}
}

// lockSession serializes in-flight turns per session id.
func (s *Service) lockSession(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.sessionLocks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.sessionLocks[sessionID] = lock
	}
	return lock
}

// History returns the session's recorded exchanges, oldest first. The
// memory store hands out live state, so the read holds the same
// per-session lock as a turn and returns a snapshot copy.
func (s *Service) History(ctx context.Context, sessionID string) ([]domain.Exchange, error) {
	lock := s.lockSession(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, nil
	}
	return append([]domain.Exchange(nil), state.Exchanges...), nil
}

// ResetSession unconditionally discards the session's state,
// transitioning it back to EMPTY, and retires the session's lock entry.
func (s *Service) ResetSession(ctx context.Context, sessionID string) error {
	lock := s.lockSession(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sessionLocks, sessionID)
	s.mu.Unlock()
	return nil
}
