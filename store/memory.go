package store

import (
	"context"
	"sync"

	"github.com/Pavantext/NutriMood/domain"
)

// MemoryStore keeps session state in a process-local map.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ConversationState
	window   int
}

// Ensure MemoryStore implements SessionStore interface.
var _ SessionStore = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory session store. window bounds each
// session's exchange history.
func NewMemoryStore(window int) *MemoryStore {
	if window <= 0 {
		window = domain.DefaultHistoryWindow
	}
	return &MemoryStore{
		sessions: make(map[string]*domain.ConversationState),
		window:   window,
	}
}

// Get returns the state for a session, or nil if none exists.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[sessionID], nil
}

// GetOrCreate returns the state for a session, creating it on first use.
func (s *MemoryStore) GetOrCreate(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	s.mu.RLock()
	state, exists := s.sessions[sessionID]
	s.mu.RUnlock()
	if exists {
		return state, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Double-check under the write lock.
	if state, exists = s.sessions[sessionID]; exists {
		return state, nil
	}
	state = domain.NewConversationState(sessionID)
	state.Window = s.window
	s.sessions[sessionID] = state
	return state, nil
}

// Save stores the state under its session id.
func (s *MemoryStore) Save(ctx context.Context, state *domain.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[state.SessionID] = state
	return nil
}

// Delete discards a session's state.
func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
