// Package store defines the session state store and implementations.
package store

import (
	"context"

	"github.com/Pavantext/NutriMood/domain"
)

// SessionStore keys conversation state by session id with per-key
// isolation; nothing mutable is shared between sessions.
type SessionStore interface {
	// Get returns the state for a session, or nil if none exists.
	Get(ctx context.Context, sessionID string) (*domain.ConversationState, error)

	// GetOrCreate returns the state for a session, creating empty
	// state on first use.
	GetOrCreate(ctx context.Context, sessionID string) (*domain.ConversationState, error)

	// Save persists the state after a turn.
	Save(ctx context.Context, state *domain.ConversationState) error

	// Delete unconditionally discards a session's state.
	Delete(ctx context.Context, sessionID string) error

	// Lifecycle
	Close() error
}
