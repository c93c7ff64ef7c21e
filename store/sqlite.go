package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Pavantext/NutriMood/domain"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements SessionStore using SQLite. Exchanges are kept
// beyond the in-memory window for audit; loads rehydrate only the
// bounded tail.
type SQLiteStore struct {
	db     *sql.DB
	window int
}

// Ensure SQLiteStore implements SessionStore interface.
var _ SessionStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite-backed session store.
func NewSQLiteStore(dsn string, window int) (*SQLiteStore, error) {
	if window <= 0 {
		window = domain.DefaultHistoryWindow
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db, window: window}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			window INTEGER NOT NULL,
			prefs TEXT NOT NULL,
			last_context TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS exchanges (
			exchange_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			utterance TEXT NOT NULL,
			reply TEXT NOT NULL,
			recommended TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exchanges_session ON exchanges(session_id, created_at)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Get returns the state for a session, or nil if none exists.
func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	state := &domain.ConversationState{SessionID: sessionID}
	var prefsJSON, lastJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT window, prefs, last_context, created_at, updated_at FROM sessions WHERE session_id = ?`,
		sessionID,
	).Scan(&state.Window, &prefsJSON, &lastJSON, &state.CreatedAt, &state.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if err := json.Unmarshal([]byte(prefsJSON), &state.Prefs); err != nil {
		return nil, fmt.Errorf("failed to decode prefs: %w", err)
	}
	if err := json.Unmarshal([]byte(lastJSON), &state.Last); err != nil {
		return nil, fmt.Errorf("failed to decode last context: %w", err)
	}

	exchanges, err := s.loadExchanges(ctx, sessionID, state.Window)
	if err != nil {
		return nil, err
	}
	state.Exchanges = exchanges
	return state, nil
}

// GetOrCreate returns the state for a session, creating it on first use.
func (s *SQLiteStore) GetOrCreate(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state != nil {
		return state, nil
	}
	state = domain.NewConversationState(sessionID)
	state.Window = s.window
	if err := s.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Save upserts the session row and inserts any exchanges not yet stored.
func (s *SQLiteStore) Save(ctx context.Context, state *domain.ConversationState) error {
	prefsJSON, err := json.Marshal(state.Prefs)
	if err != nil {
		return fmt.Errorf("failed to encode prefs: %w", err)
	}
	lastJSON, err := json.Marshal(state.Last)
	if err != nil {
		return fmt.Errorf("failed to encode last context: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (session_id, window, prefs, last_context, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
			window = excluded.window,
			prefs = excluded.prefs,
			last_context = excluded.last_context,
			updated_at = excluded.updated_at`,
		state.SessionID, state.Window, string(prefsJSON), string(lastJSON), state.CreatedAt, state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	for _, ex := range state.Exchanges {
		recJSON, err := json.Marshal(ex.Recommended)
		if err != nil {
			return fmt.Errorf("failed to encode recommendations: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO exchanges (exchange_id, session_id, utterance, reply, recommended, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			ex.ExchangeID, state.SessionID, ex.Utterance, ex.Reply, string(recJSON), ex.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save exchange: %w", err)
		}
	}

	return tx.Commit()
}

// Delete discards a session's state and its stored exchanges.
func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM exchanges WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete exchanges: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return tx.Commit()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// loadExchanges returns the newest `window` exchanges in oldest-first order.
func (s *SQLiteStore) loadExchanges(ctx context.Context, sessionID string, window int) ([]domain.Exchange, error) {
	if window <= 0 {
		window = domain.DefaultHistoryWindow
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT exchange_id, utterance, reply, recommended, created_at
		 FROM exchanges WHERE session_id = ?
		 ORDER BY created_at DESC, exchange_id DESC LIMIT ?`,
		sessionID, window,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []domain.Exchange
	for rows.Next() {
		var ex domain.Exchange
		var recJSON sql.NullString
		if err := rows.Scan(&ex.ExchangeID, &ex.Utterance, &ex.Reply, &recJSON, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		if recJSON.Valid && recJSON.String != "" {
			if err := json.Unmarshal([]byte(recJSON.String), &ex.Recommended); err != nil {
				return nil, fmt.Errorf("failed to decode recommendations: %w", err)
			}
		}
		exchanges = append(exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into oldest-first order.
	for i, j := 0, len(exchanges)-1; i < j; i, j = i+1, j-1 {
		exchanges[i], exchanges[j] = exchanges[j], exchanges[i]
	}
	return exchanges, nil
}
