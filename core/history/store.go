// Package history persists conversation turns per session and exposes them
// back to the pipeline as recent-window history.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/adalundhe/relay/core/capability"
)

// DefaultRecentLimit bounds Recent when the caller passes a non-positive limit.
const DefaultRecentLimit = 10

var (
	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("history store closed")

	// ErrEmptySessionID indicates a request without a session id.
	ErrEmptySessionID = errors.New("empty session id")
)

const schema = `
CREATE TABLE IF NOT EXISTS conversation_turns (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_turns_session ON conversation_turns(session_id, id);
`

// Store is a sqlite-backed conversation log.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	log    *slog.Logger
	closed bool
}

// Open opens (creating if needed) the conversation store at path. Use
// ":memory:" for an ephemeral store.
func Open(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}

	return &Store{
		db:  db,
		log: log.With("component", "history"),
	}, nil
}

// Append records one turn at the end of a session's conversation.
func (s *Store) Append(ctx context.Context, sessionID string, turn capability.Turn) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation_turns (session_id, role, content) VALUES (?, ?, ?)`,
		sessionID, string(turn.Role), turn.Content)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// Recent returns the last limit turns for a session, oldest first.
func (s *Store) Recent(ctx context.Context, sessionID string, limit int) ([]capability.Turn, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content FROM conversation_turns
		 WHERE session_id = ?
		 ORDER BY id DESC LIMIT ?`,
		sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var turns []capability.Turn
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, capability.Turn{
			Role:    capability.TurnRole(role),
			Content: content,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}

	// Newest-first from the query; callers expect oldest-first.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// SessionInfo summarizes one session's stored conversation.
type SessionInfo struct {
	ID           string    `json:"id"`
	Turns        int       `json:"turns"`
	LastActivity time.Time `json:"last_activity"`
}

// Sessions lists every session with stored turns, most recently active first.
func (s *Store) Sessions(ctx context.Context) ([]SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, COUNT(*), MAX(created_at) FROM conversation_turns
		 GROUP BY session_id
		 ORDER BY MAX(id) DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var (
			info SessionInfo
			last any
		)
		if err := rows.Scan(&info.ID, &info.Turns, &last); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		// MAX() strips the column's declared type, so the driver may hand
		// the timestamp back as text.
		switch v := last.(type) {
		case time.Time:
			info.LastActivity = v
		case string:
			info.LastActivity, _ = time.Parse("2006-01-02 15:04:05", v)
		case []byte:
			info.LastActivity, _ = time.Parse("2006-01-02 15:04:05", string(v))
		}
		sessions = append(sessions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// TurnCount reports how many turns a session has accumulated.
func (s *Store) TurnCount(ctx context.Context, sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrStoreClosed
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversation_turns WHERE session_id = ?`,
		sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count turns: %w", err)
	}
	return count, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
