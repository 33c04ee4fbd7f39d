package memory

import (
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Interaction is one logged user exchange within a session.
type Interaction struct {
	ID             int64
	SessionID      string
	Query          string
	ProcessedInput string
	Verdict        string
	CreatedAt      time.Time
}

// CreateSession registers a session. Creating an existing session is a
// no-op.
func (s *Store) CreateSession(sessionID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO sessions (id, user_id) VALUES (?, ?)",
		sessionID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	s.logger.Debug("session created", zap.String("session_id", sessionID))
	return nil
}

// AddInteraction logs one user exchange.
func (s *Store) AddInteraction(sessionID, query, processedInput, verdict string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO interactions (session_id, query, processed_input, verdict)
		 VALUES (?, ?, ?, ?)`,
		sessionID, clip(query, 200), clip(processedInput, 500), verdict,
	)
	if err != nil {
		return fmt.Errorf("failed to log interaction: %w", err)
	}
	return nil
}

// RecentInteractions returns the most recent interactions for a session,
// newest first.
func (s *Store) RecentInteractions(sessionID string, limit int) ([]Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, query, processed_input, verdict, created_at
		 FROM interactions
		 WHERE session_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		var it Interaction
		if err := rows.Scan(&it.ID, &it.SessionID, &it.Query, &it.ProcessedInput, &it.Verdict, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// clip truncates s to at most n bytes without splitting a multi-byte
// rune.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
