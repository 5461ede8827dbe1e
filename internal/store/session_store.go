package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/advisor-ai/internal/model"
)

// sessionRow mirrors a chat_sessions row; messages are a JSON array.
type sessionRow struct {
	ID       string    `db:"id"`
	Title    string    `db:"title"`
	Date     time.Time `db:"date"`
	Messages string    `db:"messages"`
}

func (r sessionRow) toSession() (model.ChatSession, error) {
	sess := model.ChatSession{ID: r.ID, Title: r.Title, Date: r.Date}
	if r.Messages != "" {
		if err := json.Unmarshal([]byte(r.Messages), &sess.Messages); err != nil {
			return model.ChatSession{}, fmt.Errorf("unmarshaling messages for session %s: %w", r.ID, err)
		}
	}
	return sess, nil
}

// ListSessions returns every saved session, newest first.
func (s *SQLiteStore) ListSessions(ctx context.Context) ([]model.ChatSession, error) {
	var rows []sessionRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT id, title, date, messages FROM chat_sessions ORDER BY date DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}

	sessions := make([]model.ChatSession, 0, len(rows))
	for _, r := range rows {
		sess, err := r.toSession()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// GetSession retrieves a single session by its ID.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*model.ChatSession, error) {
	var r sessionRow
	err := s.db.GetContext(ctx, &r,
		"SELECT id, title, date, messages FROM chat_sessions WHERE id = ?", id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting session %s: %w", id, err)
	}

	sess, err := r.toSession()
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// SaveSession inserts or replaces the whole session snapshot.
func (s *SQLiteStore) SaveSession(ctx context.Context, sess model.ChatSession) error {
	if strings.TrimSpace(sess.ID) == "" {
		return fmt.Errorf("session id must not be empty")
	}
	if sess.Date.IsZero() {
		sess.Date = time.Now()
	}

	messages := sess.Messages
	if messages == nil {
		messages = []model.Message{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshaling messages for session %s: %w", sess.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (id, title, date, messages, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			date = excluded.date,
			messages = excluded.messages,
			updated_at = excluded.updated_at`,
		sess.ID, sess.Title, sess.Date.UTC(), string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", sess.ID, err)
	}
	return nil
}

// DeleteSession removes a session by ID.
func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM chat_sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}
