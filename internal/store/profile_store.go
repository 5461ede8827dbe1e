package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/advisor-ai/internal/model"
)

// LoadProfile returns the saved profile, or the default profile when none
// has been saved. Fields missing from an older snapshot keep their defaults.
func (s *SQLiteStore) LoadProfile(ctx context.Context) (model.UserProfile, error) {
	var data string
	err := s.db.GetContext(ctx, &data, "SELECT data FROM profile WHERE id = 1")
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultProfile(), nil
	}
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("reading profile: %w", err)
	}

	p := model.DefaultProfile()
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return model.UserProfile{}, fmt.Errorf("unmarshaling profile: %w", err)
	}
	return p, nil
}

// SaveProfile replaces the stored profile snapshot.
func (s *SQLiteStore) SaveProfile(ctx context.Context, p model.UserProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling profile: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profile (id, data, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}
