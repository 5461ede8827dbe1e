package store

import (
	"context"
	"errors"

	"github.com/nhle/advisor-ai/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the local persistence the client needs: a stable user
// identity, the profile snapshot and saved chat sessions.
type Store interface {
	// UserID returns the persistent anonymous user id, creating it on
	// first use.
	UserID(ctx context.Context) (string, error)

	LoadProfile(ctx context.Context) (model.UserProfile, error)
	SaveProfile(ctx context.Context, p model.UserProfile) error

	// ListSessions returns saved sessions, newest first.
	ListSessions(ctx context.Context) ([]model.ChatSession, error)
	GetSession(ctx context.Context, id string) (*model.ChatSession, error)
	SaveSession(ctx context.Context, s model.ChatSession) error
	DeleteSession(ctx context.Context, id string) error

	Close() error
}
