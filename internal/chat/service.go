// Package chat runs the conversation with the advising backend: session
// lifecycle, turn flow, titles and persistence of session snapshots.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nhle/advisor-ai/internal/action"
	"github.com/nhle/advisor-ai/internal/model"
	"github.com/nhle/advisor-ai/internal/store"
)

// Texts shown as assistant messages.
const (
	Greeting = "Hello! I'm AdvisorAI, your personal college advisor. " +
		"I can help you with information about courses, minors, ULCs, CS tracks, and more. " +
		"How can I assist you today?"
	SessionFailedText = "Failed to start a new chat session with the backend. Please try again."
	ReplyFailedText   = "Failed to receive a response from the backend. Please try again later."
)

// Categories are the quick-start topics offered on an empty chat.
var Categories = []string{"Courses", "Minors", "ULCs", "CS Tracks", "Deadlines"}

const titleLength = 20

// ErrEmptyMessage is returned when the user sends only whitespace.
var ErrEmptyMessage = errors.New("message is empty")

// Backend is the remote agent the service talks to.
type Backend interface {
	CreateSession(ctx context.Context, userID, sessionID string) error
	SendMessage(ctx context.Context, userID, sessionID, text string) (string, error)
}

// SessionStore persists session snapshots.
type SessionStore interface {
	ListSessions(ctx context.Context) ([]model.ChatSession, error)
	GetSession(ctx context.Context, id string) (*model.ChatSession, error)
	SaveSession(ctx context.Context, s model.ChatSession) error
	DeleteSession(ctx context.Context, id string) error
}

// Service owns the current conversation. Turns are serialized; reads of
// the transcript may happen concurrently with a turn in flight.
type Service struct {
	backend Backend
	store   SessionStore
	userID  string
	log     zerolog.Logger
	now     func() time.Time

	conv *Conversation

	turnMu sync.Mutex

	mu        sync.Mutex
	sessionID string
	title     string
}

// New creates a service for userID starting on a fresh chat.
func New(backend Backend, s SessionStore, userID string, log zerolog.Logger) *Service {
	svc := &Service{
		backend: backend,
		store:   s,
		userID:  userID,
		log:     log.With().Str("component", "chat").Logger(),
		now:     time.Now,
	}
	svc.conv = NewConversation(svc.greeting())
	return svc
}

func (s *Service) greeting() model.Message {
	return model.Message{Text: Greeting, Sender: model.SenderAI, Timestamp: s.now()}
}

// UserID returns the identity the service sends turns as.
func (s *Service) UserID() string { return s.userID }

// SessionID returns the current backend session, or "" before the first turn.
func (s *Service) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Title returns the current session title.
func (s *Service) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// Messages returns a copy of the current transcript.
func (s *Service) Messages() []model.Message {
	return s.conv.Messages()
}

// ShowCategories reports whether the quick-start categories apply, which
// is until the user sends the first message.
func (s *Service) ShowCategories() bool {
	return !s.conv.HasUserMessage()
}

// LastAction returns the most recent email action offered by the assistant.
func (s *Service) LastAction() (action.EmailAction, bool) {
	msgs := s.conv.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].IsUser() {
			continue
		}
		if res := action.Extract(msgs[i].Text); res.Action != nil {
			return *res.Action, true
		}
	}
	return action.EmailAction{}, false
}

// Send runs one user turn. Backend failures do not return an error: they
// are reported to the user as an assistant message, which is returned
// like a reply. The error is non-nil for blank input or when the session
// could not be saved.
func (s *Service) Send(ctx context.Context, text string) (model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Message{}, ErrEmptyMessage
	}
	return s.turn(ctx, text, titleFor(text))
}

// AskCategory runs a quick-start turn about one of Categories.
func (s *Service) AskCategory(ctx context.Context, category string) (model.Message, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return model.Message{}, ErrEmptyMessage
	}
	return s.turn(ctx, "Tell me about "+category, "Chat about "+category)
}

func (s *Service) turn(ctx context.Context, text, title string) (model.Message, error) {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	s.conv.Add(model.Message{Text: text, Sender: model.SenderUser, Timestamp: s.now()})

	sessionID := s.SessionID()
	if sessionID == "" {
		id := uuid.New().String()
		if err := s.backend.CreateSession(ctx, s.userID, id); err != nil {
			s.log.Error().Err(err).Str("session_id", id).Msg("creating backend session")
			return s.reply(SessionFailedText), nil
		}

		s.mu.Lock()
		s.sessionID = id
		s.title = title
		s.mu.Unlock()
		sessionID = id
	}

	answer, err := s.backend.SendMessage(ctx, s.userID, sessionID, text)
	if err != nil {
		s.log.Error().Err(err).Str("session_id", sessionID).Msg("sending message")
		return s.reply(ReplyFailedText), nil
	}

	msg := s.reply(answer)
	if res := action.Extract(answer); res.Action != nil {
		s.log.Info().
			Str("session_id", sessionID).
			Str("encoding", string(res.Encoding)).
			Msg("assistant offered an email action")
	}

	if err := s.persist(ctx); err != nil {
		return msg, err
	}
	return msg, nil
}

func (s *Service) reply(text string) model.Message {
	msg := model.Message{Text: text, Sender: model.SenderAI, Timestamp: s.now()}
	s.conv.Add(msg)
	return msg
}

func (s *Service) persist(ctx context.Context) error {
	s.mu.Lock()
	sess := model.ChatSession{
		ID:       s.sessionID,
		Title:    s.title,
		Date:     s.now(),
		Messages: s.conv.Messages(),
	}
	s.mu.Unlock()

	if err := s.store.SaveSession(ctx, sess); err != nil {
		s.log.Error().Err(err).Str("session_id", sess.ID).Msg("saving session")
		return fmt.Errorf("saving chat session: %w", err)
	}
	return nil
}

// NewChat drops the current session and starts over with the greeting.
func (s *Service) NewChat() {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()
	s.reset()
}

func (s *Service) reset() {
	s.mu.Lock()
	s.sessionID = ""
	s.title = ""
	s.mu.Unlock()

	s.conv.Reset(s.greeting())
}

// Load makes a saved session current.
func (s *Service) Load(ctx context.Context, id string) error {
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return fmt.Errorf("loading session %s: %w", id, err)
	}

	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	s.mu.Lock()
	s.sessionID = sess.ID
	s.title = sess.Title
	s.mu.Unlock()

	if len(sess.Messages) == 0 {
		s.conv.Reset(s.greeting())
	} else {
		s.conv.Reset(sess.Messages...)
	}

	s.log.Debug().Str("session_id", id).Int("messages", len(sess.Messages)).Msg("session loaded")
	return nil
}

// Delete removes a saved session. Deleting the current session also
// resets the chat to the greeting.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.DeleteSession(ctx, id)
	current := id == s.SessionID()

	if err != nil && !(current && errors.Is(err, store.ErrNotFound)) {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}

	if current {
		s.turnMu.Lock()
		s.reset()
		s.turnMu.Unlock()
	}
	return nil
}

// Sessions lists saved sessions, newest first.
func (s *Service) Sessions(ctx context.Context) ([]model.ChatSession, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}

// titleFor derives a session title from the first user message.
func titleFor(text string) string {
	if utf8.RuneCountInString(text) <= titleLength {
		return text
	}
	return string([]rune(text)[:titleLength]) + "..."
}
