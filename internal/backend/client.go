package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nhle/advisor-ai/internal/model"
)

var (
	// ErrMissingIdentity is returned when a call lacks a user or session id.
	ErrMissingIdentity = errors.New("user id and session id are required")

	// ErrNoReply is returned when the backend answered without any text
	// authored by the advising agent.
	ErrNoReply = errors.New("no reply from agent")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: backend error (%d): %s", e.Op, e.StatusCode, e.Body)
}

// NetworkError wraps a failure to reach the backend at all.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err came from the transport rather than
// from a backend response.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// Client talks to the advising agent server: one call to open a session,
// one call per user turn.
type Client struct {
	baseURL string
	appName string
	client  *http.Client
	log     zerolog.Logger
}

// New creates a backend client from configuration.
func New(cfg model.BackendConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		appName: cfg.AppName,
		client:  &http.Client{Timeout: cfg.Timeout()},
		log:     log.With().Str("component", "backend").Logger(),
	}
}

// AppName returns the agent application the client addresses.
func (c *Client) AppName() string { return c.appName }

// CreateSession registers sessionID for userID with the agent server.
// A session that already exists is not an error.
func (c *Client) CreateSession(ctx context.Context, userID, sessionID string) error {
	if userID == "" || sessionID == "" {
		return ErrMissingIdentity
	}

	endpoint := fmt.Sprintf("%s/apps/%s/users/%s/sessions/%s",
		c.baseURL,
		url.PathEscape(c.appName),
		url.PathEscape(userID),
		url.PathEscape(sessionID),
	)

	status, body, err := c.post(ctx, "creating session", endpoint, struct{}{})
	if err != nil {
		return err
	}

	if status == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(string(body)), "session already exists") {
		c.log.Debug().Str("session_id", sessionID).Msg("session already exists")
		return nil
	}
	if status < 200 || status > 299 {
		return &APIError{Op: "creating session", StatusCode: status, Body: string(body)}
	}

	var created sessionResponse
	if err := json.Unmarshal(body, &created); err == nil && created.ID != "" && created.ID != sessionID {
		c.log.Warn().
			Str("session_id", sessionID).
			Str("returned_id", created.ID).
			Msg("backend returned a different session id")
	}

	c.log.Info().Str("session_id", sessionID).Msg("session created")
	return nil
}

// SendMessage runs one user turn and returns the agent's reply text.
func (c *Client) SendMessage(ctx context.Context, userID, sessionID, text string) (string, error) {
	if userID == "" || sessionID == "" {
		return "", ErrMissingIdentity
	}

	req := runRequest{
		AppName:   c.appName,
		UserID:    userID,
		SessionID: sessionID,
		NewMessage: content{
			Role:  "user",
			Parts: []part{{Text: text}},
		},
	}

	status, body, err := c.post(ctx, "sending message", c.baseURL+"/run", req)
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", &APIError{Op: "sending message", StatusCode: status, Body: string(body)}
	}

	var events []event
	if err := json.Unmarshal(body, &events); err != nil {
		return "", fmt.Errorf("decoding run response: %w", err)
	}

	for _, ev := range events {
		if ev.Author != c.appName || len(ev.Content.Parts) == 0 {
			continue
		}
		if reply := ev.Content.Parts[0].Text; reply != "" {
			c.log.Debug().
				Str("session_id", sessionID).
				Int("events", len(events)).
				Int("reply_len", len(reply)).
				Msg("agent replied")
			return reply, nil
		}
	}

	c.log.Warn().Str("session_id", sessionID).Int("events", len(events)).Msg("no agent text in response")
	return "", ErrNoReply
}

// post sends payload as JSON and returns the status and body. Only
// transport failures are returned as errors.
func (c *Client) post(ctx context.Context, op, endpoint string, payload any) (int, []byte, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("op", op).Msg("backend unreachable")
		return 0, nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &NetworkError{Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	return resp.StatusCode, respBody, nil
}

// --- agent server wire types ---

type part struct {
	Text string `json:"text,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type runRequest struct {
	AppName    string  `json:"app_name"`
	UserID     string  `json:"user_id"`
	SessionID  string  `json:"session_id"`
	NewMessage content `json:"new_message"`
}

type event struct {
	ID      string  `json:"id"`
	Author  string  `json:"author"`
	Content content `json:"content"`
}

type sessionResponse struct {
	ID      string `json:"id"`
	AppName string `json:"appName"`
	UserID  string `json:"userId"`
}
