package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/advisor-ai/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(model.BackendConfig{
		BaseURL:    srv.URL + "/",
		AppName:    "cs_advisor",
		TimeoutSec: 5,
	}, zerolog.Nop())
}

func TestCreateSession(t *testing.T) {
	var gotPath, gotBody, gotType string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = w.Write([]byte(`{"id":"sess-1","appName":"cs_advisor","userId":"user_1"}`))
	})

	err := c.CreateSession(context.Background(), "user_1", "sess-1")
	require.NoError(t, err)

	assert.Equal(t, "/apps/cs_advisor/users/user_1/sessions/sess-1", gotPath)
	assert.Equal(t, "{}", gotBody)
	assert.Equal(t, "application/json", gotType)
}

func TestCreateSessionAlreadyExists(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Session already exists: sess-1"}`))
	})

	assert.NoError(t, c.CreateSession(context.Background(), "user_1", "sess-1"))
}

func TestCreateSessionFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})

	err := c.CreateSession(context.Background(), "user_1", "sess-1")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Body)
	assert.False(t, IsNetworkError(err))
}

func TestMissingIdentity(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	assert.ErrorIs(t, c.CreateSession(context.Background(), "", "sess-1"), ErrMissingIdentity)

	_, err := c.SendMessage(context.Background(), "user_1", "", "hi")
	assert.ErrorIs(t, err, ErrMissingIdentity)
	assert.False(t, called)
}

func TestSendMessage(t *testing.T) {
	var got runRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/run", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`[
			{"author":"user","content":{"role":"user","parts":[{"text":"What minors exist?"}]}},
			{"author":"cs_advisor","content":{"role":"model","parts":[{"functionCall":{"name":"search"}}]}},
			{"author":"cs_advisor","content":{"role":"model","parts":[{"text":"There are six minors."}]}}
		]`))
	})

	reply, err := c.SendMessage(context.Background(), "user_1", "sess-1", "What minors exist?")
	require.NoError(t, err)
	assert.Equal(t, "There are six minors.", reply)

	assert.Equal(t, "cs_advisor", got.AppName)
	assert.Equal(t, "user_1", got.UserID)
	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, "user", got.NewMessage.Role)
	require.Len(t, got.NewMessage.Parts, 1)
	assert.Equal(t, "What minors exist?", got.NewMessage.Parts[0].Text)
}

func TestSendMessageNoReply(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"author":"user","content":{"parts":[{"text":"hi"}]}}]`))
	})

	_, err := c.SendMessage(context.Background(), "user_1", "sess-1", "hi")
	assert.ErrorIs(t, err, ErrNoReply)
}

func TestSendMessageBadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := c.SendMessage(context.Background(), "user_1", "sess-1", "hi")
	require.Error(t, err)
	assert.False(t, IsNetworkError(err))
}

func TestSendMessageNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := New(model.BackendConfig{BaseURL: srv.URL, AppName: "cs_advisor", TimeoutSec: 1}, zerolog.Nop())

	_, err := c.SendMessage(context.Background(), "user_1", "sess-1", "hi")
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
}
