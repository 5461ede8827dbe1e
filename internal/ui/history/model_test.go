package history

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/advisor-ai/internal/keys"
	"github.com/nhle/advisor-ai/internal/model"
	"github.com/nhle/advisor-ai/internal/theme"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	m := New(theme.New(true), keys.DefaultKeyMap(), 80, 24)
	m.SetSessions([]model.ChatSession{
		{
			ID:       "s-new",
			Title:    "Chat about Career Advice",
			Date:     time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
			Messages: []model.Message{{Text: "hi", Sender: model.SenderUser}},
		},
		{
			ID:    "s-old",
			Title: "When is CS 2110 offe...",
			Date:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		},
	})
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestEnterLoadsSelected(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, LoadSessionMsg{ID: "s-new"}, cmd())
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m := newTestModel(t)

	m, cmd := m.Update(runes("d"))
	assert.Nil(t, cmd)
	assert.True(t, m.Confirming())
	assert.Contains(t, m.View(), "Delete this chat?")

	_, cmd = m.Update(runes("y"))
	require.NotNil(t, cmd)
	assert.Equal(t, DeleteSessionMsg{ID: "s-new"}, cmd())
}

func TestDeleteCancelledByOtherKey(t *testing.T) {
	m := newTestModel(t)

	m, _ = m.Update(runes("d"))
	m, cmd := m.Update(runes("x"))
	assert.Nil(t, cmd)
	assert.False(t, m.Confirming())
}

func TestNewChatAndClose(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(runes("n"))
	require.NotNil(t, cmd)
	assert.Equal(t, NewChatMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CloseMsg{}, cmd())
}

func TestEmptyListIgnoresSelectAndDelete(t *testing.T) {
	m := New(theme.New(false), keys.DefaultKeyMap(), 80, 24)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	m, _ = m.Update(runes("d"))
	assert.False(t, m.Confirming())
}

func TestSessionItemDescription(t *testing.T) {
	item := SessionItem{Session: model.ChatSession{
		Title:    "Chat about Study Abroad",
		Date:     time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local),
		Messages: []model.Message{{Text: "hi"}},
	}}

	assert.Equal(t, "Chat about Study Abroad", item.Title())
	assert.Equal(t, "Mar 2, 2026 9:00 AM · 1 message", item.Description())
}
