package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/advisor-ai/internal/action"
	"github.com/nhle/advisor-ai/internal/dispatch"
	"github.com/nhle/advisor-ai/internal/model"
)

// turnDoneMsg is sent after a chat turn finished, successfully or not.
type turnDoneMsg struct{ err error }

// dispatchedMsg carries the result of contacting the advisor.
type dispatchedMsg struct {
	outcome dispatch.Outcome
	err     error
}

// sessionsLoadedMsg carries saved chats for the history view.
type sessionsLoadedMsg struct {
	sessions []model.ChatSession
	err      error
}

// sessionLoadedMsg is sent after a saved chat became current.
type sessionLoadedMsg struct{ err error }

// sessionDeletedMsg is sent after a saved chat was deleted.
type sessionDeletedMsg struct {
	id  string
	err error
}

// profileSavedMsg is sent after the profile form was persisted.
type profileSavedMsg struct {
	profile model.UserProfile
	err     error
}

// themeSavedMsg is sent after the dark mode preference was persisted.
type themeSavedMsg struct{ err error }

// send runs a user turn. The backend may be called twice, once to create
// the session and once for the reply.
func (m *Model) send(text string) tea.Cmd {
	svc, timeout := m.svc, 2*m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := svc.Send(ctx, text)
		return turnDoneMsg{err: err}
	}
}

func (m *Model) askCategory(category string) tea.Cmd {
	svc, timeout := m.svc, 2*m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := svc.AskCategory(ctx, category)
		return turnDoneMsg{err: err}
	}
}

func (m *Model) dispatch(act action.EmailAction) tea.Cmd {
	d, timeout := m.dispatcher, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		out, err := d.Dispatch(ctx, act)
		return dispatchedMsg{outcome: out, err: err}
	}
}

func (m *Model) loadSessions() tea.Cmd {
	svc, timeout := m.svc, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		sessions, err := svc.Sessions(ctx)
		return sessionsLoadedMsg{sessions: sessions, err: err}
	}
}

func (m *Model) loadSession(id string) tea.Cmd {
	svc, timeout := m.svc, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return sessionLoadedMsg{err: svc.Load(ctx, id)}
	}
}

func (m *Model) deleteSession(id string) tea.Cmd {
	svc, timeout := m.svc, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return sessionDeletedMsg{id: id, err: svc.Delete(ctx, id)}
	}
}

func (m *Model) saveProfile(p model.UserProfile) tea.Cmd {
	s, timeout := m.profiles, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return profileSavedMsg{profile: p, err: s.SaveProfile(ctx, p)}
	}
}

func (m *Model) saveTheme(p model.UserProfile) tea.Cmd {
	s, timeout := m.profiles, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return themeSavedMsg{err: s.SaveProfile(ctx, p)}
	}
}
