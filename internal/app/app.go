package app

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nhle/advisor-ai/internal/chat"
	"github.com/nhle/advisor-ai/internal/dispatch"
	"github.com/nhle/advisor-ai/internal/keys"
	"github.com/nhle/advisor-ai/internal/model"
	"github.com/nhle/advisor-ai/internal/theme"
	"github.com/nhle/advisor-ai/internal/ui"
	chatview "github.com/nhle/advisor-ai/internal/ui/chat"
	"github.com/nhle/advisor-ai/internal/ui/command"
	helpview "github.com/nhle/advisor-ai/internal/ui/help"
	"github.com/nhle/advisor-ai/internal/ui/history"
	"github.com/nhle/advisor-ai/internal/ui/profile"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewChat ViewState = iota
	ViewHistory
	ViewProfile
	ViewHelp
	ViewCommand
)

var viewNames = map[ViewState]string{
	ViewChat:    "Chat",
	ViewHistory: "History",
	ViewProfile: "Profile",
	ViewHelp:    "Help",
	ViewCommand: "Command",
}

const appTitle = "AdvisorAI"

// ProfileStore persists the user profile.
type ProfileStore interface {
	SaveProfile(ctx context.Context, p model.UserProfile) error
}

// DispatcherFactory builds the email dispatcher for a profile. It is
// called again whenever the profile changes, since the sender address
// comes from the profile.
type DispatcherFactory func(p model.UserProfile) dispatch.Dispatcher

// Options wires the root model to its collaborators.
type Options struct {
	Chat          *chat.Service
	Profiles      ProfileStore
	Profile       model.UserProfile
	NewDispatcher DispatcherFactory
	Display       model.DisplayConfig

	// RequestTimeout bounds one backend request; a turn may make two.
	RequestTimeout time.Duration

	Log zerolog.Logger
}

// Model is the root Bubble Tea model that manages view routing, layout
// and the work done on behalf of the views.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	theme        *theme.Theme

	svc           *chat.Service
	profiles      ProfileStore
	profile       model.UserProfile
	dispatcher    dispatch.Dispatcher
	newDispatcher DispatcherFactory
	timeout       time.Duration
	log           zerolog.Logger

	chatView    chatview.Model
	historyView history.Model
	profileView profile.Model
	helpView    helpview.Model
	commandView command.Model

	status string
	ready  bool
}

// New creates the root application model.
func New(opts Options) Model {
	k := keys.DefaultKeyMap()
	th := theme.New(opts.Profile.Preferences.DarkMode)

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	m := Model{
		currentView:   ViewChat,
		keys:          k,
		theme:         th,
		svc:           opts.Chat,
		profiles:      opts.Profiles,
		profile:       opts.Profile,
		newDispatcher: opts.NewDispatcher,
		timeout:       timeout,
		log:           opts.Log.With().Str("component", "app").Logger(),
		chatView:      chatview.New(th, k, chat.Categories, opts.Display.Markdown, opts.Display.WordWrap, 80, 24),
		historyView:   history.New(th, k, 80, 24),
		profileView:   profile.New(th, 80, 24),
		helpView:      helpview.New(th, k, 80, 24),
		commandView:   command.NewModel(th, chat.Categories, 80, 24),
	}
	m.dispatcher = m.newDispatcher(m.profile)
	m.refreshChat()
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return m.chatView.Init()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.Width, m.layout.ContentHeight()
		m.chatView.SetSize(w, h)
		m.historyView.SetSize(w, h)
		m.profileView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case chatview.SendMsg:
		m.status = ""
		return m, m.send(msg.Text)

	case chatview.CategoryMsg:
		m.status = ""
		return m, m.askCategory(msg.Category)

	case chatview.ContactAdvisorMsg:
		m.status = "Contacting your advisor..."
		return m, m.dispatch(msg.Action)

	case turnDoneMsg:
		m.refreshChat()
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("chat turn")
			m.status = "Could not save this chat: " + msg.err.Error()
		}
		return m, nil

	case dispatchedMsg:
		if msg.err != nil {
			m.status = "Could not contact your advisor: " + msg.err.Error()
			return m, nil
		}
		m.status = oneLine(msg.outcome.Detail)
		return m, nil

	case sessionsLoadedMsg:
		if msg.err != nil {
			m.status = "Could not load chat history: " + msg.err.Error()
			return m, nil
		}
		return m, m.historyView.SetSessions(msg.sessions)

	case history.LoadSessionMsg:
		return m, m.loadSession(msg.ID)

	case sessionLoadedMsg:
		if msg.err != nil {
			m.status = "Could not open chat: " + msg.err.Error()
			return m, nil
		}
		m.refreshChat()
		m.currentView = ViewChat
		return m, m.chatView.Focus()

	case history.DeleteSessionMsg:
		return m, m.deleteSession(msg.ID)

	case sessionDeletedMsg:
		if msg.err != nil {
			m.log.Error().Err(msg.err).Str("session_id", msg.id).Msg("deleting chat")
			m.status = "Could not delete chat: " + msg.err.Error()
		} else {
			m.status = "Chat deleted"
		}
		m.refreshChat()
		return m, m.loadSessions()

	case history.NewChatMsg:
		return m, m.newChat()

	case history.CloseMsg:
		m.currentView = ViewChat
		return m, m.chatView.Focus()

	case profile.SavedMsg:
		m.currentView = ViewChat
		return m, tea.Batch(m.saveProfile(msg.Profile), m.chatView.Focus())

	case profile.CancelMsg:
		m.currentView = ViewChat
		return m, m.chatView.Focus()

	case profileSavedMsg:
		if msg.err != nil {
			m.status = "Could not save profile: " + msg.err.Error()
			return m, nil
		}
		m.applyProfile(msg.profile)
		m.status = "Profile saved"
		return m, nil

	case themeSavedMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("persisting theme preference")
		}
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(msg.Command)

	case command.ErrorMsg:
		m.status = msg.Err.Error()
		return m, nil

	case command.CloseMsg:
		m.currentView = m.previousView
		return m, m.focusCurrent()

	case tea.KeyMsg:
		if next, cmd, handled := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that work regardless of the active view.
// The profile form keeps every key except quit.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit, true
	}
	if m.currentView == ViewProfile {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, m.focusCurrent(), true
		}
		m.switchTo(ViewHelp)
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		if m.currentView == ViewCommand {
			m.currentView = m.previousView
			return m, m.focusCurrent(), true
		}
		m.switchTo(ViewCommand)
		return m, m.commandView.Focus(), true

	case key.Matches(msg, m.keys.NewChat):
		return m, m.newChat(), true

	case key.Matches(msg, m.keys.History):
		return m, m.openHistory(), true

	case key.Matches(msg, m.keys.Profile):
		return m, m.openProfile(), true

	case key.Matches(msg, m.keys.Theme):
		return m, m.toggleTheme(), true

	case key.Matches(msg, m.keys.Back) && m.currentView == ViewHelp:
		m.currentView = m.previousView
		return m, m.focusCurrent(), true
	}
	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewChat:
		m.chatView, cmd = m.chatView.Update(msg)
	case ViewHistory:
		m.historyView, cmd = m.historyView.Update(msg)
	case ViewProfile:
		m.profileView, cmd = m.profileView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(m.theme, appTitle, m.headerContext())
	statusBar := m.layout.RenderStatusBar(m.theme, m.keyHints(), m.status)
	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewHistory:
		return m.historyView.View()
	case ViewProfile:
		return m.profileView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return m.chatView.View()
	}
}

func (m Model) headerContext() string {
	name := viewNames[m.currentView]
	if m.currentView == ViewChat {
		if title := m.svc.Title(); title != "" {
			name = title
		}
	}
	if m.profile.Name != "" {
		name += " · " + m.profile.Name
	}
	return name
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHistory:
		return "enter open | d delete | n new chat | esc back"
	case ViewProfile:
		return "tab next | enter submit | esc cancel"
	case ViewHelp:
		return "f1 close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	default:
		hints := "enter send | ctrl+n new | ctrl+o history | ctrl+p profile | f1 help | ctrl+c quit"
		if _, ok := m.chatView.LastAction(); ok {
			hints = "ctrl+e contact advisor | " + hints
		}
		return hints
	}
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState {
	return m.currentView
}

// Status returns the status bar message, if any.
func (m Model) Status() string {
	return m.status
}

// Theme returns the active theme.
func (m Model) Theme() *theme.Theme {
	return m.theme
}

func (m *Model) switchTo(v ViewState) {
	if m.currentView != v {
		m.previousView = m.currentView
	}
	m.currentView = v
}

func (m *Model) focusCurrent() tea.Cmd {
	if m.currentView == ViewChat {
		return m.chatView.Focus()
	}
	return nil
}

func (m *Model) refreshChat() {
	m.chatView.SetMessages(m.svc.Messages(), m.svc.ShowCategories())
}

func (m *Model) newChat() tea.Cmd {
	m.svc.NewChat()
	m.refreshChat()
	m.status = ""
	m.currentView = ViewChat
	return m.chatView.Focus()
}

func (m *Model) openHistory() tea.Cmd {
	m.switchTo(ViewHistory)
	m.chatView.Blur()
	return m.loadSessions()
}

func (m *Model) openProfile() tea.Cmd {
	m.switchTo(ViewProfile)
	m.chatView.Blur()
	return m.profileView.Start(m.profile)
}

func (m *Model) toggleTheme() tea.Cmd {
	m.setTheme(m.theme.Toggle())
	m.profile.Preferences.DarkMode = m.theme.Dark
	return m.saveTheme(m.profile)
}

func (m *Model) setTheme(th *theme.Theme) {
	m.theme = th
	m.chatView.SetTheme(th)
	m.historyView.SetTheme(th)
	m.profileView.SetTheme(th)
	m.helpView.SetTheme(th)
	m.commandView.SetTheme(th)
}

// applyProfile makes a saved profile current. A new email address means
// a new sender, so the dispatcher is rebuilt.
func (m *Model) applyProfile(p model.UserProfile) {
	m.profile = p
	if p.Preferences.DarkMode != m.theme.Dark {
		m.setTheme(theme.New(p.Preferences.DarkMode))
	}
	m.dispatcher = m.newDispatcher(p)
}

// executeCommand handles a parsed command from the command palette.
func (m *Model) executeCommand(c command.Command) tea.Cmd {
	switch c.Name {
	case command.New:
		return m.newChat()
	case command.History:
		return m.openHistory()
	case command.Profile:
		return m.openProfile()
	case command.Theme:
		return tea.Batch(m.toggleTheme(), m.focusCurrent())
	case command.Ask:
		m.newChat()
		m.chatView.SetBusy(true)
		return m.askCategory(c.Arg)
	case command.Help:
		m.switchTo(ViewHelp)
		return nil
	case command.Quit:
		return tea.Quit
	default:
		return nil
	}
}

// oneLine folds multi-line text such as manual-send instructions into a
// single status bar line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
