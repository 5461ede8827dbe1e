package history

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/advisor-ai/internal/keys"
	"github.com/nhle/advisor-ai/internal/model"
	"github.com/nhle/advisor-ai/internal/theme"
)

// LoadSessionMsg asks the parent to open a saved chat.
type LoadSessionMsg struct {
	ID string
}

// DeleteSessionMsg asks the parent to delete a saved chat.
type DeleteSessionMsg struct {
	ID string
}

// NewChatMsg asks the parent to start a fresh chat.
type NewChatMsg struct{}

// CloseMsg asks the parent to return to the chat view.
type CloseMsg struct{}

const dateLayout = "Jan 2, 2006 3:04 PM"

// SessionItem wraps a model.ChatSession so it can be used in a bubbles/list.
type SessionItem struct {
	Session model.ChatSession
}

// FilterValue returns the string used for filtering.
func (i SessionItem) FilterValue() string { return i.Session.Title }

// Title returns the chat title.
func (i SessionItem) Title() string { return i.Session.Title }

// Description returns the date and message count.
func (i SessionItem) Description() string {
	n := len(i.Session.Messages)
	noun := "messages"
	if n == 1 {
		noun = "message"
	}
	return fmt.Sprintf("%s · %d %s", i.Session.Date.Local().Format(dateLayout), n, noun)
}

// Model lists saved chats.
type Model struct {
	list          list.Model
	keys          *keys.KeyMap
	theme         *theme.Theme
	confirmDelete string
	width         int
	height        int
}

// New creates a history view.
func New(th *theme.Theme, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, newDelegate(th), width, height-2)
	l.Title = "Chat History"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.SetStatusBarItemName("chat", "chats")
	l.Styles.Title = th.AssistantLabel
	l.Styles.NoItems = th.Muted

	return Model{
		list:   l,
		keys:   k,
		theme:  th,
		width:  width,
		height: height,
	}
}

func newDelegate(th *theme.Theme) list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = th.Selected
	d.Styles.SelectedDesc = th.Selected.Bold(false).Foreground(th.Palette.Accent)
	d.Styles.NormalTitle = th.Item
	d.Styles.NormalDesc = th.Item.Foreground(th.Palette.TextSecondary)
	return d
}

// SetSessions replaces the listed chats.
func (m *Model) SetSessions(sessions []model.ChatSession) tea.Cmd {
	items := make([]list.Item, len(sessions))
	for i, s := range sessions {
		items[i] = SessionItem{Session: s}
	}
	m.confirmDelete = ""
	return m.list.SetItems(items)
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	if m.confirmDelete != "" {
		id := m.confirmDelete
		m.confirmDelete = ""
		if key.Matches(keyMsg, m.keys.Confirm) {
			return m, func() tea.Msg { return DeleteSessionMsg{ID: id} }
		}
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Select):
		if item, ok := m.list.SelectedItem().(SessionItem); ok {
			id := item.Session.ID
			return m, func() tea.Msg { return LoadSessionMsg{ID: id} }
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Delete):
		if item, ok := m.list.SelectedItem().(SessionItem); ok {
			m.confirmDelete = item.Session.ID
		}
		return m, nil

	case keyMsg.String() == "n":
		return m, func() tea.Msg { return NewChatMsg{} }

	case key.Matches(keyMsg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Confirming reports whether a delete is waiting for confirmation.
func (m Model) Confirming() bool {
	return m.confirmDelete != ""
}

// View renders the history view.
func (m Model) View() string {
	footer := m.theme.Help.Render("enter open · d delete · n new chat · esc back")
	if m.confirmDelete != "" {
		footer = m.theme.Error.Render("Delete this chat? y to confirm, any other key to cancel")
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), footer)
}

// SetTheme switches styles.
func (m *Model) SetTheme(th *theme.Theme) {
	m.theme = th
	m.list.SetDelegate(newDelegate(th))
	m.list.Styles.Title = th.AssistantLabel
	m.list.Styles.NoItems = th.Muted
}

// SetSize updates the history view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
