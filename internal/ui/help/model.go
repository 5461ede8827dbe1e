package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/advisor-ai/internal/keys"
	"github.com/nhle/advisor-ai/internal/theme"
)

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	theme  *theme.Theme
	width  int
	height int
}

// New creates a new help view model.
func New(th *theme.Theme, k *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width - 4
	h.ShowAll = true
	return Model{
		keys:   k,
		help:   h,
		theme:  th,
		width:  width,
		height: height,
	}
}

// View renders the help overlay.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.theme.Palette.Primary).
		MarginBottom(1).
		Render("Keyboard Shortcuts")

	topics := m.theme.Muted.Render(
		"With an empty chat, press 1-5 to ask about a topic.\n" +
			"Replies with a ✉ button can be sent to your advisor with ctrl+e.",
	)

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.help.View(m.keys), "", topics)

	return m.theme.Panel.
		Width(m.width - 4).
		Render(content)
}

// SetTheme switches styles.
func (m *Model) SetTheme(th *theme.Theme) {
	m.theme = th
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
