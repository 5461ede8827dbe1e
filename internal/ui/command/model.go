package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/advisor-ai/internal/theme"
)

// Command names accepted by the palette.
const (
	New     = "new"
	History = "history"
	Profile = "profile"
	Theme   = "theme"
	Ask     = "ask"
	Help    = "help"
	Quit    = "quit"
)

var names = []string{New, History, Profile, Theme, Ask, Help, Quit}

// Command is a parsed palette entry.
type Command struct {
	Name string
	// Arg is the resolved category for ask.
	Arg string
}

// CommandMsg is emitted when the user executes a command.
type CommandMsg struct {
	Command Command
}

// ErrorMsg is emitted when the typed command cannot be parsed.
type ErrorMsg struct {
	Err error
}

// CloseMsg is emitted when the palette is dismissed.
type CloseMsg struct{}

// Parse resolves input against the known commands. Names may be
// abbreviated to any unique prefix; the ask argument is matched against
// categories by case-insensitive prefix.
func Parse(input string, categories []string) (Command, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return Command{}, errors.New("empty command")
	}

	name, err := resolve(strings.ToLower(fields[0]), names)
	if err != nil {
		return Command{}, fmt.Errorf("command %q: %w", fields[0], err)
	}

	if name != Ask {
		return Command{Name: name}, nil
	}

	arg := strings.Join(fields[1:], " ")
	if arg == "" {
		return Command{}, fmt.Errorf("ask needs a category: %s", strings.Join(categories, ", "))
	}
	category, err := resolve(strings.ToLower(arg), categories)
	if err != nil {
		return Command{}, fmt.Errorf("category %q: %w", arg, err)
	}
	return Command{Name: Ask, Arg: category}, nil
}

func resolve(prefix string, options []string) (string, error) {
	var found []string
	for _, o := range options {
		lower := strings.ToLower(o)
		if lower == prefix {
			return o, nil
		}
		if strings.HasPrefix(lower, prefix) {
			found = append(found, o)
		}
	}
	switch len(found) {
	case 0:
		return "", errors.New("unknown")
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("ambiguous: %s", strings.Join(found, ", "))
	}
}

// Model is the command palette view.
type Model struct {
	input      textinput.Model
	theme      *theme.Theme
	categories []string
	width      int
	height     int
}

// NewModel creates a new command palette model.
func NewModel(th *theme.Theme, categories []string, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "new, history, profile, theme, ask <category>, help, quit"
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:      ti,
		theme:      th,
		categories: categories,
		width:      width,
		height:     height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if text == "" {
				return m, nil
			}
			c, err := Parse(text, m.categories)
			if err != nil {
				return m, func() tea.Msg { return ErrorMsg{Err: err} }
			}
			return m, func() tea.Msg { return CommandMsg{Command: c} }

		case "esc":
			m.input.Reset()
			return m, func() tea.Msg { return CloseMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.theme.Palette.Primary).
		MarginBottom(1).
		Render("Command Palette")

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.input.View())

	return m.theme.Panel.
		Width(m.width - 4).
		Render(content)
}

// SetTheme switches styles.
func (m *Model) SetTheme(th *theme.Theme) {
	m.theme = th
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
