// Package chat is the conversation view: the transcript, the message input
// and the contact-advisor button for assistant messages carrying an action.
package chat

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/advisor-ai/internal/action"
	"github.com/nhle/advisor-ai/internal/keys"
	"github.com/nhle/advisor-ai/internal/model"
	"github.com/nhle/advisor-ai/internal/theme"
)

// SendMsg asks the parent to send the typed text.
type SendMsg struct {
	Text string
}

// CategoryMsg asks the parent to start a conversation about a category.
type CategoryMsg struct {
	Category string
}

// ContactAdvisorMsg asks the parent to dispatch the latest email action.
type ContactAdvisorMsg struct {
	Action action.EmailAction
}

const (
	inputHeight   = 3
	buttonLabel   = "✉ Contact Academic Advisor"
	assistantName = "AdvisorAI"
	typingNotice  = "AdvisorAI is typing..."
	timeLayout    = "3:04 PM"
)

// Model is the chat view.
type Model struct {
	theme      *theme.Theme
	keys       *keys.KeyMap
	input      textarea.Model
	viewport   viewport.Model
	categories []string

	messages       []model.Message
	showCategories bool
	busy           bool
	lastAction     *action.EmailAction

	markdown      bool
	wordWrap      int
	renderer      *glamour.TermRenderer
	rendererWidth int
	rendererDark  bool

	width  int
	height int
}

// New creates a chat view. wordWrap of 0 wraps at the viewport width.
func New(
	th *theme.Theme,
	k *keys.KeyMap,
	categories []string,
	markdown bool,
	wordWrap int,
	width, height int,
) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about courses, requirements, deadlines..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetHeight(inputHeight)
	ta.Focus()

	m := Model{
		theme:      th,
		keys:       k,
		input:      ta,
		viewport:   viewport.New(width, 1),
		categories: categories,
		markdown:   markdown,
		wordWrap:   wordWrap,
	}
	m.SetSize(width, height)
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the chat view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Contact):
		if m.lastAction == nil {
			return m, nil
		}
		act := *m.lastAction
		return m, func() tea.Msg { return ContactAdvisorMsg{Action: act} }

	case key.Matches(msg, m.keys.Send):
		if m.busy {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		m.messages = append(m.messages, model.Message{
			Text:      text,
			Sender:    model.SenderUser,
			Timestamp: time.Now(),
		})
		m.showCategories = false
		m.SetBusy(true)
		return m, func() tea.Msg { return SendMsg{Text: text} }

	case msg.String() == "pgup" || msg.String() == "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if category, ok := m.categoryFor(msg); ok {
		m.SetBusy(true)
		return m, func() tea.Msg { return CategoryMsg{Category: category} }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// categoryFor maps a digit key to a category. Shortcuts only apply before
// the first user message and while nothing has been typed.
func (m Model) categoryFor(msg tea.KeyMsg) (string, bool) {
	if !m.showCategories || m.busy || m.input.Value() != "" {
		return "", false
	}
	n, err := strconv.Atoi(msg.String())
	if err != nil || n < 1 || n > len(m.categories) {
		return "", false
	}
	return m.categories[n-1], true
}

// SetMessages replaces the transcript and clears the busy state.
func (m *Model) SetMessages(msgs []model.Message, showCategories bool) {
	m.messages = msgs
	m.showCategories = showCategories
	m.busy = false
	m.refresh()
}

// SetBusy marks a request as in flight.
func (m *Model) SetBusy(busy bool) {
	m.busy = busy
	m.refresh()
}

// Busy reports whether a request is in flight.
func (m Model) Busy() bool {
	return m.busy
}

// LastAction returns the newest action shown in the transcript.
func (m Model) LastAction() (action.EmailAction, bool) {
	if m.lastAction == nil {
		return action.EmailAction{}, false
	}
	return *m.lastAction, true
}

// SetTheme switches styles and re-renders.
func (m *Model) SetTheme(th *theme.Theme) {
	m.theme = th
	m.refresh()
}

// SetSize updates the chat view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(width - 2)

	vpHeight := height - inputHeight - 1
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.refresh()
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Blur removes keyboard focus from the text input.
func (m *Model) Blur() {
	m.input.Blur()
}

// View renders the chat view.
func (m Model) View() string {
	sep := lipgloss.NewStyle().
		Foreground(m.theme.Palette.Secondary).
		Render(strings.Repeat("─", max(m.width, 0)))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewport.View(),
		sep,
		m.input.View(),
	)
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m *Model) renderTranscript() string {
	m.lastAction = nil

	var sections []string
	for _, msg := range m.messages {
		sections = append(sections, m.renderMessage(msg), "")
	}

	if m.showCategories && len(m.categories) > 0 {
		sections = append(sections, m.renderCategories(), "")
	}
	if m.busy {
		sections = append(sections, m.theme.Muted.Italic(true).Render(typingNotice))
	}
	return strings.Join(sections, "\n")
}

func (m *Model) renderMessage(msg model.Message) string {
	stamp := ""
	if !msg.Timestamp.IsZero() {
		stamp = " " + m.theme.Muted.Render(msg.Timestamp.Format(timeLayout))
	}

	if msg.IsUser() {
		label := m.theme.UserLabel.Render("You") + stamp
		body := m.theme.UserBubble.
			MaxWidth(m.wrapWidth() + 2).
			Render(wrap(msg.Text, m.wrapWidth()))
		return label + "\n" + body
	}

	res := action.Extract(msg.Text)
	label := m.theme.AssistantLabel.Render(assistantName) + stamp
	out := label + "\n" + m.renderBody(res.DisplayText)

	if res.HasAction() {
		act := *res.Action
		m.lastAction = &act
		button := m.theme.ActionButton.Render(buttonLabel)
		hint := m.theme.Muted.Render(fmt.Sprintf(" %s · %s", m.keys.Contact.Help().Key, act.Address))
		out += "\n" + lipgloss.JoinHorizontal(lipgloss.Bottom, button, hint)
	}
	return out
}

func (m *Model) renderCategories() string {
	lines := []string{m.theme.Muted.Render("Or pick a topic:")}
	for i, c := range m.categories {
		lines = append(lines, m.theme.Item.Render(fmt.Sprintf("%d. %s", i+1, c)))
	}
	return strings.Join(lines, "\n")
}

// renderBody renders assistant text as markdown when enabled, falling back
// to plain wrapped text.
func (m *Model) renderBody(text string) string {
	width := m.wrapWidth()
	if !m.markdown {
		return m.theme.AIBubble.Render(wrap(text, width))
	}

	if m.renderer == nil || m.rendererWidth != width || m.rendererDark != m.theme.Dark {
		style := "light"
		if m.theme.Dark {
			style = "dark"
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return m.theme.AIBubble.Render(wrap(text, width))
		}
		m.renderer = r
		m.rendererWidth = width
		m.rendererDark = m.theme.Dark
	}

	rendered, err := m.renderer.Render(text)
	if err != nil {
		return m.theme.AIBubble.Render(wrap(text, width))
	}
	return strings.Trim(rendered, "\n")
}

func (m Model) wrapWidth() int {
	if m.wordWrap > 0 {
		return m.wordWrap
	}
	if m.width-4 < 20 {
		return 20
	}
	return m.width - 4
}

func wrap(text string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(text)
}
