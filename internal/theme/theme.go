// Package theme holds the dark and light color sets and the lipgloss
// styles built from them. A Theme is passed explicitly to every view.
package theme

import "github.com/charmbracelet/lipgloss"

// Palette is one complete color set.
type Palette struct {
	Background       lipgloss.Color
	HeaderBackground lipgloss.Color
	Surface          lipgloss.Color
	Primary          lipgloss.Color
	Secondary        lipgloss.Color
	Accent           lipgloss.Color
	Text             lipgloss.Color
	TextSecondary    lipgloss.Color
	InputBackground  lipgloss.Color
	Sidebar          lipgloss.Color
	UserBubble       lipgloss.Color
	AIBubble         lipgloss.Color
}

var (
	// Dark is the default palette.
	Dark = Palette{
		Background:       "#000000",
		HeaderBackground: "#000000",
		Surface:          "#1E1E1F",
		Primary:          "#C3423F",
		Secondary:        "#A1B5D8",
		Accent:           "#D88483",
		Text:             "#FFFFFF",
		TextSecondary:    "#E2E8F0",
		InputBackground:  "#1E1E1F",
		Sidebar:          "#1E1E1F",
		UserBubble:       "#C3423F",
		AIBubble:         "#1E1E1F",
	}

	Light = Palette{
		Background:       "#F5F5F7",
		HeaderBackground: "#FFFFFF",
		Surface:          "#FFFFFF",
		Primary:          "#C3423F",
		Secondary:        "#6D7F99",
		Accent:           "#D88483",
		Text:             "#333333",
		TextSecondary:    "#4A5568",
		InputBackground:  "#FFFFFF",
		Sidebar:          "#FFFFFF",
		UserBubble:       "#C3423F",
		AIBubble:         "#EFEFEF",
	}
)

// Theme is the set of styles every view renders with.
type Theme struct {
	Dark    bool
	Palette Palette

	// Header is used for the application title bar.
	Header lipgloss.Style

	// StatusBar is used for the bottom status bar.
	StatusBar lipgloss.Style

	// Panel wraps a full-screen view such as the chat transcript.
	Panel lipgloss.Style

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	UserBubble     lipgloss.Style
	AIBubble       lipgloss.Style

	// ActionButton renders the "Contact Academic Advisor" button.
	ActionButton lipgloss.Style

	Item     lipgloss.Style
	Selected lipgloss.Style
	Help     lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Border   lipgloss.Style
}

// New builds the dark or light theme.
func New(dark bool) *Theme {
	p := Light
	if dark {
		p = Dark
	}

	return &Theme{
		Dark:    dark,
		Palette: p,

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text).
			Background(p.HeaderBackground).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(p.Primary).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(p.TextSecondary).
			Background(p.Surface).
			Padding(0, 1),

		Panel: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Secondary),

		UserLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary),

		AssistantLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Secondary),

		UserBubble: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(p.UserBubble).
			Padding(0, 1),

		AIBubble: lipgloss.NewStyle().
			Foreground(p.Text).
			Background(p.AIBubble).
			Padding(0, 1),

		ActionButton: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(p.Primary).
			Padding(0, 2).
			MarginTop(1),

		Item: lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(p.Text),

		Selected: lipgloss.NewStyle().
			PaddingLeft(1).
			Bold(true).
			Foreground(p.Primary).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(p.Primary),

		Help: lipgloss.NewStyle().
			Foreground(p.TextSecondary).
			Italic(true),

		Muted: lipgloss.NewStyle().
			Foreground(p.Secondary),

		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Accent),

		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Secondary),
	}
}

// Toggle returns the opposite theme.
func (t *Theme) Toggle() *Theme {
	return New(!t.Dark)
}
