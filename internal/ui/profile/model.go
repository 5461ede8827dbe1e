package profile

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/emersion/go-message/mail"

	"github.com/nhle/advisor-ai/internal/model"
	"github.com/nhle/advisor-ai/internal/theme"
)

// SavedMsg is dispatched when the profile form is submitted.
type SavedMsg struct {
	Profile model.UserProfile
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// Years lists the class standings offered by the form.
var Years = []string{"Freshman", "Sophomore", "Junior", "Senior", "Graduate"}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name          string
	email         string
	major         string
	year          string
	notifications bool
	darkMode      bool
}

// Model is the profile editor.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	theme  *theme.Theme
	width  int
	height int
}

// New creates a profile editor.
func New(th *theme.Theme, width, height int) Model {
	return Model{
		fb:     &formBindings{},
		theme:  th,
		width:  width,
		height: height,
	}
}

// Start fills the form from p and focuses the first field.
func (m *Model) Start(p model.UserProfile) tea.Cmd {
	m.load(p)
	m.form = m.buildForm()
	return m.form.Init()
}

func (m *Model) load(p model.UserProfile) {
	m.fb.name = p.Name
	m.fb.email = p.Email
	m.fb.major = p.Major
	m.fb.year = p.Year
	m.fb.notifications = p.Preferences.Notifications
	m.fb.darkMode = p.Preferences.DarkMode
}

func (m *Model) buildForm() *huh.Form {
	years := make([]huh.Option[string], 0, len(Years)+1)
	known := false
	for _, y := range Years {
		years = append(years, huh.NewOption(y, y))
		known = known || y == m.fb.year
	}
	if !known && m.fb.year != "" {
		years = append(years, huh.NewOption(m.fb.year, m.fb.year))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.fb.name).
				Validate(validateRequired("Name")),
			huh.NewInput().
				Title("Email").
				Description("Used as the sender when mailing your advisor").
				Value(&m.fb.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Major").
				Value(&m.fb.major),
			huh.NewSelect[string]().
				Title("Year").
				Options(years...).
				Value(&m.fb.year),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Notifications").
				Affirmative("On").
				Negative("Off").
				Value(&m.fb.notifications),
			huh.NewConfirm().
				Title("Dark mode").
				Affirmative("On").
				Negative("Off").
				Value(&m.fb.darkMode),
		),
	).WithWidth(m.formWidth()).WithShowHelp(true)
}

// Update handles messages for the profile editor.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		p := m.Profile()
		m.form = nil
		return m, func() tea.Msg { return SavedMsg{Profile: p} }
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

// Profile returns the profile as currently entered.
func (m Model) Profile() model.UserProfile {
	return model.UserProfile{
		Name:  strings.TrimSpace(m.fb.name),
		Email: strings.TrimSpace(m.fb.email),
		Major: strings.TrimSpace(m.fb.major),
		Year:  m.fb.year,
		Preferences: model.Preferences{
			Notifications: m.fb.notifications,
			DarkMode:      m.fb.darkMode,
		},
	}
}

// Active reports whether the form is open.
func (m Model) Active() bool {
	return m.form != nil
}

// View renders the profile editor.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.theme.Palette.Primary).
		MarginBottom(1).
		Render("Profile")

	return m.theme.Panel.
		Width(m.formWidth() + 2).
		Render(title + "\n" + m.form.View())
}

// SetTheme switches styles.
func (m *Model) SetTheme(th *theme.Theme) {
	m.theme = th
}

// SetSize updates the editor dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m Model) formWidth() int {
	w := m.width - 6
	if w > 70 {
		w = 70
	}
	if w < 20 {
		w = 20
	}
	return w
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return errors.New("email must be a valid address")
	}
	return nil
}
