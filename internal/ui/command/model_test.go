package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/advisor-ai/internal/theme"
)

var categories = []string{
	"Course Selection",
	"Degree Requirements",
	"Career Advice",
	"Research Opportunities",
	"Study Abroad",
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Command
	}{
		{"new", Command{Name: New}},
		{"  HISTORY ", Command{Name: History}},
		{"prof", Command{Name: Profile}},
		{"t", Command{Name: Theme}},
		{"q", Command{Name: Quit}},
		{"ask career", Command{Name: Ask, Arg: "Career Advice"}},
		{"ask study abroad", Command{Name: Ask, Arg: "Study Abroad"}},
		{"a r", Command{Name: Ask, Arg: "Research Opportunities"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input, categories)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"", "   ", "launch", "h", "ask", "ask cooking", "ask c"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input, categories)
			assert.Error(t, err)
		})
	}
}

func TestEnterEmitsCommand(t *testing.T) {
	m := NewModel(theme.New(true), categories, 80, 24)
	m.input.SetValue("ask degree")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg{Command: Command{Name: Ask, Arg: "Degree Requirements"}}, cmd())
	assert.Empty(t, m.input.Value())
}

func TestEnterReportsParseError(t *testing.T) {
	m := NewModel(theme.New(true), categories, 80, 24)
	m.input.SetValue("launch")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(ErrorMsg)
	require.True(t, ok)
	assert.Contains(t, msg.Err.Error(), "launch")
}

func TestEscCloses(t *testing.T) {
	m := NewModel(theme.New(false), categories, 80, 24)
	m.input.SetValue("his")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CloseMsg{}, cmd())
	assert.Empty(t, m.input.Value())
}
