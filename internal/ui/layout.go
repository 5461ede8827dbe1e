package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/advisor-ai/internal/theme"
)

// Layout manages the terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions. The header
// takes two rows (title plus its bottom border).
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    2,
		StatusBarHeight: 1,
	}
}

// ContentHeight returns the height available for the main content area.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// RenderHeader renders the title bar with the active view on the right.
func (l Layout) RenderHeader(th *theme.Theme, title, view string) string {
	left := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Palette.Primary).
		Render(title)
	right := lipgloss.NewStyle().
		Foreground(th.Palette.TextSecondary).
		Render(view)

	gap := l.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		left,
		lipgloss.NewStyle().Width(gap).Render(""),
		right,
	)
	return th.Header.Width(l.Width).Render(line)
}

// RenderStatusBar renders the bottom bar. A non-empty status replaces the
// key hints.
func (l Layout) RenderStatusBar(th *theme.Theme, hints, status string) string {
	text := hints
	if status != "" {
		text = status
	}
	return th.StatusBar.
		Width(l.Width).
		MaxHeight(1).
		Render(text)
}

// RenderWithFrame joins header, content and status bar vertically.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}
