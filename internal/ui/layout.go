package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/ticketwatch/internal/theme"
)

// Layout manages the dashboard's frame dimensions: a one-line header, the
// content area and a one-line status bar.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height left between header and status bar.
func (l Layout) ContentHeight() int {
	return max(l.Height-l.HeaderHeight-l.StatusBarHeight, 0)
}

// RenderHeader renders the title on the left and the sync summary on the
// right, filling the gap with the header background.
func (l Layout) RenderHeader(title, syncSummary string) string {
	left := theme.HeaderStyle.Render(title)
	right := theme.HeaderStyle.Render(syncSummary)
	return l.spread(theme.HeaderStyle, left, right)
}

// RenderStatusBar renders keyboard hints, or a message in their place.
func (l Layout) RenderStatusBar(hints string) string {
	return l.spread(theme.StatusBarStyle, theme.StatusBarStyle.Render(hints), "")
}

// spread joins left and right with a filler in style's background so the
// bar spans the terminal width.
func (l Layout) spread(style lipgloss.Style, left, right string) string {
	gap := max(l.Width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}

// RenderWithFrame stacks header, content and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	content = lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}
