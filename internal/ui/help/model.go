// Package help renders the keyboard and palette reference overlay.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/ticketwatch/internal/keys"
	"github.com/nhle/ticketwatch/internal/theme"
	"github.com/nhle/ticketwatch/internal/ui/command"
)

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(k *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.ShowAll = true
	h.Width = width - 4
	return Model{
		keys:   k,
		help:   h,
		width:  width,
		height: height,
	}
}

// ShortView renders the one-line key summary for the status bar.
func (m Model) ShortView() string {
	h := m.help
	h.ShowAll = false
	return h.View(m.keys)
}

// View renders the help overlay.
func (m Model) View() string {
	heading := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	palette := make([]string, 0, len(command.Usage()))
	for _, u := range command.Usage() {
		palette = append(palette, ":"+u)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		heading.Render("Keyboard Shortcuts"),
		m.help.View(m.keys),
		"",
		heading.Render("Commands"),
		theme.MutedStyle.Render(strings.Join(palette, "\n")),
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		MaxHeight(m.height).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
