// Package command is the dashboard's command palette.
package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/ticketwatch/internal/theme"
)

// CommandMsg is emitted when the user executes a well-formed command.
type CommandMsg Command

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	err    string
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "assign TKT-0001 Sarah Johnson"
	ti.Prompt = ": "
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Update handles messages for the command palette. A malformed line
// stays in the input with the usage shown underneath.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEnter {
		line := strings.TrimSpace(m.input.Value())
		if line == "" {
			return m, nil
		}
		cmd, err := Parse(line)
		if err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.err = ""
		m.input.Reset()
		return m, func() tea.Msg { return CommandMsg(cmd) }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Command Palette")

	parts := []string{title, m.input.View()}
	if m.err != "" {
		parts = append(parts, theme.ErrorTextStyle.Render(m.err))
	}
	parts = append(parts, "", theme.MutedStyle.Render(strings.Join(Usage(), "\n")))

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// Usage lists the palette's verbs with their arguments.
func Usage() []string {
	return []string{
		verbs[VerbRefresh].text,
		verbs[VerbAssign].text,
		verbs[VerbStatus].text,
		verbs[VerbPriority].text,
		verbs[VerbComment].text,
		verbs[VerbCategory].text,
		verbs[VerbDeleteTicket].text,
		verbs[VerbDeleteEmployee].text,
		verbs[VerbReadAll].text,
		verbs[VerbClear].text,
		verbs[VerbFilter].text,
		verbs[VerbQuit].text,
	}
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus clears the previous error and gives the input keyboard focus.
func (m *Model) Focus() tea.Cmd {
	m.err = ""
	return m.input.Focus()
}

// Blur releases keyboard focus.
func (m *Model) Blur() {
	m.input.Blur()
}
