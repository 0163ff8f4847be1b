// Package detail shows one notification together with the ticket or
// employee it refers to.
package detail

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/ticketwatch/internal/crossref"
	"github.com/nhle/ticketwatch/internal/keys"
	"github.com/nhle/ticketwatch/internal/model"
	"github.com/nhle/ticketwatch/internal/source"
	"github.com/nhle/ticketwatch/internal/theme"
)

// BackMsg signals the parent to navigate back to the tray.
type BackMsg struct{}

// LoadedMsg carries the entity behind a notification. Both pointers are
// nil when the entity no longer exists.
type LoadedMsg struct {
	NotificationID string
	Ticket         *model.Ticket
	Employee       *model.Employee
	Err            error
}

// Load looks up entityID among current tickets, then employees.
func Load(svc source.DataService, notificationID, entityID string) tea.Cmd {
	return func() tea.Msg {
		msg := LoadedMsg{NotificationID: notificationID}
		if svc == nil || entityID == "" {
			return msg
		}
		ctx := context.Background()

		tickets, err := svc.FetchTickets(ctx, source.TicketFilter{})
		if err != nil {
			msg.Err = fmt.Errorf("loading tickets: %w", err)
			return msg
		}
		for i := range tickets {
			if tickets[i].ID == entityID {
				msg.Ticket = &tickets[i]
				return msg
			}
		}

		employees, err := svc.FetchEmployees(ctx)
		if err != nil {
			msg.Err = fmt.Errorf("loading employees: %w", err)
			return msg
		}
		for i := range employees {
			if employees[i].ID == entityID {
				msg.Employee = &employees[i]
				return msg
			}
		}
		return msg
	}
}

// Model is the notification detail view.
type Model struct {
	notification *model.Notification
	ticket       *model.Ticket
	employee     *model.Employee
	loadErr      error
	loading      bool

	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Show displays n. The entity section stays in a loading state until a
// matching LoadedMsg arrives.
func (m *Model) Show(n model.Notification) {
	m.notification = &n
	m.ticket = nil
	m.employee = nil
	m.loadErr = nil
	m.loading = n.EntityID != ""
	m.refresh()
}

// NotificationID returns the id of the notification on screen.
func (m Model) NotificationID() string {
	if m.notification == nil {
		return ""
	}
	return m.notification.ID
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.NotificationID != m.NotificationID() {
			return m, nil
		}
		m.loading = false
		m.ticket = msg.Ticket
		m.employee = msg.Employee
		m.loadErr = msg.Err
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg { return BackMsg{} }
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.notification == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No notification selected")
	}
	return m.viewport.View()
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	n := m.notification
	if n == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

	sections := []string{
		theme.TypeStyle(n.Type).Render(theme.TypeIcon(n.Type)) + " " + titleStyle.Render(n.Title),
		n.Message,
		"",
		metaStyle.Render("Received: " + n.CreatedAt.Format("2006-01-02 15:04:05")),
	}
	if n.Pinned {
		sections = append(sections, metaStyle.Render("Pinned until dismissed"))
	}

	separator := lipgloss.NewStyle().
		Foreground(theme.ColorSubtle).
		Render(strings.Repeat("─", max(min(m.width-4, 80), 0)))
	sections = append(sections, "", separator, "")

	switch {
	case n.EntityID == "":
		sections = append(sections, metaStyle.Render("Not linked to a ticket or employee."))
	case m.loading:
		sections = append(sections, metaStyle.Render("Loading..."))
	case m.loadErr != nil:
		sections = append(sections, theme.ErrorTextStyle.Render(m.loadErr.Error()))
	case m.ticket != nil:
		sections = append(sections, renderTicket(*m.ticket)...)
	case m.employee != nil:
		sections = append(sections, renderEmployee(*m.employee)...)
	default:
		sections = append(sections, metaStyle.Render(n.EntityID+" no longer exists."))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderTicket(t model.Ticket) []string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	badges := lipgloss.JoinHorizontal(lipgloss.Top,
		theme.StatusStyle(t.Status).Render(t.Status),
		"  ",
		theme.PriorityStyle(t.Priority).Render(t.Priority),
	)

	assignee := t.EmployeeName
	if assignee == "" {
		assignee = "Unassigned"
	}
	category := t.CategoryName
	if t.Uncategorized() {
		category = "Needs triage"
	}

	description := t.Description
	if description == "" {
		description = lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true).Render("No description")
	}

	lines := []string{
		titleStyle.Render(t.TicketNumber + "  " + t.Title),
		badges,
		"",
		field("Assignee", assignee),
		field("Category", category),
		field("Updated", t.UpdatedAt.Format("2006-01-02 15:04")),
	}
	if related := crossref.Related(t.TicketNumber, t.Title+" "+t.Description); len(related) > 0 {
		lines = append(lines, field("Related", strings.Join(related, ", ")))
	}
	return append(lines, "", description)
}

func renderEmployee(e model.Employee) []string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	lines := []string{
		titleStyle.Render(e.Name),
		"",
		field("Email", e.Email),
		field("Position", e.Position),
	}
	if e.Department != "" {
		lines = append(lines, field("Department", e.Department))
	}
	if len(e.Specializations) > 0 {
		lines = append(lines, field("Skills", strings.Join(e.Specializations, ", ")))
	}
	return lines
}

func field(label, value string) string {
	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(12)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	return metaStyle.Render(label+":") + valStyle.Render(value)
}
