// Package filterform is the ticket filter form. Submitting it replaces
// the ticket screen's filters, which restarts that screen's baseline.
package filterform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/ticketwatch/internal/model"
	"github.com/nhle/ticketwatch/internal/source"
	"github.com/nhle/ticketwatch/internal/theme"
)

// SubmittedMsg carries the filter the user confirmed.
type SubmittedMsg struct {
	Filter source.TicketFilter
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// maxSearchLen bounds the free-text search.
const maxSearchLen = 100

// formBindings holds field values on the heap so huh's Value pointers
// survive Bubble Tea model copies.
type formBindings struct {
	search     string
	status     string
	priority   string
	assignedTo string
}

// Model is the Bubble Tea model for the filter form.
type Model struct {
	form      *huh.Form
	fb        *formBindings
	employees []model.Employee
	width     int
	height    int
}

// New creates a filter form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetEmployees sets the assignee choices.
func (m *Model) SetEmployees(employees []model.Employee) {
	m.employees = employees
}

// Start builds the form pre-filled with current.
func (m *Model) Start(current source.TicketFilter) tea.Cmd {
	m.fb.search = current.Search
	m.fb.status = current.Status
	m.fb.priority = current.Priority
	m.fb.assignedTo = current.AssignedTo
	m.form = m.buildForm()
	return m.form.Init()
}

// Active reports whether a form is being edited.
func (m Model) Active() bool {
	return m.form != nil && m.form.State == huh.StateNormal
}

// Update handles messages for the form.
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
		f := m.filter()
		return m, func() tea.Msg { return SubmittedMsg{Filter: f} }
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Filter Tickets")
	hint := theme.MutedStyle.Render("Changing filters starts a fresh baseline; no notifications for the switch.")

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, m.form.View(), hint))
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	statusOpts := []huh.Option[string]{huh.NewOption("Any", "")}
	for _, s := range model.Statuses {
		statusOpts = append(statusOpts, huh.NewOption(label(s), s))
	}

	priorityOpts := []huh.Option[string]{huh.NewOption("Any", "")}
	for _, p := range model.Priorities {
		priorityOpts = append(priorityOpts, huh.NewOption(label(p), p))
	}

	assigneeOpts := []huh.Option[string]{huh.NewOption("Anyone", "")}
	for _, e := range m.employees {
		if e.IsActive {
			assigneeOpts = append(assigneeOpts, huh.NewOption(e.Name, e.ID))
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Search").
				Placeholder("title, description or ticket number").
				Value(&m.fb.search).
				Validate(validateSearch),
			huh.NewSelect[string]().
				Title("Status").
				Options(statusOpts...).
				Value(&m.fb.status),
			huh.NewSelect[string]().
				Title("Priority").
				Options(priorityOpts...).
				Value(&m.fb.priority),
			huh.NewSelect[string]().
				Title("Assignee").
				Options(assigneeOpts...).
				Value(&m.fb.assignedTo),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) filter() source.TicketFilter {
	return source.TicketFilter{
		Search:     strings.TrimSpace(m.fb.search),
		Status:     m.fb.status,
		Priority:   m.fb.priority,
		AssignedTo: m.fb.assignedTo,
	}
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-6, 10)
}

// label turns "in_progress" into "In progress".
func label(v string) string {
	v = strings.ReplaceAll(v, "_", " ")
	if v == "" {
		return v
	}
	return strings.ToUpper(v[:1]) + v[1:]
}

func validateSearch(s string) error {
	if len(strings.TrimSpace(s)) > maxSearchLen {
		return fmt.Errorf("search must be at most %d characters", maxSearchLen)
	}
	return nil
}
