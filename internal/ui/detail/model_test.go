package detail

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/ticketwatch/internal/keys"
	"github.com/nhle/ticketwatch/internal/model"
	"github.com/nhle/ticketwatch/internal/source"
)

type stubService struct {
	tickets   []model.Ticket
	employees []model.Employee
	err       error
}

func (s stubService) FetchTickets(context.Context, source.TicketFilter) ([]model.Ticket, error) {
	return s.tickets, s.err
}

func (s stubService) FetchEmployees(context.Context) ([]model.Employee, error) {
	return s.employees, s.err
}

func TestLoadFindsTicketThenEmployee(t *testing.T) {
	svc := stubService{
		tickets:   []model.Ticket{{ID: "t1", TicketNumber: "TKT-0001"}},
		employees: []model.Employee{{ID: "e1", Name: "Lisa Wang"}},
	}

	msg := Load(svc, "n1", "t1")().(LoadedMsg)
	require.NotNil(t, msg.Ticket)
	assert.Equal(t, "TKT-0001", msg.Ticket.TicketNumber)
	assert.Nil(t, msg.Employee)

	msg = Load(svc, "n2", "e1")().(LoadedMsg)
	require.NotNil(t, msg.Employee)
	assert.Equal(t, "Lisa Wang", msg.Employee.Name)
	assert.Equal(t, "n2", msg.NotificationID)

	msg = Load(svc, "n3", "gone")().(LoadedMsg)
	assert.Nil(t, msg.Ticket)
	assert.Nil(t, msg.Employee)
	assert.NoError(t, msg.Err)
}

func TestLoadReportsFetchError(t *testing.T) {
	msg := Load(stubService{err: errors.New("boom")}, "n1", "t1")().(LoadedMsg)
	assert.ErrorContains(t, msg.Err, "boom")
}

func TestViewRendersLinkedTicket(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 100, 30)
	assert.Contains(t, m.View(), "No notification selected")

	n := model.Notification{
		ID:        "n1",
		Type:      model.NotificationAssignment,
		Title:     "Ticket Assigned",
		Message:   "TKT-0006 assigned to Lisa Wang",
		EntityID:  "t6",
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	m.Show(n)
	assert.Contains(t, m.View(), "Loading...")

	// A result for another notification is ignored.
	m, _ = m.Update(LoadedMsg{NotificationID: "other"})
	assert.Contains(t, m.View(), "Loading...")

	m, _ = m.Update(LoadedMsg{NotificationID: "n1", Ticket: &model.Ticket{
		ID:           "t6",
		TicketNumber: "TKT-0006",
		Title:        "Write API documentation",
		Status:       model.StatusOpen,
		Priority:     model.PriorityLow,
		EmployeeName: "Lisa Wang",
	}})
	view := m.View()
	assert.Contains(t, view, "TKT-0006  Write API documentation")
	assert.Contains(t, view, "Lisa Wang")
	assert.Contains(t, view, "Needs triage")
	assert.NotContains(t, view, "Loading...")
}

func TestViewUnlinkedAndMissing(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 100, 30)

	m.Show(model.Notification{ID: "n1", Title: "Settings Saved"})
	assert.Contains(t, m.View(), "Not linked")

	m.Show(model.Notification{ID: "n2", Title: "Ticket Deleted", EntityID: "t9"})
	m, _ = m.Update(LoadedMsg{NotificationID: "n2"})
	assert.Contains(t, m.View(), "t9 no longer exists.")
}

func TestBackKey(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 100, 30)
	m.Show(model.Notification{ID: "n1"})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, BackMsg{}, cmd())
}
