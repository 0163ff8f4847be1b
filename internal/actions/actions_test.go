package actions

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/ticketwatch/internal/clock"
	"github.com/nhle/ticketwatch/internal/model"
	"github.com/nhle/ticketwatch/internal/notify"
	"github.com/nhle/ticketwatch/internal/source"
	"github.com/nhle/ticketwatch/internal/sync"
)

// memDesk is an in-memory source.Desk that applies writes to its own
// collections so a poll sees them.
type memDesk struct {
	mu        gosync.Mutex
	tickets   []model.Ticket
	employees []model.Employee
	writeErr  error
	comments  []string
}

var _ source.Desk = (*memDesk)(nil)

func newMemDesk() *memDesk {
	cat := "hardware"
	return &memDesk{
		tickets: []model.Ticket{
			{ID: "t-1", TicketNumber: "TKT-0001", Title: "Printer jam", Status: model.StatusOpen, CategoryID: &cat},
			{ID: "t-2", TicketNumber: "TKT-0002", Title: "VPN down", Status: model.StatusOpen, CategoryID: &cat},
		},
		employees: []model.Employee{
			{ID: "e-1", Name: "Ada Lovelace"},
			{ID: "e-2", Name: "Grace Hopper"},
		},
	}
}

func (m *memDesk) FetchTickets(ctx context.Context, f source.TicketFilter) ([]model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Ticket(nil), m.tickets...), nil
}

func (m *memDesk) FetchEmployees(ctx context.Context) ([]model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Employee(nil), m.employees...), nil
}

func (m *memDesk) FetchCategories(ctx context.Context) ([]model.Category, error) { return nil, nil }

func (m *memDesk) AssignTicket(ctx context.Context, ticketID, employeeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	var name string
	for _, e := range m.employees {
		if e.ID == employeeID {
			name = e.Name
		}
	}
	for i := range m.tickets {
		if m.tickets[i].ID == ticketID {
			id := employeeID
			m.tickets[i].EmployeeID = &id
			m.tickets[i].EmployeeName = name
		}
	}
	return nil
}

func (m *memDesk) UpdateTicket(ctx context.Context, ticketID string, u source.TicketUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	for i := range m.tickets {
		if m.tickets[i].ID != ticketID {
			continue
		}
		if u.Status != nil {
			m.tickets[i].Status = *u.Status
		}
		if u.Priority != nil {
			m.tickets[i].Priority = *u.Priority
		}
	}
	return nil
}

func (m *memDesk) DeleteTicket(ctx context.Context, ticketID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	for i := range m.tickets {
		if m.tickets[i].ID == ticketID {
			m.tickets = append(m.tickets[:i], m.tickets[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memDesk) AddComment(ctx context.Context, ticketID, author, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.comments = append(m.comments, author+": "+body)
	return nil
}

func (m *memDesk) CreateCategory(ctx context.Context, in source.CategoryInput) (*model.Category, error) {
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	return &model.Category{ID: "c-9", Name: in.Name}, nil
}

func (m *memDesk) CreateEmployee(ctx context.Context, in source.EmployeeInput) (*model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	e := model.Employee{ID: "e-9", Name: in.Name}
	m.employees = append(m.employees, e)
	return &e, nil
}

func (m *memDesk) UpdateEmployee(ctx context.Context, employeeID string, in source.EmployeeInput) error {
	return m.writeErr
}

func (m *memDesk) DeleteEmployee(ctx context.Context, employeeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	for i := range m.employees {
		if m.employees[i].ID == employeeID {
			m.employees = append(m.employees[:i], m.employees[i+1:]...)
			return nil
		}
	}
	return nil
}

type countingRefresher struct{ n int }

func (r *countingRefresher) Refresh() { r.n++ }

func newTestDesk(t *testing.T) (*Desk, *memDesk, *notify.Store, *countingRefresher) {
	t.Helper()
	mem := newMemDesk()
	store := notify.NewStore(clock.Fake(time.Unix(0, 0)), time.Minute, nil)
	t.Cleanup(store.Close)
	refresher := &countingRefresher{}
	d := New(mem, store, Options{Tickets: refresher, Employees: refresher})
	return d, mem, store, refresher
}

func TestAssignTicket(t *testing.T) {
	d, _, store, refresher := newTestDesk(t)

	require.NoError(t, d.AssignTicket(context.Background(), "tkt-0001", "grace hopper"))

	got := store.List()
	require.Len(t, got, 1)
	assert.Equal(t, model.NotificationAssignment, got[0].Type)
	assert.Equal(t, "Ticket Assigned", got[0].Title)
	assert.Equal(t, "TKT-0001 assigned to Grace Hopper", got[0].Message)
	assert.Equal(t, "t-1", got[0].EntityID)
	assert.False(t, got[0].Pinned)
	assert.Equal(t, 1, refresher.n)
}

func TestAssignTicket_Failure(t *testing.T) {
	d, mem, store, refresher := newTestDesk(t)
	mem.writeErr = errors.New("boom")

	err := d.AssignTicket(context.Background(), "t-1", "e-1")
	require.Error(t, err)

	var actionErr *ActionError
	require.True(t, errors.As(err, &actionErr))
	assert.Equal(t, "assign ticket", actionErr.Action)

	got := store.List()
	require.Len(t, got, 1)
	assert.Equal(t, model.NotificationError, got[0].Type)
	assert.Equal(t, "Assignment Failed", got[0].Title)
	assert.Equal(t, "Failed to assign ticket", got[0].Message)
	assert.False(t, got[0].Pinned)
	assert.Equal(t, 0, refresher.n)
}

func TestAssignTicket_UnknownEmployee(t *testing.T) {
	d, _, store, _ := newTestDesk(t)

	err := d.AssignTicket(context.Background(), "t-1", "nobody")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Assignment Failed", store.List()[0].Title)
}

func TestChangeStatus(t *testing.T) {
	d, mem, store, _ := newTestDesk(t)

	require.NoError(t, d.ChangeStatus(context.Background(), "TKT-0002", model.StatusInProgress))

	got := store.List()
	require.Len(t, got, 1)
	assert.Equal(t, model.NotificationTicketUpdated, got[0].Type)
	assert.Equal(t, "TKT-0002 Updated", got[0].Title)
	assert.Equal(t, "Status changed to in progress", got[0].Message)
	assert.Equal(t, model.StatusInProgress, mem.tickets[1].Status)
}

func TestTicketShorthandReference(t *testing.T) {
	d, mem, store, _ := newTestDesk(t)

	require.NoError(t, d.ChangePriority(context.Background(), "#2", model.PriorityUrgent))
	require.NoError(t, d.ChangeStatus(context.Background(), "tkt-1", model.StatusResolved))

	assert.Equal(t, model.PriorityUrgent, mem.tickets[1].Priority)
	assert.Equal(t, model.StatusResolved, mem.tickets[0].Status)
	assert.Equal(t, 2, store.Len())
}

func TestChangeStatus_Invalid(t *testing.T) {
	d, _, store, _ := newTestDesk(t)

	err := d.ChangeStatus(context.Background(), "t-1", "done")
	require.Error(t, err)
	assert.Equal(t, "Failed to update ticket status", store.List()[0].Message)
}

func TestChangePriority(t *testing.T) {
	d, _, store, _ := newTestDesk(t)

	require.NoError(t, d.ChangePriority(context.Background(), "t-1", model.PriorityUrgent))
	assert.Equal(t, "Priority changed to urgent", store.List()[0].Message)

	require.Error(t, d.ChangePriority(context.Background(), "t-1", "critical"))
	assert.Equal(t, "Failed to update ticket priority", store.List()[0].Message)
}

func TestCreateCategory(t *testing.T) {
	d, mem, store, _ := newTestDesk(t)

	require.NoError(t, d.CreateCategory(context.Background(), source.CategoryInput{Name: "Network"}))
	assert.Equal(t, "Category Created", store.List()[0].Title)
	assert.Equal(t, "Network has been added", store.List()[0].Message)

	mem.writeErr = errors.New("duplicate")
	require.Error(t, d.CreateCategory(context.Background(), source.CategoryInput{Name: "Network"}))
	assert.Equal(t, "Creation Failed", store.List()[0].Title)
}

func TestEmployeeLifecycle(t *testing.T) {
	d, _, store, _ := newTestDesk(t)
	ctx := context.Background()

	require.NoError(t, d.CreateEmployee(ctx, source.EmployeeInput{Name: "Linus", Email: "l@example.com"}))
	assert.Equal(t, "Linus has been added to the team", store.List()[0].Message)

	require.NoError(t, d.UpdateEmployee(ctx, "e-9", source.EmployeeInput{Name: "Linus T"}))
	assert.Equal(t, "Linus T has been updated successfully", store.List()[0].Message)

	require.NoError(t, d.DeleteEmployee(ctx, "Linus"))
	assert.Equal(t, "Employee Deleted", store.List()[0].Title)
	assert.Equal(t, "Linus has been removed", store.List()[0].Message)

	require.Error(t, d.DeleteEmployee(ctx, "Linus"))
	assert.Equal(t, "Delete Failed", store.List()[0].Title)
}

func TestDeleteTicketAndComment(t *testing.T) {
	d, mem, store, _ := newTestDesk(t)
	ctx := context.Background()

	require.NoError(t, d.AddComment(ctx, "TKT-0001", "Ada", "on it"))
	assert.Equal(t, "Ada commented on TKT-0001", store.List()[0].Message)
	assert.Equal(t, []string{"Ada: on it"}, mem.comments)

	require.Error(t, d.AddComment(ctx, "TKT-0001", "Ada", "  "))

	require.NoError(t, d.DeleteTicket(ctx, "TKT-0001"))
	assert.Equal(t, "TKT-0001: Printer jam has been deleted", store.List()[0].Message)
	assert.Len(t, mem.tickets, 1)
}

// An action and the poll that later observes its effect each produce a
// notification. This duplication is intentional.
func TestActionThenPollNotifiesTwice(t *testing.T) {
	mem := newMemDesk()
	clk := clock.Fake(time.Unix(0, 0))
	store := notify.NewStore(clk, time.Minute, nil)
	defer store.Close()

	sched := sync.NewTicketScheduler(mem, sync.Options{Clock: clk, Store: store, Interval: 3 * time.Second})
	defer sched.Dispose()

	sched.Start()
	<-sched.Results()

	// No refresher: the duplicate comes from the regular tick.
	d := New(mem, store, Options{})
	require.NoError(t, d.AssignTicket(context.Background(), "t-2", "e-1"))

	clk.Advance(3 * time.Second)
	r := <-sched.Results()
	require.Len(t, r.Notifications, 1)

	got := store.List()
	require.Len(t, got, 2)
	for _, n := range got {
		assert.Equal(t, model.NotificationAssignment, n.Type)
		assert.Equal(t, "TKT-0002 assigned to Ada Lovelace", n.Message)
		assert.Equal(t, "t-2", n.EntityID)
	}
	assert.NotEqual(t, got[0].ID, got[1].ID)
}
