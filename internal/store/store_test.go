package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/ticketwatch/internal/model"
	"github.com/nhle/ticketwatch/internal/source"
	"github.com/nhle/ticketwatch/internal/store"
	"github.com/nhle/ticketwatch/tests/testutil"
)

func ptr(s string) *string { return &s }

func TestMigrationsApplied(t *testing.T) {
	s := testutil.NewTestStore(t)
	v, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestCreateTicketNumbersAndDefaults(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	a, err := s.CreateTicket(ctx, store.NewTicket{Title: "first"})
	require.NoError(t, err)
	b, err := s.CreateTicket(ctx, store.NewTicket{Title: "second"})
	require.NoError(t, err)

	assert.Equal(t, "TKT-0001", a.TicketNumber)
	assert.Equal(t, "TKT-0002", b.TicketNumber)
	assert.Equal(t, model.StatusOpen, a.Status)
	assert.Equal(t, model.PriorityMedium, a.Priority)
	assert.True(t, a.Uncategorized())
	assert.Nil(t, a.EmployeeID)

	_, err = s.CreateTicket(ctx, store.NewTicket{Title: "  "})
	assert.ErrorIs(t, err, store.ErrInvalid)
	_, err = s.CreateTicket(ctx, store.NewTicket{Title: "x", Status: "bogus"})
	assert.ErrorIs(t, err, store.ErrInvalid)
}

func TestListTicketsFilters(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	emp, err := s.CreateEmployee(ctx, source.EmployeeInput{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)

	_, err = s.CreateTicket(ctx, store.NewTicket{Title: "Login broken", Priority: model.PriorityUrgent})
	require.NoError(t, err)
	_, err = s.CreateTicket(ctx, store.NewTicket{
		Title: "Export CSV", Status: model.StatusInProgress, AssignedTo: &emp.ID,
	})
	require.NoError(t, err)

	all, err := s.ListTickets(ctx, source.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Export CSV", all[0].Title, "newest first")
	assert.Equal(t, "Ann", all[0].EmployeeName)

	tests := []struct {
		name   string
		filter source.TicketFilter
		want   []string
	}{
		{"status", source.TicketFilter{Status: model.StatusInProgress}, []string{"Export CSV"}},
		{"priority", source.TicketFilter{Priority: model.PriorityUrgent}, []string{"Login broken"}},
		{"assignee", source.TicketFilter{AssignedTo: emp.ID}, []string{"Export CSV"}},
		{"search is case-insensitive", source.TicketFilter{Search: "login"}, []string{"Login broken"}},
		{"search by number", source.TicketFilter{Search: "TKT-0002"}, []string{"Export CSV"}},
		{"no match", source.TicketFilter{Status: model.StatusClosed}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListTickets(ctx, tt.filter)
			require.NoError(t, err)
			var titles []string
			for _, tk := range got {
				titles = append(titles, tk.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestUpdateAndAssignTicket(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	tk, err := s.CreateTicket(ctx, store.NewTicket{Title: "t"})
	require.NoError(t, err)
	cat, err := s.CreateCategory(ctx, source.CategoryInput{Name: "Backend"})
	require.NoError(t, err)
	emp, err := s.CreateEmployee(ctx, source.EmployeeInput{Name: "Bo", Email: "bo@example.com"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateTicket(ctx, tk.ID, source.TicketUpdate{
		Status:     ptr(model.StatusResolved),
		CategoryID: &cat.ID,
	}))
	require.NoError(t, s.AssignTicket(ctx, tk.ID, &emp.ID))

	got, err := s.GetTicket(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusResolved, got.Status)
	assert.Equal(t, "Backend", got.CategoryName)
	require.NotNil(t, got.EmployeeID)
	assert.Equal(t, emp.ID, *got.EmployeeID)
	assert.Equal(t, "Bo", got.EmployeeName)

	require.NoError(t, s.AssignTicket(ctx, tk.ID, nil))
	got, err = s.GetTicket(ctx, tk.ID)
	require.NoError(t, err)
	assert.Nil(t, got.EmployeeID)

	assert.ErrorIs(t, s.UpdateTicket(ctx, tk.ID, source.TicketUpdate{}), store.ErrInvalid)
	assert.ErrorIs(t, s.UpdateTicket(ctx, "missing", source.TicketUpdate{Status: ptr(model.StatusOpen)}), store.ErrNotFound)
	assert.ErrorIs(t, s.AssignTicket(ctx, tk.ID, ptr("ghost")), store.ErrNotFound)
	assert.ErrorIs(t, s.AssignTicket(ctx, "missing", nil), store.ErrNotFound)
}

func TestDeleteTicketRemovesComments(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	tk, err := s.CreateTicket(ctx, store.NewTicket{Title: "t"})
	require.NoError(t, err)
	_, err = s.AddComment(ctx, store.Comment{TicketID: tk.ID, Author: "Ann", Content: "on it"})
	require.NoError(t, err)

	comments, err := s.ListComments(ctx, tk.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "on it", comments[0].Content)

	require.NoError(t, s.DeleteTicket(ctx, tk.ID))
	_, err = s.GetTicket(ctx, tk.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	comments, err = s.ListComments(ctx, tk.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	assert.ErrorIs(t, s.DeleteTicket(ctx, tk.ID), store.ErrNotFound)
	_, err = s.AddComment(ctx, store.Comment{TicketID: tk.ID, Content: "late"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEmployeeLifecycle(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	emp, err := s.CreateEmployee(ctx, source.EmployeeInput{
		Name: "Cy", Email: "cy@example.com", Specializations: []string{"Go", "SQL"},
	})
	require.NoError(t, err)
	assert.True(t, emp.IsActive)
	assert.Equal(t, []string{"Go", "SQL"}, emp.Specializations)

	_, err = s.CreateEmployee(ctx, source.EmployeeInput{Name: "Dup", Email: "cy@example.com"})
	assert.ErrorIs(t, err, store.ErrConflict)
	_, err = s.CreateEmployee(ctx, source.EmployeeInput{Name: "NoMail", Email: "nope"})
	assert.ErrorIs(t, err, store.ErrInvalid)

	require.NoError(t, s.UpdateEmployee(ctx, emp.ID, source.EmployeeInput{
		Name: "Cy Young", Email: "cy@example.com", Position: "Lead",
	}))
	got, err := s.GetEmployee(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cy Young", got.Name)
	assert.Equal(t, "Lead", got.Position)
	assert.Empty(t, got.Specializations)

	tk, err := s.CreateTicket(ctx, store.NewTicket{Title: "t", AssignedTo: &emp.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteEmployee(ctx, emp.ID))
	_, err = s.GetEmployee(ctx, emp.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	after, err := s.GetTicket(ctx, tk.ID)
	require.NoError(t, err)
	assert.Nil(t, after.EmployeeID, "tickets are unassigned when their employee goes")

	assert.ErrorIs(t, s.DeleteEmployee(ctx, emp.ID), store.ErrNotFound)
}

func TestCategoryNamesAreUnique(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	c, err := s.CreateCategory(ctx, source.CategoryInput{Name: "Frontend"})
	require.NoError(t, err)
	assert.Equal(t, "#3b82f6", c.Color)

	_, err = s.CreateCategory(ctx, source.CategoryInput{Name: "Frontend"})
	assert.ErrorIs(t, err, store.ErrConflict)

	list, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSeedIsIdempotent(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Seed(ctx))
	tickets, err := s.ListTickets(ctx, source.TicketFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, tickets)

	require.NoError(t, s.Seed(ctx))
	again, err := s.ListTickets(ctx, source.TicketFilter{})
	require.NoError(t, err)
	assert.Len(t, again, len(tickets))

	employees, err := s.ListEmployees(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, employees)
}

func TestFileStoreDeletesCleanUpAcrossConnections(t *testing.T) {
	s := testutil.NewFileStore(t)
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx))

	tickets, err := s.ListTickets(ctx, source.TicketFilter{Search: "CI/CD"})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	tk := tickets[0]
	require.NotNil(t, tk.EmployeeID)
	assert.Equal(t, "David Kim", tk.EmployeeName)

	_, err = s.AddComment(ctx, store.Comment{TicketID: tk.ID, Content: "pipeline is red"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteEmployee(ctx, *tk.EmployeeID))
	after, err := s.GetTicket(ctx, tk.ID)
	require.NoError(t, err)
	assert.Nil(t, after.EmployeeID)

	require.NoError(t, s.DeleteTicket(ctx, tk.ID))
	comments, err := s.ListComments(ctx, tk.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}
