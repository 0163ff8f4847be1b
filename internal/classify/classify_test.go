package classify

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/ticketwatch/internal/model"
	"github.com/nhle/ticketwatch/internal/snapshot"
)

func strPtr(s string) *string { return &s }

func ticket(id, number, status string) model.Ticket {
	return model.Ticket{
		ID:           id,
		TicketNumber: number,
		Title:        "Printer on fire",
		Status:       status,
		CategoryID:   strPtr("hardware"),
	}
}

func snap(tickets ...model.Ticket) *snapshot.Snapshot {
	return snapshot.New(model.TicketEntities(tickets), time.Unix(0, 0))
}

func TestClassify_StatusChangeScenario(t *testing.T) {
	prev := snap(ticket("T1", "TKT-0001", model.StatusOpen))
	curr := snap(ticket("T1", "TKT-0001", model.StatusResolved))

	events := snapshot.Diff(prev, curr, model.TicketFields)
	require.Len(t, events, 1)

	got := New(nil).ClassifyAll(events)
	require.Len(t, got, 1)
	assert.Equal(t, model.NotificationTicketUpdated, got[0].Type)
	assert.Equal(t, "TKT-0001 Updated", got[0].Title)
	assert.Equal(t, "Status changed from open to resolved", got[0].Message)
	assert.Equal(t, "T1", got[0].EntityID)
	assert.False(t, got[0].Pinned)
}

func TestClassify_DeletedScenario(t *testing.T) {
	t2 := ticket("T2", "TKT-0002", model.StatusOpen)
	t2.Title = "VPN down"
	prev := snap(ticket("T1", "TKT-0001", model.StatusOpen), t2)
	curr := snap(ticket("T1", "TKT-0001", model.StatusOpen))

	got := New(nil).ClassifyAll(snapshot.Diff(prev, curr, model.TicketFields))
	require.Len(t, got, 1)
	assert.Equal(t, model.NotificationSuccess, got[0].Type)
	assert.Equal(t, "Ticket Deleted", got[0].Title)
	assert.Equal(t, "TKT-0002: VPN down has been deleted", got[0].Message)
	assert.False(t, got[0].Pinned)
}

func TestClassify_UncategorizedTicketIsPinned(t *testing.T) {
	fresh := ticket("T9", "TKT-0009", model.StatusOpen)
	fresh.CategoryID = nil

	got := New(nil).Classify(snapshot.Event{Type: snapshot.EventCreated, Entity: fresh})
	assert.Equal(t, model.NotificationTicketCreated, got.Type)
	assert.Equal(t, "New Ticket: TKT-0009", got.Title)
	assert.Equal(t, "Printer on fire - Requires admin review", got.Message)
	assert.True(t, got.Pinned)
}

func TestClassify_CategorizedTicketIsNotPinned(t *testing.T) {
	got := New(nil).Classify(snapshot.Event{
		Type:   snapshot.EventCreated,
		Entity: ticket("T9", "TKT-0009", model.StatusOpen),
	})
	assert.Equal(t, "Printer on fire", got.Message)
	assert.False(t, got.Pinned)
}

func TestClassify_Assignment(t *testing.T) {
	tests := []struct {
		name     string
		employee string
		want     string
	}{
		{name: "named", employee: "Ada Lovelace", want: "TKT-0003 assigned to Ada Lovelace"},
		{name: "unknown name", employee: "", want: "TKT-0003 assigned to an employee"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := ticket("T3", "TKT-0003", model.StatusOpen)
			tk.EmployeeID = strPtr("E1")
			tk.EmployeeName = tt.employee

			got := New(nil).Classify(snapshot.Event{
				Type:   snapshot.EventFieldChanged,
				Entity: tk,
				Field:  snapshot.FieldAssignee,
				New:    "E1",
			})
			assert.Equal(t, model.NotificationAssignment, got.Type)
			assert.Equal(t, "Ticket Assigned", got.Title)
			assert.Equal(t, tt.want, got.Message)
		})
	}
}

func TestClassify_StatusAndAssigneeYieldTwoRecords(t *testing.T) {
	before := ticket("T1", "TKT-0001", model.StatusOpen)
	after := ticket("T1", "TKT-0001", model.StatusInProgress)
	after.EmployeeID = strPtr("E2")
	after.EmployeeName = "Grace"

	got := New(nil).ClassifyAll(snapshot.Diff(snap(before), snap(after), model.TicketFields))
	require.Len(t, got, 2)
	assert.Equal(t, model.NotificationTicketUpdated, got[0].Type)
	assert.Equal(t, model.NotificationAssignment, got[1].Type)
}

func TestClassify_Employees(t *testing.T) {
	e := model.Employee{ID: "E1", Name: "Linus"}
	c := New(nil)

	created := c.Classify(snapshot.Event{Type: snapshot.EventCreated, Entity: e})
	assert.Equal(t, model.NotificationSuccess, created.Type)
	assert.Equal(t, "New Employee Added", created.Title)
	assert.Equal(t, "Linus has joined the team", created.Message)
	assert.False(t, created.Pinned)

	removed := c.Classify(snapshot.Event{Type: snapshot.EventDeleted, Entity: e})
	assert.Equal(t, "Employee Removed", removed.Title)
	assert.Equal(t, "Linus has been removed from the team", removed.Message)
}

type widget struct{ id string }

func (w widget) EntityID() string                          { return w.id }
func (w widget) FieldValue(snapshot.Field) (string, bool) { return "", false }

func TestClassify_GapFallsBackToGeneric(t *testing.T) {
	var buf bytes.Buffer
	c := New(slog.New(slog.NewTextHandler(&buf, nil)))

	tests := []struct {
		name string
		ev   snapshot.Event
	}{
		{name: "unknown entity", ev: snapshot.Event{Type: snapshot.EventCreated, Entity: widget{id: "W1"}}},
		{name: "unknown field", ev: snapshot.Event{
			Type: snapshot.EventFieldChanged, Entity: ticket("T1", "TKT-0001", "open"), Field: "priority",
		}},
		{name: "unknown event type", ev: snapshot.Event{Type: snapshot.EventType(42), Entity: model.Employee{ID: "E1"}}},
		{name: "nil entity", ev: snapshot.Event{Type: snapshot.EventCreated}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			var got model.Notification
			require.NotPanics(t, func() { got = c.Classify(tt.ev) })
			assert.Equal(t, model.NotificationGeneric, got.Type)
			assert.False(t, got.Pinned)
			assert.Contains(t, buf.String(), "classification gap")
			assert.Contains(t, buf.String(), ErrClassificationGap.Error())
		})
	}
}

func TestDirectConstructors(t *testing.T) {
	assert.Equal(t, model.NotificationError, Failure("Assignment Failed", "Failed to assign ticket").Type)

	u := EmployeeUpdate("TKT-0004", "Ada", "resolved")
	assert.Equal(t, "TKT-0004 Updated", u.Title)
	assert.Equal(t, "Ada changed status to resolved", u.Message)

	cm := Comment("TKT-0004", "Ada")
	assert.Equal(t, model.NotificationComment, cm.Type)
	assert.Equal(t, "Ada commented on TKT-0004", cm.Message)

	for _, n := range []model.Notification{
		Success("a", "b"), Failure("a", "b"), TicketUpdate("a", "b"),
		EmployeeUpdate("a", "b", "c"), Assignment("a", "b"), Comment("a", "b"),
	} {
		assert.False(t, n.Pinned)
	}
}
