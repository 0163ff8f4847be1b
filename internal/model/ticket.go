package model

import (
	"time"

	"github.com/nhle/ticketwatch/internal/snapshot"
)

// Ticket workflow statuses as used by the data service.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

// Ticket priorities as used by the data service.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Statuses lists the valid ticket statuses in workflow order.
var Statuses = []string{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

// Priorities lists the valid ticket priorities, lowest first.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// TicketFields is the ordered list of ticket attributes the differ
// watches. An assignee cleared back to nobody is not reported.
var TicketFields = []snapshot.WatchedField{
	{Name: snapshot.FieldStatus},
	{Name: snapshot.FieldAssignee, IgnoreCleared: true},
}

// EmployeeFields is empty: employees are tracked by existence only.
var EmployeeFields []snapshot.WatchedField

// Ticket is one row of the data service's ticket summary.
type Ticket struct {
	// ID is the service's stable identifier.
	ID string `json:"id" db:"id"`

	// TicketNumber is the human-facing key (e.g. TKT-0042).
	TicketNumber string `json:"ticket_number" db:"ticket_number"`

	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`

	// Status is one of the Status* constants.
	Status string `json:"status" db:"status"`

	// Priority is one of the Priority* constants.
	Priority string `json:"priority" db:"priority"`

	// CategoryID is nil for tickets that still need triage.
	CategoryID   *string `json:"category_id" db:"category_id"`
	CategoryName string  `json:"category_name" db:"category_name"`

	// EmployeeID is the assignee, nil when unassigned.
	EmployeeID   *string `json:"employee_id" db:"employee_id"`
	EmployeeName string  `json:"employee_name" db:"employee_name"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EntityID implements snapshot.Entity.
func (t Ticket) EntityID() string { return t.ID }

// FieldValue implements snapshot.Entity.
func (t Ticket) FieldValue(f snapshot.Field) (string, bool) {
	switch f {
	case snapshot.FieldStatus:
		return t.Status, true
	case snapshot.FieldAssignee:
		if t.EmployeeID == nil || *t.EmployeeID == "" {
			return "", false
		}
		return *t.EmployeeID, true
	default:
		return "", false
	}
}

// Uncategorized reports whether the ticket still needs a category.
func (t Ticket) Uncategorized() bool {
	return t.CategoryID == nil || *t.CategoryID == ""
}

// Employee is a member of the team tickets can be assigned to.
type Employee struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Email           string    `json:"email" db:"email"`
	Position        string    `json:"position" db:"position"`
	Department      string    `json:"department" db:"department"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	Specializations []string  `json:"specializations" db:"-"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// EntityID implements snapshot.Entity.
func (e Employee) EntityID() string { return e.ID }

// FieldValue implements snapshot.Entity. Employees expose no watched
// fields.
func (e Employee) FieldValue(snapshot.Field) (string, bool) { return "", false }

// Category groups tickets by kind of work.
type Category struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Color       string `json:"color" db:"color"`
	Icon        string `json:"icon" db:"icon"`
}

// TicketEntities converts tickets for snapshotting.
func TicketEntities(tickets []Ticket) []snapshot.Entity {
	out := make([]snapshot.Entity, len(tickets))
	for i, t := range tickets {
		out[i] = t
	}
	return out
}

// EmployeeEntities converts employees for snapshotting.
func EmployeeEntities(employees []Employee) []snapshot.Entity {
	out := make([]snapshot.Entity, len(employees))
	for i, e := range employees {
		out[i] = e
	}
	return out
}
