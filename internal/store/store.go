// Package store persists the fixture data service's tickets, employees
// and categories in SQLite.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/ticketwatch/internal/model"
	"github.com/nhle/ticketwatch/internal/source"
)

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique constraint would be violated.
var ErrConflict = errors.New("already exists")

// ErrInvalid is returned for input the store refuses to write.
var ErrInvalid = errors.New("invalid input")

// NewTicket is the input for CreateTicket. Empty Status and Priority
// default to open and medium.
type NewTicket struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CategoryID  *string `json:"category_id"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	AssignedTo  *string `json:"assigned_to"`
}

// Comment is a note on a ticket.
type Comment struct {
	ID         string    `json:"id" db:"id"`
	TicketID   string    `json:"ticket_id" db:"ticket_id"`
	Author     string    `json:"author" db:"author"`
	Content    string    `json:"content" db:"content"`
	IsInternal bool      `json:"is_internal" db:"is_internal"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Store defines the persistence interface behind the fixture service.
type Store interface {
	// === Tickets ===

	ListTickets(ctx context.Context, f source.TicketFilter) ([]model.Ticket, error)
	GetTicket(ctx context.Context, id string) (*model.Ticket, error)
	CreateTicket(ctx context.Context, in NewTicket) (*model.Ticket, error)
	UpdateTicket(ctx context.Context, id string, u source.TicketUpdate) error
	AssignTicket(ctx context.Context, id string, employeeID *string) error
	DeleteTicket(ctx context.Context, id string) error

	// === Comments ===

	AddComment(ctx context.Context, c Comment) (*Comment, error)
	ListComments(ctx context.Context, ticketID string) ([]Comment, error)

	// === Categories ===

	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, in source.CategoryInput) (*model.Category, error)

	// === Employees ===

	ListEmployees(ctx context.Context) ([]model.Employee, error)
	GetEmployee(ctx context.Context, id string) (*model.Employee, error)
	CreateEmployee(ctx context.Context, in source.EmployeeInput) (*model.Employee, error)
	UpdateEmployee(ctx context.Context, id string, in source.EmployeeInput) error
	DeleteEmployee(ctx context.Context, id string) error

	Close() error
}
