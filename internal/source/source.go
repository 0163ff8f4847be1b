package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/ticketwatch/internal/model"
)

// AuthError indicates that authentication has failed or expired against
// the data service. It is returned by clients when a 401 response is
// received.
type AuthError struct {
	Service string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Service, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// APIError is a non-2xx response other than 401.
type APIError struct {
	StatusCode int

	// Detail is the service's error message, when it sent one.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("data service returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("data service returned %d", e.StatusCode)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// TicketFilter narrows a ticket fetch. Zero-valued fields are not applied.
type TicketFilter struct {
	Status     string
	Priority   string
	AssignedTo string
	Search     string
}

// IsZero reports whether no filter is set.
func (f TicketFilter) IsZero() bool {
	return f == TicketFilter{}
}

// DataService is the read side of the ticket service: every call returns
// the complete current collection, never a delta.
type DataService interface {
	// FetchTickets returns every ticket matching f.
	FetchTickets(ctx context.Context, f TicketFilter) ([]model.Ticket, error)

	// FetchEmployees returns every employee.
	FetchEmployees(ctx context.Context) ([]model.Employee, error)
}

// TicketUpdate carries the fields of a ticket edit. Nil fields are left
// unchanged.
type TicketUpdate struct {
	Status     *string `json:"status,omitempty"`
	Priority   *string `json:"priority,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`
}

// EmployeeInput is the payload for creating or updating an employee.
type EmployeeInput struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Position        string   `json:"position"`
	Department      string   `json:"department,omitempty"`
	Specializations []string `json:"specializations"`
}

// CategoryInput is the payload for creating a category.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// Desk is the full data service used by user-initiated actions.
type Desk interface {
	DataService

	// FetchCategories returns every ticket category.
	FetchCategories(ctx context.Context) ([]model.Category, error)

	// AssignTicket assigns ticketID to employeeID.
	AssignTicket(ctx context.Context, ticketID, employeeID string) error

	// UpdateTicket applies u to ticketID.
	UpdateTicket(ctx context.Context, ticketID string, u TicketUpdate) error

	// DeleteTicket removes ticketID.
	DeleteTicket(ctx context.Context, ticketID string) error

	// AddComment appends a comment to ticketID.
	AddComment(ctx context.Context, ticketID, author, body string) error

	// CreateCategory creates a category and returns it.
	CreateCategory(ctx context.Context, in CategoryInput) (*model.Category, error)

	// CreateEmployee creates an employee and returns it.
	CreateEmployee(ctx context.Context, in EmployeeInput) (*model.Employee, error)

	// UpdateEmployee replaces the editable fields of employeeID.
	UpdateEmployee(ctx context.Context, employeeID string, in EmployeeInput) error

	// DeleteEmployee removes employeeID.
	DeleteEmployee(ctx context.Context, employeeID string) error
}
