// Package deskapi implements source.Desk over the ticket service's
// HTTP/JSON API.
package deskapi

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/ticketwatch/internal/model"
	"github.com/nhle/ticketwatch/internal/source"
)

// Service implements source.Desk.
type Service struct {
	client *Client
}

var _ source.Desk = (*Service)(nil)

// New creates a Service talking to baseURL.
func New(baseURL, token string, opts ...Option) *Service {
	return &Service{client: NewClient(baseURL, token, opts...)}
}

// FetchTickets retrieves every ticket matching f.
func (s *Service) FetchTickets(ctx context.Context, f source.TicketFilter) ([]model.Ticket, error) {
	path := "/tickets"
	if q := ticketQuery(f); q != "" {
		path += "?" + q
	}

	var resp TicketList
	if err := s.client.Get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("fetching tickets: %w", err)
	}
	if resp.Tickets == nil {
		return []model.Ticket{}, nil
	}
	return resp.Tickets, nil
}

func ticketQuery(f source.TicketFilter) string {
	params := url.Values{}
	if f.Status != "" {
		params.Set("status", f.Status)
	}
	if f.Priority != "" {
		params.Set("priority", f.Priority)
	}
	if f.AssignedTo != "" {
		params.Set("assigned_to", f.AssignedTo)
	}
	if f.Search != "" {
		params.Set("search", f.Search)
	}
	return params.Encode()
}

// FetchEmployees retrieves every employee.
func (s *Service) FetchEmployees(ctx context.Context) ([]model.Employee, error) {
	var resp EmployeeList
	if err := s.client.Get(ctx, "/employees", &resp); err != nil {
		return nil, fmt.Errorf("fetching employees: %w", err)
	}
	if resp.Employees == nil {
		return []model.Employee{}, nil
	}
	return resp.Employees, nil
}

// FetchCategories retrieves every ticket category.
func (s *Service) FetchCategories(ctx context.Context) ([]model.Category, error) {
	var resp CategoryList
	if err := s.client.Get(ctx, "/tickets/categories", &resp); err != nil {
		return nil, fmt.Errorf("fetching categories: %w", err)
	}
	return resp.Categories, nil
}

// AssignTicket assigns ticketID to employeeID. An empty employeeID
// unassigns the ticket.
func (s *Service) AssignTicket(ctx context.Context, ticketID, employeeID string) error {
	req := AssignRequest{}
	if employeeID != "" {
		req.AssignedTo = &employeeID
	}
	path := "/tickets/" + url.PathEscape(ticketID) + "/assign"
	if err := s.client.Post(ctx, path, req, nil); err != nil {
		return fmt.Errorf("assigning ticket %s: %w", ticketID, err)
	}
	return nil
}

// UpdateTicket applies u to ticketID.
func (s *Service) UpdateTicket(ctx context.Context, ticketID string, u source.TicketUpdate) error {
	if err := s.client.Put(ctx, "/tickets/"+url.PathEscape(ticketID), u, nil); err != nil {
		return fmt.Errorf("updating ticket %s: %w", ticketID, err)
	}
	return nil
}

// DeleteTicket removes ticketID.
func (s *Service) DeleteTicket(ctx context.Context, ticketID string) error {
	if err := s.client.Delete(ctx, "/tickets/"+url.PathEscape(ticketID)); err != nil {
		return fmt.Errorf("deleting ticket %s: %w", ticketID, err)
	}
	return nil
}

// AddComment appends a public comment to ticketID.
func (s *Service) AddComment(ctx context.Context, ticketID, author, body string) error {
	req := CommentRequest{Content: body, Author: author}
	path := "/tickets/" + url.PathEscape(ticketID) + "/comments"
	if err := s.client.Post(ctx, path, req, nil); err != nil {
		return fmt.Errorf("commenting on ticket %s: %w", ticketID, err)
	}
	return nil
}

// CreateCategory creates a ticket category.
func (s *Service) CreateCategory(ctx context.Context, in source.CategoryInput) (*model.Category, error) {
	var created model.Category
	if err := s.client.Post(ctx, "/tickets/categories", in, &created); err != nil {
		return nil, fmt.Errorf("creating category %q: %w", in.Name, err)
	}
	return &created, nil
}

// CreateEmployee creates an employee.
func (s *Service) CreateEmployee(ctx context.Context, in source.EmployeeInput) (*model.Employee, error) {
	var created model.Employee
	if err := s.client.Post(ctx, "/employees", in, &created); err != nil {
		return nil, fmt.Errorf("creating employee %q: %w", in.Name, err)
	}
	return &created, nil
}

// UpdateEmployee replaces the editable fields of employeeID.
func (s *Service) UpdateEmployee(ctx context.Context, employeeID string, in source.EmployeeInput) error {
	if err := s.client.Put(ctx, "/employees/"+url.PathEscape(employeeID), in, nil); err != nil {
		return fmt.Errorf("updating employee %s: %w", employeeID, err)
	}
	return nil
}

// DeleteEmployee removes employeeID.
func (s *Service) DeleteEmployee(ctx context.Context, employeeID string) error {
	if err := s.client.Delete(ctx, "/employees/"+url.PathEscape(employeeID)); err != nil {
		return fmt.Errorf("deleting employee %s: %w", employeeID, err)
	}
	return nil
}
