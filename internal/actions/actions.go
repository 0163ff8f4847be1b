// Package actions performs user-initiated mutations against the data
// service and reports their outcome in the notification tray.
//
// Action notifications describe the intended outcome and are appended
// as soon as the call returns. They are not correlated with poll
// results: when the next poll observes the same change, the tray shows
// a second notification for it. Delivery is at-least-once.
package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/nhle/ticketwatch/internal/classify"
	"github.com/nhle/ticketwatch/internal/crossref"
	"github.com/nhle/ticketwatch/internal/model"
	"github.com/nhle/ticketwatch/internal/notify"
	"github.com/nhle/ticketwatch/internal/source"
)

// ErrNotFound is returned when a ticket or employee reference matches
// nothing.
var ErrNotFound = errors.New("not found")

// ActionError is a failed user-initiated action. The tray has already
// received an error notification for it.
type ActionError struct {
	Action string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// Refresher is implemented by poll schedulers.
type Refresher interface {
	Refresh()
}

// Options configures a Desk.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration

	// Tickets and Employees are refreshed after a successful action
	// touching their collection. Either may be nil.
	Tickets   Refresher
	Employees Refresher
}

// Desk runs actions and reports them to the store.
type Desk struct {
	svc       source.Desk
	store     *notify.Store
	logger    *slog.Logger
	timeout   time.Duration
	tickets   Refresher
	employees Refresher
}

// New creates a Desk.
func New(svc source.Desk, store *notify.Store, opts Options) *Desk {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Desk{
		svc:       svc,
		store:     store,
		logger:    opts.Logger,
		timeout:   opts.Timeout,
		tickets:   opts.Tickets,
		employees: opts.Employees,
	}
}

// AssignTicket assigns a ticket to an employee. Both are referenced by
// id; tickets also by number and employees by name.
func (d *Desk) AssignTicket(ctx context.Context, ticketRef, employeeRef string) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	fail := classify.Failure("Assignment Failed", "Failed to assign ticket")
	t, err := d.resolveTicket(ctx, ticketRef)
	if err != nil {
		return d.failed("assign ticket", fail, err)
	}
	e, err := d.resolveEmployee(ctx, employeeRef)
	if err != nil {
		return d.failed("assign ticket", fail, err)
	}
	if err := d.svc.AssignTicket(ctx, t.ID, e.ID); err != nil {
		return d.failed("assign ticket", fail, err)
	}

	n := classify.Assignment(t.TicketNumber, e.Name)
	n.EntityID = t.ID
	d.succeeded("assign ticket", n, d.tickets)
	return nil
}

// ChangeStatus moves a ticket to status.
func (d *Desk) ChangeStatus(ctx context.Context, ticketRef, status string) error {
	fail := classify.Failure("Update Failed", "Failed to update ticket status")
	if !slices.Contains(model.Statuses, status) {
		return d.failed("change status", fail, fmt.Errorf("unknown status %q", status))
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	t, err := d.resolveTicket(ctx, ticketRef)
	if err != nil {
		return d.failed("change status", fail, err)
	}
	if err := d.svc.UpdateTicket(ctx, t.ID, source.TicketUpdate{Status: &status}); err != nil {
		return d.failed("change status", fail, err)
	}

	n := classify.TicketUpdate(t.TicketNumber+" Updated",
		"Status changed to "+strings.ReplaceAll(status, "_", " "))
	n.EntityID = t.ID
	d.succeeded("change status", n, d.tickets)
	return nil
}

// ChangePriority sets a ticket's priority.
func (d *Desk) ChangePriority(ctx context.Context, ticketRef, priority string) error {
	fail := classify.Failure("Update Failed", "Failed to update ticket priority")
	if !slices.Contains(model.Priorities, priority) {
		return d.failed("change priority", fail, fmt.Errorf("unknown priority %q", priority))
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	t, err := d.resolveTicket(ctx, ticketRef)
	if err != nil {
		return d.failed("change priority", fail, err)
	}
	if err := d.svc.UpdateTicket(ctx, t.ID, source.TicketUpdate{Priority: &priority}); err != nil {
		return d.failed("change priority", fail, err)
	}

	n := classify.TicketUpdate(t.TicketNumber+" Updated", "Priority changed to "+priority)
	n.EntityID = t.ID
	d.succeeded("change priority", n, d.tickets)
	return nil
}

// CreateCategory adds a ticket category.
func (d *Desk) CreateCategory(ctx context.Context, in source.CategoryInput) error {
	fail := classify.Failure("Creation Failed", "Failed to create category. Please try again.")
	if strings.TrimSpace(in.Name) == "" {
		return d.failed("create category", fail, errors.New("category name is required"))
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if _, err := d.svc.CreateCategory(ctx, in); err != nil {
		return d.failed("create category", fail, err)
	}
	d.succeeded("create category", classify.Success("Category Created", in.Name+" has been added"), d.tickets)
	return nil
}

// CreateEmployee adds an employee.
func (d *Desk) CreateEmployee(ctx context.Context, in source.EmployeeInput) error {
	fail := classify.Failure("Save Failed", "Failed to save employee. Please try again.")
	if strings.TrimSpace(in.Name) == "" {
		return d.failed("create employee", fail, errors.New("employee name is required"))
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	created, err := d.svc.CreateEmployee(ctx, in)
	if err != nil {
		return d.failed("create employee", fail, err)
	}
	n := classify.Success("Employee Created", in.Name+" has been added to the team")
	n.EntityID = created.ID
	d.succeeded("create employee", n, d.employees)
	return nil
}

// UpdateEmployee edits an employee.
func (d *Desk) UpdateEmployee(ctx context.Context, employeeRef string, in source.EmployeeInput) error {
	fail := classify.Failure("Save Failed", "Failed to save employee. Please try again.")

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	e, err := d.resolveEmployee(ctx, employeeRef)
	if err != nil {
		return d.failed("update employee", fail, err)
	}
	if err := d.svc.UpdateEmployee(ctx, e.ID, in); err != nil {
		return d.failed("update employee", fail, err)
	}
	n := classify.Success("Employee Updated", in.Name+" has been updated successfully")
	n.EntityID = e.ID
	d.succeeded("update employee", n, d.employees)
	return nil
}

// DeleteEmployee removes an employee.
func (d *Desk) DeleteEmployee(ctx context.Context, employeeRef string) error {
	fail := classify.Failure("Delete Failed", "Failed to delete employee. Please try again.")

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	e, err := d.resolveEmployee(ctx, employeeRef)
	if err != nil {
		return d.failed("delete employee", fail, err)
	}
	if err := d.svc.DeleteEmployee(ctx, e.ID); err != nil {
		return d.failed("delete employee", fail, err)
	}
	n := classify.Success("Employee Deleted", e.Name+" has been removed")
	n.EntityID = e.ID
	// Unassigned tickets change too.
	d.succeeded("delete employee", n, d.employees, d.tickets)
	return nil
}

// DeleteTicket removes a ticket.
func (d *Desk) DeleteTicket(ctx context.Context, ticketRef string) error {
	fail := classify.Failure("Delete Failed", "Failed to delete ticket. Please try again.")

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	t, err := d.resolveTicket(ctx, ticketRef)
	if err != nil {
		return d.failed("delete ticket", fail, err)
	}
	if err := d.svc.DeleteTicket(ctx, t.ID); err != nil {
		return d.failed("delete ticket", fail, err)
	}
	n := classify.Success("Ticket Deleted", fmt.Sprintf("%s: %s has been deleted", t.TicketNumber, t.Title))
	n.EntityID = t.ID
	d.succeeded("delete ticket", n, d.tickets)
	return nil
}

// AddComment posts a comment on a ticket as author.
func (d *Desk) AddComment(ctx context.Context, ticketRef, author, body string) error {
	fail := classify.Failure("Comment Failed", "Failed to add comment")
	if strings.TrimSpace(body) == "" {
		return d.failed("add comment", fail, errors.New("comment is empty"))
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	t, err := d.resolveTicket(ctx, ticketRef)
	if err != nil {
		return d.failed("add comment", fail, err)
	}
	if err := d.svc.AddComment(ctx, t.ID, author, body); err != nil {
		return d.failed("add comment", fail, err)
	}
	n := classify.Comment(t.TicketNumber, author)
	n.EntityID = t.ID
	d.succeeded("add comment", n)
	return nil
}

func (d *Desk) succeeded(action string, n model.Notification, refresh ...Refresher) {
	d.logger.Info("action succeeded", "action", action, "entity_id", n.EntityID)
	d.store.Append(n)
	for _, r := range refresh {
		if r != nil {
			r.Refresh()
		}
	}
}

func (d *Desk) failed(action string, n model.Notification, err error) error {
	d.logger.Warn("action failed", "action", action, "error", err)
	d.store.Append(n)
	return &ActionError{Action: action, Err: err}
}

// resolveTicket finds a ticket by id or ticket number, including
// shorthand such as "#6".
func (d *Desk) resolveTicket(ctx context.Context, ref string) (model.Ticket, error) {
	tickets, err := d.svc.FetchTickets(ctx, source.TicketFilter{})
	if err != nil {
		return model.Ticket{}, err
	}
	number, isNumber := crossref.Normalize(ref)
	for _, t := range tickets {
		if t.ID == ref || (isNumber && strings.EqualFold(t.TicketNumber, number)) {
			return t, nil
		}
	}
	return model.Ticket{}, fmt.Errorf("ticket %q: %w", ref, ErrNotFound)
}

// resolveEmployee finds an employee by id or, case-insensitively, name.
func (d *Desk) resolveEmployee(ctx context.Context, ref string) (model.Employee, error) {
	employees, err := d.svc.FetchEmployees(ctx)
	if err != nil {
		return model.Employee{}, err
	}
	for _, e := range employees {
		if e.ID == ref {
			return e, nil
		}
	}
	for _, e := range employees {
		if strings.EqualFold(e.Name, ref) {
			return e, nil
		}
	}
	return model.Employee{}, fmt.Errorf("employee %q: %w", ref, ErrNotFound)
}
