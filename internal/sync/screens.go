package sync

import (
	"context"

	"github.com/nhle/ticketwatch/internal/model"
	"github.com/nhle/ticketwatch/internal/snapshot"
	"github.com/nhle/ticketwatch/internal/source"
)

// Screen names.
const (
	ScreenTickets   = "tickets"
	ScreenEmployees = "employees"
)

// NewTicketScheduler watches the ticket collection. Ticket status and
// assignee changes are reported.
func NewTicketScheduler(svc source.DataService, opts Options) *Scheduler {
	opts.Screen = ScreenTickets
	opts.Fields = model.TicketFields
	opts.Fetch = func(ctx context.Context, f source.TicketFilter) ([]snapshot.Entity, error) {
		tickets, err := svc.FetchTickets(ctx, f)
		if err != nil {
			return nil, err
		}
		return model.TicketEntities(tickets), nil
	}
	return New(opts)
}

// NewEmployeeScheduler watches the employee collection. Employees are
// tracked by existence only and the filter is ignored.
func NewEmployeeScheduler(svc source.DataService, opts Options) *Scheduler {
	opts.Screen = ScreenEmployees
	opts.Fields = model.EmployeeFields
	opts.Fetch = func(ctx context.Context, _ source.TicketFilter) ([]snapshot.Entity, error) {
		employees, err := svc.FetchEmployees(ctx)
		if err != nil {
			return nil, err
		}
		return model.EmployeeEntities(employees), nil
	}
	return New(opts)
}
