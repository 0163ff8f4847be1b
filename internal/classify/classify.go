// Package classify maps lifecycle events to notification records.
//
// Classification is pure apart from diagnostics: an event with no rule is
// never fatal, it yields a generic record and a warning log.
package classify

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nhle/ticketwatch/internal/model"
	"github.com/nhle/ticketwatch/internal/snapshot"
)

// ErrClassificationGap marks an event the classifier has no rule for.
var ErrClassificationGap = errors.New("no classification rule for event")

// Classifier turns differ output into notifications.
type Classifier struct {
	logger *slog.Logger
}

// New returns a Classifier that reports gaps to logger. A nil logger
// discards them.
func New(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Classifier{logger: logger}
}

// Classify returns the notification for ev.
func (c *Classifier) Classify(ev snapshot.Event) model.Notification {
	switch e := ev.Entity.(type) {
	case model.Ticket:
		if n, ok := c.ticket(ev, e); ok {
			return n
		}
	case model.Employee:
		if n, ok := c.employee(ev, e); ok {
			return n
		}
	}
	return c.gap(ev)
}

// ClassifyAll classifies events preserving their order.
func (c *Classifier) ClassifyAll(events []snapshot.Event) []model.Notification {
	out := make([]model.Notification, 0, len(events))
	for _, ev := range events {
		out = append(out, c.Classify(ev))
	}
	return out
}

func (c *Classifier) ticket(ev snapshot.Event, t model.Ticket) (model.Notification, bool) {
	switch ev.Type {
	case snapshot.EventCreated:
		n := NewTicket(t.TicketNumber, t.Title, t.Uncategorized())
		n.EntityID = t.ID
		return n, true

	case snapshot.EventDeleted:
		n := Success("Ticket Deleted", fmt.Sprintf("%s: %s has been deleted", t.TicketNumber, t.Title))
		n.EntityID = t.ID
		return n, true

	case snapshot.EventFieldChanged:
		switch ev.Field {
		case snapshot.FieldStatus:
			n := TicketUpdate(t.TicketNumber+" Updated",
				fmt.Sprintf("Status changed from %s to %s", ev.Old, ev.New))
			n.EntityID = t.ID
			return n, true
		case snapshot.FieldAssignee:
			name := t.EmployeeName
			if name == "" {
				name = "an employee"
			}
			n := Assignment(t.TicketNumber, name)
			n.EntityID = t.ID
			return n, true
		}
	}
	return model.Notification{}, false
}

func (c *Classifier) employee(ev snapshot.Event, e model.Employee) (model.Notification, bool) {
	var n model.Notification
	switch ev.Type {
	case snapshot.EventCreated:
		n = Success("New Employee Added", e.Name+" has joined the team")
	case snapshot.EventDeleted:
		n = Success("Employee Removed", e.Name+" has been removed from the team")
	default:
		return n, false
	}
	n.EntityID = e.ID
	return n, true
}

func (c *Classifier) gap(ev snapshot.Event) model.Notification {
	var id string
	if ev.Entity != nil {
		id = ev.Entity.EntityID()
	}
	c.logger.Warn("classification gap",
		"error", ErrClassificationGap,
		"event", ev.Type.String(),
		"field", string(ev.Field),
		"entity_type", fmt.Sprintf("%T", ev.Entity),
		"entity_id", id,
	)

	msg := fmt.Sprintf("%s changed", describe(ev))
	return model.Notification{
		Type:     model.NotificationGeneric,
		Title:    "Update",
		Message:  msg,
		EntityID: id,
	}
}

func describe(ev snapshot.Event) string {
	var parts []string
	if ev.Entity != nil {
		parts = append(parts, ev.Entity.EntityID())
	}
	if ev.Field != "" {
		parts = append(parts, string(ev.Field))
	}
	if len(parts) == 0 {
		return "Record"
	}
	return strings.Join(parts, " ")
}
