package classify

import (
	"fmt"

	"github.com/nhle/ticketwatch/internal/model"
)

// The constructors below are used directly by user-initiated actions and
// by the classifier's own rules. Only NewTicket can produce a pinned
// record.

// Success returns an informational notification.
func Success(title, message string) model.Notification {
	return model.Notification{Type: model.NotificationSuccess, Title: title, Message: message}
}

// Failure returns an error notification for a failed user action.
func Failure(title, message string) model.Notification {
	return model.Notification{Type: model.NotificationError, Title: title, Message: message}
}

// TicketUpdate returns a ticket-updated notification.
func TicketUpdate(title, message string) model.Notification {
	return model.Notification{Type: model.NotificationTicketUpdated, Title: title, Message: message}
}

// NewTicket announces a ticket. Tickets that still need review are
// pinned so they stay in the tray until dismissed.
func NewTicket(ticketNumber, title string, requiresReview bool) model.Notification {
	msg := title
	if requiresReview {
		msg = title + " - Requires admin review"
	}
	return model.Notification{
		Type:    model.NotificationTicketCreated,
		Title:   "New Ticket: " + ticketNumber,
		Message: msg,
		Pinned:  requiresReview,
	}
}

// EmployeeUpdate reports that an employee moved a ticket to status.
func EmployeeUpdate(ticketNumber, employeeName, status string) model.Notification {
	return TicketUpdate(ticketNumber+" Updated",
		fmt.Sprintf("%s changed status to %s", employeeName, status))
}

// Assignment reports that a ticket was assigned to an employee.
func Assignment(ticketNumber, employeeName string) model.Notification {
	return model.Notification{
		Type:    model.NotificationAssignment,
		Title:   "Ticket Assigned",
		Message: fmt.Sprintf("%s assigned to %s", ticketNumber, employeeName),
	}
}

// Comment reports a new comment on a ticket.
func Comment(ticketNumber, commenter string) model.Notification {
	return model.Notification{
		Type:    model.NotificationComment,
		Title:   "New Comment",
		Message: fmt.Sprintf("%s commented on %s", commenter, ticketNumber),
	}
}
