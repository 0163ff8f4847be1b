package deskapi

import "github.com/nhle/ticketwatch/internal/model"

// TicketList is the response from GET /tickets.
type TicketList struct {
	Tickets []model.Ticket `json:"tickets"`
	Count   int            `json:"count"`
}

// EmployeeList is the response from GET /employees.
type EmployeeList struct {
	Employees []model.Employee `json:"employees"`
	Count     int              `json:"count"`
}

// CategoryList is the response from GET /tickets/categories.
type CategoryList struct {
	Categories []model.Category `json:"categories"`
}

// AssignRequest is the body of POST /tickets/{id}/assign. A nil
// AssignedTo unassigns the ticket.
type AssignRequest struct {
	AssignedTo *string `json:"assigned_to"`
}

// CommentRequest is the body of POST /tickets/{id}/comments.
type CommentRequest struct {
	Content    string `json:"content"`
	IsInternal bool   `json:"is_internal"`
	Author     string `json:"author,omitempty"`
}

// MessageResponse is returned by endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// errorResponse is the body of a non-2xx response.
type errorResponse struct {
	Detail string `json:"detail"`
}
