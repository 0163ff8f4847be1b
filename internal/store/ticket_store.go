package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/ticketwatch/internal/model"
	"github.com/nhle/ticketwatch/internal/source"
)

// ListTickets returns tickets from the summary view, newest first.
func (s *SQLiteStore) ListTickets(ctx context.Context, f source.TicketFilter) ([]model.Ticket, error) {
	var conditions []string
	var args []any

	if f.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		conditions = append(conditions, "priority = ?")
		args = append(args, f.Priority)
	}
	if f.AssignedTo != "" {
		conditions = append(conditions, "employee_id = ?")
		args = append(args, f.AssignedTo)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		conditions = append(conditions,
			"(title LIKE ? OR description LIKE ? OR ticket_number LIKE ?)")
		like := "%" + q + "%"
		args = append(args, like, like, like)
	}

	query := "SELECT * FROM ticket_summary"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, ticket_number DESC"

	tickets := []model.Ticket{}
	if err := s.db.SelectContext(ctx, &tickets, query, args...); err != nil {
		return nil, fmt.Errorf("querying tickets: %w", err)
	}
	return tickets, nil
}

// GetTicket retrieves a single ticket from the summary view.
func (s *SQLiteStore) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	var t model.Ticket
	err := s.db.GetContext(ctx, &t, "SELECT * FROM ticket_summary WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ticket %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting ticket %s: %w", id, err)
	}
	return &t, nil
}

// CreateTicket inserts a ticket with the next TKT-nnnn number.
func (s *SQLiteStore) CreateTicket(ctx context.Context, in NewTicket) (*model.Ticket, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("ticket title must not be empty: %w", ErrInvalid)
	}
	if in.Status == "" {
		in.Status = model.StatusOpen
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if err := validateStatusPriority(&in.Status, &in.Priority); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.GetContext(ctx, &next,
		"SELECT COALESCE(MAX(CAST(SUBSTR(ticket_number, 5) AS INTEGER)), 0) + 1 FROM tickets")
	if err != nil {
		return nil, fmt.Errorf("allocating ticket number: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tickets (
			id, ticket_number, title, description, status, priority,
			category_id, assigned_to, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, fmt.Sprintf("TKT-%04d", next), in.Title, in.Description,
		in.Status, in.Priority, emptyToNil(in.CategoryID), emptyToNil(in.AssignedTo),
		now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticket: %w", mapConstraint(err))
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing ticket: %w", err)
	}

	return s.GetTicket(ctx, id)
}

// UpdateTicket applies the non-nil fields of u.
func (s *SQLiteStore) UpdateTicket(ctx context.Context, id string, u source.TicketUpdate) error {
	if err := validateStatusPriority(u.Status, u.Priority); err != nil {
		return err
	}

	var sets []string
	var args []any
	if u.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *u.Status)
	}
	if u.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *u.Priority)
	}
	if u.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, emptyToNil(u.CategoryID))
	}
	if len(sets) == 0 {
		return fmt.Errorf("no fields to update: %w", ErrInvalid)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE tickets SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating ticket %s: %w", id, err)
	}
	return checkAffected(res, "ticket", id)
}

// AssignTicket sets or, with a nil employeeID, clears the assignee.
func (s *SQLiteStore) AssignTicket(ctx context.Context, id string, employeeID *string) error {
	employeeID = emptyToNil(employeeID)
	if employeeID != nil {
		if _, err := s.GetEmployee(ctx, *employeeID); err != nil {
			return err
		}
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE tickets SET assigned_to = ?, updated_at = ? WHERE id = ?",
		employeeID, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("assigning ticket %s: %w", id, err)
	}
	return checkAffected(res, "ticket", id)
}

// DeleteTicket removes a ticket and its comments.
func (s *SQLiteStore) DeleteTicket(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM ticket_comments WHERE ticket_id = ?", id); err != nil {
		return fmt.Errorf("deleting comments of ticket %s: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM tickets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting ticket %s: %w", id, err)
	}
	if err := checkAffected(res, "ticket", id); err != nil {
		return err
	}
	return tx.Commit()
}

// AddComment appends a comment to an existing ticket.
func (s *SQLiteStore) AddComment(ctx context.Context, c Comment) (*Comment, error) {
	if strings.TrimSpace(c.Content) == "" {
		return nil, fmt.Errorf("comment must not be empty: %w", ErrInvalid)
	}
	if _, err := s.GetTicket(ctx, c.TicketID); err != nil {
		return nil, err
	}

	c.ID = uuid.New().String()
	c.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ticket_comments (id, ticket_id, author, content, is_internal, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.TicketID, c.Author, c.Content, boolToInt(c.IsInternal), c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("adding comment to ticket %s: %w", c.TicketID, err)
	}
	return &c, nil
}

// ListComments returns a ticket's comments, oldest first.
func (s *SQLiteStore) ListComments(ctx context.Context, ticketID string) ([]Comment, error) {
	comments := []Comment{}
	err := s.db.SelectContext(ctx, &comments,
		"SELECT * FROM ticket_comments WHERE ticket_id = ? ORDER BY created_at", ticketID)
	if err != nil {
		return nil, fmt.Errorf("querying comments for ticket %s: %w", ticketID, err)
	}
	return comments, nil
}

// ListCategories returns every category ordered by name.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	err := s.db.SelectContext(ctx, &categories,
		"SELECT id, name, description, color, icon FROM ticket_categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	return categories, nil
}

// CreateCategory inserts a category. Names are unique.
func (s *SQLiteStore) CreateCategory(ctx context.Context, in source.CategoryInput) (*model.Category, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("category name must not be empty: %w", ErrInvalid)
	}
	c := model.Category{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		Icon:        in.Icon,
	}
	if c.Color == "" {
		c.Color = "#3b82f6"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ticket_categories (id, name, description, color, icon)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.Color, c.Icon,
	)
	if err != nil {
		return nil, fmt.Errorf("creating category %q: %w", in.Name, mapConstraint(err))
	}
	return &c, nil
}

func validateStatusPriority(status, priority *string) error {
	if status != nil && !slices.Contains(model.Statuses, *status) {
		return fmt.Errorf("unknown status %q: %w", *status, ErrInvalid)
	}
	if priority != nil && !slices.Contains(model.Priorities, *priority) {
		return fmt.Errorf("unknown priority %q: %w", *priority, ErrInvalid)
	}
	return nil
}

// emptyToNil maps a pointer to "" to nil so it is stored as NULL.
func emptyToNil(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}
