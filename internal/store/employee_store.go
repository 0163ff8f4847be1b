package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/ticketwatch/internal/model"
	"github.com/nhle/ticketwatch/internal/source"
)

// employeeRow carries the JSON-encoded specializations column.
type employeeRow struct {
	model.Employee
	RawSpecializations string `db:"specializations"`
}

func (r employeeRow) toModel() (model.Employee, error) {
	e := r.Employee
	e.Specializations = []string{}
	if r.RawSpecializations != "" {
		if err := json.Unmarshal([]byte(r.RawSpecializations), &e.Specializations); err != nil {
			return e, fmt.Errorf("decoding specializations for employee %s: %w", e.ID, err)
		}
	}
	return e, nil
}

const employeeColumns = `id, name, email, position, department, is_active, specializations, created_at`

// ListEmployees returns every employee ordered by name.
func (s *SQLiteStore) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	var rows []employeeRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT "+employeeColumns+" FROM employees ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("querying employees: %w", err)
	}

	employees := make([]model.Employee, 0, len(rows))
	for _, r := range rows {
		e, err := r.toModel()
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, nil
}

// GetEmployee retrieves a single employee by id.
func (s *SQLiteStore) GetEmployee(ctx context.Context, id string) (*model.Employee, error) {
	var r employeeRow
	err := s.db.GetContext(ctx, &r,
		"SELECT "+employeeColumns+" FROM employees WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting employee %s: %w", id, err)
	}
	e, err := r.toModel()
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEmployee inserts an active employee. Emails are unique.
func (s *SQLiteStore) CreateEmployee(ctx context.Context, in source.EmployeeInput) (*model.Employee, error) {
	if err := validateEmployee(in); err != nil {
		return nil, err
	}
	specs, err := encodeSpecializations(in.Specializations)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO employees (`+employeeColumns+`)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
		id, in.Name, in.Email, in.Position, in.Department, specs, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating employee %q: %w", in.Name, mapConstraint(err))
	}
	return s.GetEmployee(ctx, id)
}

// UpdateEmployee replaces an employee's editable fields.
func (s *SQLiteStore) UpdateEmployee(ctx context.Context, id string, in source.EmployeeInput) error {
	if err := validateEmployee(in); err != nil {
		return err
	}
	specs, err := encodeSpecializations(in.Specializations)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE employees
		SET name = ?, email = ?, position = ?, department = ?, specializations = ?
		WHERE id = ?`,
		in.Name, in.Email, in.Position, in.Department, specs, id,
	)
	if err != nil {
		return fmt.Errorf("updating employee %s: %w", id, mapConstraint(err))
	}
	return checkAffected(res, "employee", id)
}

// DeleteEmployee removes an employee and unassigns their tickets.
func (s *SQLiteStore) DeleteEmployee(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"UPDATE tickets SET assigned_to = NULL, updated_at = ? WHERE assigned_to = ?",
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("unassigning tickets of employee %s: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting employee %s: %w", id, err)
	}
	if err := checkAffected(res, "employee", id); err != nil {
		return err
	}
	return tx.Commit()
}

func validateEmployee(in source.EmployeeInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("employee name must not be empty: %w", ErrInvalid)
	}
	if !strings.Contains(in.Email, "@") {
		return fmt.Errorf("employee email %q: %w", in.Email, ErrInvalid)
	}
	return nil
}

func encodeSpecializations(specs []string) (string, error) {
	if specs == nil {
		specs = []string{}
	}
	b, err := json.Marshal(specs)
	if err != nil {
		return "", fmt.Errorf("encoding specializations: %w", err)
	}
	return string(b), nil
}
