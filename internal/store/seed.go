package store

import (
	"context"
	"fmt"

	"github.com/nhle/ticketwatch/internal/model"
	"github.com/nhle/ticketwatch/internal/source"
)

var seedCategories = []source.CategoryInput{
	{Name: "Backend", Description: "Backend development tasks", Color: "#10b981", Icon: "Server"},
	{Name: "Frontend", Description: "Frontend/UI tasks", Color: "#3b82f6", Icon: "Layout"},
	{Name: "Database", Description: "Database related tasks", Color: "#8b5cf6", Icon: "Database"},
	{Name: "Bug Fix", Description: "Bug fixes and issues", Color: "#ef4444", Icon: "Bug"},
	{Name: "Feature", Description: "New feature development", Color: "#f59e0b", Icon: "Sparkles"},
	{Name: "DevOps", Description: "DevOps and infrastructure", Color: "#06b6d4", Icon: "Cloud"},
	{Name: "Documentation", Description: "Documentation tasks", Color: "#6366f1", Icon: "FileText"},
	{Name: "Testing", Description: "Testing and QA", Color: "#ec4899", Icon: "CheckCircle"},
}

var seedEmployees = []source.EmployeeInput{
	{Name: "Sarah Johnson", Email: "sarah.johnson@example.com", Position: "Senior Backend Developer",
		Department: "Engineering", Specializations: []string{"Backend", "Python", "API", "Database"}},
	{Name: "Mike Chen", Email: "mike.chen@example.com", Position: "Frontend Lead",
		Department: "Engineering", Specializations: []string{"Frontend", "React", "TypeScript", "UI/UX"}},
	{Name: "Emily Rodriguez", Email: "emily.rodriguez@example.com", Position: "Full Stack Developer",
		Department: "Engineering", Specializations: []string{"Backend", "Frontend", "Python", "React"}},
	{Name: "David Kim", Email: "david.kim@example.com", Position: "DevOps Engineer",
		Department: "Operations", Specializations: []string{"DevOps", "AWS", "Docker", "CI/CD"}},
	{Name: "Lisa Wang", Email: "lisa.wang@example.com", Position: "QA Engineer",
		Department: "Quality Assurance", Specializations: []string{"Testing", "Automation", "Python"}},
	{Name: "James Wilson", Email: "james.wilson@example.com", Position: "Database Administrator",
		Department: "Operations", Specializations: []string{"Database", "PostgreSQL", "Performance"}},
}

// seedTicket names its category and assignee; empty means none.
type seedTicket struct {
	title, description, priority, status string
	category, assignee                   string
}

var seedTickets = []seedTicket{
	{"Implement user authentication API",
		"Create JWT-based authentication endpoints with refresh token support.",
		model.PriorityHigh, model.StatusInProgress, "Backend", "Sarah Johnson"},
	{"Design dashboard UI mockups",
		"Create mockups for the new admin dashboard with dark mode support.",
		model.PriorityMedium, model.StatusOpen, "Frontend", "Mike Chen"},
	{"Fix database connection pool leak",
		"Investigate and fix memory leak in database connection pool.",
		model.PriorityUrgent, model.StatusOpen, "Bug Fix", "James Wilson"},
	{"Add pagination to employee list",
		"Implement server-side pagination for the employee list endpoint.",
		model.PriorityMedium, model.StatusResolved, "Feature", "Emily Rodriguez"},
	{"Set up CI/CD pipeline",
		"Configure automated testing and deployment to staging.",
		model.PriorityHigh, model.StatusOpen, "DevOps", "David Kim"},
	{"Write API documentation",
		"Document all REST API endpoints with request and response examples.",
		model.PriorityMedium, model.StatusOpen, "Documentation", ""},
	{"Create unit tests for ticket service",
		"Write unit tests for ticket CRUD operations.",
		model.PriorityMedium, model.StatusClosed, "Testing", "Lisa Wang"},
	{"Fix mobile responsive layout",
		"Fix responsive design issues on the ticket detail page.",
		model.PriorityMedium, model.StatusOpen, "", ""},
}

// Seed fills an empty database with demo categories, employees and
// tickets. It is a no-op when any ticket already exists.
func (s *SQLiteStore) Seed(ctx context.Context) error {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM tickets"); err != nil {
		return fmt.Errorf("counting tickets: %w", err)
	}
	if count > 0 {
		return nil
	}

	categoryIDs := make(map[string]string, len(seedCategories))
	for _, in := range seedCategories {
		c, err := s.CreateCategory(ctx, in)
		if err != nil {
			return fmt.Errorf("seeding categories: %w", err)
		}
		categoryIDs[c.Name] = c.ID
	}

	employeeIDs := make(map[string]string, len(seedEmployees))
	for _, in := range seedEmployees {
		e, err := s.CreateEmployee(ctx, in)
		if err != nil {
			return fmt.Errorf("seeding employees: %w", err)
		}
		employeeIDs[e.Name] = e.ID
	}

	for _, st := range seedTickets {
		in := NewTicket{
			Title:       st.title,
			Description: st.description,
			Status:      st.status,
			Priority:    st.priority,
		}
		if id, ok := categoryIDs[st.category]; ok {
			in.CategoryID = &id
		}
		if id, ok := employeeIDs[st.assignee]; ok {
			in.AssignedTo = &id
		}
		if _, err := s.CreateTicket(ctx, in); err != nil {
			return fmt.Errorf("seeding tickets: %w", err)
		}
	}
	return nil
}
