// Package fixture serves a store.Store over the ticket service's
// HTTP/JSON API so the dashboard can run against a local database.
package fixture

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nhle/ticketwatch/internal/source"
	"github.com/nhle/ticketwatch/internal/source/deskapi"
	"github.com/nhle/ticketwatch/internal/store"
)

// defaultCommentAuthor is used when a comment arrives without an author.
const defaultCommentAuthor = "Dashboard"

// Server is the fixture data service.
type Server struct {
	router *gin.Engine
	store  store.Store
	token  string
	logger *slog.Logger
}

// Options configures a Server.
type Options struct {
	// Token is the bearer token clients must present. Empty disables auth.
	Token string

	Logger *slog.Logger
}

// NewServer creates a Server over st with every route registered.
func NewServer(st store.Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router: router,
		store:  st,
		token:  opts.Token,
		logger: logger,
	}
	router.Use(s.requestLogger())
	s.setupRoutes()
	return s
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("fixture service listening", "addr", addr)
	return s.router.Run(addr)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")
	api.Use(s.bearerAuth())
	{
		tickets := api.Group("/tickets")
		{
			tickets.GET("", s.handleListTickets())
			tickets.GET("/categories", s.handleListCategories())
			tickets.POST("/categories", s.handleCreateCategory())
			tickets.POST("", s.handleCreateTicket())
			tickets.GET("/:id", s.handleGetTicket())
			tickets.PUT("/:id", s.handleUpdateTicket())
			tickets.DELETE("/:id", s.handleDeleteTicket())
			tickets.POST("/:id/assign", s.handleAssignTicket())
			tickets.GET("/:id/comments", s.handleListComments())
			tickets.POST("/:id/comments", s.handleAddComment())
		}

		employees := api.Group("/employees")
		{
			employees.GET("", s.handleListEmployees())
			employees.POST("", s.handleCreateEmployee())
			employees.GET("/:id", s.handleGetEmployee())
			employees.PUT("/:id", s.handleUpdateEmployee())
			employees.DELETE("/:id", s.handleDeleteEmployee())
		}
	}
}

// bearerAuth rejects requests whose bearer token does not match.
func (s *Server) bearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.token == "" {
			c.Next()
			return
		}
		tok, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || tok != s.token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Invalid or expired token",
			})
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}

// fail writes err as a {"detail": ...} body with a status derived
// from the store's sentinel errors.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{"detail": err.Error()})
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("invalid request body: %v", err)})
}

// === Tickets ===

func (s *Server) handleListTickets() gin.HandlerFunc {
	return func(c *gin.Context) {
		f := source.TicketFilter{
			Status:     c.Query("status"),
			Priority:   c.Query("priority"),
			AssignedTo: c.Query("assigned_to"),
			Search:     c.Query("search"),
		}
		tickets, err := s.store.ListTickets(c.Request.Context(), f)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, deskapi.TicketList{Tickets: tickets, Count: len(tickets)})
	}
}

func (s *Server) handleGetTicket() gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := s.store.GetTicket(c.Request.Context(), c.Param("id"))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

func (s *Server) handleCreateTicket() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in store.NewTicket
		if err := c.ShouldBindJSON(&in); err != nil {
			s.badRequest(c, err)
			return
		}
		t, err := s.store.CreateTicket(c.Request.Context(), in)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, t)
	}
}

func (s *Server) handleUpdateTicket() gin.HandlerFunc {
	return func(c *gin.Context) {
		var u source.TicketUpdate
		if err := c.ShouldBindJSON(&u); err != nil {
			s.badRequest(c, err)
			return
		}
		ctx := c.Request.Context()
		id := c.Param("id")
		if err := s.store.UpdateTicket(ctx, id, u); err != nil {
			s.fail(c, err)
			return
		}
		t, err := s.store.GetTicket(ctx, id)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

func (s *Server) handleDeleteTicket() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.store.DeleteTicket(c.Request.Context(), c.Param("id")); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, deskapi.MessageResponse{Message: "Ticket deleted successfully"})
	}
}

func (s *Server) handleAssignTicket() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req deskapi.AssignRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.badRequest(c, err)
			return
		}
		if err := s.store.AssignTicket(c.Request.Context(), c.Param("id"), req.AssignedTo); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, deskapi.MessageResponse{Message: "Ticket assigned successfully"})
	}
}

func (s *Server) handleListComments() gin.HandlerFunc {
	return func(c *gin.Context) {
		comments, err := s.store.ListComments(c.Request.Context(), c.Param("id"))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"comments": comments})
	}
}

func (s *Server) handleAddComment() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req deskapi.CommentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.badRequest(c, err)
			return
		}
		author := req.Author
		if author == "" {
			author = defaultCommentAuthor
		}
		comment, err := s.store.AddComment(c.Request.Context(), store.Comment{
			TicketID:   c.Param("id"),
			Author:     author,
			Content:    req.Content,
			IsInternal: req.IsInternal,
		})
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, comment)
	}
}

// === Categories ===

func (s *Server) handleListCategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := s.store.ListCategories(c.Request.Context())
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, deskapi.CategoryList{Categories: categories})
	}
}

func (s *Server) handleCreateCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in source.CategoryInput
		if err := c.ShouldBindJSON(&in); err != nil {
			s.badRequest(c, err)
			return
		}
		cat, err := s.store.CreateCategory(c.Request.Context(), in)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, cat)
	}
}

// === Employees ===

func (s *Server) handleListEmployees() gin.HandlerFunc {
	return func(c *gin.Context) {
		employees, err := s.store.ListEmployees(c.Request.Context())
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, deskapi.EmployeeList{Employees: employees, Count: len(employees)})
	}
}

func (s *Server) handleGetEmployee() gin.HandlerFunc {
	return func(c *gin.Context) {
		e, err := s.store.GetEmployee(c.Request.Context(), c.Param("id"))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, e)
	}
}

func (s *Server) handleCreateEmployee() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in source.EmployeeInput
		if err := c.ShouldBindJSON(&in); err != nil {
			s.badRequest(c, err)
			return
		}
		e, err := s.store.CreateEmployee(c.Request.Context(), in)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, e)
	}
}

func (s *Server) handleUpdateEmployee() gin.HandlerFunc {
	return func(c *gin.Context) {
		var in source.EmployeeInput
		if err := c.ShouldBindJSON(&in); err != nil {
			s.badRequest(c, err)
			return
		}
		ctx := c.Request.Context()
		id := c.Param("id")
		if err := s.store.UpdateEmployee(ctx, id, in); err != nil {
			s.fail(c, err)
			return
		}
		e, err := s.store.GetEmployee(ctx, id)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, e)
	}
}

func (s *Server) handleDeleteEmployee() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.store.DeleteEmployee(c.Request.Context(), c.Param("id")); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, deskapi.MessageResponse{Message: "Employee deleted successfully"})
	}
}
