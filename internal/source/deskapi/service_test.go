package deskapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/ticketwatch/internal/source"
)

func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", "secret-token")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestFetchTickets_FiltersAndAuth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tickets", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "open", q.Get("status"))
		assert.Equal(t, "high", q.Get("priority"))
		assert.Equal(t, "E1", q.Get("assigned_to"))
		assert.Equal(t, "vpn down", q.Get("search"))

		writeJSON(w, http.StatusOK, map[string]any{
			"tickets": []map[string]any{
				{"id": "T1", "ticket_number": "TKT-0001", "title": "VPN down", "status": "open",
					"priority": "high", "employee_id": "E1", "employee_name": "Ada", "category_id": nil},
			},
			"count": 1,
		})
	})

	svc := newTestService(t, mux)
	tickets, err := svc.FetchTickets(context.Background(), source.TicketFilter{
		Status: "open", Priority: "high", AssignedTo: "E1", Search: "vpn down",
	})
	require.NoError(t, err)
	require.Len(t, tickets, 1)

	tk := tickets[0]
	assert.Equal(t, "TKT-0001", tk.TicketNumber)
	require.NotNil(t, tk.EmployeeID)
	assert.Equal(t, "E1", *tk.EmployeeID)
	assert.True(t, tk.Uncategorized())
}

func TestFetchTickets_NoFilterNoQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tickets", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		writeJSON(w, http.StatusOK, map[string]any{"tickets": nil})
	})

	tickets, err := newTestService(t, mux).FetchTickets(context.Background(), source.TicketFilter{})
	require.NoError(t, err)
	assert.NotNil(t, tickets)
	assert.Empty(t, tickets)
}

func TestFetchEmployees(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/employees", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"employees": []map[string]any{
				{"id": "E1", "name": "Ada", "email": "ada@example.com", "specializations": []string{"network"}},
				{"id": "E2", "name": "Grace", "email": "grace@example.com"},
			},
		})
	})

	employees, err := newTestService(t, mux).FetchEmployees(context.Background())
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, []string{"network"}, employees[0].Specializations)
}

func TestUnauthorizedIsAuthError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/employees", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token"})
	})

	_, err := newTestService(t, mux).FetchEmployees(context.Background())
	require.Error(t, err)
	assert.True(t, source.IsAuthError(err))
}

func TestAPIErrorCarriesDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/employees/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Employee not found"})
	})

	err := newTestService(t, mux).DeleteEmployee(context.Background(), "E404")
	require.Error(t, err)

	var apiErr *source.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Employee not found", apiErr.Detail)
	assert.True(t, source.IsNotFound(err))
}

func TestRetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/employees", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"employees": []any{}})
	})

	_, err := newTestService(t, mux).FetchEmployees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetriesExhausted(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/employees", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	svc := New(srv.URL+"/api", "", WithMaxRetries(1))

	_, err := svc.FetchEmployees(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries (1) exceeded")
}

func TestWriteEndpoints(t *testing.T) {
	type call struct {
		method, path string
		body         map[string]any
	}
	var calls []call

	record := func(status int, resp any) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			data, _ := io.ReadAll(r.Body)
			if len(data) > 0 {
				assert.NoError(t, json.Unmarshal(data, &body))
			}
			calls = append(calls, call{method: r.Method, path: r.URL.Path, body: body})
			writeJSON(w, status, resp)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/tickets/{id}/assign", record(http.StatusOK, map[string]any{}))
	mux.HandleFunc("PUT /api/tickets/{id}", record(http.StatusOK, map[string]any{}))
	mux.HandleFunc("DELETE /api/tickets/{id}", record(http.StatusOK, MessageResponse{Message: "ok"}))
	mux.HandleFunc("POST /api/tickets/{id}/comments", record(http.StatusCreated, map[string]any{}))
	mux.HandleFunc("POST /api/tickets/categories", record(http.StatusCreated, map[string]any{"id": "C9", "name": "Network"}))
	mux.HandleFunc("POST /api/employees", record(http.StatusCreated, map[string]any{"id": "E9", "name": "Linus"}))
	mux.HandleFunc("PUT /api/employees/{id}", record(http.StatusOK, map[string]any{}))

	svc := newTestService(t, mux)
	ctx := context.Background()
	status := "resolved"

	require.NoError(t, svc.AssignTicket(ctx, "T1", "E1"))
	require.NoError(t, svc.AssignTicket(ctx, "T1", ""))
	require.NoError(t, svc.UpdateTicket(ctx, "T1", source.TicketUpdate{Status: &status}))
	require.NoError(t, svc.DeleteTicket(ctx, "T2"))
	require.NoError(t, svc.AddComment(ctx, "T1", "Ada", "rebooted the router"))

	cat, err := svc.CreateCategory(ctx, source.CategoryInput{Name: "Network"})
	require.NoError(t, err)
	assert.Equal(t, "C9", cat.ID)

	emp, err := svc.CreateEmployee(ctx, source.EmployeeInput{Name: "Linus", Email: "l@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "E9", emp.ID)

	require.NoError(t, svc.UpdateEmployee(ctx, "E9", source.EmployeeInput{Name: "Linus T"}))

	require.Len(t, calls, 8)
	assert.Equal(t, "/api/tickets/T1/assign", calls[0].path)
	assert.Equal(t, "E1", calls[0].body["assigned_to"])
	assert.Nil(t, calls[1].body["assigned_to"])
	assert.Contains(t, calls[1].body, "assigned_to")
	assert.Equal(t, map[string]any{"status": "resolved"}, calls[2].body)
	assert.Equal(t, http.MethodDelete, calls[3].method)
	assert.Equal(t, "rebooted the router", calls[4].body["content"])
	assert.Equal(t, "Network", calls[5].body["name"])
	assert.Equal(t, http.MethodPut, calls[7].method)
}
