package http

import (
	"context"
	"net/http"
	"sync"

	"costtracker/internal/records"
)

type Server struct {
	http.Server
	store       records.Store
	apiKey      string
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server backed by the given record store.
func NewServer(addr string, store records.Store, apiKey string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:       store,
		apiKey:      apiKey,
		rateLimiter: newRateLimiter(),
	}

	// Health stays outside the auth/rate-limit chain.
	mux.HandleFunc("GET /health", handleHealth)

	mux.HandleFunc("POST /expenses", s.withMiddleware(s.handleCreateExpense))
	mux.HandleFunc("GET /expenses", s.withMiddleware(s.handleListExpenses))
	mux.HandleFunc("GET /expenses/{id}", s.withMiddleware(s.handleGetExpense))
	mux.HandleFunc("PUT /expenses/{id}", s.withMiddleware(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /expenses/{id}", s.withMiddleware(s.handleDeleteExpense))

	mux.HandleFunc("GET /cost-breakdown", s.withMiddleware(s.handleCostBreakdown))
	mux.HandleFunc("GET /monthly-trends", s.withMiddleware(s.handleMonthlyTrends))
	mux.HandleFunc("GET /top-services", s.withMiddleware(s.handleTopServices))

	return s
}

// Shutdown stops the server and its background cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Cost Tracker API is running",
	})
}
