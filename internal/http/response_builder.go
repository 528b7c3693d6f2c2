// Package http provides the HTTP server and handler implementations.
//
// This file implements the JSON response helpers shared by all handlers:
// the expense wire shape and the {"detail": ...} error envelope.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"costtracker/internal/core"
)

// expenseResponse is the wire representation of a stored expense. Cost is
// emitted as a plain number, rounded to 2 decimals.
type expenseResponse struct {
	ExpenseID   string    `json:"expense_id"`
	ServiceName string    `json:"service_name"`
	Client      string    `json:"client"`
	Cost        float64   `json:"cost"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ExpenseID:   e.ID,
		ServiceName: e.ServiceName,
		Client:      e.Client,
		Cost:        core.DisplayAmount(e.Cost),
		Date:        e.Date,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toExpenseResponses(items []core.Expense) []expenseResponse {
	out := make([]expenseResponse, len(items))
	for i, e := range items {
		out[i] = toExpenseResponse(e)
	}
	return out
}

// errorEnvelope matches the original API's error shape: detail is either a
// string or a list of field errors.
type errorEnvelope struct {
	Detail any `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeErrorDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, errorEnvelope{Detail: detail})
}

// writeError maps a domain error to its status code. Anything that is not a
// validation or not-found failure becomes a generic 500: the underlying
// error is logged, never returned to the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeErrorDetail(w, http.StatusUnprocessableEntity, verr.Fields)
	case errors.Is(err, core.ErrNotFound):
		writeErrorDetail(w, http.StatusNotFound, "Expense not found")
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err, "method", r.Method, "path", r.URL.Path)
		writeErrorDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}
