package http

import (
	"errors"
	"log/slog"
	"net/http"

	"costtracker/internal/core"
)

const defaultListLimit = 50

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	fields, err := parseCreateRequest(r)
	if err != nil {
		if errors.Is(err, errMalformedBody) {
			writeErrorDetail(w, http.StatusBadRequest, "Malformed request body")
			return
		}
		writeError(w, r, err)
		return
	}

	e, err := s.store.Create(r.Context(), fields)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Expense created",
		"expense_id", e.ID,
		"service_name", e.ServiceName,
		"client", e.Client,
		"cost", e.Cost.String())

	writeJSON(w, http.StatusCreated, toExpenseResponse(e))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	e, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if e == nil {
		writeError(w, r, core.ErrNotFound)
		return
	}

	writeJSON(w, http.StatusOK, toExpenseResponse(*e))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	update, err := parseUpdateRequest(r)
	if err != nil {
		if errors.Is(err, errMalformedBody) {
			writeErrorDetail(w, http.StatusBadRequest, "Malformed request body")
			return
		}
		writeError(w, r, err)
		return
	}

	// Existence is checked up front so an absent id yields a clean 404
	// instead of the store's own failure mode.
	existing, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if existing == nil {
		writeError(w, r, core.ErrNotFound)
		return
	}

	// An empty body is a no-op: return the record as stored without
	// bumping updated_at or touching the store.
	if update.IsEmpty() {
		writeJSON(w, http.StatusOK, toExpenseResponse(*existing))
		return
	}

	e, err := s.store.Update(r.Context(), id, update)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Expense updated", "expense_id", e.ID)
	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if existing == nil {
		writeError(w, r, core.ErrNotFound)
		return
	}

	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Expense deleted", "expense_id", id)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Expense " + id + " deleted successfully",
	})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r, "limit", defaultListLimit)
	if err != nil {
		writeErrorDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toExpenseResponses(items))
}
