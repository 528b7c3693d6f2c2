package http

import (
	"net/http"
	"strings"
	"time"

	"costtracker/internal/core"
	"costtracker/internal/records"
)

const (
	defaultTrendMonths = 6
	defaultTopLimit    = 10
)

// The analysis endpoints fetch one bounded working set and compute in
// memory. records.DefaultScanLimit caps the set; larger data volumes are a
// documented limitation of the single-scan design.

func (s *Server) handleCostBreakdown(w http.ResponseWriter, r *http.Request) {
	start, err := parseDateParam(r, "start_date")
	if err != nil {
		writeErrorDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseDateParam(r, "end_date")
	if err != nil {
		writeErrorDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	key, err := core.ParseGroupKey(r.URL.Query().Get("group_by"))
	if err != nil {
		writeErrorDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	clientFilter := strings.TrimSpace(r.URL.Query().Get("client"))

	items, err := s.store.List(r.Context(), records.DefaultScanLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	start, end = core.BreakdownWindow(start, end, time.Now())
	writeJSON(w, http.StatusOK, core.CostBreakdown(items, start, end, key, clientFilter))
}

func (s *Server) handleMonthlyTrends(w http.ResponseWriter, r *http.Request) {
	months, err := parseIntParam(r, "months", defaultTrendMonths)
	if err != nil {
		writeErrorDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := s.store.List(r.Context(), records.DefaultScanLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, core.MonthlyTrends(items, months, time.Now()))
}

func (s *Server) handleTopServices(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r, "limit", defaultTopLimit)
	if err != nil {
		writeErrorDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := s.store.List(r.Context(), records.DefaultScanLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, core.TopServices(items, limit))
}
