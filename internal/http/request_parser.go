// Package http provides the HTTP server and handler implementations.
//
// This file implements parsing of JSON request bodies and query parameters
// into the typed shapes the core package expects.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"costtracker/internal/core"
)

// maxBodyBytes caps request bodies; expense payloads are tiny.
const maxBodyBytes = 1 << 20

var errMalformedBody = errors.New("malformed request body")

type createExpenseRequest struct {
	ServiceName string       `json:"service_name"`
	Client      string       `json:"client"`
	Cost        *json.Number `json:"cost"`
	Date        string       `json:"date"`
	Description string       `json:"description"`
}

type updateExpenseRequest struct {
	ServiceName *string      `json:"service_name"`
	Client      *string      `json:"client"`
	Cost        *json.Number `json:"cost"`
	Description *string      `json:"description"`
}

func decodeBody(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return errMalformedBody
	}
	return nil
}

// parseCreateRequest decodes and validates a POST /expenses body, returning
// the typed fields ready for the store.
func parseCreateRequest(r *http.Request) (core.ExpenseFields, error) {
	var req createExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		return core.ExpenseFields{}, err
	}

	var v core.ValidationError
	fields := core.ExpenseFields{
		ServiceName: strings.TrimSpace(req.ServiceName),
		Client:      strings.TrimSpace(req.Client),
		Description: req.Description,
	}

	if req.Cost == nil {
		v.Fields = append(v.Fields, core.FieldError{Field: "cost", Message: "is required"})
	} else if c, err := parseCostNumber(*req.Cost); err != nil {
		v.Fields = append(v.Fields, core.FieldError{Field: "cost", Message: err.Error()})
	} else {
		fields.Cost = c
	}

	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			v.Fields = append(v.Fields, core.FieldError{Field: "date", Message: err.Error()})
		} else {
			fields.Date = d
		}
	}

	if len(v.Fields) > 0 {
		return core.ExpenseFields{}, &v
	}
	if err := fields.Validate(); err != nil {
		return core.ExpenseFields{}, err
	}
	return fields, nil
}

// parseUpdateRequest decodes and validates a PUT /expenses/{id} body. Only
// fields present in the JSON end up non-nil in the update.
func parseUpdateRequest(r *http.Request) (core.ExpenseUpdate, error) {
	var req updateExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		return core.ExpenseUpdate{}, err
	}

	update := core.ExpenseUpdate{
		ServiceName: req.ServiceName,
		Client:      req.Client,
		Description: req.Description,
	}

	if req.Cost != nil {
		c, err := parseCostNumber(*req.Cost)
		if err != nil {
			return core.ExpenseUpdate{}, &core.ValidationError{
				Fields: []core.FieldError{{Field: "cost", Message: err.Error()}},
			}
		}
		update.Cost = &c
	}

	if err := update.Validate(); err != nil {
		return core.ExpenseUpdate{}, err
	}
	return update, nil
}

func parseCostNumber(n json.Number) (decimal.Decimal, error) {
	c, err := core.ParseCost(n.String())
	if err != nil {
		return decimal.Decimal{}, errors.New("must be a number")
	}
	return c, nil
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (use RFC 3339 or YYYY-MM-DD)", s)
}

// parseIntParam reads a positive integer query parameter with a default.
func parseIntParam(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", name, v)
	}
	return n, nil
}

// parseDateParam reads an optional date query parameter; zero when absent.
func parseDateParam(r *http.Request, name string) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return time.Time{}, nil
	}
	return parseDate(v)
}
