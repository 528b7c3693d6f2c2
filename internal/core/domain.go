package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MaxServiceNameLen = 100
	MaxClientLen      = 50
	MaxDescriptionLen = 500
)

type (
	// Expense is a stored expense record. ID and both timestamps are owned
	// by the record store and never supplied by callers.
	Expense struct {
		ID          string
		ServiceName string
		Client      string
		Cost        decimal.Decimal
		Date        time.Time
		Description string
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// ExpenseFields carries the caller-supplied fields of a new expense.
	// A zero Date means "use the creation time".
	ExpenseFields struct {
		ServiceName string
		Client      string
		Cost        decimal.Decimal
		Date        time.Time
		Description string
	}

	// ExpenseUpdate is a partial update: nil pointers leave the stored
	// value untouched. Date is deliberately not updatable, matching the
	// create/update asymmetry of the wire contract.
	ExpenseUpdate struct {
		ServiceName *string
		Client      *string
		Cost        *decimal.Decimal
		Description *string
	}
)

var (
	ErrNotFound = errors.New("expense not found")

	// ErrConflict is reserved for optimistic-concurrency support and is
	// not returned by any current operation.
	ErrConflict = errors.New("conflict")
)

// StoreError wraps a persistence failure. Handlers map it to a generic
// server error without exposing the wrapped message to clients.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "store " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// FieldError describes a single invalid field of a request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates the field errors of one request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func validateServiceName(v *ValidationError, s string) {
	if strings.TrimSpace(s) == "" {
		v.add("service_name", "must not be empty")
	} else if len(s) > MaxServiceNameLen {
		v.add("service_name", fmt.Sprintf("must be at most %d characters", MaxServiceNameLen))
	}
}

func validateClient(v *ValidationError, s string) {
	if strings.TrimSpace(s) == "" {
		v.add("client", "must not be empty")
	} else if len(s) > MaxClientLen {
		v.add("client", fmt.Sprintf("must be at most %d characters", MaxClientLen))
	}
}

func validateDescription(v *ValidationError, s string) {
	if len(s) > MaxDescriptionLen {
		v.add("description", fmt.Sprintf("must be at most %d characters", MaxDescriptionLen))
	}
}

func (f ExpenseFields) Validate() error {
	var v ValidationError
	validateServiceName(&v, f.ServiceName)
	validateClient(&v, f.Client)
	if err := ValidateCost(f.Cost); err != nil {
		v.add("cost", err.Error())
	}
	validateDescription(&v, f.Description)
	return v.orNil()
}

func (u ExpenseUpdate) Validate() error {
	var v ValidationError
	if u.ServiceName != nil {
		validateServiceName(&v, *u.ServiceName)
	}
	if u.Client != nil {
		validateClient(&v, *u.Client)
	}
	if u.Cost != nil {
		if err := ValidateCost(*u.Cost); err != nil {
			v.add("cost", err.Error())
		}
	}
	if u.Description != nil {
		validateDescription(&v, *u.Description)
	}
	return v.orNil()
}

// IsEmpty reports whether the update carries no fields at all.
func (u ExpenseUpdate) IsEmpty() bool {
	return u.ServiceName == nil && u.Client == nil && u.Cost == nil && u.Description == nil
}
