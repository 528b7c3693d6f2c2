// Package memory is an in-memory record store used by tests and the
// "memory" data backend. It mirrors the SQLite store's contract: it owns id
// generation and timestamps, and applies write-time cost rounding.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"costtracker/internal/core"
)

type Store struct {
	mu    sync.Mutex
	items map[string]core.Expense
	order []string // insertion order, the store-native List order

	// now is swappable so tests can pin timestamps.
	now func() time.Time
}

func New() *Store {
	return &Store{
		items: make(map[string]core.Expense),
		now:   time.Now,
	}
}

// NewWithClock returns a store whose timestamps come from now.
func NewWithClock(now func() time.Time) *Store {
	s := New()
	s.now = now
	return s
}

func (s *Store) Create(_ context.Context, fields core.ExpenseFields) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now()
	date := fields.Date
	if date.IsZero() {
		date = ts
	}
	e := core.Expense{
		ID:          uuid.NewString(),
		ServiceName: fields.ServiceName,
		Client:      fields.Client,
		Cost:        core.RoundCost(fields.Cost),
		Date:        date,
		Description: fields.Description,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	s.items[e.ID] = e
	s.order = append(s.order, e.ID)
	return e, nil
}

func (s *Store) Get(_ context.Context, id string) (*core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s *Store) Update(_ context.Context, id string, update core.ExpenseUpdate) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return core.Expense{}, core.ErrNotFound
	}
	if update.ServiceName != nil {
		e.ServiceName = *update.ServiceName
	}
	if update.Client != nil {
		e.Client = *update.Client
	}
	if update.Cost != nil {
		e.Cost = core.RoundCost(*update.Cost)
	}
	if update.Description != nil {
		e.Description = *update.Description
	}
	e.UpdatedAt = s.now()
	s.items[id] = e
	return e, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return nil
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) List(_ context.Context, limit int) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.order)
	if limit >= 0 && limit < n {
		n = limit
	}
	out := make([]core.Expense, 0, n)
	for _, id := range s.order[:n] {
		out = append(out, s.items[id])
	}
	return out, nil
}
