package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"costtracker/internal/amqp"
	"costtracker/internal/core"
	"costtracker/internal/records"
)

// EventPublisher publishes expense lifecycle events. *amqp.Client satisfies
// it; tests substitute a fake.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, id, action string) error
}

// ExpenseService wraps a record store and publishes an event after every
// successful write. Publishing is best-effort: a broker failure is logged
// and never fails the request. It implements records.Store so handlers are
// indifferent to whether eventing is enabled.
type ExpenseService struct {
	store     records.Store
	publisher EventPublisher
}

var _ records.Store = (*ExpenseService)(nil)

func NewExpenseService(store records.Store, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{
		store:     store,
		publisher: publisher,
	}
}

func (s *ExpenseService) Create(ctx context.Context, fields core.ExpenseFields) (core.Expense, error) {
	e, err := s.store.Create(ctx, fields)
	if err != nil {
		return core.Expense{}, err
	}
	s.publish(ctx, e.ID, amqp.ActionCreated)
	return e, nil
}

func (s *ExpenseService) Get(ctx context.Context, id string) (*core.Expense, error) {
	return s.store.Get(ctx, id)
}

func (s *ExpenseService) Update(ctx context.Context, id string, update core.ExpenseUpdate) (core.Expense, error) {
	e, err := s.store.Update(ctx, id, update)
	if err != nil {
		return core.Expense{}, err
	}
	s.publish(ctx, id, amqp.ActionUpdated)
	return e, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, amqp.ActionDeleted)
	return nil
}

func (s *ExpenseService) List(ctx context.Context, limit int) ([]core.Expense, error) {
	return s.store.List(ctx, limit)
}

func (s *ExpenseService) publish(ctx context.Context, id, action string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, id, action); err != nil {
		// The record is already persisted; don't fail the request.
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"id", id, "action", action, "error", err)
	}
}

// Close closes the store and publisher where they support it.
func (s *ExpenseService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}
	return nil
}
