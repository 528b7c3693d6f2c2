package services

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"costtracker/internal/amqp"
)

// EventProcessor handles consumed expense lifecycle events. It writes an
// audit line per event and keeps per-action counters; the worker command
// drives it from the AMQP queue.
type EventProcessor struct {
	logger *slog.Logger

	mu     sync.Mutex
	counts map[string]int
}

func NewEventProcessor(logger *slog.Logger) *EventProcessor {
	return &EventProcessor{
		logger: logger,
		counts: make(map[string]int),
	}
}

// Handle processes one event. A malformed event returns an error so the
// consumer can reject it instead of acking silently.
func (p *EventProcessor) Handle(msg *amqp.ExpenseEventMessage) error {
	switch msg.Action {
	case amqp.ActionCreated, amqp.ActionUpdated, amqp.ActionDeleted:
	default:
		return fmt.Errorf("unknown event action %q", msg.Action)
	}
	if msg.ID == "" {
		return fmt.Errorf("event %q carries no expense id", msg.Action)
	}

	p.mu.Lock()
	p.counts[msg.Action]++
	p.mu.Unlock()

	p.logger.Info("Expense event processed",
		"id", msg.ID,
		"action", msg.Action,
		"age_ms", time.Since(msg.Timestamp).Milliseconds())
	return nil
}

// Stats returns a copy of the per-action counters.
func (p *EventProcessor) Stats() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]int, len(p.counts))
	for k, v := range p.counts {
		out[k] = v
	}
	return out
}
