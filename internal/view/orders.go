package view

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/dispatch"
	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/model"
)

// OrderEventsAdapter tracks the user's order lifecycle as three
// independent most-recent-value slots: last created, last executed,
// last cancelled. The sub-kinds do not supersede each other, so a
// consumer clears a slot once it has acted on it (e.g. shown a toast).
type OrderEventsAdapter struct {
	logger     *slog.Logger
	dispatcher *dispatch.Dispatcher

	mu        sync.RWMutex
	created   *model.Order
	executed  *model.Operation
	cancelled *model.Order

	unsubs []func()
}

// NewOrderEventsAdapter creates a detached adapter; call Attach to
// start receiving events.
func NewOrderEventsAdapter(d *dispatch.Dispatcher, logger *slog.Logger) *OrderEventsAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderEventsAdapter{logger: logger, dispatcher: d}
}

// Attach registers one dispatcher subscription per sub-kind. Idempotent.
func (a *OrderEventsAdapter) Attach() {
	if len(a.unsubs) > 0 {
		return
	}
	a.unsubs = []func(){
		a.dispatcher.On(dispatch.EventOrderCreated, a.applyCreated),
		a.dispatcher.On(dispatch.EventOrderExecuted, a.applyExecuted),
		a.dispatcher.On(dispatch.EventOrderCancelled, a.applyCancelled),
	}
}

// Close removes the subscriptions. Idempotent.
func (a *OrderEventsAdapter) Close() {
	for _, unsub := range a.unsubs {
		unsub()
	}
	a.unsubs = nil
}

// LastCreated returns the most recent order:created payload, if any.
func (a *OrderEventsAdapter) LastCreated() (model.Order, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.created == nil {
		return model.Order{}, false
	}
	return *a.created, true
}

// LastExecuted returns the most recent order:executed payload, if any.
func (a *OrderEventsAdapter) LastExecuted() (model.Operation, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.executed == nil {
		return model.Operation{}, false
	}
	return *a.executed, true
}

// LastCancelled returns the most recent order:cancelled payload, if any.
func (a *OrderEventsAdapter) LastCancelled() (model.Order, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.cancelled == nil {
		return model.Order{}, false
	}
	return *a.cancelled, true
}

// ClearCreated empties the created slot.
func (a *OrderEventsAdapter) ClearCreated() {
	a.mu.Lock()
	a.created = nil
	a.mu.Unlock()
}

// ClearExecuted empties the executed slot.
func (a *OrderEventsAdapter) ClearExecuted() {
	a.mu.Lock()
	a.executed = nil
	a.mu.Unlock()
}

// ClearCancelled empties the cancelled slot.
func (a *OrderEventsAdapter) ClearCancelled() {
	a.mu.Lock()
	a.cancelled = nil
	a.mu.Unlock()
}

func (a *OrderEventsAdapter) applyCreated(data json.RawMessage) {
	var order model.Order
	if err := json.Unmarshal(data, &order); err != nil {
		a.logger.Warn("failed to parse order:created", "error", err)
		return
	}
	a.mu.Lock()
	a.created = &order
	a.mu.Unlock()
}

func (a *OrderEventsAdapter) applyExecuted(data json.RawMessage) {
	var op model.Operation
	if err := json.Unmarshal(data, &op); err != nil {
		a.logger.Warn("failed to parse order:executed", "error", err)
		return
	}
	a.mu.Lock()
	a.executed = &op
	a.mu.Unlock()
}

func (a *OrderEventsAdapter) applyCancelled(data json.RawMessage) {
	var order model.Order
	if err := json.Unmarshal(data, &order); err != nil {
		a.logger.Warn("failed to parse order:cancelled", "error", err)
		return
	}
	a.mu.Lock()
	a.cancelled = &order
	a.mu.Unlock()
}
