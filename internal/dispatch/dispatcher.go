package dispatch

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event kinds pushed by the server.
const (
	EventMarketUpdate   = "market:update"
	EventMarketStatus   = "market:status"
	EventBalanceUpdate  = "balance:update"
	EventOrderCreated   = "order:created"
	EventOrderExecuted  = "order:executed"
	EventOrderCancelled = "order:cancelled"
	EventRankingUpdate  = "ranking:update"
)

// Handler receives the raw payload of one event.
type Handler func(data json.RawMessage)

// Dispatcher is a typed publish/subscribe registry. Any number of
// handlers may observe the same event kind; each delivered event
// reaches every handler registered at the moment of delivery. There is
// no replay: a handler registered after an event was dispatched does
// not see it.
type Dispatcher struct {
	logger *slog.Logger

	mu     sync.Mutex
	nextID int
	// Registration order is preserved per kind.
	handlers map[string][]registration
}

type registration struct {
	id int
	fn Handler
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		logger:   logger,
		handlers: make(map[string][]registration),
	}
}

// On registers a handler for an event kind and returns a function that
// removes exactly that handler. Unsubscribing takes effect for future
// dispatch passes; a pass already in flight still completes over the
// handler set it started with.
func (d *Dispatcher) On(kind string, fn Handler) (unsubscribe func()) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.handlers[kind] = append(d.handlers[kind], registration{id: id, fn: fn})
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		regs := d.handlers[kind]
		for i, reg := range regs {
			if reg.id == id {
				d.handlers[kind] = append(regs[:i:i], regs[i+1:]...)
				break
			}
		}
	}
}

// Dispatch invokes every handler currently registered for kind, in
// registration order, synchronously. The pass iterates a snapshot of
// the handler list, so unsubscribing mid-pass never skips or
// double-invokes a neighbor. A panicking handler is logged and the
// remaining handlers still run.
func (d *Dispatcher) Dispatch(kind string, data json.RawMessage) {
	d.mu.Lock()
	snapshot := make([]registration, len(d.handlers[kind]))
	copy(snapshot, d.handlers[kind])
	d.mu.Unlock()

	for _, reg := range snapshot {
		d.invoke(kind, reg, data)
	}
}

func (d *Dispatcher) invoke(kind string, reg registration, data json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked",
				"event", kind,
				"panic", r,
			)
		}
	}()
	reg.fn(data)
}

// HandlerCount returns the number of handlers registered for kind.
func (d *Dispatcher) HandlerCount(kind string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handlers[kind])
}
