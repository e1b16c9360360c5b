package view

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/connection"
	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/dispatch"
	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/model"
)

// stateSource is the slice of the Connection Manager the gated adapters
// need: observing lifecycle transitions and reading the live state.
type stateSource interface {
	OnStateChange(fn func(connection.Transition)) (unsubscribe func())
	State() connection.State
}

// OrderBookAdapter tracks the most recent order book snapshot. While
// the connection is down the adapter reports unknown instead of the
// pre-disconnect book, so a UI never renders stale data as live.
type OrderBookAdapter struct {
	logger     *slog.Logger
	dispatcher *dispatch.Dispatcher
	conn       stateSource

	mu    sync.RWMutex
	book  model.OrderBook
	known bool

	unsubEvent func()
	unsubState func()
}

// NewOrderBookAdapter creates a detached adapter; call Attach to start
// receiving events.
func NewOrderBookAdapter(d *dispatch.Dispatcher, conn stateSource, logger *slog.Logger) *OrderBookAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderBookAdapter{logger: logger, dispatcher: d, conn: conn}
}

// Attach registers the dispatcher subscription and the connection
// observer. Idempotent.
func (a *OrderBookAdapter) Attach() {
	if a.unsubEvent != nil {
		return
	}
	a.unsubEvent = a.dispatcher.On(dispatch.EventMarketUpdate, a.apply)
	a.unsubState = a.conn.OnStateChange(func(t connection.Transition) {
		// Reset on both edges of Connected: leaving invalidates the
		// held snapshot, and entering discards anything a late-drained
		// pre-disconnect update wrote during the outage.
		if t.From == connection.StateConnected || t.To == connection.StateConnected {
			a.reset()
		}
	})
}

// Close removes the subscriptions. Idempotent.
func (a *OrderBookAdapter) Close() {
	if a.unsubEvent != nil {
		a.unsubEvent()
		a.unsubEvent = nil
	}
	if a.unsubState != nil {
		a.unsubState()
		a.unsubState = nil
	}
}

// Current returns the last known book. ok is false before the first
// snapshot, whenever the connection is not established, and after a
// reconnect until a fresh snapshot lands. The live state check means a
// book delivered just before a drop is never served as current while
// the connection is down, even if its dispatch raced the disconnect.
func (a *OrderBookAdapter) Current() (book model.OrderBook, ok bool) {
	if a.conn.State() != connection.StateConnected {
		return model.OrderBook{}, false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.book, a.known
}

func (a *OrderBookAdapter) apply(data json.RawMessage) {
	var book model.OrderBook
	if err := json.Unmarshal(data, &book); err != nil {
		a.logger.Warn("failed to parse market:update", "error", err)
		return
	}

	a.mu.Lock()
	a.book = book
	a.known = true
	a.mu.Unlock()
}

func (a *OrderBookAdapter) reset() {
	a.mu.Lock()
	a.book = model.OrderBook{}
	a.known = false
	a.mu.Unlock()
}
