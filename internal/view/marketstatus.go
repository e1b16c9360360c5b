package view

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/connection"
	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/dispatch"
	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/model"
)

// MarketStatusAdapter tracks whether the market is open or closed.
// Like the order book, it reports unknown while the connection is down
// rather than a stale pre-disconnect status.
type MarketStatusAdapter struct {
	logger     *slog.Logger
	dispatcher *dispatch.Dispatcher
	conn       stateSource

	mu     sync.RWMutex
	status model.MarketState
	known  bool

	unsubEvent func()
	unsubState func()
}

// NewMarketStatusAdapter creates a detached adapter; call Attach to
// start receiving events.
func NewMarketStatusAdapter(d *dispatch.Dispatcher, conn stateSource, logger *slog.Logger) *MarketStatusAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &MarketStatusAdapter{logger: logger, dispatcher: d, conn: conn}
}

// Attach registers the dispatcher subscription and the connection
// observer. Idempotent.
func (a *MarketStatusAdapter) Attach() {
	if a.unsubEvent != nil {
		return
	}
	a.unsubEvent = a.dispatcher.On(dispatch.EventMarketStatus, a.apply)
	a.unsubState = a.conn.OnStateChange(func(t connection.Transition) {
		// Reset on both edges of Connected, same as the order book.
		if t.From == connection.StateConnected || t.To == connection.StateConnected {
			a.reset()
		}
	})
}

// Close removes the subscriptions. Idempotent.
func (a *MarketStatusAdapter) Close() {
	if a.unsubEvent != nil {
		a.unsubEvent()
		a.unsubEvent = nil
	}
	if a.unsubState != nil {
		a.unsubState()
		a.unsubState = nil
	}
}

// Current returns the last known market status. ok is false before the
// first update and whenever the connection is not established, so a
// status received just before a drop is never reported as live.
func (a *MarketStatusAdapter) Current() (status model.MarketState, ok bool) {
	if a.conn.State() != connection.StateConnected {
		return model.MarketState{}, false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status, a.known
}

func (a *MarketStatusAdapter) apply(data json.RawMessage) {
	var status model.MarketState
	if err := json.Unmarshal(data, &status); err != nil {
		a.logger.Warn("failed to parse market:status", "error", err)
		return
	}

	a.mu.Lock()
	a.status = status
	a.known = true
	a.mu.Unlock()
}

func (a *MarketStatusAdapter) reset() {
	a.mu.Lock()
	a.status = model.MarketState{}
	a.known = false
	a.mu.Unlock()
}
