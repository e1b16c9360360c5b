package view

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/dispatch"
	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/model"
)

// BalanceAdapter tracks the user's most recent balance snapshot.
// Multiple consumers (the compact widget and the account page) attach
// their own adapters independently; each gets every update.
type BalanceAdapter struct {
	logger     *slog.Logger
	dispatcher *dispatch.Dispatcher

	mu      sync.RWMutex
	balance model.Balance
	known   bool

	unsubEvent func()
}

// NewBalanceAdapter creates a detached adapter; call Attach to start
// receiving events.
func NewBalanceAdapter(d *dispatch.Dispatcher, logger *slog.Logger) *BalanceAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &BalanceAdapter{logger: logger, dispatcher: d}
}

// Attach registers the dispatcher subscription. Idempotent.
func (a *BalanceAdapter) Attach() {
	if a.unsubEvent != nil {
		return
	}
	a.unsubEvent = a.dispatcher.On(dispatch.EventBalanceUpdate, a.apply)
}

// Close removes the subscription. Idempotent.
func (a *BalanceAdapter) Close() {
	if a.unsubEvent != nil {
		a.unsubEvent()
		a.unsubEvent = nil
	}
}

// Current returns the last known balance; ok is false before the first
// update arrives.
func (a *BalanceAdapter) Current() (balance model.Balance, ok bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.balance, a.known
}

// Seed installs a balance fetched over REST, used to bootstrap the view
// before the first push arrives. A later push replaces it.
func (a *BalanceAdapter) Seed(balance model.Balance) {
	a.mu.Lock()
	a.balance = balance
	a.known = true
	a.mu.Unlock()
}

func (a *BalanceAdapter) apply(data json.RawMessage) {
	var balance model.Balance
	if err := json.Unmarshal(data, &balance); err != nil {
		a.logger.Warn("failed to parse balance:update", "error", err)
		return
	}

	a.mu.Lock()
	a.balance = balance
	a.known = true
	a.mu.Unlock()
}
