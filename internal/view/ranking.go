package view

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/dispatch"
	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/model"
)

// RankingAdapter tracks the most recent leaderboard snapshot.
type RankingAdapter struct {
	logger     *slog.Logger
	dispatcher *dispatch.Dispatcher

	mu      sync.RWMutex
	ranking model.Ranking
	known   bool

	unsubEvent func()
}

// NewRankingAdapter creates a detached adapter; call Attach to start
// receiving events.
func NewRankingAdapter(d *dispatch.Dispatcher, logger *slog.Logger) *RankingAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RankingAdapter{logger: logger, dispatcher: d}
}

// Attach registers the dispatcher subscription. Idempotent.
func (a *RankingAdapter) Attach() {
	if a.unsubEvent != nil {
		return
	}
	a.unsubEvent = a.dispatcher.On(dispatch.EventRankingUpdate, a.apply)
}

// Close removes the subscription. Idempotent.
func (a *RankingAdapter) Close() {
	if a.unsubEvent != nil {
		a.unsubEvent()
		a.unsubEvent = nil
	}
}

// Current returns a copy of the last known ranking; ok is false before
// the first update arrives.
func (a *RankingAdapter) Current() (ranking model.Ranking, ok bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.known {
		return nil, false
	}
	out := make(model.Ranking, len(a.ranking))
	copy(out, a.ranking)
	return out, true
}

// Seed installs a ranking fetched over REST, used to bootstrap the view
// before the first push arrives. A later push replaces it.
func (a *RankingAdapter) Seed(ranking model.Ranking) {
	a.mu.Lock()
	a.ranking = ranking
	a.known = true
	a.mu.Unlock()
}

func (a *RankingAdapter) apply(data json.RawMessage) {
	var ranking model.Ranking
	if err := json.Unmarshal(data, &ranking); err != nil {
		a.logger.Warn("failed to parse ranking:update", "error", err)
		return
	}

	a.mu.Lock()
	a.ranking = ranking
	a.known = true
	a.mu.Unlock()
}
