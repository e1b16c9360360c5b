// Package status derives a coarse, user-facing connection status from
// Connection Manager transitions. Purely observational: it never
// controls the connection, it only feeds banners and toasts.
package status

import (
	"sync"

	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/connection"
)

// Status is the coarse connection health shown to the user.
type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusError        Status = "error"
)

// FromState maps a Manager state onto the user-facing status.
// Reconnecting is shown as connecting; a terminal failure as error.
func FromState(s connection.State) Status {
	switch s {
	case connection.StateConnecting, connection.StateReconnecting:
		return StatusConnecting
	case connection.StateConnected:
		return StatusConnected
	case connection.StateFailed:
		return StatusError
	default:
		return StatusDisconnected
	}
}

// transitionSource is the slice of the Connection Manager the reporter
// observes.
type transitionSource interface {
	OnStateChange(fn func(connection.Transition)) (unsubscribe func())
	State() connection.State
}

// Reporter tracks the current coarse status and notifies listeners when
// it changes.
type Reporter struct {
	mu        sync.Mutex
	current   Status
	nextID    int
	listeners map[int]func(Status)

	unsubManager func()
}

// NewReporter creates a reporter following the given manager.
func NewReporter(conn transitionSource) *Reporter {
	r := &Reporter{
		current:   FromState(conn.State()),
		listeners: make(map[int]func(Status)),
	}
	r.unsubManager = conn.OnStateChange(func(t connection.Transition) {
		r.update(FromState(t.To))
	})
	return r
}

// Status returns the current coarse status.
func (r *Reporter) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// OnChange registers a listener called whenever the coarse status
// changes, and returns a function removing exactly that listener.
// Transitions that map to the same coarse status do not re-notify.
func (r *Reporter) OnChange(fn func(Status)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// Close detaches the reporter from the manager.
func (r *Reporter) Close() {
	if r.unsubManager != nil {
		r.unsubManager()
		r.unsubManager = nil
	}
}

func (r *Reporter) update(next Status) {
	r.mu.Lock()
	if next == r.current {
		r.mu.Unlock()
		return
	}
	r.current = next

	listeners := make([]func(Status), 0, len(r.listeners))
	for id := 0; id < r.nextID; id++ {
		if fn, ok := r.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
}
