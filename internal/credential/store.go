// Package credential holds the session bearer token and notifies
// listeners when it changes. The Connection Manager reads the token at
// connect time and clears it when the server rejects it, so the rest
// of the application never keeps trusting a dead session.
package credential

import "sync"

// Listener is notified after the stored token changes. ok is false when
// the token was cleared.
type Listener func(token string, ok bool)

// Store is a thread-safe holder for the session bearer token.
type Store struct {
	mu        sync.Mutex
	token     string
	hasToken  bool
	nextID    int
	listeners map[int]Listener
}

// NewStore creates an empty credential store.
func NewStore() *Store {
	return &Store{listeners: make(map[int]Listener)}
}

// Token returns the current token. ok is false if no token is stored.
func (s *Store) Token() (token string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.hasToken
}

// Set stores a new token and notifies listeners.
func (s *Store) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.hasToken = token != ""
	has := s.hasToken
	listeners := s.snapshotLocked()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(token, has)
	}
}

// Clear removes the stored token and notifies listeners. Called by the
// Connection Manager on a server-reported auth failure.
func (s *Store) Clear() {
	s.mu.Lock()
	cleared := s.hasToken
	s.token = ""
	s.hasToken = false
	listeners := s.snapshotLocked()
	s.mu.Unlock()

	if !cleared {
		return
	}
	for _, fn := range listeners {
		fn("", false)
	}
}

// OnChange registers a listener and returns a function that removes
// exactly that listener.
func (s *Store) OnChange(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// snapshotLocked copies the listener set in registration order so
// notification runs without holding the lock.
func (s *Store) snapshotLocked() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.listeners[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
