package connection

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/credential"
)

// Manager owns the single streaming connection for a session. All
// consumers share it; nothing else in the process opens a socket to the
// backend.
//
// Construct one Manager per application session and pass it by
// reference to whatever needs it. It is never package-level state, so
// tests can run isolated instances side by side.
type Manager struct {
	cfg    ManagerConfig
	creds  *credential.Store
	logger *slog.Logger

	newClient func(ClientConfig, *slog.Logger) Client

	mu      sync.Mutex
	state   State
	client  Client
	gen     int // connection generation; goroutines from older clients are ignored
	attempt int
	closed  bool

	// Fan-in of all connections' inbound messages; survives reconnects.
	events chan Message

	// State transition listeners.
	nextListenerID int
	listeners      map[int]func(Transition)

	unsubscribeCreds func()

	// Signals retryLoop to abort its wait.
	retryCancel context.CancelFunc

	wg sync.WaitGroup
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClientFactory replaces the WebSocket client constructor. Tests
// use it to substitute a double for the transport.
func WithClientFactory(fn func(ClientConfig, *slog.Logger) Client) ManagerOption {
	return func(m *Manager) {
		m.newClient = fn
	}
}

// NewManager creates a Connection Manager bound to the given credential
// store. The manager reacts to credential changes: a new token forces a
// fresh authenticated connection, a cleared token disconnects.
func NewManager(cfg ManagerConfig, creds *credential.Store, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		cfg:       cfg,
		creds:     creds,
		logger:    logger,
		newClient: NewClient,
		state:     StateIdle,
		events:    make(chan Message, cfg.MessageBuffer),
		listeners: make(map[int]func(Transition)),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.unsubscribeCreds = creds.OnChange(func(token string, ok bool) {
		if !ok {
			m.Disconnect()
			return
		}
		m.ReconnectWithCredential(token)
	})

	return m
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsConnected reports whether the connection is established.
func (m *Manager) IsConnected() bool {
	return m.State() == StateConnected
}

// Events returns the stream of raw inbound messages. The channel stays
// open across reconnects and closes only when the Manager is closed.
func (m *Manager) Events() <-chan Message {
	return m.events
}

// OnStateChange registers a listener for state transitions and returns
// a function that removes exactly that listener. Listeners are invoked
// synchronously, in registration order, after each transition.
func (m *Manager) OnStateChange(fn func(Transition)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextListenerID
	m.nextListenerID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Connect establishes the connection using the stored credential. It is
// a no-op when already Connected or Connecting. Without a credential it
// logs and stays Idle.
func (m *Manager) Connect() {
	m.mu.Lock()
	if m.closed || m.state == StateConnected || m.state == StateConnecting || m.state == StateReconnecting {
		m.mu.Unlock()
		return
	}

	token, ok := m.creds.Token()
	if !ok {
		m.mu.Unlock()
		m.logger.Info("connect skipped: no credential available")
		return
	}

	gen := m.gen
	m.setStateLocked(StateConnecting, ReasonNone)
	m.mu.Unlock()

	m.dial(token, gen)
}

// Disconnect is the manual, intentional teardown. It transitions to
// Idle and never triggers the reconnect path.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	if m.state == StateIdle {
		m.mu.Unlock()
		return
	}

	c := m.teardownLocked()
	m.setStateLocked(StateIdle, ReasonManual)
	m.mu.Unlock()

	if c != nil {
		c.Close()
	}
}

// ReconnectWithCredential tears down any existing connection and opens
// a fresh one authenticated with the given token. Used on credential
// change (login), not on transient failure.
func (m *Manager) ReconnectWithCredential(token string) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	c := m.teardownLocked()
	gen := m.gen
	m.setStateLocked(StateConnecting, ReasonNone)
	m.mu.Unlock()

	if c != nil {
		c.Close()
	}

	m.dial(token, gen)
}

// Emit sends a fire-and-forget outbound message. When not connected the
// message is dropped with a warning; it is never queued for later.
func (m *Manager) Emit(event string, payload interface{}) {
	m.mu.Lock()
	c := m.client
	st := m.state
	m.mu.Unlock()

	if st != StateConnected || c == nil {
		m.logger.Warn("emit dropped: not connected", "event", event, "state", st.String())
		return
	}

	cmd := Command{ID: uuid.NewString(), Event: event, Data: payload}
	data, err := json.Marshal(cmd)
	if err != nil {
		m.logger.Warn("emit dropped: marshal failed", "event", event, "error", err)
		return
	}

	if err := c.Send(data); err != nil {
		m.logger.Warn("emit failed", "event", event, "error", err)
	}
}

// Close shuts the Manager down for good and closes Events().
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	c := m.teardownLocked()
	m.setStateLocked(StateIdle, ReasonManual)
	m.mu.Unlock()

	if m.unsubscribeCreds != nil {
		m.unsubscribeCreds()
	}
	if c != nil {
		c.Close()
	}

	m.wg.Wait()
	close(m.events)
}

// teardownLocked detaches the current client and cancels any pending
// retry. The caller closes the returned client outside the lock.
func (m *Manager) teardownLocked() Client {
	m.gen++
	m.attempt = 0
	if m.retryCancel != nil {
		m.retryCancel()
		m.retryCancel = nil
	}
	c := m.client
	m.client = nil
	return c
}

// setStateLocked records a transition and notifies listeners. The lock
// is held by the caller; listeners run outside it.
func (m *Manager) setStateLocked(to State, reason DisconnectReason) {
	from := m.state
	if from == to {
		return
	}
	m.state = to

	t := Transition{From: from, To: to, Reason: reason, Attempt: m.attempt}
	listeners := make([]func(Transition), 0, len(m.listeners))
	for id := 0; id < m.nextListenerID; id++ {
		if fn, ok := m.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}

	m.logger.Info("connection state changed",
		"from", from.String(),
		"to", to.String(),
		"reason", reason.String(),
		"attempt", m.attempt,
	)

	m.mu.Unlock()
	for _, fn := range listeners {
		fn(t)
	}
	m.mu.Lock()
}

// dial attempts one handshake and routes the outcome: success becomes
// Connected, an auth rejection is fatal, anything else enters the
// retry path. gen pins the connection generation the attempt belongs
// to; a teardown in between invalidates it.
func (m *Manager) dial(token string, gen int) {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.HandshakeTimeout)
	defer cancel()

	c := m.newClient(m.clientConfig(token), m.logger)
	err := c.Connect(ctx)

	switch {
	case err == nil:
		m.becomeConnected(c, gen)
	case errors.Is(err, ErrAuthFailure):
		c.Close()
		m.handleAuthFailure(gen)
	default:
		m.logger.Warn("connect failed", "error", err)
		m.beginReconnect(gen, ReasonTransportError)
	}
}

func (m *Manager) clientConfig(token string) ClientConfig {
	return ClientConfig{
		URL:              m.cfg.WSURL,
		Token:            token,
		HandshakeTimeout: m.cfg.HandshakeTimeout,
		WriteTimeout:     m.cfg.WriteTimeout,
		PingInterval:     m.cfg.PingInterval,
		PingTimeout:      m.cfg.PingTimeout,
		BufferSize:       m.cfg.MessageBuffer,
	}
}

// becomeConnected installs the new client, replays the channel
// subscriptions, and starts forwarding its messages. Subscriptions are
// replayed on every transition into Connected, not only the first.
func (m *Manager) becomeConnected(c Client, gen int) {
	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		c.Close()
		return
	}
	m.client = c
	m.attempt = 0
	m.setStateLocked(StateConnected, ReasonNone)
	m.mu.Unlock()

	for _, channel := range m.cfg.Channels {
		cmd := Command{ID: uuid.NewString(), Event: "subscribe:" + channel}
		data, err := json.Marshal(cmd)
		if err != nil {
			continue
		}
		if err := c.Send(data); err != nil {
			m.logger.Warn("subscribe failed", "channel", channel, "error", err)
		} else {
			m.logger.Debug("subscribed", "channel", channel)
		}
	}

	m.wg.Add(1)
	go m.watch(c, gen)
}

// watch forwards one client's messages into the shared events channel
// and reacts when the client dies.
func (m *Manager) watch(c Client, gen int) {
	defer m.wg.Done()

	for {
		select {
		case msg, ok := <-c.Messages():
			if !ok {
				return
			}
			m.mu.Lock()
			stale := gen != m.gen
			m.mu.Unlock()
			if stale {
				return
			}
			select {
			case m.events <- msg:
			default:
				m.logger.Warn("event buffer full, dropping message")
			}

		case reason := <-c.Closed():
			// Forward what the transport already delivered before
			// reacting to the death, so inbound messages are never
			// lost to select ordering at disconnect.
			m.drainMessages(c, gen)
			m.handleDead(c, gen, reason)
			return

		case <-c.Done():
			// Manual teardown closed this client.
			return
		}
	}
}

// drainMessages forwards any messages still buffered on a dead client.
func (m *Manager) drainMessages(c Client, gen int) {
	for {
		select {
		case msg, ok := <-c.Messages():
			if !ok {
				return
			}
			m.mu.Lock()
			stale := gen != m.gen
			m.mu.Unlock()
			if stale {
				return
			}
			select {
			case m.events <- msg:
			default:
				m.logger.Warn("event buffer full, dropping message")
			}
		default:
			return
		}
	}
}

// handleDead reacts to a connection dying for a non-manual reason.
func (m *Manager) handleDead(c Client, gen int, reason DisconnectReason) {
	m.mu.Lock()
	if gen != m.gen || m.closed {
		// A teardown already replaced this connection.
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	c.Close()

	if reason == ReasonAuthFailure {
		m.handleAuthFailure(gen)
		return
	}

	m.beginReconnect(gen, reason)
}

// handleAuthFailure is the non-retrying path: disconnect, transition to
// Idle, and clear the stored credential so the rest of the application
// stops trusting the session. Never fed into the backoff counter.
func (m *Manager) handleAuthFailure(gen int) {
	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		return
	}

	c := m.teardownLocked()
	m.setStateLocked(StateIdle, ReasonAuthFailure)
	m.mu.Unlock()

	m.logger.Error("authentication rejected, clearing credential")

	if c != nil {
		c.Close()
	}

	// Notifies the credential listeners (including our own, for which
	// Disconnect is then a no-op).
	m.creds.Clear()
}

// beginReconnect moves into Reconnecting and starts the retry loop,
// unless the attempt budget is already spent.
func (m *Manager) beginReconnect(gen int, reason DisconnectReason) {
	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		return
	}

	m.client = nil
	m.gen++
	gen = m.gen

	if m.attempt >= m.cfg.Backoff.MaxAttempts() {
		m.setStateLocked(StateFailed, reason)
		m.mu.Unlock()
		m.logger.Error("reconnect attempts exhausted", "attempts", m.attempt)
		return
	}

	m.attempt++
	attempt := m.attempt

	ctx, cancel := context.WithCancel(context.Background())
	m.retryCancel = cancel
	m.setStateLocked(StateReconnecting, reason)
	m.mu.Unlock()

	delay := m.cfg.Backoff.NextDelay(attempt)
	m.logger.Info("scheduling reconnect", "attempt", attempt, "delay", delay)

	m.wg.Add(1)
	go m.retryAfter(ctx, gen, delay)
}

// retryAfter waits out the backoff delay, then attempts one reconnect.
func (m *Manager) retryAfter(ctx context.Context, gen int, delay time.Duration) {
	defer m.wg.Done()

	select {
	case <-ctx.Done():
		return
	case <-time.After(delay):
	}

	m.mu.Lock()
	if m.closed || gen != m.gen || m.state != StateReconnecting {
		m.mu.Unlock()
		return
	}

	token, ok := m.creds.Token()
	if !ok {
		// Credential disappeared while we were backing off.
		m.setStateLocked(StateIdle, ReasonManual)
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	ctx2, cancel := context.WithTimeout(context.Background(), m.cfg.HandshakeTimeout)
	defer cancel()

	c := m.newClient(m.clientConfig(token), m.logger)
	err := c.Connect(ctx2)

	switch {
	case err == nil:
		m.becomeConnected(c, gen)
	case errors.Is(err, ErrAuthFailure):
		c.Close()
		m.handleAuthFailure(gen)
	default:
		m.logger.Warn("reconnect attempt failed", "error", err)
		m.beginReconnect(gen, ReasonTransportError)
	}
}
