package connection

import (
	"errors"
	"time"

	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/backoff"
)

// Errors
var (
	ErrNotConnected  = errors.New("not connected")
	ErrAlreadyClosed = errors.New("already closed")
	ErrAuthFailure   = errors.New("authentication rejected by server")
)

// CloseCodeAuthFailure is the application close code the server uses to
// reject an invalid or expired session token on an established
// connection. Handshake-time rejections arrive as HTTP 401/403 instead.
const CloseCodeAuthFailure = 4401

// State is the Connection Manager's lifecycle state. Exactly one
// Manager exists per session and it is in exactly one State.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DisconnectReason says why a connection ended. It is an explicit enum
// rather than a transport reason string so "was this manual" is never
// decided by string matching.
type DisconnectReason int

const (
	ReasonNone DisconnectReason = iota
	ReasonManual
	ReasonAuthFailure
	ReasonTransportError
	ReasonServerClose
	ReasonStale
)

func (r DisconnectReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonManual:
		return "manual"
	case ReasonAuthFailure:
		return "auth_failure"
	case ReasonTransportError:
		return "transport_error"
	case ReasonServerClose:
		return "server_close"
	case ReasonStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Transition is delivered to state listeners on every Manager state
// change.
type Transition struct {
	From    State
	To      State
	Reason  DisconnectReason // why the previous connection ended, if relevant
	Attempt int              // reconnect attempt counter, 0 outside retries
}

// Message wraps raw message data with its receive timestamp.
type Message struct {
	Data       []byte    // Raw message bytes from the WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// Command is an outbound client-to-server message.
type Command struct {
	ID    string      `json:"id"`
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// ClientConfig configures a single WebSocket connection.
type ClientConfig struct {
	URL              string        // WebSocket URL
	Token            string        // Bearer token presented at handshake
	HandshakeTimeout time.Duration // Bound on the dial/upgrade
	WriteTimeout     time.Duration // Write deadline for sends
	PingInterval     time.Duration // Client keepalive ping interval
	PingTimeout      time.Duration // Max silence before the connection is stale
	BufferSize       int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		PingInterval:     15 * time.Second,
		PingTimeout:      60 * time.Second,
		BufferSize:       256,
	}
}

// ManagerConfig configures the Connection Manager.
type ManagerConfig struct {
	WSURL            string           // WebSocket URL
	Channels         []string         // Topics resubscribed on every Connected transition
	Backoff          backoff.Policy   // Reconnect delay policy
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	PingInterval     time.Duration
	PingTimeout      time.Duration
	MessageBuffer    int // Buffer size for the outbound message channel
}

// DefaultManagerConfig returns sensible defaults: the event's linear
// backoff with five attempts, and the market and ranking channels.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Channels:         []string{"market", "ranking"},
		Backoff:          backoff.NewLinear(time.Second, 5),
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		PingInterval:     15 * time.Second,
		PingTimeout:      60 * time.Second,
		MessageBuffer:    256,
	}
}
