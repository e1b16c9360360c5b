// Package connection implements the streaming connection to the
// trading-event backend.
//
// It has two layers:
//   - Client wraps a single WebSocket: dial with bearer auth, read
//     loop, heartbeat, and classification of why the socket died.
//   - Manager owns at most one live Client per session and drives the
//     Idle/Connecting/Connected/Reconnecting/Failed state machine:
//     backoff and retry on transport failures, a non-retrying path for
//     auth failures (which also invalidates the stored credential),
//     and replay of channel subscriptions on every reconnect.
package connection
