// Package dispatch multiplexes the single streaming connection's
// inbound events to any number of independent listeners.
//
// Dispatcher is the typed publish/subscribe registry; its lifetime is
// independent of the physical connection, so registrations survive
// reconnects untouched. Pump drains the Connection Manager's message
// channel and feeds the Dispatcher, which gives every channel's events
// a single, ordered delivery path.
package dispatch
