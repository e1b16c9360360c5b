package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultHandshakeTimeout     = 10 * time.Second
	DefaultWriteTimeout         = 5 * time.Second
	DefaultPingInterval         = 15 * time.Second
	DefaultPingTimeout          = 60 * time.Second
	DefaultReconnectBaseDelay   = 1 * time.Second
	DefaultMaxReconnectAttempts = 5
	DefaultMessageBuffer        = 256
	DefaultHealthPort           = 8080
)

// DefaultChannels are the topics every client subscribes to after
// connecting. Balance and order events arrive on an implicit per-user
// channel and need no explicit subscribe command.
var DefaultChannels = []string{"market", "ranking"}

func (c *Config) applyDefaults() {
	if c.Connection.HandshakeTimeout == 0 {
		c.Connection.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Connection.WriteTimeout == 0 {
		c.Connection.WriteTimeout = DefaultWriteTimeout
	}
	if c.Connection.PingInterval == 0 {
		c.Connection.PingInterval = DefaultPingInterval
	}
	if c.Connection.PingTimeout == 0 {
		c.Connection.PingTimeout = DefaultPingTimeout
	}
	if c.Connection.ReconnectBaseDelay == 0 {
		c.Connection.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Connection.MaxReconnectAttempts == 0 {
		c.Connection.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if c.Connection.MessageBuffer == 0 {
		c.Connection.MessageBuffer = DefaultMessageBuffer
	}
	if len(c.Connection.Channels) == 0 {
		c.Connection.Channels = append([]string(nil), DefaultChannels...)
	}
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
}
