package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.RestURL == "" {
		return errors.New("server.rest_url is required")
	}
	if c.Server.WSURL == "" {
		return errors.New("server.ws_url is required")
	}
	if !strings.HasPrefix(c.Server.WSURL, "ws://") && !strings.HasPrefix(c.Server.WSURL, "wss://") {
		return fmt.Errorf("server.ws_url must use ws:// or wss://, got %q", c.Server.WSURL)
	}

	if c.Connection.MaxReconnectAttempts < 1 {
		return errors.New("connection.max_reconnect_attempts must be >= 1")
	}
	if c.Connection.MessageBuffer < 1 {
		return errors.New("connection.message_buffer must be >= 1")
	}
	if c.Connection.HandshakeTimeout <= 0 {
		return errors.New("connection.handshake_timeout must be positive")
	}
	if len(c.Connection.Channels) == 0 {
		return errors.New("connection.channels must not be empty")
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 1 and 65535, got %d", c.Health.Port)
	}

	return nil
}
