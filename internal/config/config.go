package config

import "time"

// Config is the root configuration for a dashboard client instance.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Connection ConnectionConfig `yaml:"connection"`
	Health     HealthConfig     `yaml:"health"`
}

// ServerConfig holds the trading-event backend endpoints.
type ServerConfig struct {
	RestURL string `yaml:"rest_url"`
	WSURL   string `yaml:"ws_url"`
	Token   string `yaml:"token"` // optional; normally seeded at login
}

// ConnectionConfig holds streaming connection settings.
type ConnectionConfig struct {
	HandshakeTimeout     time.Duration `yaml:"handshake_timeout"`
	WriteTimeout         time.Duration `yaml:"write_timeout"`
	PingInterval         time.Duration `yaml:"ping_interval"`
	PingTimeout          time.Duration `yaml:"ping_timeout"`
	ReconnectBaseDelay   time.Duration `yaml:"reconnect_base_delay"`
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
	MessageBuffer        int           `yaml:"message_buffer"`
	Channels             []string      `yaml:"channels"`
}

// HealthConfig holds the local health endpoint settings.
type HealthConfig struct {
	Port int `yaml:"port"`
}
