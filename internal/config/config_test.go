package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	yaml := `
server:
  rest_url: https://event.mercadocambiario.pe/api
  ws_url: wss://event.mercadocambiario.pe/ws
connection:
  max_reconnect_attempts: 3
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.RestURL != "https://event.mercadocambiario.pe/api" {
		t.Errorf("Server.RestURL = %q, want %q", cfg.Server.RestURL, "https://event.mercadocambiario.pe/api")
	}
	if cfg.Server.WSURL != "wss://event.mercadocambiario.pe/ws" {
		t.Errorf("Server.WSURL = %q, want %q", cfg.Server.WSURL, "wss://event.mercadocambiario.pe/ws")
	}
	if cfg.Connection.MaxReconnectAttempts != 3 {
		t.Errorf("Connection.MaxReconnectAttempts = %d, want 3", cfg.Connection.MaxReconnectAttempts)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_SESSION_TOKEN", "tok-secret-123")

	yaml := `
server:
  rest_url: https://localhost:3000/api
  ws_url: ws://localhost:3000
  token: ${TEST_SESSION_TOKEN}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Token != "tok-secret-123" {
		t.Errorf("Server.Token = %q, want %q", cfg.Server.Token, "tok-secret-123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
server:
  rest_url: https://localhost:3000/api
  ws_url: ws://localhost:3000
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Connection.HandshakeTimeout != DefaultHandshakeTimeout {
		t.Errorf("Connection.HandshakeTimeout = %v, want default %v", cfg.Connection.HandshakeTimeout, DefaultHandshakeTimeout)
	}
	if cfg.Connection.ReconnectBaseDelay != DefaultReconnectBaseDelay {
		t.Errorf("Connection.ReconnectBaseDelay = %v, want default %v", cfg.Connection.ReconnectBaseDelay, DefaultReconnectBaseDelay)
	}
	if cfg.Connection.MaxReconnectAttempts != DefaultMaxReconnectAttempts {
		t.Errorf("Connection.MaxReconnectAttempts = %d, want default %d", cfg.Connection.MaxReconnectAttempts, DefaultMaxReconnectAttempts)
	}
	if len(cfg.Connection.Channels) != 2 || cfg.Connection.Channels[0] != "market" || cfg.Connection.Channels[1] != "ranking" {
		t.Errorf("Connection.Channels = %v, want [market ranking]", cfg.Connection.Channels)
	}
	if cfg.Health.Port != DefaultHealthPort {
		t.Errorf("Health.Port = %d, want default %d", cfg.Health.Port, DefaultHealthPort)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server: ServerConfig{
				RestURL: "https://localhost:3000/api",
				WSURL:   "wss://localhost:3000",
			},
			Connection: ConnectionConfig{
				HandshakeTimeout:     DefaultHandshakeTimeout,
				MaxReconnectAttempts: 5,
				MessageBuffer:        256,
				Channels:             []string{"market", "ranking"},
			},
			Health: HealthConfig{Port: 8080},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "missing rest url",
			mutate:  func(c *Config) { c.Server.RestURL = "" },
			wantErr: "server.rest_url is required",
		},
		{
			name:    "missing ws url",
			mutate:  func(c *Config) { c.Server.WSURL = "" },
			wantErr: "server.ws_url is required",
		},
		{
			name:    "http ws url",
			mutate:  func(c *Config) { c.Server.WSURL = "https://localhost:3000" },
			wantErr: `server.ws_url must use ws:// or wss://, got "https://localhost:3000"`,
		},
		{
			name:    "zero reconnect attempts",
			mutate:  func(c *Config) { c.Connection.MaxReconnectAttempts = 0 },
			wantErr: "connection.max_reconnect_attempts must be >= 1",
		},
		{
			name:    "no channels",
			mutate:  func(c *Config) { c.Connection.Channels = nil },
			wantErr: "connection.channels must not be empty",
		},
		{
			name:    "bad health port",
			mutate:  func(c *Config) { c.Health.Port = 70000 },
			wantErr: "health.port must be between 1 and 65535, got 70000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}
