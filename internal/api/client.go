package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/credential"
)

// Client provides access to the exchange REST API.
type Client struct {
	baseURL    string
	token      string
	creds      *credential.Store
	httpClient *http.Client
	logger     *slog.Logger

	maxRetries   int
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client. The token may be empty for
// unauthenticated calls such as Login and Register.
func NewClient(baseURL, token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       slog.Default(),
		maxRetries:   3,
		retryBackoff: time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithCredentials makes the client read its bearer token from the
// store on every request instead of the fixed token, so the client
// picks up logins and revocations immediately.
func WithCredentials(store *credential.Store) ClientOption {
	return func(c *Client) {
		c.creds = store
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// bearerToken returns the token to send, preferring the credential
// store when one is wired.
func (c *Client) bearerToken() string {
	if c.creds != nil {
		if tok, ok := c.creds.Token(); ok {
			return tok
		}
		return ""
	}
	return c.token
}
