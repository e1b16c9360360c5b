package api

import (
	"context"
	"fmt"

	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/model"
)

// Login authenticates a returning participant by email and returns a
// fresh session token.
func (c *Client) Login(ctx context.Context, email string) (*Session, error) {
	var resp Session
	if err := c.post(ctx, "/users/login", LoginRequest{Email: email}, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &resp, nil
}

// Register creates a new participant and returns their session.
func (c *Client) Register(ctx context.Context, req RegistrationRequest) (*Session, error) {
	var resp Session
	if err := c.post(ctx, "/users/register", req, &resp); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &resp, nil
}

// GetProfile fetches the authenticated user's profile and balance.
func (c *Client) GetProfile(ctx context.Context) (*model.Profile, error) {
	var resp model.Profile
	if err := c.get(ctx, "/users/me", nil, &resp); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &resp, nil
}
