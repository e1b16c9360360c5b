package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/model"
)

// PlaceOrder submits a new order. The server may execute it
// immediately against the opposite side; the returned order carries
// the resulting status.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (*model.Order, error) {
	var resp orderResponse
	if err := c.post(ctx, "/orders", req, &resp); err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}
	return &resp.Order, nil
}

// CancelOrder cancels a pending order owned by the authenticated user.
func (c *Client) CancelOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	body, err := c.doWithRetry(ctx, http.MethodDelete, "/orders/"+id.String(), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("cancel order %s: %w", id, err)
	}

	var resp orderResponse
	if err := unmarshalBody(body, &resp); err != nil {
		return nil, fmt.Errorf("cancel order %s: %w", id, err)
	}
	return &resp.Order, nil
}
