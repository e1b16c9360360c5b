package api

import (
	"context"
	"fmt"
	"net/http"
)

// SetMarketStatus opens or closes the market. Admin only; regular
// tokens get a 403.
func (c *Client) SetMarketStatus(ctx context.Context, status string) error {
	if err := c.post(ctx, "/admin/market/status", MarketStatusRequest{Status: status}, nil); err != nil {
		return fmt.Errorf("set market status %s: %w", status, err)
	}
	return nil
}

// ExportOperationsCSV downloads the full operations log as CSV bytes.
// Admin only.
func (c *Client) ExportOperationsCSV(ctx context.Context) ([]byte, error) {
	body, err := c.doWithRetry(ctx, http.MethodGet, "/admin/operations/export", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("export operations: %w", err)
	}
	return body, nil
}
