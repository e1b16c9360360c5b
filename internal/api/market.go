package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/model"
)

// GetOrderBook fetches the current order book snapshot, including the
// market status. Used on page load and right after each reconnect; the
// next market:update push replaces it.
func (c *Client) GetOrderBook(ctx context.Context) (*model.OrderBook, error) {
	var resp model.OrderBook
	if err := c.get(ctx, "/market/orders", nil, &resp); err != nil {
		return nil, fmt.Errorf("get order book: %w", err)
	}
	return &resp, nil
}

// GetOperations fetches the most recent executed operations, newest
// first. A limit of 0 uses the server default.
func (c *Client) GetOperations(ctx context.Context, limit int) ([]model.Operation, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp operationsResponse
	if err := c.get(ctx, "/operations", query, &resp); err != nil {
		return nil, fmt.Errorf("get operations: %w", err)
	}
	return resp.Operations, nil
}

// GetRanking fetches the current leaderboard snapshot.
func (c *Client) GetRanking(ctx context.Context) (model.Ranking, error) {
	var resp model.Ranking
	if err := c.get(ctx, "/ranking", nil, &resp); err != nil {
		return nil, fmt.Errorf("get ranking: %w", err)
	}
	return resp, nil
}
