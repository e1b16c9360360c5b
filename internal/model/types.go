package model

import "github.com/google/uuid"

// Order side values.
const (
	OrderTypeBuy  = "buy"
	OrderTypeSell = "sell"
)

// Order status values.
const (
	OrderStatusPending   = "pending"
	OrderStatusExecuted  = "executed"
	OrderStatusCancelled = "cancelled"
)

// Market status values.
const (
	MarketOpen   = "open"
	MarketClosed = "closed"
)

// Order is a resting or historical order in the USD/PEN book.
type Order struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	Type      string    `json:"type"`   // "buy" or "sell"
	Rate      float64   `json:"rate"`   // PEN per USD
	Amount    float64   `json:"amount"` // USD
	Status    string    `json:"status"`
	CreatedAt int64     `json:"createdAt"` // µs since epoch
}

// Operation is an executed trade between a buy and a sell order.
type Operation struct {
	ID          uuid.UUID `json:"id"`
	BuyOrderID  uuid.UUID `json:"buyOrderId"`
	SellOrderID uuid.UUID `json:"sellOrderId"`
	BuyUserID   uuid.UUID `json:"buyUserId"`
	SellUserID  uuid.UUID `json:"sellUserId"`
	Rate        float64   `json:"rate"`
	Amount      float64   `json:"amount"`
	ExecutedAt  int64     `json:"executedAt"` // µs since epoch
}

// OrderBook is the complete book snapshot pushed on market:update.
// Snapshots replace prior state entirely; the protocol sends no deltas.
type OrderBook struct {
	BuyOrders     []Order    `json:"buyOrders"`
	SellOrders    []Order    `json:"sellOrders"`
	BestBuyRate   float64    `json:"bestBuyRate"`
	BestSellRate  float64    `json:"bestSellRate"`
	MarketStatus  string     `json:"marketStatus"` // "open" or "closed"
	LastOperation *Operation `json:"lastOperation,omitempty"`
}

// Balance is the per-user balance snapshot pushed on balance:update.
type Balance struct {
	USDBalance       float64 `json:"usdBalance"`
	PENBalance       float64 `json:"penBalance"`
	ProfitPercentage float64 `json:"profitPercentage"`
}

// MarketState is the payload of market:status.
type MarketState struct {
	Status string `json:"status"` // "open" or "closed"
}

// RankingEntry is one row of the leaderboard.
type RankingEntry struct {
	Position         int     `json:"position"`
	Name             string  `json:"name"`
	ProfitPercentage float64 `json:"profitPercentage"`
	IsCurrentUser    bool    `json:"isCurrentUser,omitempty"`
}

// Ranking is the full leaderboard snapshot pushed on ranking:update.
type Ranking []RankingEntry

// Profile is the registered participant as returned by the REST layer.
type Profile struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"isAdmin"`
	Balance Balance   `json:"balance"`
}
