package api

import (
	"github.com/JeanGrandez/mcfrontend-v1-sub000/internal/model"
)

// Session is returned by Login and Register: the bearer token for the
// WebSocket and subsequent REST calls, plus the user's profile.
type Session struct {
	Token   string        `json:"token"`
	Profile model.Profile `json:"user"`
}

// LoginRequest identifies a returning participant by email.
type LoginRequest struct {
	Email string `json:"email"`
}

// RegistrationRequest creates a new event participant.
type RegistrationRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// OrderRequest places a new buy or sell order at the given rate.
type OrderRequest struct {
	Type   string  `json:"type"` // model.OrderTypeBuy or model.OrderTypeSell
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
}

// MarketStatusRequest changes the market status. Admin only.
type MarketStatusRequest struct {
	Status string `json:"status"` // model.MarketOpen or model.MarketClosed
}

// operationsResponse wraps the operations list.
type operationsResponse struct {
	Operations []model.Operation `json:"operations"`
}

// orderResponse wraps a single order.
type orderResponse struct {
	Order model.Order `json:"order"`
}
