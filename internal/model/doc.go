// Package model defines the domain types shared across the sync client:
// the order book, orders and executed operations, user balance, market
// status, and the ranking. All timestamps are microseconds since epoch.
package model
