// Package api provides the REST client for the exchange backend.
//
// The dashboard uses it for authentication and for fetching snapshot
// state (order book, operations, ranking, profile) on load and after
// every reconnect, before the next push update arrives.
package api
