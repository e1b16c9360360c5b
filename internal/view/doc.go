// Package view holds the per-channel reactive adapters. Each adapter
// owns the "last known value" for one semantic channel, updates it as
// dispatched events arrive, and hands consumers a copy on request.
// Incoming events are complete snapshots and are applied by
// replacement, never merged. Consumers that need state from before
// their subscription bootstrap it from the REST layer, not from here.
package view
