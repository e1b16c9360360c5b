// Package backoff provides reconnect delay policies for the streaming
// connection. The live event ships with a linear policy and a small
// fixed attempt budget; Policy keeps the choice replaceable for
// deployments that need real exponential backoff.
package backoff

import "time"

// Policy decides how long to wait before a reconnect attempt and how
// many attempts are allowed before giving up.
type Policy interface {
	// NextDelay returns the wait before attempt n (1-indexed).
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the attempt budget. After this many failed
	// attempts the connection is considered failed until an external
	// trigger restarts it.
	MaxAttempts() int
}

// Linear waits Base*attempt before each attempt. Delays are
// non-decreasing across attempts 1..Attempts.
type Linear struct {
	Base     time.Duration
	Attempts int
}

// NewLinear creates a linear policy.
func NewLinear(base time.Duration, attempts int) Linear {
	return Linear{Base: base, Attempts: attempts}
}

// NextDelay returns Base*attempt.
func (l Linear) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return l.Base * time.Duration(attempt)
}

// MaxAttempts returns the attempt budget.
func (l Linear) MaxAttempts() int {
	return l.Attempts
}

// Exponential doubles the delay each attempt, capped at Max. Not used
// by the event configuration; available for longer-lived deployments.
type Exponential struct {
	Base     time.Duration
	Max      time.Duration
	Attempts int
}

// NextDelay returns Base*2^(attempt-1), capped at Max.
func (e Exponential) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := e.Base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= e.Max {
			return e.Max
		}
	}
	if delay > e.Max {
		return e.Max
	}
	return delay
}

// MaxAttempts returns the attempt budget.
func (e Exponential) MaxAttempts() int {
	return e.Attempts
}
