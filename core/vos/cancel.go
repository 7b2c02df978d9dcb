package vos

import "sync/atomic"

// CancelToken is a one-way flag shared by every stage of an invocation. It's
// safe to cancel from another goroutine.
type CancelToken struct {
	cancelled atomic.Bool
}

// Cancel marks the token. Once cancelled it stays cancelled.
func (c *CancelToken) Cancel() {
	c.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (c *CancelToken) Cancelled() bool {
	return c.cancelled.Load()
}
