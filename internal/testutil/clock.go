package testutil

import "sync"

// FakeClock provides a thread-safe, settable wall clock for tests.
//
// The store stamps last-modification times from an injected clock; tests use
// FakeClock to make those stamps deterministic and to simulate time passing
// between operations.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeClock struct {
	mu sync.Mutex
	ms int64
}

// NewFakeClock creates a clock frozen at the given epoch milliseconds.
func NewFakeClock(ms int64) *FakeClock {
	return &FakeClock{ms: ms}
}

// NowMillis returns the frozen time.
func (c *FakeClock) NowMillis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ms
}

// Advance moves the clock forward by delta milliseconds.
func (c *FakeClock) Advance(delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ms += delta
}

// Set moves the clock to an absolute time.
func (c *FakeClock) Set(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ms = ms
}
