// Package testutil holds small deterministic helpers shared by tests.
package testutil

import (
	"sync"
	"time"

	"homebook/internal/store"
)

// Clock is a thread-safe deterministic clock for tests. Each tick
// advances by a fixed step, so consecutive actors are always outside
// (or inside, with a small step) the audit change window.
type Clock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
	step  time.Duration
}

// NewClock creates a clock at start, advancing by step per tick.
func NewClock(start time.Time, step time.Duration) *Clock {
	start = start.Truncate(time.Second)
	return &Clock{start: start, now: start, step: step}
}

// Next advances the clock and returns the new instant.
func (c *Clock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

// Now returns the current instant without advancing.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Actor stamps an acting identity with the next tick.
func (c *Clock) Actor(user string) store.Actor {
	return store.Actor{User: user, Now: c.Next()}
}

// Reset rewinds to the start instant.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
