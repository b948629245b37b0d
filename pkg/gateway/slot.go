package gateway

import (
	"fmt"
	"sync"
	"time"
)

// ConnectionSlot admits exactly one live connection at a time. A second
// connection is rejected while the slot is held; the holder is bounded
// by a fixed wall-clock duration.
type ConnectionSlot struct {
	mu          sync.Mutex
	active      bool
	maxDuration time.Duration
	deadline    time.Time
	now         func() time.Time
}

// NewConnectionSlot creates a slot with the given wall-clock limit.
func NewConnectionSlot(maxDuration time.Duration) *ConnectionSlot {
	return &ConnectionSlot{
		maxDuration: maxDuration,
		now:         time.Now,
	}
}

// Acquire claims the slot or reports that a connection is already active.
func (c *ConnectionSlot) Acquire() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return fmt.Errorf("A connection is already active. Try again later.")
	}
	c.active = true
	c.deadline = c.now().Add(c.maxDuration)
	return nil
}

// Release frees the slot. Safe to call when the slot is not held.
func (c *ConnectionSlot) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
}

// Expired reports whether the current holder's duration has elapsed.
func (c *ConnectionSlot) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active && c.now().After(c.deadline)
}
