// Package testutil holds test doubles shared by several packages.
package testutil

import (
	"sync"
	"time"

	"github.com/bft-labs/flowsync/pkg/timing"
)

// ManualClock is a timing.Source that only moves when told to.
//
// Thread-safety: all methods are safe for concurrent use.
type ManualClock struct {
	mu  sync.Mutex
	now timing.Timepoint
}

// NewManualClock creates a clock reading start.
func NewManualClock(start timing.Timepoint) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current reading.
func (c *ManualClock) Now() timing.Timepoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t, forwards or backwards.
func (c *ManualClock) Set(t timing.Timepoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
