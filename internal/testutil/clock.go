// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"sync"
	"time"
)

// ReferenceTime is the default FakeClock time.
var ReferenceTime = time.Date(2025, 1, 15, 12, 30, 45, 123456000, time.UTC)

// FakeClock is a clock that only moves when told to.
// It satisfies registry.Clock.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
}

// NewFakeClock creates a FakeClock set to initial, or ReferenceTime if initial
// is zero.
func NewFakeClock(initial time.Time) *FakeClock {
	if initial.IsZero() {
		initial = ReferenceTime
	}
	return &FakeClock{current: initial}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the fake time forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Set sets the fake time to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}
