// Package testutil provides deterministic collaborators — a fake wall
// clock and a fixed UUID source — so store, resolver, engine, and
// harness tests can assert on exact timestamps and identities instead of
// "roughly now" and "some UUID".
package testutil

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// FakeClock is a thread-safe, manually-advanced domain.Clock.
//
// Unlike domain.SystemClock, FakeClock never moves on its own: tests
// advance it explicitly between steps so that LWW comparisons (§4.5) and
// the "updatedAt never decreases" invariant (§3) are exercised against
// exact, reproducible instants.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock starting at the given instant.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start.Truncate(time.Millisecond)}
}

// Now implements domain.Clock.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new instant.
func (c *FakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d).Truncate(time.Millisecond)
	return c.now
}

// Set pins the clock to an exact instant.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.Truncate(time.Millisecond)
}

// FixedUUIDs returns predetermined UUIDs in order, for deterministic
// Progress.ID allocation in tests. Panics once exhausted, the same
// fail-fast contract the teacher's FixedGenerator used for flow tokens.
type FixedUUIDs struct {
	mu     sync.Mutex
	values []string
	idx    int
}

// NewFixedUUIDs creates a generator that returns values in order. Passing
// "" for a value mints a real UUID, useful when a test only cares that
// some of the sequence is pinned.
func NewFixedUUIDs(values ...string) *FixedUUIDs {
	resolved := make([]string, len(values))
	for i, v := range values {
		if v == "" {
			v = uuid.NewString()
		}
		resolved[i] = v
	}
	return &FixedUUIDs{values: resolved}
}

// Next returns the next predetermined UUID string.
func (g *FixedUUIDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.values) {
		panic("testutil: FixedUUIDs exhausted")
	}
	v := g.values[g.idx]
	g.idx++
	return v
}
