package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock_StartsAtGivenInstant(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := NewFakeClock(start)
	assert.Equal(t, start, clock.Now())
}

func TestFakeClock_AdvanceMovesForward(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := NewFakeClock(start)

	next := clock.Advance(time.Hour)
	assert.Equal(t, start.Add(time.Hour), next)
	assert.Equal(t, start.Add(time.Hour), clock.Now())
}

func TestFakeClock_SetPinsExactInstant(t *testing.T) {
	clock := NewFakeClock(time.Now())
	target := time.Date(2030, 6, 15, 0, 0, 0, 0, time.UTC)
	clock.Set(target)
	assert.Equal(t, target, clock.Now())
}

func TestFakeClock_ThreadSafe(t *testing.T) {
	clock := NewFakeClock(time.Now())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Advance(time.Millisecond)
			_ = clock.Now()
		}()
	}
	wg.Wait()
}

func TestFixedUUIDs_ReturnsInOrder(t *testing.T) {
	gen := NewFixedUUIDs("aaaa", "bbbb", "cccc")
	assert.Equal(t, "aaaa", gen.Next())
	assert.Equal(t, "bbbb", gen.Next())
	assert.Equal(t, "cccc", gen.Next())
}

func TestFixedUUIDs_PanicsWhenExhausted(t *testing.T) {
	gen := NewFixedUUIDs("only-one")
	gen.Next()
	assert.Panics(t, func() { gen.Next() })
}
