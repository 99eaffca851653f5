package core

import (
	"context"
	"sync/atomic"
)

// TickCounter is the single datum shared between the SysTick interrupt and
// the dispatch loop. The interrupt side only increments, the loop side only
// decrements; both use atomic access so neither needs to mask the other.
type TickCounter struct {
	pending uint32
	total   uint32

	// wake carries at most one token so a tick that arrives while the loop is
	// about to idle is never missed (host builds)
	wake chan struct{}
}

// NewTickCounter creates an empty counter
func NewTickCounter() *TickCounter {
	return &TickCounter{wake: make(chan struct{}, 1)}
}

// OnTick records one elapsed quantum. Safe to call from interrupt context:
// it never blocks and never allocates.
func (c *TickCounter) OnTick() {
	atomic.AddUint32(&c.pending, 1)
	atomic.AddUint32(&c.total, 1)
	c.notify()
}

// Pending returns the number of quanta not yet dispatched
func (c *TickCounter) Pending() uint32 {
	return atomic.LoadUint32(&c.pending)
}

// Total returns the number of ticks recorded since creation
func (c *TickCounter) Total() uint32 {
	return atomic.LoadUint32(&c.total)
}

// take consumes one pending quantum. It reports false, leaving the counter
// at zero, when nothing is pending.
func (c *TickCounter) take() bool {
	for {
		n := atomic.LoadUint32(&c.pending)
		if n == 0 {
			return false
		}
		if atomic.CompareAndSwapUint32(&c.pending, n, n-1) {
			return true
		}
	}
}

// Wait idles until at least one tick is pending or ctx is done
func (c *TickCounter) Wait(ctx context.Context) error {
	for c.Pending() == 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.idle(ctx); err != nil {
			return err
		}
	}
	return nil
}
