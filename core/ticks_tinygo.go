//go:build tinygo

package core

import "context"

// notify is a no-op on hardware: the interrupt itself wakes the core
func (c *TickCounter) notify() {}

func (c *TickCounter) idle(ctx context.Context) error {
	sleepUnless(func() bool { return c.Pending() != 0 })
	return nil
}
