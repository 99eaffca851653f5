//go:build !tinygo

package core

import "context"

func (c *TickCounter) notify() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// idle blocks on the wake channel instead of spinning a host CPU
func (c *TickCounter) idle(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.wake:
		return nil
	}
}
