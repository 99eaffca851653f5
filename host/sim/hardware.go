// Package sim runs the firmware on a host: a simulated SysTick peripheral,
// GPIO pins and a character display.
package sim

import (
	"context"
	"sync/atomic"
	"time"

	"tickrun/core"
)

// Hardware plays the SysTick peripheral. It watches the register file and
// raises the interrupt each time the programmed interval elapses.
type Hardware struct {
	regs  *core.MemoryRegisters
	timer *core.SysTick
	speed float64

	fired     uint64
	coalesced uint64
}

// NewHardware creates a register file and driver for the given clocks.
// speed scales simulated time: 2 runs the timer twice as fast as real time.
func NewHardware(cfg core.SysTickConfig, speed float64) *Hardware {
	if speed <= 0 {
		speed = 1
	}
	regs := core.NewMemoryRegisters()
	return &Hardware{
		regs:  regs,
		timer: core.NewSysTick(regs, cfg),
		speed: speed,
	}
}

// Timer returns the driver bound to the simulated registers
func (h *Hardware) Timer() *core.SysTick {
	return h.timer
}

// Registers returns the simulated register file
func (h *Hardware) Registers() *core.MemoryRegisters {
	return h.regs
}

// Fired returns the number of interrupts raised
func (h *Hardware) Fired() uint64 {
	return atomic.LoadUint64(&h.fired)
}

// Coalesced returns the number of expiries merged into a single interrupt
// because the host fell behind. Each one is a quantum the tick counter never
// saw, so simulated time trails wall time by that many quanta.
func (h *Hardware) Coalesced() uint64 {
	return atomic.LoadUint64(&h.coalesced)
}

// period returns the wall-clock time between expiries, or 0 when the
// counter would not raise interrupts
func (h *Hardware) period() time.Duration {
	if !h.timer.Enabled() || !h.timer.InterruptEnabled() {
		return 0
	}
	d := time.Duration(float64(h.timer.Interval()) / h.speed)
	if d <= 0 {
		d = time.Microsecond
	}
	return d
}

// Run raises interrupts until ctx is done. Writes to CTRL or LOAD restart
// the countdown, as Start clearing the current value does on silicon. When
// the host falls more than a period behind, the missed expiries collapse
// into one interrupt like a single pending exception.
func (h *Hardware) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	var expiry <-chan time.Time
	var next time.Time
	var period time.Duration

	arm := func(from time.Time) {
		timer.Stop()
		period = h.period()
		if period == 0 {
			expiry = nil
			return
		}
		next = from.Add(period)
		timer.Reset(time.Until(next))
		expiry = timer.C
	}
	arm(time.Now())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-h.regs.Changed():
			arm(time.Now())

		case <-expiry:
			atomic.AddUint64(&h.fired, 1)
			core.RunInterrupt(h.timer.HandleInterrupt)

			now := time.Now()
			if behind := now.Sub(next); behind > period {
				atomic.AddUint64(&h.coalesced, uint64(behind/period))
				arm(now)
			} else {
				arm(next)
			}
		}
	}
}
