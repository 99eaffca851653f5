//go:build tinygo

package core

import (
	"device/arm"
	"runtime/interrupt"
)

// disableInterrupts disables interrupts and returns the previous state
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state
func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}

// sleepUnless puts the core to sleep until the next interrupt unless ready
// already reports true. The check runs with interrupts masked; WFI still
// wakes on a pending interrupt while PRIMASK is set, so a tick that lands
// between the check and the sleep is not missed.
func sleepUnless(ready func() bool) {
	state := interrupt.Disable()
	if !ready() {
		arm.Asm("wfi")
	}
	interrupt.Restore(state)
}
