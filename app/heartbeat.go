package app

import "tickrun/core"

// Heartbeat blinks an LED so a stalled dispatcher is visible at a glance
type Heartbeat struct {
	led *LED
}

func NewHeartbeat(led *LED) *Heartbeat {
	return &Heartbeat{led: led}
}

// Run toggles the LED
func (h *Heartbeat) Run() {
	if err := h.led.Toggle(); err != nil {
		core.DebugPrintln("heartbeat: " + err.Error())
	}
}
