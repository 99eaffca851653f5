//go:build rp2040

package main

import "machine"

// Raspberry Pi Pico wiring
const (
	pinHeartbeat = machine.GPIO25 // On-board LED
	pinRed       = machine.GPIO2
	pinYellow    = machine.GPIO3
	pinGreen     = machine.GPIO4
	pinSwitch    = machine.GPIO15
	pinCtrlLED   = machine.GPIO16
	pinMarker    = machine.GPIO22 // Scope probe, one burst per runnable call
)

const telemetryBaud = 115200

// SysTick's reference tap on the RP2040 is the 1 MHz watchdog tick
const referenceClockHz = 1000000
