//go:build stm32f4

package main

import "machine"

// STM32F401 "black pill" wiring
const (
	pinHeartbeat = machine.PC13 // On-board LED, active low
	pinRed       = machine.PB0
	pinYellow    = machine.PB1
	pinGreen     = machine.PB2
	pinSwitch    = machine.PA0 // On-board KEY, pulled up
	pinCtrlLED   = machine.PB10

	// HD44780 in 4-bit mode, R/W tied to ground
	pinLCDRS = machine.PB12
	pinLCDE  = machine.PB13
	pinLCDD4 = machine.PB4
	pinLCDD5 = machine.PB5
	pinLCDD6 = machine.PB6
	pinLCDD7 = machine.PB7
)

const telemetryBaud = 115200
