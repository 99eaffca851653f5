package app

import "tickrun/core"

// LED drives a single indicator through the GPIO HAL
type LED struct {
	gpio      core.GPIODriver
	pin       core.GPIOPin
	activeLow bool
	on        bool
}

// NewLED creates an LED on pin. activeLow is for LEDs wired between the
// pin and the supply rail.
func NewLED(gpio core.GPIODriver, pin core.GPIOPin, activeLow bool) *LED {
	return &LED{gpio: gpio, pin: pin, activeLow: activeLow}
}

// Init configures the pin as an output and applies the initial state
func (l *LED) Init(on bool) error {
	if err := l.gpio.ConfigureOutput(l.pin); err != nil {
		return err
	}
	return l.Set(on)
}

// Set turns the LED on or off
func (l *LED) Set(on bool) error {
	if err := l.gpio.SetPin(l.pin, on != l.activeLow); err != nil {
		return err
	}
	l.on = on
	return nil
}

func (l *LED) On() error  { return l.Set(true) }
func (l *LED) Off() error { return l.Set(false) }

// Toggle inverts the current state
func (l *LED) Toggle() error {
	return l.Set(!l.on)
}

// IsOn returns the last state written
func (l *LED) IsOn() bool {
	return l.on
}

// Pin returns the GPIO pin the LED is wired to
func (l *LED) Pin() core.GPIOPin {
	return l.pin
}
