package app

import "tickrun/core"

// DebounceSamples is how many identical reads a switch needs before its
// debounced state changes
const DebounceSamples = 5

// Pull selects how a switch is wired
type Pull uint8

const (
	PullUp   Pull = iota // Pressed reads low
	PullDown             // Pressed reads high
)

// Switch is a debounced push button. Poll must be called periodically,
// usually from a runnable.
type Switch struct {
	gpio core.GPIODriver
	pin  core.GPIOPin
	pull Pull

	pressed   bool  // Debounced state
	candidate bool  // Last raw state
	count     uint8 // Consecutive reads of candidate
}

// NewSwitch creates a switch on pin
func NewSwitch(gpio core.GPIODriver, pin core.GPIOPin, pull Pull) *Switch {
	return &Switch{gpio: gpio, pin: pin, pull: pull}
}

// Init configures the input with the matching internal resistor
func (s *Switch) Init() error {
	if s.pull == PullDown {
		return s.gpio.ConfigureInputPullDown(s.pin)
	}
	return s.gpio.ConfigureInputPullUp(s.pin)
}

// Raw reads the pin once and reports whether the button is held down
func (s *Switch) Raw() (bool, error) {
	level, err := s.gpio.GetPin(s.pin)
	if err != nil {
		return false, err
	}
	if s.pull == PullUp {
		return !level, nil
	}
	return level, nil
}

// Poll takes one sample. It reports whether the debounced state changed.
// On a read error the filter is left untouched.
func (s *Switch) Poll() (bool, error) {
	raw, err := s.Raw()
	if err != nil {
		return false, err
	}

	if raw != s.candidate {
		s.candidate = raw
		s.count = 1
	} else if s.count < DebounceSamples {
		s.count++
	}

	if s.count >= DebounceSamples && s.pressed != s.candidate {
		s.pressed = s.candidate
		return true, nil
	}
	return false, nil
}

// Pressed returns the debounced state
func (s *Switch) Pressed() bool {
	return s.pressed
}
