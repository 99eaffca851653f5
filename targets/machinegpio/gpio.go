//go:build tinygo

// Package machinegpio implements core.GPIODriver on TinyGo's machine pins
package machinegpio

import (
	"errors"
	"machine"

	"tickrun/core"
)

var ErrNotConfigured = errors.New("pin not configured")

// Driver maps core pin numbers directly onto machine.Pin numbers
type Driver struct {
	// Track configured pins so a second configuration is ignored
	pins map[core.GPIOPin]machine.Pin
}

// New creates a driver with no pins configured
func New() *Driver {
	return &Driver{pins: make(map[core.GPIOPin]machine.Pin)}
}

func (d *Driver) configure(pin core.GPIOPin, mode machine.PinMode) error {
	if _, exists := d.pins[pin]; exists {
		return nil
	}
	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: mode})
	d.pins[pin] = p
	return nil
}

// ConfigureOutput configures a pin as a digital output
func (d *Driver) ConfigureOutput(pin core.GPIOPin) error {
	return d.configure(pin, machine.PinOutput)
}

func (d *Driver) ConfigureInputPullUp(pin core.GPIOPin) error {
	return d.configure(pin, machine.PinInputPullup)
}

func (d *Driver) ConfigureInputPullDown(pin core.GPIOPin) error {
	return d.configure(pin, machine.PinInputPulldown)
}

// SetPin drives a configured output
func (d *Driver) SetPin(pin core.GPIOPin, value bool) error {
	p, exists := d.pins[pin]
	if !exists {
		return ErrNotConfigured
	}
	p.Set(value)
	return nil
}

// GetPin reads the current pin level
func (d *Driver) GetPin(pin core.GPIOPin) (bool, error) {
	p, exists := d.pins[pin]
	if !exists {
		return false, ErrNotConfigured
	}
	return p.Get(), nil
}

// Number returns the core pin number for a machine pin
func Number(p machine.Pin) core.GPIOPin {
	return core.GPIOPin(p)
}
