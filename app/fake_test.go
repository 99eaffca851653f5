package app

import (
	"errors"

	"tickrun/core"
)

var errPinFault = errors.New("pin fault")

// fakeGPIO is a map-backed GPIODriver
type fakeGPIO struct {
	levels map[core.GPIOPin]bool
	modes  map[core.GPIOPin]string
	fail   bool
}

func newFakeGPIO() *fakeGPIO {
	return &fakeGPIO{
		levels: make(map[core.GPIOPin]bool),
		modes:  make(map[core.GPIOPin]string),
	}
}

func (f *fakeGPIO) ConfigureOutput(pin core.GPIOPin) error {
	f.modes[pin] = "out"
	return nil
}

func (f *fakeGPIO) ConfigureInputPullUp(pin core.GPIOPin) error {
	f.modes[pin] = "pullup"
	f.levels[pin] = true
	return nil
}

func (f *fakeGPIO) ConfigureInputPullDown(pin core.GPIOPin) error {
	f.modes[pin] = "pulldown"
	f.levels[pin] = false
	return nil
}

func (f *fakeGPIO) SetPin(pin core.GPIOPin, value bool) error {
	if f.fail {
		return errPinFault
	}
	f.levels[pin] = value
	return nil
}

func (f *fakeGPIO) GetPin(pin core.GPIOPin) (bool, error) {
	if f.fail {
		return false, errPinFault
	}
	return f.levels[pin], nil
}

// fakeDisplay records what was flushed to the screen
type fakeDisplay struct {
	x, y    uint8
	pending []byte
	shown   []string
}

func (d *fakeDisplay) SetCursor(x, y uint8) {
	d.x, d.y = x, y
}

func (d *fakeDisplay) Write(p []byte) (int, error) {
	d.pending = append(d.pending[:0], p...)
	return len(p), nil
}

func (d *fakeDisplay) Display() error {
	d.shown = append(d.shown, string(d.pending))
	return nil
}

func corePin(n int) core.GPIOPin {
	return core.GPIOPin(n)
}
