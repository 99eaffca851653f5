package sim

import (
	"errors"
	"sync"

	"tickrun/core"
)

var (
	ErrPinNotConfigured = errors.New("pin not configured")
	ErrPinNotOutput     = errors.New("pin is not an output")
)

// PinMode is how a simulated pin was configured
type PinMode uint8

const (
	PinUnused PinMode = iota
	PinOutput
	PinInputPullUp
	PinInputPullDown
)

type pinState struct {
	mode   PinMode
	level  bool
	driven bool // Input level forced from outside
}

// Pins is a GPIO driver backed by memory. Outputs record their level;
// inputs read their pull level unless Drive forces them.
type Pins struct {
	mu       sync.Mutex
	pins     map[core.GPIOPin]*pinState
	onChange func(pin core.GPIOPin, level bool)
}

// NewPins creates a bank with every pin unconfigured
func NewPins() *Pins {
	return &Pins{pins: make(map[core.GPIOPin]*pinState)}
}

// OnChange registers fn to be called whenever an output changes level.
// fn runs on the caller's goroutine and must not call back into Pins.
func (p *Pins) OnChange(fn func(pin core.GPIOPin, level bool)) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

func (p *Pins) configure(pin core.GPIOPin, mode PinMode, level bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pins[pin] = &pinState{mode: mode, level: level}
	return nil
}

func (p *Pins) ConfigureOutput(pin core.GPIOPin) error {
	return p.configure(pin, PinOutput, false)
}

func (p *Pins) ConfigureInputPullUp(pin core.GPIOPin) error {
	return p.configure(pin, PinInputPullUp, true)
}

func (p *Pins) ConfigureInputPullDown(pin core.GPIOPin) error {
	return p.configure(pin, PinInputPullDown, false)
}

func (p *Pins) SetPin(pin core.GPIOPin, value bool) error {
	p.mu.Lock()
	st, ok := p.pins[pin]
	if !ok {
		p.mu.Unlock()
		return ErrPinNotConfigured
	}
	if st.mode != PinOutput {
		p.mu.Unlock()
		return ErrPinNotOutput
	}
	changed := st.level != value
	st.level = value
	fn := p.onChange
	p.mu.Unlock()

	if changed && fn != nil {
		fn(pin, value)
	}
	return nil
}

func (p *Pins) GetPin(pin core.GPIOPin) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.pins[pin]
	if !ok {
		return false, ErrPinNotConfigured
	}
	return st.level, nil
}

// Drive forces an input to level, as a pressed button would
func (p *Pins) Drive(pin core.GPIOPin, level bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.pins[pin]
	if !ok {
		st = &pinState{}
		p.pins[pin] = st
	}
	st.level = level
	st.driven = true
}

// Release stops driving an input so it returns to its pull level
func (p *Pins) Release(pin core.GPIOPin) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.pins[pin]
	if !ok {
		return
	}
	st.driven = false
	st.level = st.mode == PinInputPullUp
}

// Level returns a pin's current level
func (p *Pins) Level(pin core.GPIOPin) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if st, ok := p.pins[pin]; ok {
		return st.level
	}
	return false
}

// Mode returns how a pin was configured
func (p *Pins) Mode(pin core.GPIOPin) PinMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	if st, ok := p.pins[pin]; ok {
		return st.mode
	}
	return PinUnused
}
