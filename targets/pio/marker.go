//go:build rp2040

// Package pio drives a scope marker pin from a PIO state machine, so
// dispatch timing can be watched on a logic analyser without costing the
// scheduler more than a FIFO write.
package pio

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// buildMarkerProgram emits count+1 pulses for every word pulled:
//
//	Bits 0-7: pulse count minus one
//
// At the 1 MHz state machine clock each pulse is 8 us high, 8 us low.
func buildMarkerProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),       // 0: pull block
		asm.Out(rp2pio.OutDestX, 8).Encode(), // 1: out x, 8
		// pulse:
		asm.Set(rp2pio.SetDestPins, 1).Delay(7).Encode(), // 2: set pins, 1 [7]
		asm.Set(rp2pio.SetDestPins, 0).Delay(6).Encode(), // 3: set pins, 0 [6]
		asm.Jmp(2, rp2pio.JmpXNZeroDec).Encode(),         // 4: jmp x--, pulse
		// .wrap
	}
}

// Jump targets above are absolute
const markerOrigin = 0

// Marker pulses one pin under PIO control
type Marker struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	pin    machine.Pin
	pioNum uint8
	smNum  uint8

	dropped uint32
}

// NewMarker claims a state machine and loads the pulse program driving pin
func NewMarker(pin machine.Pin) (*Marker, error) {
	pioNum, smNum, ok := allocatePIO()
	if !ok {
		return nil, ErrNoStateMachine
	}

	pioHW := rp2pio.PIO0
	if pioNum == 1 {
		pioHW = rp2pio.PIO1
	}
	m := &Marker{
		pio:    pioHW,
		sm:     pioHW.StateMachine(smNum),
		pin:    pin,
		pioNum: pioNum,
		smNum:  smNum,
	}

	m.sm.TryClaim()

	program := buildMarkerProgram()
	offset, err := m.pio.AddProgram(program, markerOrigin)
	if err != nil {
		releasePIO(pioNum, smNum)
		return nil, err
	}

	m.pin.Configure(machine.PinConfig{Mode: m.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(m.pin, 1)
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	// 125 MHz system clock down to 1 MHz
	cfg.SetClkDivIntFrac(125, 0)

	m.sm.Init(offset, cfg)

	// Pin directions must be set after Init
	m.sm.SetPindirsConsecutive(m.pin, 1, true)
	m.sm.SetPinsConsecutive(m.pin, 1, false)
	m.sm.SetEnabled(true)
	return m, nil
}

// Pulse queues n pulses (1-256). When the FIFO is full the request is
// dropped rather than stalling the caller.
func (m *Marker) Pulse(n uint16) {
	if n == 0 {
		return
	}
	if m.sm.IsTxFIFOFull() {
		m.dropped++
		return
	}
	m.sm.TxPut(uint32(n-1) & 0xFF)
}

// Announce decorates fn so each call is preceded by n pulses
func (m *Marker) Announce(n uint16, fn func()) func() {
	return func() {
		m.Pulse(n)
		fn()
	}
}

// Dropped returns how many pulse requests found the FIFO full
func (m *Marker) Dropped() uint32 {
	return m.dropped
}
