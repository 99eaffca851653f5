package core

import (
	"errors"
	"time"
)

var (
	ErrInvalidDelay = errors.New("delay does not fit the 24-bit reload register")
	ErrInvalidMode  = errors.New("invalid SysTick start mode")
	ErrNullCallback = errors.New("nil SysTick callback")
)

// StartMode selects whether SysTick re-arms itself after expiring
type StartMode uint32

const (
	OneShot  StartMode = 0x00100000 // Fire once, then disable
	Periodic StartMode = 0x00100001 // Re-arm on every expiry
)

func (m StartMode) String() string {
	switch m {
	case OneShot:
		return "one-shot"
	case Periodic:
		return "periodic"
	default:
		return "invalid"
	}
}

const (
	usPerSecond = 1000000
	msPerSecond = 1000
)

// SysTickConfig describes the clocks feeding the timer
type SysTickConfig struct {
	// CoreClockHz feeds the counter when CLKSOURCE=1 (microsecond delays)
	CoreClockHz uint32

	// ReferenceClockHz feeds the counter when CLKSOURCE=0 (millisecond delays).
	// Zero selects CoreClockHz/8, the STM32 AHB/8 tap.
	ReferenceClockHz uint32
}

// SysTick drives a 24-bit down-counting timer that raises one interrupt per
// expiry and forwards it to a single registered callback.
type SysTick struct {
	regs   SysTickRegisters
	coreHz uint32
	refHz  uint32

	// written with interrupts masked, read by HandleInterrupt
	mode     StartMode
	callback func()
}

// NewSysTick creates a driver for the given register file
func NewSysTick(regs SysTickRegisters, cfg SysTickConfig) *SysTick {
	ref := cfg.ReferenceClockHz
	if ref == 0 {
		ref = cfg.CoreClockHz / 8
	}
	return &SysTick{
		regs:   regs,
		coreHz: cfg.CoreClockHz,
		refHz:  ref,
	}
}

// reloadFor converts a delay into a LOAD value for a clock running at hz.
// Computed in 64 bits so large delays are rejected instead of wrapping.
func reloadFor(delay uint32, hz uint32, unitsPerSecond uint64) (uint32, error) {
	ticks := uint64(delay) * uint64(hz) / unitsPerSecond
	if ticks == 0 {
		return 0, ErrInvalidDelay
	}
	reload := ticks - 1
	if reload > SysTickReloadMax {
		return 0, ErrInvalidDelay
	}
	return uint32(reload), nil
}

// SetDelayMicroseconds programs an interval in microseconds using the core
// clock. On error the registers are left untouched.
func (s *SysTick) SetDelayMicroseconds(us uint32) error {
	reload, err := reloadFor(us, s.coreHz, usPerSecond)
	if err != nil {
		return err
	}
	s.program(reload, SysTickCtrlClkSource)
	return nil
}

// SetDelayMilliseconds programs an interval in milliseconds using the
// reference clock. On error the registers are left untouched.
func (s *SysTick) SetDelayMilliseconds(ms uint32) error {
	reload, err := reloadFor(ms, s.refHz, msPerSecond)
	if err != nil {
		return err
	}
	s.program(reload, 0)
	return nil
}

func (s *SysTick) program(reload uint32, clkSource uint32) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	ctrl := s.regs.Ctrl()
	ctrl = ctrl&^SysTickCtrlClkSource | clkSource
	s.regs.SetCtrl(ctrl)
	s.regs.SetLoad(reload)
}

// SetCallback registers the function invoked on each expiry, replacing any
// previous one.
func (s *SysTick) SetCallback(fn func()) error {
	if fn == nil {
		return ErrNullCallback
	}
	state := disableInterrupts()
	s.callback = fn
	restoreInterrupts(state)
	return nil
}

// Start enables the counter and its interrupt
func (s *SysTick) Start(mode StartMode) error {
	if mode != OneShot && mode != Periodic {
		return ErrInvalidMode
	}

	state := disableInterrupts()
	defer restoreInterrupts(state)

	s.mode = mode
	s.regs.ClearCurrent()
	s.regs.SetCtrl(s.regs.Ctrl() | SysTickCtrlTickInt | SysTickCtrlEnable)
	RecordEvent(EvtTimerStart, 0, uint32(mode), s.regs.Load())
	return nil
}

// Stop disables the counter. Stopping a stopped timer does nothing.
func (s *SysTick) Stop() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	ctrl := s.regs.Ctrl()
	if ctrl&SysTickCtrlEnable == 0 {
		return
	}
	s.regs.SetCtrl(ctrl &^ SysTickCtrlEnable)
	RecordEvent(EvtTimerStop, 0, uint32(s.mode), 0)
}

// HandleInterrupt is the SysTick exception body. It must stay short and
// never block: one-shot timers are disabled before the callback runs.
func (s *SysTick) HandleInterrupt() {
	if s.mode == OneShot {
		s.regs.SetCtrl(s.regs.Ctrl() &^ SysTickCtrlEnable)
	}
	if s.callback != nil {
		s.callback()
	}
}

// Enabled reports whether the counter is running
func (s *SysTick) Enabled() bool {
	return s.regs.Ctrl()&SysTickCtrlEnable != 0
}

// InterruptEnabled reports whether expiries raise an interrupt
func (s *SysTick) InterruptEnabled() bool {
	return s.regs.Ctrl()&SysTickCtrlTickInt != 0
}

// Reload returns the programmed LOAD value
func (s *SysTick) Reload() uint32 {
	return s.regs.Load()
}

// Mode returns the mode passed to the last successful Start
func (s *SysTick) Mode() StartMode {
	return s.mode
}

// Interval returns the time between expiries for the current programming
func (s *SysTick) Interval() time.Duration {
	hz := s.refHz
	if s.regs.Ctrl()&SysTickCtrlClkSource != 0 {
		hz = s.coreHz
	}
	if hz == 0 {
		return 0
	}
	ticks := uint64(s.regs.Load()) + 1
	return time.Duration(ticks * uint64(time.Second) / uint64(hz))
}
