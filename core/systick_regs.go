package core

import "sync/atomic"

// SysTick CTRL register bits (ARMv7-M / ARMv6-M SYST_CSR)
const (
	SysTickCtrlEnable    = 1 << 0  // Counter enabled
	SysTickCtrlTickInt   = 1 << 1  // Raise exception on reaching zero
	SysTickCtrlClkSource = 1 << 2  // 1 = processor clock, 0 = reference clock
	SysTickCtrlCountFlag = 1 << 16 // Counted to zero since last read
)

// SysTickReloadMax is the largest value the 24-bit LOAD register can hold
const SysTickReloadMax = 1<<24 - 1

// SysTickRegisters is the register file a SysTick driver programs.
// TinyGo targets map it onto the core peripheral at 0xE000E010; host builds
// and tests use MemoryRegisters.
type SysTickRegisters interface {
	// Ctrl reads the control and status register
	Ctrl() uint32

	// SetCtrl writes the control and status register
	SetCtrl(v uint32)

	// Load reads the reload value register
	Load() uint32

	// SetLoad writes the reload value register
	SetLoad(v uint32)

	// ClearCurrent resets the current value register so the next count
	// starts from the reload value
	ClearCurrent()
}

// MemoryRegisters is an in-memory SysTick register file.
// Every access is atomic so a simulated interrupt source may poll it
// concurrently with the main loop.
type MemoryRegisters struct {
	ctrl    uint32
	load    uint32
	current uint32
	writes  uint32

	// changed receives a token on every CTRL or LOAD write
	changed chan struct{}
}

// NewMemoryRegisters creates a zeroed register file (timer disabled)
func NewMemoryRegisters() *MemoryRegisters {
	return &MemoryRegisters{changed: make(chan struct{}, 1)}
}

func (m *MemoryRegisters) Ctrl() uint32 {
	return atomic.LoadUint32(&m.ctrl)
}

func (m *MemoryRegisters) SetCtrl(v uint32) {
	atomic.StoreUint32(&m.ctrl, v)
	m.touch()
}

func (m *MemoryRegisters) Load() uint32 {
	return atomic.LoadUint32(&m.load)
}

func (m *MemoryRegisters) SetLoad(v uint32) {
	atomic.StoreUint32(&m.load, v&SysTickReloadMax)
	m.touch()
}

func (m *MemoryRegisters) ClearCurrent() {
	atomic.StoreUint32(&m.current, 0)
}

// Writes returns the number of CTRL/LOAD writes performed so far
func (m *MemoryRegisters) Writes() uint32 {
	return atomic.LoadUint32(&m.writes)
}

// Changed is signalled (coalesced) whenever CTRL or LOAD is written
func (m *MemoryRegisters) Changed() <-chan struct{} {
	return m.changed
}

func (m *MemoryRegisters) touch() {
	atomic.AddUint32(&m.writes, 1)
	select {
	case m.changed <- struct{}{}:
	default:
	}
}
