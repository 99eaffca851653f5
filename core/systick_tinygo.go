//go:build tinygo

package core

import (
	"runtime/volatile"
	"unsafe"
)

// sysTickRegisterMap is the SCS SysTick block (ARMv6-M/ARMv7-M)
type sysTickRegisterMap struct {
	CSR   volatile.Register32 // 0x00
	RVR   volatile.Register32 // 0x04
	CVR   volatile.Register32 // 0x08
	CALIB volatile.Register32 // 0x0C
}

const sysTickBase = 0xE000E010

var sysTickHW = (*sysTickRegisterMap)(unsafe.Pointer(uintptr(sysTickBase)))

// hardwareRegisters adapts the memory-mapped block to SysTickRegisters
type hardwareRegisters struct{}

func (hardwareRegisters) Ctrl() uint32     { return sysTickHW.CSR.Get() }
func (hardwareRegisters) SetCtrl(v uint32) { sysTickHW.CSR.Set(v) }
func (hardwareRegisters) Load() uint32     { return sysTickHW.RVR.Get() }
func (hardwareRegisters) SetLoad(v uint32) { sysTickHW.RVR.Set(v & SysTickReloadMax) }

// ClearCurrent writes CVR; any write clears it and COUNTFLAG
func (hardwareRegisters) ClearCurrent() { sysTickHW.CVR.Set(0) }

// activeSysTick receives the SysTick exception. Only one core timer exists,
// so only one driver may be bound to the hardware.
var activeSysTick *SysTick

// NewHardwareSysTick binds a driver to the core SysTick peripheral and routes
// the SysTick exception to it.
func NewHardwareSysTick(cfg SysTickConfig) *SysTick {
	s := NewSysTick(hardwareRegisters{}, cfg)
	state := disableInterrupts()
	activeSysTick = s
	restoreInterrupts(state)
	return s
}

//export SysTick_Handler
func sysTickHandler() {
	if s := activeSysTick; s != nil {
		s.HandleInterrupt()
	}
}
