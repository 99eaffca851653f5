package core

import (
	"errors"
	"testing"
	"time"
)

const testClockHz = 16000000

func newTestSysTick() (*SysTick, *MemoryRegisters) {
	regs := NewMemoryRegisters()
	return NewSysTick(regs, SysTickConfig{CoreClockHz: testClockHz}), regs
}

func TestSysTickMicrosecondReload(t *testing.T) {
	testCases := []struct {
		us     uint32
		reload uint32
	}{
		{1, 15},
		{10, 159},
		{1000, 15999},
		{999999, 15999983},
		{1000000, 15999999},
		{1048575, 16777199},
	}

	for _, tc := range testCases {
		st, regs := newTestSysTick()
		if err := st.SetDelayMicroseconds(tc.us); err != nil {
			t.Errorf("SetDelayMicroseconds(%d) failed: %v", tc.us, err)
			continue
		}
		if regs.Load() != tc.reload {
			t.Errorf("SetDelayMicroseconds(%d): expected reload %d, got %d", tc.us, tc.reload, regs.Load())
		}
		if regs.Ctrl()&SysTickCtrlClkSource == 0 {
			t.Errorf("SetDelayMicroseconds(%d) should select the core clock", tc.us)
		}
	}
}

func TestSysTickMicrosecondOverflowKeepsRegisters(t *testing.T) {
	st, regs := newTestSysTick()
	if err := st.SetDelayMicroseconds(500); err != nil {
		t.Fatalf("SetDelayMicroseconds(500) failed: %v", err)
	}
	before := regs.Load()
	beforeCtrl := regs.Ctrl()
	writes := regs.Writes()

	// 1048576us * 16 ticks/us = 2^24 ticks, reload 2^24-1 still fits;
	// one more microsecond overflows
	for _, us := range []uint32{0, 1048577, 5000000, 0xFFFFFFFF} {
		err := st.SetDelayMicroseconds(us)
		if !errors.Is(err, ErrInvalidDelay) {
			t.Errorf("SetDelayMicroseconds(%d): expected ErrInvalidDelay, got %v", us, err)
		}
	}

	if regs.Load() != before {
		t.Errorf("Reload changed after failed calls: %d -> %d", before, regs.Load())
	}
	if regs.Ctrl() != beforeCtrl {
		t.Errorf("CTRL changed after failed calls: %#x -> %#x", beforeCtrl, regs.Ctrl())
	}
	if regs.Writes() != writes {
		t.Errorf("Failed calls wrote registers (%d writes)", regs.Writes()-writes)
	}
}

func TestSysTickReloadBoundary(t *testing.T) {
	st, regs := newTestSysTick()
	if err := st.SetDelayMicroseconds(1048576); err != nil {
		t.Fatalf("reload 2^24-1 should fit: %v", err)
	}
	if regs.Load() != SysTickReloadMax {
		t.Errorf("Expected reload %d, got %d", SysTickReloadMax, regs.Load())
	}
}

func TestSysTickMillisecondReload(t *testing.T) {
	st, regs := newTestSysTick()

	// AHB/8 = 2MHz, 2000 ticks per millisecond
	if err := st.SetDelayMilliseconds(QuantumMs); err != nil {
		t.Fatalf("SetDelayMilliseconds(%d) failed: %v", QuantumMs, err)
	}
	if regs.Load() != 19999 {
		t.Errorf("Expected reload 19999, got %d", regs.Load())
	}
	if regs.Ctrl()&SysTickCtrlClkSource != 0 {
		t.Error("SetDelayMilliseconds should select the reference clock")
	}
	if st.Interval() != 10*time.Millisecond {
		t.Errorf("Expected 10ms interval, got %v", st.Interval())
	}

	if err := st.SetDelayMilliseconds(8000); err != nil {
		t.Errorf("SetDelayMilliseconds(8000) should fit: %v", err)
	}
	if err := st.SetDelayMilliseconds(8389); !errors.Is(err, ErrInvalidDelay) {
		t.Errorf("SetDelayMilliseconds(8389): expected ErrInvalidDelay, got %v", err)
	}
	if err := st.SetDelayMilliseconds(0); !errors.Is(err, ErrInvalidDelay) {
		t.Errorf("SetDelayMilliseconds(0): expected ErrInvalidDelay, got %v", err)
	}
	if regs.Load() != 15999999 {
		t.Errorf("Expected reload from 8000ms to survive, got %d", regs.Load())
	}
}

func TestSysTickReferenceClockOverride(t *testing.T) {
	regs := NewMemoryRegisters()
	st := NewSysTick(regs, SysTickConfig{CoreClockHz: 125000000, ReferenceClockHz: 1000000})

	if err := st.SetDelayMilliseconds(10); err != nil {
		t.Fatalf("SetDelayMilliseconds failed: %v", err)
	}
	if regs.Load() != 9999 {
		t.Errorf("Expected reload 9999, got %d", regs.Load())
	}
}

func TestSysTickSetCallback(t *testing.T) {
	st, _ := newTestSysTick()

	if err := st.SetCallback(nil); !errors.Is(err, ErrNullCallback) {
		t.Errorf("Expected ErrNullCallback, got %v", err)
	}

	var first, second int
	if err := st.SetCallback(func() { first++ }); err != nil {
		t.Fatalf("SetCallback failed: %v", err)
	}
	if err := st.SetCallback(func() { second++ }); err != nil {
		t.Fatalf("SetCallback failed: %v", err)
	}
	if err := st.SetCallback(nil); err == nil {
		t.Fatal("nil callback accepted")
	}

	st.HandleInterrupt()
	if first != 0 || second != 1 {
		t.Errorf("Expected last callback to win, got first=%d second=%d", first, second)
	}
}

func TestSysTickStartInvalidMode(t *testing.T) {
	st, regs := newTestSysTick()
	for _, mode := range []StartMode{0, 1, 0x00100002, 0xFFFFFFFF} {
		if err := st.Start(mode); !errors.Is(err, ErrInvalidMode) {
			t.Errorf("Start(%#x): expected ErrInvalidMode, got %v", uint32(mode), err)
		}
	}
	if regs.Ctrl()&SysTickCtrlEnable != 0 {
		t.Error("Timer enabled by an invalid Start")
	}
}

func TestSysTickPeriodic(t *testing.T) {
	st, regs := newTestSysTick()
	var fired int
	st.SetCallback(func() { fired++ })
	st.SetDelayMilliseconds(QuantumMs)

	if err := st.Start(Periodic); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !st.Enabled() || !st.InterruptEnabled() {
		t.Fatalf("Expected ENABLE and TICKINT set, CTRL=%#x", regs.Ctrl())
	}

	for i := 0; i < 5; i++ {
		st.HandleInterrupt()
	}
	if fired != 5 {
		t.Errorf("Expected 5 firings, got %d", fired)
	}
	if !st.Enabled() {
		t.Error("Periodic timer disabled itself")
	}

	st.Stop()
	if st.Enabled() {
		t.Error("Timer still enabled after Stop")
	}
	// Stop twice is harmless
	st.Stop()
	if st.Mode() != Periodic {
		t.Errorf("Expected mode to be remembered, got %v", st.Mode())
	}
}

func TestSysTickOneShot(t *testing.T) {
	st, _ := newTestSysTick()
	var fired int
	var enabledDuringCallback bool
	st.SetCallback(func() {
		fired++
		enabledDuringCallback = st.Enabled()
	})
	st.SetDelayMicroseconds(250)

	if err := st.Start(OneShot); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	st.HandleInterrupt()

	if fired != 1 {
		t.Errorf("Expected 1 firing, got %d", fired)
	}
	if enabledDuringCallback {
		t.Error("One-shot timer should be disabled before its callback runs")
	}
	if st.Enabled() {
		t.Error("One-shot timer still enabled after firing")
	}

	// Restart works any number of times
	if err := st.Start(OneShot); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if !st.Enabled() {
		t.Error("Restarted timer not enabled")
	}
}

func TestSysTickInterruptWithoutCallback(t *testing.T) {
	st, _ := newTestSysTick()
	st.SetDelayMilliseconds(1)
	st.Start(OneShot)

	// Must not panic
	st.HandleInterrupt()
	if st.Enabled() {
		t.Error("One-shot timer still enabled")
	}
}

func TestSysTickOneShotRearmsFromCallback(t *testing.T) {
	st, _ := newTestSysTick()
	st.SetDelayMilliseconds(1)

	var fired int
	st.SetCallback(func() {
		fired++
		if fired < 3 {
			if err := st.Start(OneShot); err != nil {
				t.Errorf("Restart from callback failed: %v", err)
			}
		}
	})
	if err := st.Start(OneShot); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3; i++ {
			RunInterrupt(st.HandleInterrupt)
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("restarting the timer from its callback under RunInterrupt never returned")
	}

	if fired != 3 {
		t.Errorf("Expected 3 firings, got %d", fired)
	}
	if st.Enabled() {
		t.Error("Timer still enabled after the last one-shot")
	}
}

func TestSysTickReconfigureFromCallback(t *testing.T) {
	st, regs := newTestSysTick()
	st.SetDelayMilliseconds(QuantumMs)

	var second int
	st.SetCallback(func() {
		st.Stop()
		st.SetDelayMicroseconds(100)
		st.SetCallback(func() { second++ })
	})
	st.Start(Periodic)

	done := make(chan struct{})
	go func() {
		defer close(done)
		RunInterrupt(st.HandleInterrupt)
		RunInterrupt(st.HandleInterrupt)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reconfiguring the timer from its callback never returned")
	}

	if st.Enabled() {
		t.Error("Stop from the callback did not disable the timer")
	}
	if regs.Load() != 1599 {
		t.Errorf("Expected reload 1599, got %d", regs.Load())
	}
	if second != 1 {
		t.Errorf("Expected replacement callback to run once, got %d", second)
	}
}
