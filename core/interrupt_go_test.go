//go:build !tinygo

package core

import (
	"testing"
	"time"
)

func TestRunInterruptExcludesMaskedSections(t *testing.T) {
	state := disableInterrupts()

	ran := make(chan struct{})
	go RunInterrupt(func() { close(ran) })

	select {
	case <-ran:
		t.Fatal("handler ran inside a masked section")
	case <-time.After(20 * time.Millisecond):
	}

	restoreInterrupts(state)
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran after unmasking")
	}
}

func TestMaskingNestsInsideHandler(t *testing.T) {
	done := make(chan State, 1)
	go RunInterrupt(func() {
		state := disableInterrupts()
		restoreInterrupts(state)
		done <- state
	})

	select {
	case state := <-done:
		if state != stateNested {
			t.Errorf("Expected nested state inside a handler, got %d", state)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("masking inside a handler deadlocked")
	}

	// The mask is free again once the handler returns
	state := disableInterrupts()
	if state != stateMasked {
		t.Errorf("Expected masked state outside a handler, got %d", state)
	}
	restoreInterrupts(state)
}

func TestGoroutineIDDiffers(t *testing.T) {
	self := goroutineID()
	if self == 0 {
		t.Fatal("goroutineID returned 0")
	}
	other := make(chan uint64)
	go func() { other <- goroutineID() }()
	if id := <-other; id == self || id == 0 {
		t.Errorf("Expected a distinct goroutine id, got %d and %d", self, id)
	}
}
