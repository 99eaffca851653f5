//go:build !tinygo

package core

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// State is a placeholder for interrupt state on regular Go
type State uintptr

const (
	stateMasked State = iota // disableInterrupts took the mask
	stateNested              // already masked by the running handler
)

// interruptMask stands in for PRIMASK on the host. Simulated interrupt
// handlers run while holding it, so masked sections exclude them.
var interruptMask sync.Mutex

// handlerGoroutine is the goroutine running a simulated handler, 0 if none.
// Masking from that goroutine nests instead of locking again.
var handlerGoroutine atomic.Uint64

// disableInterrupts masks simulated interrupts and returns the previous state
func disableInterrupts() State {
	if id := handlerGoroutine.Load(); id != 0 && id == goroutineID() {
		return stateNested
	}
	interruptMask.Lock()
	return stateMasked
}

// restoreInterrupts unmasks simulated interrupts
func restoreInterrupts(state State) {
	if state == stateNested {
		return
	}
	interruptMask.Unlock()
}

// RunInterrupt executes fn as if it were an interrupt handler: it never
// overlaps a masked section in the main loop. fn may itself mask, as code
// called from a real exception handler can. Host builds only.
func RunInterrupt(fn func()) {
	interruptMask.Lock()
	handlerGoroutine.Store(goroutineID())
	defer func() {
		handlerGoroutine.Store(0)
		interruptMask.Unlock()
	}()
	fn()
}

// goroutineID parses the id from the "goroutine N [running]:" stack header
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}
