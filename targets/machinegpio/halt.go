//go:build tinygo

package machinegpio

import (
	"machine"
	"time"
)

// Halt reports a fatal boot error and blinks pin forever: three short
// flashes, then a pause. It never returns.
func Halt(pin machine.Pin, report func(string), err error) {
	if report != nil {
		report("boot failed: " + err.Error())
	}
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		for i := 0; i < 3; i++ {
			pin.High()
			time.Sleep(100 * time.Millisecond)
			pin.Low()
			time.Sleep(100 * time.Millisecond)
		}
		time.Sleep(700 * time.Millisecond)
	}
}
