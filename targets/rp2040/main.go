//go:build rp2040

package main

import (
	"context"
	"machine"

	"tickrun/app"
	"tickrun/core"
	"tickrun/targets/machinegpio"
	"tickrun/targets/pio"
)

func main() {
	// Clear any watchdog state left over from before the reset
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})

	uart := machine.DefaultUART
	uart.Configure(machine.UARTConfig{BaudRate: telemetryBaud})

	telemetry := app.NewTelemetry(uart)
	report := func(s string) { telemetry.Log(s) }
	core.SetDebugWriter(report)

	core.SetGPIODriver(machinegpio.New())

	board, err := newBoard(core.MustGPIO(), telemetry)
	if err != nil {
		machinegpio.Halt(pinHeartbeat, report, err)
	}

	// The marker is optional; without it the table runs undecorated
	if marker, err := pio.NewMarker(pinMarker); err == nil {
		board.Wrap = announce(marker, app.DefaultSchedule)
	} else {
		report("marker: " + err.Error())
	}

	table, err := app.BuildTable(board, app.DefaultSchedule)
	if err != nil {
		machinegpio.Halt(pinHeartbeat, report, err)
	}

	timer := core.NewHardwareSysTick(core.SysTickConfig{
		CoreClockHz:      machine.CPUFrequency(),
		ReferenceClockHz: referenceClockHz,
	})
	sched := core.NewScheduler(table, timer)
	if err := sched.Init(); err != nil {
		machinegpio.Halt(pinHeartbeat, report, err)
	}
	telemetry.Attach(sched)
	sched.SetOverrunHook(telemetry.Overrun)

	telemetry.Log("tickrun rp2040 up")
	if err := sched.Start(context.Background()); err != nil {
		machinegpio.Halt(pinHeartbeat, report, err)
	}
}

// announce tags each runnable with priority+1 marker pulses
func announce(m *pio.Marker, schedule []app.Schedule) func(string, func()) func() {
	return func(name string, fn func()) func() {
		for _, s := range schedule {
			if s.Name == name {
				return m.Announce(uint16(s.Priority)+1, fn)
			}
		}
		return fn
	}
}

// newBoard configures the LEDs and switch. The Pico build has no display,
// so the clock task is left out of the table.
func newBoard(gpio core.GPIODriver, telemetry *app.Telemetry) (*app.Board, error) {
	heartbeat := app.NewLED(gpio, machinegpio.Number(pinHeartbeat), false)
	red := app.NewLED(gpio, machinegpio.Number(pinRed), false)
	yellow := app.NewLED(gpio, machinegpio.Number(pinYellow), false)
	green := app.NewLED(gpio, machinegpio.Number(pinGreen), false)
	ctrl := app.NewLED(gpio, machinegpio.Number(pinCtrlLED), false)
	for _, led := range []*app.LED{heartbeat, red, yellow, green, ctrl} {
		if err := led.Init(false); err != nil {
			return nil, err
		}
	}

	sw := app.NewSwitch(gpio, machinegpio.Number(pinSwitch), app.PullUp)
	if err := sw.Init(); err != nil {
		return nil, err
	}

	return &app.Board{
		Heartbeat:  app.NewHeartbeat(heartbeat),
		Traffic:    app.NewTrafficLight(red, yellow, green),
		SwitchPoll: app.NewSwitchPoll(sw),
		SwitchCtrl: app.NewSwitchControl(sw, ctrl),
		Telemetry:  telemetry,
	}, nil
}
