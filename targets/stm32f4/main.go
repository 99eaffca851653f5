//go:build stm32f4

package main

import (
	"context"
	"machine"

	"tickrun/app"
	"tickrun/core"
	"tickrun/targets/machinegpio"
)

// Wall clock shown at power-up
const (
	startHours   = 15
	startMinutes = 0
	startSeconds = 0
)

func main() {
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

	table, err := app.BuildTable(board, app.DefaultSchedule)
	if err != nil {
		machinegpio.Halt(pinHeartbeat, report, err)
	}

	timer := core.NewHardwareSysTick(core.SysTickConfig{CoreClockHz: machine.CPUFrequency()})
	sched := core.NewScheduler(table, timer)
	if err := sched.Init(); err != nil {
		machinegpio.Halt(pinHeartbeat, report, err)
	}
	telemetry.Attach(sched)
	sched.SetOverrunHook(telemetry.Overrun)

	telemetry.Log("tickrun stm32f4 up")
	if err := sched.Start(context.Background()); err != nil {
		machinegpio.Halt(pinHeartbeat, report, err)
	}
}

// newBoard configures the LEDs, switch and display and wires them into the
// application runnables
func newBoard(gpio core.GPIODriver, telemetry *app.Telemetry) (*app.Board, error) {
	heartbeat := app.NewLED(gpio, machinegpio.Number(pinHeartbeat), true)
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

	lcd, err := newLCD()
	if err != nil {
		return nil, err
	}

	return &app.Board{
		Heartbeat:  app.NewHeartbeat(heartbeat),
		Traffic:    app.NewTrafficLight(red, yellow, green),
		SwitchPoll: app.NewSwitchPoll(sw),
		SwitchCtrl: app.NewSwitchControl(sw, ctrl),
		Clock:      app.NewClock(lcd, startHours, startMinutes, startSeconds),
		Telemetry:  telemetry,
	}, nil
}
