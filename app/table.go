package app

import (
	"errors"

	"tickrun/core"
)

// Task names used by schedules and configuration files
const (
	TaskSwitchPoll   = "switch_poll"
	TaskCtrlLED      = "ctrl_led"
	TaskHeartbeat    = "heartbeat"
	TaskTrafficLight = "traffic_light"
	TaskClock        = "clock"
	TaskTelemetry    = "telemetry"
)

var (
	ErrUnknownTask = errors.New("unknown task")
)

// Schedule places one task in the runnable table
type Schedule struct {
	Name         string
	Priority     uint8
	PeriodMs     uint32
	FirstDelayMs uint32
}

// DefaultSchedule is the firmware's runnable table
var DefaultSchedule = []Schedule{
	{Name: TaskSwitchPoll, Priority: 0, PeriodMs: 30},
	{Name: TaskCtrlLED, Priority: 1, PeriodMs: 50},
	{Name: TaskHeartbeat, Priority: 2, PeriodMs: 1000},
	{Name: TaskTrafficLight, Priority: 3, PeriodMs: 1000},
	{Name: TaskClock, Priority: 4, PeriodMs: 1000},
	{Name: TaskTelemetry, Priority: 5, PeriodMs: 500, FirstDelayMs: 50},
}

// Board holds the application components a target has fitted. Nil fields
// are hardware the target lacks.
type Board struct {
	Heartbeat  *Heartbeat
	Traffic    *TrafficLight
	SwitchPoll *SwitchPoll
	SwitchCtrl *SwitchControl
	Clock      *Clock
	Telemetry  *Telemetry

	// Extra maps additional task names to callbacks
	Extra map[string]func()

	// Wrap, when set, decorates every callback BuildTable installs
	Wrap func(name string, fn func()) func()
}

// Callback returns the callback for a task name. The second result is false
// for names no board can provide; a known task the board lacks returns a
// nil callback.
func (b *Board) Callback(name string) (func(), bool) {
	switch name {
	case TaskSwitchPoll:
		if b.SwitchPoll != nil {
			return b.SwitchPoll.Run, true
		}
	case TaskCtrlLED:
		if b.SwitchCtrl != nil {
			return b.SwitchCtrl.Run, true
		}
	case TaskHeartbeat:
		if b.Heartbeat != nil {
			return b.Heartbeat.Run, true
		}
	case TaskTrafficLight:
		if b.Traffic != nil {
			return b.Traffic.Run, true
		}
	case TaskClock:
		if b.Clock != nil {
			return b.Clock.Run, true
		}
	case TaskTelemetry:
		if b.Telemetry != nil {
			return b.Telemetry.Run, true
		}
	default:
		fn, ok := b.Extra[name]
		return fn, ok
	}
	return nil, true
}

// BuildTable builds the runnable table for schedule from the board's
// components. Tasks the board lacks are left out.
func BuildTable(b *Board, schedule []Schedule) (*core.RunnableTable, error) {
	builder := core.NewTableBuilder()
	for _, s := range schedule {
		fn, known := b.Callback(s.Name)
		if !known {
			core.DebugPrintln("app: no task named " + s.Name)
			return nil, ErrUnknownTask
		}
		if fn == nil {
			core.DebugPrintln("app: " + s.Name + " not fitted, skipped")
			continue
		}
		if b.Wrap != nil {
			fn = b.Wrap(s.Name, fn)
		}
		builder.Add(core.Runnable{
			Name:         s.Name,
			Priority:     s.Priority,
			PeriodMs:     s.PeriodMs,
			FirstDelayMs: s.FirstDelayMs,
			Callback:     fn,
		})
	}
	return builder.Build()
}
