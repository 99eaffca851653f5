package sim

import (
	"context"
	"io"
	"strconv"
	"time"

	"tickrun/app"
	"tickrun/config"
	"tickrun/core"
)

// LCD geometry of the 16x2 module the firmware drives
const (
	DisplayCols = 16
	DisplayRows = 2
)

// Options selects where a simulation sends its output
type Options struct {
	Telemetry io.Writer // Telemetry frames, nil to disable the task
	Display   io.Writer // Display refreshes as text, may be nil
}

// Simulation is the firmware running against simulated peripherals
type Simulation struct {
	cfg   *config.Config
	hw    *Hardware
	pins  *Pins
	lcd   *Console
	sched *core.Scheduler

	traffic   *app.TrafficLight
	clock     *app.Clock
	sw        *app.Switch
	telemetry *app.Telemetry
}

// New builds the board described by cfg and initialises the scheduler.
// The timer is not started until Run.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg: cfg,
		hw: NewHardware(core.SysTickConfig{
			CoreClockHz:      cfg.ClockHz,
			ReferenceClockHz: cfg.ReferenceHz,
		}, cfg.Speed),
		pins: NewPins(),
		lcd:  NewConsole(DisplayCols, DisplayRows, opts.Display),
	}

	heartbeat := app.NewLED(s.pins, cfg.Pins.Heartbeat, false)
	red := app.NewLED(s.pins, cfg.Pins.Red, false)
	yellow := app.NewLED(s.pins, cfg.Pins.Yellow, false)
	green := app.NewLED(s.pins, cfg.Pins.Green, false)
	ctrl := app.NewLED(s.pins, cfg.Pins.CtrlLED, false)
	for _, led := range []*app.LED{heartbeat, red, yellow, green, ctrl} {
		if err := led.Init(false); err != nil {
			return nil, err
		}
	}

	s.sw = app.NewSwitch(s.pins, cfg.Pins.Switch, app.PullUp)
	if err := s.sw.Init(); err != nil {
		return nil, err
	}

	h, m, sec, err := cfg.StartTime()
	if err != nil {
		return nil, err
	}
	s.clock = app.NewClock(s.lcd, h, m, sec)
	s.traffic = app.NewTrafficLight(red, yellow, green)

	board := &app.Board{
		Heartbeat:  app.NewHeartbeat(heartbeat),
		Traffic:    s.traffic,
		SwitchPoll: app.NewSwitchPoll(s.sw),
		SwitchCtrl: app.NewSwitchControl(s.sw, ctrl),
		Clock:      s.clock,
		Extra:      map[string]func(){config.TaskBusy: func() {}},
		Wrap:       s.busy,
	}
	if opts.Telemetry != nil {
		s.telemetry = app.NewTelemetry(opts.Telemetry)
		board.Telemetry = s.telemetry
	}

	table, err := app.BuildTable(board, cfg.Schedule())
	if err != nil {
		return nil, err
	}

	s.sched = core.NewScheduler(table, s.hw.Timer())
	if err := s.sched.Init(); err != nil {
		return nil, err
	}
	if s.telemetry != nil {
		s.telemetry.Attach(s.sched)
		s.sched.SetOverrunHook(s.telemetry.Overrun)
	}

	core.DebugPrintln("sim: " + strconv.Itoa(table.Len()) + " runnables, clock " +
		strconv.FormatUint(uint64(cfg.ClockHz), 10) + " Hz")
	return s, nil
}

// busy makes a task's callback take its configured busy_ms, scaled by the
// simulation speed
func (s *Simulation) busy(name string, fn func()) func() {
	task, ok := s.cfg.Task(name)
	if !ok || task.BusyMs == 0 {
		return fn
	}
	d := time.Duration(float64(time.Duration(task.BusyMs)*time.Millisecond) / s.cfg.Speed)
	return func() {
		fn()
		time.Sleep(d)
	}
}

// Run starts the timer and the dispatch loop and returns once ctx is done.
// The timer is stopped on return.
func (s *Simulation) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hwDone := make(chan error, 1)
	go func() {
		hwDone <- s.hw.Run(ctx)
	}()

	err := s.sched.Start(ctx)
	s.sched.Stop()
	cancel()
	<-hwDone
	return err
}

// PressSwitch holds the button down until ReleaseSwitch
func (s *Simulation) PressSwitch() {
	s.pins.Drive(s.cfg.Pins.Switch, false)
}

// ReleaseSwitch lets the button go
func (s *Simulation) ReleaseSwitch() {
	s.pins.Release(s.cfg.Pins.Switch)
}

func (s *Simulation) Scheduler() *core.Scheduler { return s.sched }
func (s *Simulation) Hardware() *Hardware        { return s.hw }
func (s *Simulation) Pins() *Pins                { return s.pins }
func (s *Simulation) Console() *Console          { return s.lcd }
func (s *Simulation) Traffic() *app.TrafficLight { return s.traffic }
func (s *Simulation) Clock() *app.Clock          { return s.clock }
func (s *Simulation) Switch() *app.Switch        { return s.sw }
func (s *Simulation) Telemetry() *app.Telemetry  { return s.telemetry }
func (s *Simulation) Config() *config.Config     { return s.cfg }
