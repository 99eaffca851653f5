package core

import "context"

// QuantumMs is the scheduler tick interval
const QuantumMs = 10

// Stats summarises dispatcher activity since boot
type Stats struct {
	TimeStamp  uint64 // Time-stamp the next cycle will evaluate
	Dispatches uint32 // Dispatch cycles run
	Overruns   uint32 // Cycles that finished with ticks still pending
	MaxBacklog uint32 // Largest pending count seen after a cycle
	Pending    uint32 // Ticks pending right now
	Ticks      uint32 // Ticks recorded by the interrupt
}

// Scheduler consumes tick quanta in the main loop and runs due runnables in
// priority order. It owns the time-stamp; only the tick counter is shared
// with interrupt context.
type Scheduler struct {
	table *RunnableTable
	timer *SysTick
	ticks *TickCounter

	timeStamp  uint64
	dispatches uint32
	overruns   uint32
	maxBacklog uint32
	runs       []uint32

	overrunHook func(backlog uint32)
}

// NewScheduler creates a scheduler for table driven by timer
func NewScheduler(table *RunnableTable, timer *SysTick) *Scheduler {
	return &Scheduler{
		table: table,
		timer: timer,
		ticks: NewTickCounter(),
		runs:  make([]uint32, table.Len()),
	}
}

// Init programs the timer for one quantum and routes its interrupt to the
// tick counter. Errors are configuration faults and should stop the boot.
func (s *Scheduler) Init() error {
	if err := s.timer.SetDelayMilliseconds(QuantumMs); err != nil {
		return err
	}
	return s.timer.SetCallback(s.ticks.OnTick)
}

// Start starts the periodic timer and runs the dispatch loop
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.timer.Start(Periodic); err != nil {
		return err
	}
	return s.RunForever(ctx)
}

// Stop halts the timer. Pending ticks stay pending.
func (s *Scheduler) Stop() {
	s.timer.Stop()
}

// RunForever drains pending ticks one cycle at a time and idles when none
// are pending. It returns only once ctx is done; firmware never cancels it.
func (s *Scheduler) RunForever(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.Step() {
			continue
		}
		if err := s.ticks.Wait(ctx); err != nil {
			return err
		}
	}
}

// Step runs one dispatch cycle if a tick is pending and reports whether it did
func (s *Scheduler) Step() bool {
	if !s.ticks.take() {
		return false
	}
	s.DispatchOnce()

	if backlog := s.ticks.Pending(); backlog > 0 {
		ts := s.timeStamp - QuantumMs
		s.overruns++
		if backlog > s.maxBacklog {
			s.maxBacklog = backlog
		}
		RecordEvent(EvtOverrun, 0, uint32(ts), backlog)
		if debugEnabled {
			DebugAsync("sched: overrun at " + u64toa(ts) + "ms, backlog " + utoa(backlog))
		}
		if s.overrunHook != nil {
			s.overrunHook(backlog)
		}
	}
	return true
}

// DispatchOnce evaluates the current time-stamp: every due runnable runs to
// completion in table order, then the time-stamp advances by one quantum.
func (s *Scheduler) DispatchOnce() {
	ts := s.timeStamp
	RecordEvent(EvtDispatch, 0, uint32(ts), uint32(ts>>32))

	for i := range s.table.entries {
		r := &s.table.entries[i]
		if !r.dueAt(ts) {
			continue
		}
		s.runs[i]++
		RecordEvent(EvtRunnable, uint8(i), uint32(ts), s.runs[i])
		r.Callback()
	}

	s.timeStamp += QuantumMs
	s.dispatches++
}

// SetOverrunHook registers fn to be called from the dispatch loop whenever a
// cycle finishes with ticks still pending
func (s *Scheduler) SetOverrunHook(fn func(backlog uint32)) {
	s.overrunHook = fn
}

// Ticks returns the counter fed by the timer interrupt
func (s *Scheduler) Ticks() *TickCounter {
	return s.ticks
}

// Table returns the runnable table
func (s *Scheduler) Table() *RunnableTable {
	return s.table
}

// TimeStamp returns the time-stamp the next cycle will evaluate
func (s *Scheduler) TimeStamp() uint64 {
	return s.timeStamp
}

// RunCount returns how often the runnable at dispatch position i has fired
func (s *Scheduler) RunCount(i int) uint32 {
	return s.runs[i]
}

// Stats returns a snapshot of dispatcher counters. Call from the dispatch
// loop (for example inside a runnable).
func (s *Scheduler) Stats() Stats {
	return Stats{
		TimeStamp:  s.timeStamp,
		Dispatches: s.dispatches,
		Overruns:   s.overruns,
		MaxBacklog: s.maxBacklog,
		Pending:    s.ticks.Pending(),
		Ticks:      s.ticks.Total(),
	}
}
