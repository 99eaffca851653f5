package app

import (
	"io"
	"strconv"

	"tickrun/core"
	"tickrun/protocol"
)

// Telemetry reports dispatcher statistics as protocol frames. Each run
// sends one sched_stats frame and the run count of one runnable, rotating
// through the table.
type Telemetry struct {
	frames *protocol.FrameWriter
	sched  *core.Scheduler
	next   int
}

// NewTelemetry creates a reporter writing frames to w
func NewTelemetry(w io.Writer) *Telemetry {
	return &Telemetry{frames: protocol.NewFrameWriter(w)}
}

// Attach sets the scheduler to report on. The table is built before the
// scheduler exists, so this happens after construction.
func (t *Telemetry) Attach(s *core.Scheduler) {
	t.sched = s
}

// Run sends one report
func (t *Telemetry) Run() {
	if t.sched == nil {
		return
	}

	st := t.sched.Stats()
	err := t.frames.WriteFrame(func(out protocol.OutputBuffer) {
		protocol.EncodeSchedStats(out, protocol.SchedStats{
			TimeStamp:  st.TimeStamp,
			Dispatches: st.Dispatches,
			Overruns:   st.Overruns,
			MaxBacklog: st.MaxBacklog,
			Pending:    st.Pending,
			Ticks:      st.Ticks,
		})
	})
	if err != nil {
		core.DebugPrintln("telemetry: " + err.Error())
		return
	}

	n := t.sched.Table().Len()
	if n == 0 {
		return
	}
	i := t.next % n
	t.next = i + 1
	err = t.frames.WriteFrame(func(out protocol.OutputBuffer) {
		protocol.EncodeRunnableRuns(out, protocol.RunnableRuns{Index: uint8(i), Runs: t.sched.RunCount(i)})
	})
	if err != nil {
		core.DebugPrintln("telemetry: " + err.Error())
	}
}

// Log sends a text message frame
func (t *Telemetry) Log(text string) error {
	return t.frames.WriteFrame(func(out protocol.OutputBuffer) {
		protocol.EncodeLog(out, text)
	})
}

// Overrun is meant for Scheduler.SetOverrunHook. It logs the time-stamp of
// the cycle that overran.
func (t *Telemetry) Overrun(backlog uint32) {
	var ts uint64
	if t.sched != nil && t.sched.TimeStamp() >= core.QuantumMs {
		ts = t.sched.TimeStamp() - core.QuantumMs
	}
	text := "overrun ts=" + strconv.FormatUint(ts, 10) + " backlog=" + strconv.FormatUint(uint64(backlog), 10)
	if err := t.Log(text); err != nil {
		core.DebugPrintln("telemetry: " + err.Error())
	}
}
