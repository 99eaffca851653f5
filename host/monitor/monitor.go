// Package monitor decodes a telemetry stream and summarises scheduler
// health: dispatch lag, overruns and per-runnable run counts.
package monitor

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"tickrun/protocol"
)

// Summary describes the stream seen so far
type Summary struct {
	Reports int                 // sched_stats frames decoded
	Last    protocol.SchedStats // Most recent report

	// Lag is the number of ticks still pending when each report was taken.
	// A report runs inside a cycle whose own tick is already consumed, so a
	// healthy table keeps it at zero.
	MeanLag   float64
	StdDevLag float64
	P95Lag    float64
	MaxLag    float64

	Runs map[uint8]uint32 // Latest run count per dispatch position
	Logs []string

	Frames    uint32
	Lost      uint32
	CRCErrors uint32
	Discarded uint32
	Unknown   int // Frames carrying a message id this monitor does not know
}

// Monitor reads frames and keeps running statistics. Summary may be called
// while Run is reading.
type Monitor struct {
	reader *protocol.FrameReader

	mu      sync.Mutex
	reports int
	last    protocol.SchedStats
	lag     []float64
	runs    map[uint8]uint32
	logs    []string
	unknown int
	wire    protocol.ReaderStats // Copy of the reader's counters

	onMessage func(protocol.Message)
}

// New creates a monitor reading from r
func New(r io.Reader) *Monitor {
	return &Monitor{
		reader: protocol.NewFrameReader(r),
		runs:   make(map[uint8]uint32),
	}
}

// OnMessage registers fn to be called with every decoded message, from the
// goroutine running Run
func (m *Monitor) OnMessage(fn func(protocol.Message)) {
	m.onMessage = fn
}

// Run decodes frames until the stream ends or ctx is done. The end of the
// stream is not an error. A read blocked on the stream is only noticed
// after it returns, so close the stream to stop promptly.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame, err := m.reader.Next()
		m.mu.Lock()
		m.wire = m.reader.Stats()
		m.mu.Unlock()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			return err
		}
		m.handleFrame(frame)
	}
}

func (m *Monitor) handleFrame(frame protocol.Frame) {
	msg, err := protocol.DecodeMessage(frame.Payload)
	if err != nil {
		m.mu.Lock()
		m.unknown++
		m.mu.Unlock()
		return
	}
	m.Handle(msg)
	if m.onMessage != nil {
		m.onMessage(msg)
	}
}

// Handle folds one decoded message into the statistics
func (m *Monitor) Handle(msg protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch msg.ID {
	case protocol.MsgSchedStats:
		st := *msg.Stats
		m.reports++
		m.last = st
		m.lag = append(m.lag, float64(st.Pending))
	case protocol.MsgRunnableRuns:
		m.runs[msg.Runs.Index] = msg.Runs.Runs
	case protocol.MsgLog:
		m.logs = append(m.logs, msg.Log)
	}
}

// Summary returns the statistics gathered so far
func (m *Monitor) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	rs := m.wire
	sum := Summary{
		Reports:   m.reports,
		Last:      m.last,
		Runs:      make(map[uint8]uint32, len(m.runs)),
		Logs:      append([]string(nil), m.logs...),
		Frames:    rs.Frames,
		Lost:      rs.Lost,
		CRCErrors: rs.CRCErrors,
		Discarded: rs.Discarded,
		Unknown:   m.unknown,
	}
	for i, n := range m.runs {
		sum.Runs[i] = n
	}

	if len(m.lag) > 0 {
		sorted := append([]float64(nil), m.lag...)
		sort.Float64s(sorted)
		if len(sorted) > 1 {
			sum.MeanLag, sum.StdDevLag = stat.MeanStdDev(sorted, nil)
		} else {
			sum.MeanLag = sorted[0]
		}
		sum.P95Lag = stat.Quantile(0.95, stat.Empirical, sorted, nil)
		sum.MaxLag = floats.Max(sorted)
	}
	return sum
}

// Healthy reports whether no overrun, lost frame or corrupt frame was seen
func (s Summary) Healthy() bool {
	return s.Last.Overruns == 0 && s.Lost == 0 && s.CRCErrors == 0
}
