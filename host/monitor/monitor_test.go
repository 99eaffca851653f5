package monitor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"tickrun/protocol"
)

func writeStats(t *testing.T, w *protocol.FrameWriter, st protocol.SchedStats) {
	t.Helper()
	err := w.WriteFrame(func(out protocol.OutputBuffer) {
		protocol.EncodeSchedStats(out, st)
	})
	if err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}
}

func TestMonitorSummary(t *testing.T) {
	var stream bytes.Buffer
	w := protocol.NewFrameWriter(&stream)

	for i, lag := range []uint32{0, 0, 0, 4} {
		d := uint32(50 * (i + 1))
		writeStats(t, w, protocol.SchedStats{
			TimeStamp:  uint64(d) * 10,
			Dispatches: d,
			Ticks:      d + 1 + lag,
			Overruns:   lag / 4,
			MaxBacklog: lag,
			Pending:    lag,
		})
	}
	w.WriteFrame(func(out protocol.OutputBuffer) {
		protocol.EncodeRunnableRuns(out, protocol.RunnableRuns{Index: 2, Runs: 7})
	})
	w.WriteFrame(func(out protocol.OutputBuffer) {
		protocol.EncodeRunnableRuns(out, protocol.RunnableRuns{Index: 2, Runs: 9})
	})
	w.WriteFrame(func(out protocol.OutputBuffer) {
		protocol.EncodeLog(out, "overrun ts=1990 backlog=4")
	})
	w.WriteFrame(func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, 99)
	})

	m := New(&stream)
	var seen int
	m.OnMessage(func(protocol.Message) { seen++ })
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	sum := m.Summary()
	if sum.Reports != 4 || seen != 7 {
		t.Errorf("Expected 4 reports and 7 messages, got %d and %d", sum.Reports, seen)
	}
	if sum.Last.Dispatches != 200 || sum.Last.Overruns != 1 {
		t.Errorf("Unexpected last report %+v", sum.Last)
	}
	if sum.MeanLag != 1 || sum.StdDevLag != 2 {
		t.Errorf("Expected lag mean 1 stddev 2, got %v %v", sum.MeanLag, sum.StdDevLag)
	}
	if sum.P95Lag != 4 || sum.MaxLag != 4 {
		t.Errorf("Expected lag p95 4 max 4, got %v %v", sum.P95Lag, sum.MaxLag)
	}
	if sum.Runs[2] != 9 || len(sum.Runs) != 1 {
		t.Errorf("Expected latest run count 9, got %v", sum.Runs)
	}
	if len(sum.Logs) != 1 || sum.Logs[0] != "overrun ts=1990 backlog=4" {
		t.Errorf("Unexpected logs %q", sum.Logs)
	}
	if sum.Unknown != 1 || sum.Frames != 8 {
		t.Errorf("Expected 8 frames with 1 unknown, got %d and %d", sum.Frames, sum.Unknown)
	}
	if sum.Healthy() {
		t.Error("Stream with an overrun reported healthy")
	}
}

func TestMonitorSingleReport(t *testing.T) {
	var stream bytes.Buffer
	w := protocol.NewFrameWriter(&stream)
	writeStats(t, w, protocol.SchedStats{Dispatches: 10, Ticks: 13, Pending: 2})

	m := New(&stream)
	m.Run(context.Background())

	sum := m.Summary()
	if sum.MeanLag != 2 || sum.StdDevLag != 0 || sum.MaxLag != 2 {
		t.Errorf("Unexpected lag stats %+v", sum)
	}
	if !sum.Healthy() {
		t.Error("Clean stream reported unhealthy")
	}
}

func TestMonitorInCycleReportHasNoLag(t *testing.T) {
	var stream bytes.Buffer
	w := protocol.NewFrameWriter(&stream)
	// Reports are taken inside a cycle: its tick is consumed before the
	// dispatch is counted
	for d := uint32(49); d < 500; d += 50 {
		writeStats(t, w, protocol.SchedStats{Dispatches: d, Ticks: d + 1})
	}

	m := New(&stream)
	m.Run(context.Background())

	sum := m.Summary()
	if sum.Reports != 10 {
		t.Fatalf("Expected 10 reports, got %d", sum.Reports)
	}
	if sum.MeanLag != 0 || sum.MaxLag != 0 || sum.P95Lag != 0 {
		t.Errorf("Expected no lag, got mean %v p95 %v max %v", sum.MeanLag, sum.P95Lag, sum.MaxLag)
	}
}

func TestMonitorCountsDamage(t *testing.T) {
	var stream bytes.Buffer
	w := protocol.NewFrameWriter(&stream)
	for i := 0; i < 3; i++ {
		writeStats(t, w, protocol.SchedStats{Dispatches: uint32(i)})
	}
	data := stream.Bytes()
	// Flip a payload byte in the second frame
	first := int(data[0])
	data[first+protocol.MessageHeaderSize] ^= 0xFF

	m := New(bytes.NewReader(data))
	m.Run(context.Background())

	sum := m.Summary()
	if sum.Reports != 2 || sum.CRCErrors != 1 || sum.Lost != 1 {
		t.Errorf("Expected 2 reports, 1 CRC error and 1 lost frame, got %+v", sum)
	}
	if sum.Healthy() {
		t.Error("Damaged stream reported healthy")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestMonitorRunErrors(t *testing.T) {
	m := New(failingReader{})
	if err := m.Run(context.Background()); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Expected io.ErrUnexpectedEOF, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := New(&bytes.Buffer{}).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
