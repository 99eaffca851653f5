package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"tickrun/core"
	"tickrun/host/monitor"
	"tickrun/host/serial"
	"tickrun/protocol"
)

var (
	monitorOpts = struct {
		device   string
		baud     int
		duration time.Duration
	}{}

	monitorCmd = &cobra.Command{
		Use:   "monitor",
		Short: "Decode telemetry from a board's serial port",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := serial.DefaultConfig(monitorOpts.device)
			cfg.Baud = monitorOpts.baud

			port, err := serial.Open(cfg)
			if err != nil {
				return err
			}
			defer port.Close()
			if err := port.Flush(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			if monitorOpts.duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, monitorOpts.duration)
				defer cancel()
			}

			out := cmd.OutOrStdout()
			mon := monitor.New(serial.Stream(ctx, port))
			mon.OnMessage(func(msg protocol.Message) { printMessage(out, msg) })

			err = mon.Run(ctx)
			if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
				return err
			}
			printSummary(out, mon.Summary(), nil)
			return nil
		},
	}
)

func init() {
	monitorCmd.Flags().StringVarP(&monitorOpts.device, "device", "D", "/dev/ttyUSB0", "serial device path")
	monitorCmd.Flags().IntVarP(&monitorOpts.baud, "baud", "b", 115200, "baud rate")
	monitorCmd.Flags().DurationVarP(&monitorOpts.duration, "duration", "d", 0, "stop after this long, 0 to run until interrupted")
}

func printMessage(out io.Writer, msg protocol.Message) {
	switch msg.ID {
	case protocol.MsgSchedStats:
		st := msg.Stats
		fmt.Fprintf(out, "stats: ts=%dms dispatches=%d ticks=%d pending=%d overruns=%d max_backlog=%d\n",
			st.TimeStamp, st.Dispatches, st.Ticks, st.Pending, st.Overruns, st.MaxBacklog)
	case protocol.MsgRunnableRuns:
		fmt.Fprintf(out, "runs: #%d=%d\n", msg.Runs.Index, msg.Runs.Runs)
	case protocol.MsgLog:
		fmt.Fprintf(out, "log: %s\n", msg.Log)
	}
}

// printSummary writes the monitor's findings. table names the runnables
// when the dispatch order is known.
func printSummary(out io.Writer, sum monitor.Summary, table *core.RunnableTable) {
	fmt.Fprintf(out, "reports: %d, last at ts=%dms\n", sum.Reports, sum.Last.TimeStamp)
	fmt.Fprintf(out, "dispatches: %d of %d ticks, overruns: %d, max backlog: %d\n",
		sum.Last.Dispatches, sum.Last.Ticks, sum.Last.Overruns, sum.Last.MaxBacklog)
	fmt.Fprintf(out, "lag: mean %.2f stddev %.2f p95 %.0f max %.0f\n",
		sum.MeanLag, sum.StdDevLag, sum.P95Lag, sum.MaxLag)
	fmt.Fprintf(out, "frames: %d, lost %d, crc errors %d, discarded bytes %d\n",
		sum.Frames, sum.Lost, sum.CRCErrors, sum.Discarded)

	positions := make([]int, 0, len(sum.Runs))
	for i := range sum.Runs {
		positions = append(positions, int(i))
	}
	sort.Ints(positions)
	for _, i := range positions {
		name := fmt.Sprintf("#%d", i)
		if table != nil && i < table.Len() {
			name = table.At(i).Name
		}
		fmt.Fprintf(out, "  %-14s %d runs\n", name, sum.Runs[uint8(i)])
	}

	if sum.Healthy() {
		fmt.Fprintln(out, "status: healthy")
	} else {
		fmt.Fprintln(out, "status: DEGRADED")
	}
}
