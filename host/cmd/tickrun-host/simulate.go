package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"tickrun/config"
	"tickrun/core"
	"tickrun/host/monitor"
	"tickrun/host/sim"
	"tickrun/protocol"
)

var (
	simulateOpts = struct {
		config   string
		duration time.Duration
		speed    float64
		lcd      bool
		press    time.Duration
		release  time.Duration
	}{}

	simulateCmd = &cobra.Command{
		Use:   "simulate",
		Short: "Run the firmware against simulated hardware",
		Long:  "Run the scheduler and application runnables on a simulated board, decode the telemetry they send and print a summary.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if simulateOpts.config != "" {
				var err error
				if cfg, err = config.LoadFile(simulateOpts.config); err != nil {
					return err
				}
			}
			if simulateOpts.speed > 0 {
				cfg.Speed = simulateOpts.speed
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			if simulateOpts.duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, simulateOpts.duration)
				defer cancel()
			}

			return simulate(ctx, cfg, cmd.OutOrStdout())
		},
	}
)

func init() {
	simulateCmd.Flags().StringVarP(&simulateOpts.config, "config", "c", "", "board configuration file (YAML)")
	simulateCmd.Flags().DurationVarP(&simulateOpts.duration, "duration", "d", 10*time.Second, "wall-clock run time, 0 to run until interrupted")
	simulateCmd.Flags().Float64VarP(&simulateOpts.speed, "speed", "s", 0, "time scale, overrides the configuration")
	simulateCmd.Flags().BoolVar(&simulateOpts.lcd, "lcd", false, "print every display refresh")
	simulateCmd.Flags().DurationVar(&simulateOpts.press, "press", 0, "press the switch after this long")
	simulateCmd.Flags().DurationVar(&simulateOpts.release, "release", time.Second, "how long the switch stays pressed")
}

func simulate(ctx context.Context, cfg *config.Config, out io.Writer) error {
	pr, pw := io.Pipe()

	opts := sim.Options{Telemetry: pw}
	if simulateOpts.lcd {
		opts.Display = out
	}
	s, err := sim.New(cfg, opts)
	if err != nil {
		return err
	}

	mon := monitor.New(pr)
	mon.OnMessage(func(msg protocol.Message) {
		if msg.ID == protocol.MsgLog {
			fmt.Fprintf(out, "log: %s\n", msg.Log)
		}
	})
	monDone := make(chan error, 1)
	go func() {
		monDone <- mon.Run(context.Background())
	}()

	if simulateOpts.press > 0 {
		go pressSwitch(ctx, s, simulateOpts.press, simulateOpts.release)
	}

	fmt.Fprintf(out, "simulating %d runnables at %gx speed\n", s.Scheduler().Table().Len(), cfg.Speed)
	err = s.Run(ctx)
	pw.Close()
	if merr := <-monDone; merr != nil {
		return merr
	}
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return err
	}

	if verbose {
		core.DumpTimingRing()
	}
	printSummary(out, mon.Summary(), s.Scheduler().Table())
	printInterrupts(out, s.Hardware().Fired(), s.Hardware().Coalesced())
	for _, line := range s.Console().Lines() {
		fmt.Fprintf(out, "lcd| %s\n", line)
	}
	return nil
}

func pressSwitch(ctx context.Context, s *sim.Simulation, after, hold time.Duration) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(after):
	}
	s.PressSwitch()

	select {
	case <-ctx.Done():
	case <-time.After(hold):
	}
	s.ReleaseSwitch()
}

// printInterrupts reports the simulated interrupt count. Coalesced expiries
// never reached the tick counter, so they are lost quanta rather than
// backlog the dispatcher can catch up on.
func printInterrupts(out io.Writer, fired, coalesced uint64) {
	fmt.Fprintf(out, "interrupts: %d raised, %d coalesced\n", fired, coalesced)
	if coalesced == 0 {
		return
	}
	lost := time.Duration(coalesced*uint64(core.QuantumMs)) * time.Millisecond
	fmt.Fprintf(out, "warning: host fell behind, %d quanta lost (not backlog); simulated time trails wall time by %v\n",
		coalesced, lost)
}
