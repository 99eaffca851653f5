package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tickrun/core"
)

var (
	reloadOpts = struct {
		clockHz     uint32
		referenceHz uint32
		micro       bool
	}{}

	reloadCmd = &cobra.Command{
		Use:   "reload <delay>",
		Short: "Print the SysTick reload value for a delay",
		Long:  "Print the LOAD register value and clock source SysTick uses for a delay in milliseconds (or microseconds with --us).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			delay, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("bad delay %q: %w", args[0], err)
			}

			timer := core.NewSysTick(core.NewMemoryRegisters(), core.SysTickConfig{
				CoreClockHz:      reloadOpts.clockHz,
				ReferenceClockHz: reloadOpts.referenceHz,
			})

			unit, source := "ms", "reference"
			if reloadOpts.micro {
				unit, source = "us", "core"
				err = timer.SetDelayMicroseconds(uint32(delay))
			} else {
				err = timer.SetDelayMilliseconds(uint32(delay))
			}
			if err != nil {
				return fmt.Errorf("%d%s at %d Hz: %w", delay, unit, reloadOpts.clockHz, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d%s: LOAD=%d (%#06x) %s clock, interval %v\n",
				delay, unit, timer.Reload(), timer.Reload(), source, timer.Interval())
			return nil
		},
	}
)

func init() {
	reloadCmd.Flags().Uint32Var(&reloadOpts.clockHz, "clock", 16000000, "core clock in Hz")
	reloadCmd.Flags().Uint32Var(&reloadOpts.referenceHz, "reference", 0, "reference clock in Hz, default core/8")
	reloadCmd.Flags().BoolVar(&reloadOpts.micro, "us", false, "delay is in microseconds")
}
