package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tickrun/core"
	"tickrun/protocol"
)

var (
	verbose bool

	rootCmd = &cobra.Command{
		Use:     "tickrun-host",
		Short:   "Host tools for the tickrun scheduler",
		Long:    "Run the tickrun firmware against simulated hardware, watch a board's telemetry, and compute SysTick reload values.",
		Version: protocol.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				core.SetDebugWriter(func(s string) { fmt.Fprintln(os.Stderr, s) })
				core.SetDebugEnabled(true)
				core.InitAsyncDebug()
			}
		},
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print firmware debug output to stderr")
	rootCmd.AddCommand(simulateCmd, monitorCmd, reloadCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
