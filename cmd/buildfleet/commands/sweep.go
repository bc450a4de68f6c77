package commands

import (
	"github.com/spf13/cobra"

	"github.com/buildfleet/buildfleet/cmd/buildfleet/handlers"
)

// Sweep returns the command that runs a single reconciliation pass.
//
// Useful for operators who want an immediate sweep without waiting for the
// daemon's next tick, or for running reconciliation from an external
// scheduler.
func Sweep() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one reconciliation pass and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Sweep(cmd.Context(), configPath, debug)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "buildfleet.yaml", "Path to configuration file")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	return cmd
}
