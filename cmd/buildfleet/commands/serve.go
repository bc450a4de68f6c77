package commands

import (
	"github.com/spf13/cobra"

	"github.com/buildfleet/buildfleet/cmd/buildfleet/handlers"
)

// Serve returns the command that runs the fleet manager daemon.
//
// The daemon sweeps each configured cloud for orphaned instances, polls
// pending provider operations, and serves Prometheus metrics until it
// receives SIGINT or SIGTERM.
//
// Optional flags:
//
//	--config, -c: Path to the configuration YAML file (default: buildfleet.yaml)
//	--debug: Verbose, human-readable log output
//
// Environment variables: the API token variable named by each cloud's
// tokenEnv setting must be set.
func Serve() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the fleet manager daemon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Serve(cmd.Context(), configPath, debug)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "buildfleet.yaml", "Path to configuration file")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	return cmd
}
