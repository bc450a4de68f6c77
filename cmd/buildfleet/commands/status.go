package commands

import (
	"github.com/spf13/cobra"

	"github.com/buildfleet/buildfleet/cmd/buildfleet/handlers"
)

// Status returns the command that prints per-cloud instance counts.
func Status() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show managed instances per cloud and pool",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Status(cmd.Context(), configPath, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "buildfleet.yaml", "Path to configuration file")

	return cmd
}
