// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing and flag binding. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the buildfleet CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buildfleet",
		Short: "Manage ephemeral cloud build agents",
	}

	cmd.AddCommand(Serve())
	cmd.AddCommand(Sweep())
	cmd.AddCommand(Status())
	cmd.AddCommand(Version())

	return cmd
}
