// Package main is the entry point for the buildfleet CLI.
//
// buildfleet manages a fleet of ephemeral cloud build agents: it reconciles
// orphaned instances against the build coordinator, tracks in-flight
// provider operations, and allocates agent configurations round-robin.
//
// Commands: serve, sweep, status, version.
//
// For detailed usage information, run:
//
//	buildfleet --help
package main

import (
	"fmt"
	"os"

	"github.com/buildfleet/buildfleet/cmd/buildfleet/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
