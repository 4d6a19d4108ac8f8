// Package main is the entry point for the grilltimer application.
// It loads configuration, wires the alert stack and starts the TUI or one
// of the maintenance commands.
package main

import (
	"context"
	"fmt"
	"os"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
