package main

import (
	"os"

	"github.com/pezhmanazar/phoenix-app-sub002/internal/cli"
)

func main() {
	// With no args the root command opens the TUI home; subcommands route
	// through cobra as usual.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
