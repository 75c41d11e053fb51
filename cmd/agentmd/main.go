// Package main is the entry point for the agentmd CLI.
package main

import (
	"os"

	"github.com/jmylchreest/agentmd/cmd/agentmd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
