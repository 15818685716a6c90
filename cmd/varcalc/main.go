package main

import (
	"os"

	"github.com/wonny/varcalc/cmd/varcalc/commands"
)

// main is the entry point for the varcalc CLI
// ⭐ single entry point: go run ./cmd/varcalc [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
