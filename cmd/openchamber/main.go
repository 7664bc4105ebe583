// Package main provides the entry point for the OpenChamber CLI.
package main

import (
	"fmt"
	"os"

	"github.com/openchamber-ai/openchamber/cmd/openchamber/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
