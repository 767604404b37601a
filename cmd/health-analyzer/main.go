// Package main is the entry point for the health-analyzer CLI.
package main

import (
	"os"

	"github.com/aimansalim/health-analyzer/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
