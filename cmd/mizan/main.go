// Package main provides the entry point for the mizan CLI.
package main

import (
	"os"

	"github.com/mizanlegal/mizan/cmd/mizan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
