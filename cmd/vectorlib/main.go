// Package main provides the entry point for the vectorlib CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/vectorlib/cmd/vectorlib/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
