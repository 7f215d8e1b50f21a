// Package main provides the gamereview CLI tool for analyzing chess
// games with a local engine.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
