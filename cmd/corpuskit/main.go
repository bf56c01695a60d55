// Package main provides the entry point for the corpuskit CLI.
package main

import (
	"os"

	"github.com/corpuskit/corpuskit/cmd/corpuskit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
