// Package main is the entry point of the boxoffice CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/boxoffice/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
