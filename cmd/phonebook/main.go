// Package main provides the phonebook CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/phonebook/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
