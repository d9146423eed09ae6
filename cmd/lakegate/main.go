// Package main provides the LakeGate CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/lakegate/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
