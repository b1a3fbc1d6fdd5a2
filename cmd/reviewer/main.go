// Package main provides the CLI for the Milepoint reviewer tools.
package main

import (
	"os"

	"github.com/vitale232/WMXDataReviewerTools/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
