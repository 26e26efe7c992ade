// Package cmd provides the CLI commands for the cosecha binary.
//
// Exit codes:
//   - 0: success (including an empty period)
//   - 1: harvest finished but failed the pass gate
//   - 2: fatal error before a report could be produced
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Exit codes.
const (
	exitSuccess    = 0
	exitGateFailed = 1
	exitFatal      = 2
)

// Shared flags.
var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to cosecha.yaml config file",
	}

	jobIDFlag = &cli.StringFlag{
		Name:  "job-id",
		Usage: "Job ID (default: a generated UUID)",
	}
)

// printJSON renders a command result to stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
