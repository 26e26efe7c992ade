package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/austral-data/cosecha/types"
)

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// VersionCommand returns the version command.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(*cli.Context) error {
			return printJSON(VersionResponse{Version: types.Version, Commit: commit})
		},
	}
}
