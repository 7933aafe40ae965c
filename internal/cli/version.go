package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version metadata, overridden at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
)

// VersionInfo is the version command's output payload.
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Go      string `json:"go"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print version information",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format: rootOpts.Format,
				Writer: cmd.OutOrStdout(),
			}
			info := VersionInfo{Version: Version, Commit: Commit, Go: runtime.Version()}
			if formatter.Format == "json" {
				return formatter.Success(info)
			}
			fmt.Fprintf(formatter.Writer, "easel %s (%s, %s)\n", info.Version, info.Commit, info.Go)
			return nil
		},
	}
}
