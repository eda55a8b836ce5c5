package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/gitscope/internal/buildinfo"
	"github.com/thiagokokada/gitscope/internal/git"
)

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "gitscope %s\n", buildinfo.VersionWithTags())
			if rev := buildinfo.Revision(); rev != "" {
				fmt.Fprintf(out, "  revision: %s\n", rev)
			}
			gitVersion, err := git.GitVersion()
			if err != nil {
				slog.Debug("git executable unavailable", slog.Any("error", err))
				gitVersion = "unavailable"
			}
			fmt.Fprintf(out, "  git:      %s (requires >= %s)\n", gitVersion, git.MinGitVersion())
		},
	}
}
