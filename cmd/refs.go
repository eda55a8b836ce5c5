package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/gitscope/internal/git"
)

func (a *app) branchesCmd() *cobra.Command {
	var (
		originOnly bool
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "branches",
		Short: "List local and remote-tracking branches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg.ComparisonConfig()
			if cmd.Flags().Changed("origin-only") {
				cfg.OriginRefsOnly = originOnly
			}
			branches, err := a.svc.Branches(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			refs := make([]git.Reference, 0, len(branches))
			for _, b := range branches {
				refs = append(refs, b)
			}
			return printReferences(cmd.OutOrStdout(), refs, asJSON)
		},
	}
	cmd.Flags().BoolVar(&originOnly, "origin-only", false, "only list remote-tracking branches")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print branches as JSON")
	return cmd
}

func (a *app) commitsCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "commits",
		Short: "List recent commits on the first-parent chain of HEAD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			commits, err := a.svc.RecentCommits(cmd.Context(), limit)
			if err != nil {
				return err
			}
			refs := make([]git.Reference, 0, len(commits))
			for _, c := range commits {
				refs = append(refs, c)
			}
			return printReferences(cmd.OutOrStdout(), refs, asJSON)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", git.DefaultRecentLimit, "maximum number of commits")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print commits as JSON")
	return cmd
}

func (a *app) tagsCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags that point at commits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tags, err := a.svc.RecentTags(cmd.Context(), limit)
			if err != nil {
				return err
			}
			refs := make([]git.Reference, 0, len(tags))
			for _, t := range tags {
				refs = append(refs, t)
			}
			return printReferences(cmd.OutOrStdout(), refs, asJSON)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", git.DefaultRecentLimit, "maximum number of tags")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print tags as JSON")
	return cmd
}

func (a *app) hydrateCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "hydrate",
		Short: "Re-resolve the configured reference against the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stored := a.cfg.ComparisonConfig().Reference
			if stored == nil {
				return git.ErrNothingToCompare
			}
			ref, ok, err := a.svc.Hydrate(cmd.Context(), stored)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s: %w", stored, git.ErrTargetNotFound)
			}
			return printReferences(cmd.OutOrStdout(), []git.Reference{ref}, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the reference as JSON")
	return cmd
}

func printReferences(w io.Writer, refs []git.Reference, asJSON bool) error {
	if asJSON {
		out := make([]*referenceJSON, 0, len(refs))
		for _, ref := range refs {
			out = append(out, newReferenceJSON(ref))
		}
		return writeJSON(w, out)
	}
	for _, ref := range refs {
		if _, err := fmt.Fprintln(w, ref); err != nil {
			return err
		}
	}
	return nil
}
