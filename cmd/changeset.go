package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/gitscope/internal/git"
)

type itemJSON struct {
	Path      string         `json:"path"`
	OldPath   string         `json:"old_path,omitempty"`
	Reference *referenceJSON `json:"reference,omitempty"`
}

func (a *app) changesetCmd() *cobra.Command {
	var (
		refName string
		pin     bool
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "changeset",
		Short: "List files changed against the comparison reference",
		Long: `List files changed against the comparison reference.

The reference is taken from --ref when given, otherwise from the
[reference] table of the config file. Stored references are re-resolved
first, so a branch that moved is compared at its current tip.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := a.comparisonConfig(ctx, refName)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("pin") {
				cfg.PinToMergeHead = pin
			}
			cs, err := a.svc.Changeset(ctx, cfg)
			if err != nil {
				return err
			}
			if asJSON {
				items := make([]itemJSON, 0, cs.Len())
				for it := range cs.All() {
					items = append(items, itemJSON{
						Path:      it.Path,
						OldPath:   it.OldPath,
						Reference: newReferenceJSON(it.Reference),
					})
				}
				return writeJSON(cmd.OutOrStdout(), items)
			}
			out := cmd.OutOrStdout()
			for it := range cs.All() {
				if it.IsRenamed() {
					fmt.Fprintf(out, "%s\t(from %s)\n", it.Path, it.OldPath)
					continue
				}
				fmt.Fprintln(out, it.Path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&refName, "ref", "r", "", "branch, tag, or commit SHA to compare against")
	cmd.Flags().BoolVar(&pin, "pin", false, "compare against the reference tip instead of the merge-base")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print items as JSON")
	return cmd
}

// comparisonConfig builds the engine input from the config file, replacing
// its reference with refName when set.
func (a *app) comparisonConfig(ctx context.Context, refName string) (git.ComparisonConfig, error) {
	cfg := a.cfg.ComparisonConfig()
	if refName != "" {
		ref, ok, err := a.svc.ResolveName(ctx, refName)
		if err != nil {
			return cfg, err
		}
		if !ok {
			return cfg, fmt.Errorf("unknown reference %q", refName)
		}
		cfg.Reference = ref
		return cfg, nil
	}
	if cfg.Reference == nil {
		return cfg, nil
	}
	ref, ok, err := a.svc.Hydrate(ctx, cfg.Reference)
	if err != nil {
		return cfg, err
	}
	if !ok {
		slog.Warn("configured reference no longer exists", slog.String("reference", cfg.Reference.String()))
		cfg.Reference = nil
		return cfg, nil
	}
	cfg.Reference = ref
	return cfg, nil
}
