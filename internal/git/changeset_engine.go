package git

import (
	"context"
	"fmt"
	"log/slog"

	gitbackend "github.com/thiagokokada/gitscope/internal/git/backend"
)

// Changeset computes the files that differ between the working tree and the
// comparison point selected by cfg. The committed difference between the
// comparison commit and HEAD is overlaid with uncommitted index and working
// tree changes. Files deleted in the working tree are never included.
func (s *Service) Changeset(ctx context.Context, cfg ComparisonConfig) (*Changeset, error) {
	if cfg.Reference == nil {
		return nil, ErrNothingToCompare
	}
	var cs *Changeset
	err := s.withBackend(ctx, "changeset", func(_ context.Context, b gitbackend.Backend) error {
		var err error
		cs, err = s.changeset(b, cfg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cs, nil
}

func (s *Service) changeset(b gitbackend.Backend, cfg ComparisonConfig) (*Changeset, error) {
	target, err := requireTarget(b, cfg.Reference)
	if err != nil {
		return nil, err
	}
	head, err := requireHeadBranch(b)
	if err != nil {
		return nil, err
	}

	comparison := target
	if !cfg.PinToMergeHead {
		base, ok, err := b.MergeBase(head.Hash, target)
		if err != nil {
			return nil, fmt.Errorf("merge base: %w", err)
		}
		if ok {
			comparison = base
		}
	}
	slog.Debug("changeset comparison",
		slog.String("reference", cfg.Reference.String()),
		slog.String("head", head.Branch),
		slog.String("comparison", comparison),
		slog.Bool("pinned", cfg.PinToMergeHead),
	)

	changes, err := b.DiffTrees(comparison, head.Hash)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}
	committed := make([]Item, 0, len(changes))
	for _, ch := range changes {
		switch ch.Kind {
		case gitbackend.ChangeAdded, gitbackend.ChangeModified:
			committed = append(committed, Item{Path: s.absPath(ch.Path), Reference: cfg.Reference})
		case gitbackend.ChangeRenamed:
			committed = append(committed, Item{
				Path:      s.absPath(ch.Path),
				OldPath:   s.absPath(ch.OldPath),
				Reference: cfg.Reference,
			})
		}
	}

	entries, err := b.Status()
	if err != nil {
		return nil, fmt.Errorf("worktree status: %w", err)
	}
	removed := map[string]struct{}{}
	var live []Item
	for _, e := range entries {
		switch {
		case e.Staging == gitbackend.Deleted || e.Worktree == gitbackend.Deleted:
			removed[itemKey(s.absPath(e.Path))] = struct{}{}
		case isLiveChange(e):
			live = append(live, Item{Path: s.absPath(e.Path)})
		}
	}
	slog.Debug("changeset sources",
		slog.Int("committed", len(committed)),
		slog.Int("live", len(live)),
		slog.Int("removed", len(removed)),
	)

	merged := make([]Item, 0, len(committed)+len(live))
	for _, it := range committed {
		if _, gone := removed[it.key()]; !gone {
			merged = append(merged, it)
		}
	}
	merged = append(merged, live...)
	return NewChangeset(merged...), nil
}

func isLiveChange(e gitbackend.StatusEntry) bool {
	switch e.Worktree {
	case gitbackend.Modified, gitbackend.Untracked, gitbackend.Renamed:
		return true
	}
	switch e.Staging {
	case gitbackend.Modified, gitbackend.Added, gitbackend.Renamed, gitbackend.Copied:
		return true
	}
	return false
}

// requireTarget returns the SHA of ref after checking it names a commit.
func requireTarget(b gitbackend.Backend, ref Reference) (string, error) {
	if ref == nil {
		return "", ErrNothingToCompare
	}
	sha := ref.Target().SHA()
	c, ok, err := b.LookupCommit(sha)
	if err != nil {
		return "", fmt.Errorf("lookup target: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTargetNotFound, ref.FriendlyName())
	}
	return c.Hash, nil
}

// requireHeadBranch returns HEAD when it is on a branch that still exists.
func requireHeadBranch(b gitbackend.Backend) (gitbackend.Head, error) {
	head, ok, err := b.Head()
	if err != nil {
		return gitbackend.Head{}, fmt.Errorf("resolve HEAD: %w", err)
	}
	if !ok || head.Branch == "" {
		return gitbackend.Head{}, ErrHeadNotFound
	}
	refs, err := b.Branches()
	if err != nil {
		return gitbackend.Head{}, fmt.Errorf("list branches: %w", err)
	}
	for _, ref := range refs {
		if ref.Kind == gitbackend.RefKindBranch && ref.Name == head.Branch {
			return head, nil
		}
	}
	return gitbackend.Head{}, fmt.Errorf("%w: branch %s", ErrHeadNotFound, head.Branch)
}
