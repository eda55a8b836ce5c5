package git

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	gitbackend "github.com/thiagokokada/gitscope/internal/git/backend"
)

const DefaultRecentLimit = 50

// RecentCommits returns up to n commits on the first-parent chain from HEAD,
// most recent first.
func (s *Service) RecentCommits(ctx context.Context, n int) ([]Commit, error) {
	if n <= 0 {
		return nil, nil
	}
	var out []Commit
	err := s.withBackend(ctx, "recent_commits", func(_ context.Context, b gitbackend.Backend) error {
		head, ok, err := b.Head()
		if err != nil {
			return fmt.Errorf("resolve HEAD: %w", err)
		}
		if !ok {
			return ErrHeadNotFound
		}
		log, err := b.FirstParentLog(head.Hash, n)
		if err != nil {
			return fmt.Errorf("first-parent log: %w", err)
		}
		out = make([]Commit, 0, len(log))
		for _, c := range log {
			out = append(out, NewCommit(ResolvedCommitObject(c.Hash, c.Summary)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecentTags returns up to n tags in repository order. Tags that do not
// resolve to a commit are skipped.
func (s *Service) RecentTags(ctx context.Context, n int) ([]Tag, error) {
	if n <= 0 {
		return nil, nil
	}
	var out []Tag
	err := s.withBackend(ctx, "recent_tags", func(_ context.Context, b gitbackend.Backend) error {
		refs, err := b.Tags()
		if err != nil {
			return fmt.Errorf("list tags: %w", err)
		}
		r := newResolver(b)
		for _, ref := range refs {
			if len(out) >= n {
				break
			}
			tag, ok, err := r.tag(ref)
			if err != nil || !ok {
				slog.Debug("skip tag", slog.String("tag", ref.Name), slog.Any("error", err))
				continue
			}
			out = append(out, tag)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Branches lists local branches followed by remote-tracking branches, each
// group sorted by name. With cfg.OriginRefsOnly only remote-tracking
// branches are returned.
func (s *Service) Branches(ctx context.Context, cfg ComparisonConfig) ([]Branch, error) {
	var out []Branch
	err := s.withBackend(ctx, "branches", func(_ context.Context, b gitbackend.Backend) error {
		refs, err := b.Branches()
		if err != nil {
			return fmt.Errorf("list branches: %w", err)
		}
		slices.SortStableFunc(refs, func(x, y gitbackend.Ref) int {
			return cmp.Or(cmp.Compare(x.Kind, y.Kind), cmp.Compare(x.Name, y.Name))
		})
		r := newResolver(b)
		for _, ref := range refs {
			if cfg.OriginRefsOnly && ref.Kind != gitbackend.RefKindRemoteBranch {
				continue
			}
			br, ok, err := r.branch(ref)
			if err != nil {
				return err
			}
			if !ok {
				slog.Debug("skip branch", slog.String("branch", ref.Name))
				continue
			}
			out = append(out, br)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// BranchByName looks up a branch by its exact short name, such as "main" or
// "origin/main".
func (s *Service) BranchByName(ctx context.Context, name string) (Branch, bool, error) {
	if name == "" {
		return Branch{}, false, nil
	}
	var (
		br Branch
		ok bool
	)
	err := s.withBackend(ctx, "branch_by_name", func(_ context.Context, b gitbackend.Backend) error {
		var err error
		br, ok, err = lookupBranch(b, name)
		return err
	})
	if err != nil {
		return Branch{}, false, err
	}
	return br, ok, nil
}

func (s *Service) TagByName(ctx context.Context, name string) (Tag, bool, error) {
	if name == "" {
		return Tag{}, false, nil
	}
	var (
		tag Tag
		ok  bool
	)
	err := s.withBackend(ctx, "tag_by_name", func(_ context.Context, b gitbackend.Backend) error {
		var err error
		tag, ok, err = lookupTag(b, name)
		return err
	})
	if err != nil {
		return Tag{}, false, err
	}
	return tag, ok, nil
}

// ResolveName picks a reference for free-form input: a branch name, then a
// tag name, then a full commit SHA.
func (s *Service) ResolveName(ctx context.Context, name string) (Reference, bool, error) {
	if name == "" {
		return nil, false, nil
	}
	var (
		ref Reference
		ok  bool
	)
	err := s.withBackend(ctx, "resolve_name", func(_ context.Context, b gitbackend.Backend) error {
		if br, found, err := lookupBranch(b, name); err != nil || found {
			ref, ok = br, found
			return err
		}
		if tag, found, err := lookupTag(b, name); err != nil || found {
			ref, ok = tag, found
			return err
		}
		res := hydrateCommit(b, name)
		ref, ok = res.ref, res.ok
		return res.err
	})
	if err != nil || !ok {
		return nil, false, err
	}
	return ref, true, nil
}
