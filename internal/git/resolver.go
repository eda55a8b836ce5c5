package git

import (
	"context"
	"log/slog"

	gitbackend "github.com/thiagokokada/gitscope/internal/git/backend"
)

// Hydrate re-resolves a possibly stale reference against the repository.
// Branches and tags that still exist move to their current tip and keep
// their pin flag. Ones that were deleted fall back to their stored commit
// as a bare Commit. ok is false only when that commit is gone too, or when
// ref is nil.
func (s *Service) Hydrate(ctx context.Context, ref Reference) (Reference, bool, error) {
	if ref == nil {
		return nil, false, nil
	}
	var (
		out Reference
		ok  bool
	)
	err := s.withBackend(ctx, "hydrate", func(_ context.Context, b gitbackend.Backend) error {
		var err error
		out, ok, err = hydrate(b, ref)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return out, ok, nil
}

type hydration struct {
	ref Reference
	ok  bool
	err error
}

func hydrate(b gitbackend.Backend, ref Reference) (Reference, bool, error) {
	res := MatchReference(ref,
		func(c Commit) hydration {
			return hydrateCommit(b, c.Target().SHA())
		},
		func(br Branch) hydration {
			live, ok, err := lookupBranch(b, br.FriendlyName())
			if err != nil {
				return hydration{err: err}
			}
			if !ok {
				slog.Debug("branch gone, falling back to commit",
					slog.String("branch", br.FriendlyName()), slog.String("sha", br.Target().SHA()))
				return hydrateCommit(b, br.Target().SHA())
			}
			live.pin = br.pin
			return hydration{ref: live, ok: true}
		},
		func(t Tag) hydration {
			live, ok, err := lookupTag(b, t.FriendlyName())
			if err != nil {
				return hydration{err: err}
			}
			if !ok {
				slog.Debug("tag gone, falling back to commit",
					slog.String("tag", t.FriendlyName()), slog.String("sha", t.Target().SHA()))
				return hydrateCommit(b, t.Target().SHA())
			}
			live.pin = t.pin
			return hydration{ref: live, ok: true}
		},
	)
	return res.ref, res.ok, res.err
}

func hydrateCommit(b gitbackend.Backend, sha string) hydration {
	c, ok, err := b.LookupCommit(sha)
	if err != nil || !ok {
		return hydration{err: err}
	}
	return hydration{ref: NewCommit(ResolvedCommitObject(c.Hash, c.Summary)), ok: true}
}

// resolver memoizes commit summaries for one backend handle.
type resolver struct {
	b       gitbackend.Backend
	commits map[string]CommitObject
}

func newResolver(b gitbackend.Backend) *resolver {
	return &resolver{b: b, commits: map[string]CommitObject{}}
}

func (r *resolver) commit(sha string) (CommitObject, bool, error) {
	if c, ok := r.commits[sha]; ok {
		return c, true, nil
	}
	c, ok, err := r.b.LookupCommit(sha)
	if err != nil || !ok {
		return CommitObject{}, false, err
	}
	obj := ResolvedCommitObject(c.Hash, c.Summary)
	r.commits[sha] = obj
	return obj, true, nil
}

func (r *resolver) branch(ref gitbackend.Ref) (Branch, bool, error) {
	target, ok, err := r.commit(ref.Hash)
	if err != nil || !ok {
		return Branch{}, false, err
	}
	b, err := NewBranch(ref.Name, target, false)
	if err != nil {
		return Branch{}, false, nil
	}
	b.remote = ref.Kind == gitbackend.RefKindRemoteBranch
	return b, true, nil
}

func (r *resolver) tag(ref gitbackend.Ref) (Tag, bool, error) {
	target, ok, err := r.commit(ref.Hash)
	if err != nil || !ok {
		return Tag{}, false, err
	}
	return NewTag(ref.Name, target, false), true, nil
}

// lookupBranch finds a branch by exact short name, preferring a local branch
// over a remote-tracking one of the same name.
func lookupBranch(b gitbackend.Backend, name string) (Branch, bool, error) {
	if name == "" {
		return Branch{}, false, nil
	}
	refs, err := b.Branches()
	if err != nil {
		return Branch{}, false, err
	}
	var remote *gitbackend.Ref
	for i, ref := range refs {
		if ref.Name != name {
			continue
		}
		if ref.Kind == gitbackend.RefKindBranch {
			return newResolver(b).branch(ref)
		}
		if remote == nil {
			remote = &refs[i]
		}
	}
	if remote == nil {
		return Branch{}, false, nil
	}
	return newResolver(b).branch(*remote)
}

func lookupTag(b gitbackend.Backend, name string) (Tag, bool, error) {
	if name == "" {
		return Tag{}, false, nil
	}
	refs, err := b.Tags()
	if err != nil {
		return Tag{}, false, err
	}
	for _, ref := range refs {
		if ref.Name == name {
			return newResolver(b).tag(ref)
		}
	}
	return Tag{}, false, nil
}
