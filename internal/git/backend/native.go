package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	gitindex "github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type native struct {
	root string
	repo *gitlib.Repository
}

// OpenNative opens root with go-git. Linked worktrees (a .git file) are
// supported through the common dir.
func OpenNative(root string) (Backend, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	repo, err := gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return &native{root: abs, repo: repo}, nil
}

func (n *native) Root() string {
	return n.root
}

func (n *native) Close() error {
	if n == nil || n.repo == nil {
		return nil
	}
	// filesystem storage keeps packfile descriptors open until closed.
	if c, ok := n.repo.Storer.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close repository: %w", err)
		}
	}
	n.repo = nil
	return nil
}

func (n *native) Head() (Head, bool, error) {
	ref, err := n.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return Head{}, false, nil
		}
		return Head{}, false, fmt.Errorf("resolve HEAD: %w", err)
	}
	head := Head{Hash: ref.Hash().String()}
	if ref.Name().IsBranch() {
		head.Branch = ref.Name().Short()
	}
	return head, true, nil
}

func (n *native) LookupCommit(hash string) (Commit, bool, error) {
	c, ok, err := n.commit(hash)
	if err != nil || !ok {
		return Commit{}, ok, err
	}
	return Commit{Hash: c.Hash.String(), Summary: summaryLine(c.Message)}, true, nil
}

func (n *native) commit(hash string) (*object.Commit, bool, error) {
	if !IsHash(hash) {
		return nil, false, nil
	}
	c, err := n.repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) || errors.Is(err, object.ErrUnsupportedObject) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("lookup commit %s: %w", hash, err)
	}
	return c, true, nil
}

func (n *native) mustCommit(hash string) (*object.Commit, error) {
	c, ok, err := n.commit(hash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("commit %s: %w", hash, plumbing.ErrObjectNotFound)
	}
	return c, nil
}

func (n *native) Branches() ([]Ref, error) {
	refs, err := n.repo.References()
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	defer refs.Close()
	var out []Ref
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		short, kind, ok := shortRefName(ref.Name().String())
		if !ok || kind == RefKindTag || short == "" {
			return nil
		}
		if kind == RefKindRemoteBranch && isSymbolicRemoteHead(short) {
			return nil
		}
		out = append(out, Ref{Hash: ref.Hash().String(), Kind: kind, Name: short})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	return out, nil
}

func (n *native) Tags() ([]Ref, error) {
	tags, err := n.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer tags.Close()
	var out []Ref
	err = tags.ForEach(func(ref *plumbing.Reference) error {
		peeled, ok := n.peelTagCommitHash(ref.Hash())
		if !ok {
			slog.Debug("skip unpeelable tag", slog.String("tag", ref.Name().Short()))
			return nil
		}
		out = append(out, Ref{Hash: peeled.String(), Kind: RefKindTag, Name: ref.Name().Short()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return out, nil
}

func (n *native) peelTagCommitHash(hash plumbing.Hash) (plumbing.Hash, bool) {
	if hash == plumbing.ZeroHash {
		return plumbing.ZeroHash, false
	}
	// Lightweight tags point directly at a commit; annotated tags point at a tag object.
	if _, err := n.repo.CommitObject(hash); err == nil {
		return hash, true
	}
	cur := hash
	for range 8 {
		tag, err := n.repo.TagObject(cur)
		if err != nil {
			return plumbing.ZeroHash, false
		}
		switch tag.TargetType {
		case plumbing.CommitObject:
			if _, err := n.repo.CommitObject(tag.Target); err != nil {
				return plumbing.ZeroHash, false
			}
			return tag.Target, true
		case plumbing.TagObject:
			cur = tag.Target
		default:
			return plumbing.ZeroHash, false
		}
	}
	return plumbing.ZeroHash, false
}

func (n *native) MergeBase(a, b string) (string, bool, error) {
	ca, err := n.mustCommit(a)
	if err != nil {
		return "", false, err
	}
	cb, err := n.mustCommit(b)
	if err != nil {
		return "", false, err
	}
	// Disconnected histories yield no bases rather than an error.
	bases, err := ca.MergeBase(cb)
	if err != nil {
		return "", false, fmt.Errorf("merge base: %w", err)
	}
	if len(bases) == 0 {
		return "", false, nil
	}
	return bases[0].Hash.String(), true, nil
}

func (n *native) DiffTrees(fromCommit, toCommit string) ([]TreeChange, error) {
	from, err := n.commitTree(fromCommit)
	if err != nil {
		return nil, err
	}
	to, err := n.commitTree(toCommit)
	if err != nil {
		return nil, err
	}
	changes, err := object.DiffTreeWithOptions(context.Background(), from, to, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}
	out := make([]TreeChange, 0, len(changes))
	for _, ch := range changes {
		fromName, toName := ch.From.Name, ch.To.Name
		switch {
		case fromName == "":
			out = append(out, TreeChange{Kind: ChangeAdded, Path: toName})
		case toName == "":
			out = append(out, TreeChange{Kind: ChangeDeleted, Path: fromName})
		case fromName != toName:
			out = append(out, TreeChange{Kind: ChangeRenamed, Path: toName, OldPath: fromName})
		default:
			out = append(out, TreeChange{Kind: ChangeModified, Path: toName})
		}
	}
	return out, nil
}

func (n *native) commitTree(hash string) (*object.Tree, error) {
	c, err := n.mustCommit(hash)
	if err != nil {
		return nil, err
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("tree of %s: %w", hash, err)
	}
	return tree, nil
}

func (n *native) Status() ([]StatusEntry, error) {
	wt, err := n.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("worktree status: %w", err)
	}
	submodules := n.submodulePaths(wt)
	out := make([]StatusEntry, 0, len(status))
	for p, st := range status {
		if underAny(p, submodules) {
			continue
		}
		entry := StatusEntry{Path: p, Staging: StatusCode(st.Staging), Worktree: StatusCode(st.Worktree)}
		if entry.Staging == Unmodified && entry.Worktree == Unmodified {
			continue
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (n *native) submodulePaths(wt *gitlib.Worktree) []string {
	subs, err := wt.Submodules()
	if err != nil {
		slog.Debug("list submodules", slog.Any("error", err))
		return nil
	}
	paths := make([]string, 0, len(subs))
	for _, sm := range subs {
		if cfg := sm.Config(); cfg != nil && cfg.Path != "" {
			paths = append(paths, path.Clean(cfg.Path))
		}
	}
	return paths
}

func underAny(p string, dirs []string) bool {
	for _, dir := range dirs {
		if p == dir || strings.HasPrefix(p, dir+"/") {
			return true
		}
	}
	return false
}

func (n *native) FirstParentLog(fromCommit string, limit int) ([]Commit, error) {
	if limit <= 0 {
		return nil, nil
	}
	c, err := n.mustCommit(fromCommit)
	if err != nil {
		return nil, err
	}
	out := make([]Commit, 0, min(limit, 64))
	for len(out) < limit {
		out = append(out, Commit{Hash: c.Hash.String(), Summary: summaryLine(c.Message)})
		if c.NumParents() == 0 {
			break
		}
		c, err = c.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("first parent of %s: %w", out[len(out)-1].Hash, err)
		}
	}
	return out, nil
}

func (n *native) ReadFile(commit, p string) ([]byte, bool, bool, error) {
	c, err := n.mustCommit(commit)
	if err != nil {
		return nil, false, false, err
	}
	f, err := c.File(p)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) || errors.Is(err, object.ErrDirectoryNotFound) {
			return nil, false, false, nil
		}
		return nil, false, false, fmt.Errorf("read %s at %s: %w", p, commit, err)
	}
	binary, err := f.IsBinary()
	if err != nil {
		return nil, false, false, fmt.Errorf("read %s at %s: %w", p, commit, err)
	}
	if binary {
		return nil, true, true, nil
	}
	contents, err := f.Contents()
	if err != nil {
		return nil, false, false, fmt.Errorf("read %s at %s: %w", p, commit, err)
	}
	return []byte(contents), false, true, nil
}

func (n *native) DiffWorktreePath(commit, p string) (TreeChange, bool, error) {
	tree, err := n.commitTree(commit)
	if err != nil {
		return TreeChange{}, false, err
	}
	inTree := false
	var treeHash plumbing.Hash
	entry, err := tree.FindEntry(p)
	switch {
	case err == nil:
		if entry.Mode.IsFile() {
			inTree = true
			treeHash = entry.Hash
		}
	case errors.Is(err, object.ErrEntryNotFound), errors.Is(err, object.ErrDirectoryNotFound):
	default:
		return TreeChange{}, false, fmt.Errorf("find %s at %s: %w", p, commit, err)
	}

	data, err := os.ReadFile(filepath.Join(n.root, filepath.FromSlash(p)))
	onDisk := err == nil
	if err != nil && !os.IsNotExist(err) {
		return TreeChange{}, false, fmt.Errorf("read %s: %w", p, err)
	}

	switch {
	case inTree && onDisk:
		if plumbing.ComputeHash(plumbing.BlobObject, data) == treeHash {
			return TreeChange{}, false, nil
		}
		return TreeChange{Kind: ChangeModified, Path: p}, true, nil
	case inTree:
		return TreeChange{Kind: ChangeDeleted, Path: p}, true, nil
	case onDisk:
		tracked, err := n.tracked(p)
		if err != nil {
			return TreeChange{}, false, err
		}
		if !tracked && n.ignored(p) {
			return TreeChange{}, false, nil
		}
		return TreeChange{Kind: ChangeAdded, Path: p}, true, nil
	default:
		return TreeChange{}, false, nil
	}
}

func (n *native) tracked(p string) (bool, error) {
	idx, err := n.repo.Storer.Index()
	if err != nil {
		return false, fmt.Errorf("read index: %w", err)
	}
	if _, err := idx.Entry(p); err != nil {
		if errors.Is(err, gitindex.ErrEntryNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("read index: %w", err)
	}
	return true, nil
}

func (n *native) ignored(p string) bool {
	wt, err := n.repo.Worktree()
	if err != nil {
		return false
	}
	patterns, err := gitignore.ReadPatterns(wt.Filesystem, nil)
	if err != nil {
		slog.Debug("read gitignore patterns", slog.Any("error", err))
		return false
	}
	patterns = append(patterns, wt.Excludes...)
	return gitignore.NewMatcher(patterns).Match(strings.Split(p, "/"), false)
}
