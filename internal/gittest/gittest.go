// Package gittest builds throwaway repositories for tests.
package gittest

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

const DefaultBranch = "main"

// Repo is a non-bare repository in a temporary directory.
type Repo struct {
	t     testing.TB
	Dir   string
	Repo  *gitlib.Repository
	clock time.Time
}

// New initialises an empty repository whose HEAD points at DefaultBranch.
func New(t testing.TB) *Repo {
	t.Helper()
	dir := t.TempDir()
	// macOS temp dirs live behind a /var symlink
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	repo, err := gitlib.PlainInit(dir, false)
	require.NoError(t, err)
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(DefaultBranch))
	require.NoError(t, repo.Storer.SetReference(head))
	return &Repo{
		t:     t,
		Dir:   dir,
		Repo:  repo,
		clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Path returns the absolute path of a slash separated repository path.
func (r *Repo) Path(rel string) string {
	return filepath.Join(r.Dir, filepath.FromSlash(rel))
}

// Write creates or overwrites a file in the working directory.
func (r *Repo) Write(rel, content string) {
	r.t.Helper()
	p := r.Path(rel)
	require.NoError(r.t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(r.t, os.WriteFile(p, []byte(content), 0o644))
}

// Delete removes a file from the working directory only.
func (r *Repo) Delete(rel string) {
	r.t.Helper()
	require.NoError(r.t, os.Remove(r.Path(rel)))
}

func (r *Repo) worktree() *gitlib.Worktree {
	r.t.Helper()
	wt, err := r.Repo.Worktree()
	require.NoError(r.t, err)
	return wt
}

// Stage adds paths to the index.
func (r *Repo) Stage(paths ...string) {
	r.t.Helper()
	wt := r.worktree()
	for _, p := range paths {
		_, err := wt.Add(p)
		require.NoError(r.t, err)
	}
}

// Remove deletes paths from the index and the working directory, like
// git rm.
func (r *Repo) Remove(paths ...string) {
	r.t.Helper()
	wt := r.worktree()
	for _, p := range paths {
		_, err := wt.Remove(p)
		require.NoError(r.t, err)
	}
}

func (r *Repo) signature() *object.Signature {
	r.clock = r.clock.Add(time.Minute)
	return &object.Signature{Name: "Test", Email: "test@example.com", When: r.clock}
}

// Commit writes files, stages them along with tracked modifications and
// deletions, and commits on the current branch.
func (r *Repo) Commit(msg string, files map[string]string) string {
	r.t.Helper()
	return r.commit(msg, files, nil)
}

// Merge commits the current worktree with HEAD and the tip of branch as
// parents. Files should already hold the merged content.
func (r *Repo) Merge(msg, branch string, files map[string]string) string {
	r.t.Helper()
	head, err := r.Repo.Head()
	require.NoError(r.t, err)
	other := r.Tip(branch)
	return r.commit(msg, files, []plumbing.Hash{head.Hash(), plumbing.NewHash(other)})
}

func (r *Repo) commit(msg string, files map[string]string, parents []plumbing.Hash) string {
	r.t.Helper()
	for p, content := range files {
		r.Write(p, content)
		r.Stage(p)
	}
	sig := r.signature()
	hash, err := r.worktree().Commit(msg, &gitlib.CommitOptions{
		All:               true,
		AllowEmptyCommits: true,
		Author:            sig,
		Committer:         sig,
		Parents:           parents,
	})
	require.NoError(r.t, err)
	return hash.String()
}

// Orphan starts a new branch with no history whose only content is files.
// Tracked files are removed from the working directory; HEAD is left on the
// new branch.
func (r *Repo) Orphan(branch, msg string, files map[string]string) string {
	r.t.Helper()
	idx, err := r.Repo.Storer.Index()
	require.NoError(r.t, err)
	tracked := make([]string, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		tracked = append(tracked, e.Name)
	}
	r.Remove(tracked...)
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(branch))
	require.NoError(r.t, r.Repo.Storer.SetReference(head))
	return r.Commit(msg, files)
}

// DeleteBranch removes a local branch ref.
func (r *Repo) DeleteBranch(name string) {
	r.t.Helper()
	require.NoError(r.t, r.Repo.Storer.RemoveReference(plumbing.NewBranchReferenceName(name)))
}

// DeleteTag removes a tag ref. Annotated tag objects stay in the store.
func (r *Repo) DeleteTag(name string) {
	r.t.Helper()
	require.NoError(r.t, r.Repo.DeleteTag(name))
}

// Branch creates branch at HEAD without switching to it.
func (r *Repo) Branch(name string) {
	r.t.Helper()
	head, err := r.Repo.Head()
	require.NoError(r.t, err)
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), head.Hash())
	require.NoError(r.t, r.Repo.Storer.SetReference(ref))
}

// Checkout switches the working directory to an existing branch. It is a
// forced checkout: local edits and untracked files are discarded.
func (r *Repo) Checkout(name string) {
	r.t.Helper()
	require.NoError(r.t, r.worktree().Checkout(&gitlib.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Force:  true,
	}))
}

// Detach points HEAD directly at a commit.
func (r *Repo) Detach(hash string) {
	r.t.Helper()
	ref := plumbing.NewHashReference(plumbing.HEAD, plumbing.NewHash(hash))
	require.NoError(r.t, r.Repo.Storer.SetReference(ref))
}

// RemoteBranch creates refs/remotes/<remote>/<name> at hash. Passing an
// empty hash creates the symbolic <remote>/HEAD pointing at <remote>/<name>.
func (r *Repo) RemoteBranch(remote, name, hash string) {
	r.t.Helper()
	refName := plumbing.NewRemoteReferenceName(remote, name)
	var ref *plumbing.Reference
	if hash == "" {
		ref = plumbing.NewSymbolicReference(plumbing.NewRemoteHEADReferenceName(remote), refName)
	} else {
		ref = plumbing.NewHashReference(refName, plumbing.NewHash(hash))
	}
	require.NoError(r.t, r.Repo.Storer.SetReference(ref))
	if _, err := r.Repo.Remote(remote); err == nil {
		return
	}
	_, err := r.Repo.CreateRemote(&config.RemoteConfig{Name: remote, URLs: []string{"https://example.com/" + remote + ".git"}})
	require.NoError(r.t, err)
}

// Tag creates a lightweight or annotated tag on hash.
func (r *Repo) Tag(name, hash string, annotated bool) {
	r.t.Helper()
	var opts *gitlib.CreateTagOptions
	if annotated {
		opts = &gitlib.CreateTagOptions{Tagger: r.signature(), Message: name}
	}
	_, err := r.Repo.CreateTag(name, plumbing.NewHash(hash), opts)
	require.NoError(r.t, err)
}

// Tip returns the commit a local branch points at.
func (r *Repo) Tip(branch string) string {
	r.t.Helper()
	ref, err := r.Repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	require.NoError(r.t, err)
	return ref.Hash().String()
}

// RequireGit skips the test when no git executable is on PATH.
func RequireGit(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not found")
	}
}
