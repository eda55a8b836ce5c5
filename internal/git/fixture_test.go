package git_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/gitscope/internal/git"
	"github.com/thiagokokada/gitscope/internal/git/backend"
	"github.com/thiagokokada/gitscope/internal/gittest"
)

// mergeRepo is checked out on feature1, which branched from main at
// "initial" and has one commit of its own. main moved on afterwards.
type mergeRepo struct {
	*gittest.Repo

	initial  string // Class1.cs, Class4.cs
	feature  string // feature1: + FeatureClass.cs
	mainTip  string // main: Class4.cs modified, + MainOnly.cs
	tagged   string // annotated tag v1 -> initial
	lightTag string // lightweight tag v2 -> mainTip
}

func newMergeRepo(t *testing.T) *mergeRepo {
	t.Helper()
	r := gittest.New(t)
	m := &mergeRepo{Repo: r}
	m.initial = r.Commit("Master commit 1", map[string]string{
		"Class1.cs": "class Class1 {}\n",
		"Class4.cs": "class Class4 {}\n",
	})
	r.Branch("feature1")
	m.mainTip = r.Commit("Class4 on main", map[string]string{
		"Class4.cs":   "class Class4 { int x; }\n",
		"MainOnly.cs": "class MainOnly {}\n",
	})
	r.Checkout("feature1")
	m.feature = r.Commit("Add classes on feature 1", map[string]string{
		"Feature/FeatureClass.cs": "class FeatureClass {}\n",
	})
	r.RemoteBranch("origin", "main", m.mainTip)
	r.RemoteBranch("origin", "feature1", m.feature)
	r.RemoteBranch("origin", "main", "")
	r.Tag("v1", m.initial, true)
	r.Tag("v2", m.mainTip, false)
	m.tagged, m.lightTag = m.initial, m.mainTip
	return m
}

var openers = map[string]backend.Opener{
	backend.NameNative: backend.OpenNative,
	backend.NameCLI:    backend.OpenCLI,
}

// eachBackend runs fn once per backend. The git CLI variant is skipped when
// git is not installed.
func eachBackend(t *testing.T, fn func(t *testing.T, open backend.Opener)) {
	t.Helper()
	for name, open := range openers {
		t.Run(name, func(t *testing.T) {
			if name == backend.NameCLI {
				gittest.RequireGit(t)
			}
			fn(t, open)
		})
	}
}

func openService(t *testing.T, open backend.Opener, dir string) *git.Service {
	t.Helper()
	svc, err := git.Open(dir, open)
	require.NoError(t, err)
	return svc
}

func commitRef(sha string) git.Reference {
	return git.NewCommit(git.NewCommitObject(sha))
}

func branchRef(t *testing.T, name, sha string) git.Branch {
	t.Helper()
	b, err := git.NewBranch(name, git.NewCommitObject(sha), false)
	require.NoError(t, err)
	return b
}

func changesetPaths(t *testing.T, svc *git.Service, cfg git.ComparisonConfig) []string {
	t.Helper()
	cs, err := svc.Changeset(context.Background(), cfg)
	require.NoError(t, err)
	return cs.Paths()
}
