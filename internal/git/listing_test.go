package git_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/gitscope/internal/git"
	"github.com/thiagokokada/gitscope/internal/git/backend"
	"github.com/thiagokokada/gitscope/internal/gittest"
)

func branchNames(branches []git.Branch) []string {
	out := make([]string, 0, len(branches))
	for _, b := range branches {
		out = append(out, b.FriendlyName())
	}
	return out
}

func TestRecentCommits(t *testing.T) {
	eachBackend(t, func(t *testing.T, open backend.Opener) {
		m := newMergeRepo(t)
		merge := m.Merge("Merge branch 'main' into feature1", "main", map[string]string{
			"Class4.cs":   "class Class4 { int x; }\n",
			"MainOnly.cs": "class MainOnly {}\n",
		})
		svc := openService(t, open, m.Dir)
		ctx := context.Background()

		commits, err := svc.RecentCommits(ctx, git.DefaultRecentLimit)
		require.NoError(t, err)
		var got []string
		for _, c := range commits {
			got = append(got, c.Target().SHA())
		}
		// main's own commit is only reachable through the second parent
		require.Equal(t, []string{merge, m.feature, m.initial}, got)
		require.Equal(t, "Merge branch 'main' into feature1", commits[0].ShortMessage())

		commits, err = svc.RecentCommits(ctx, 1)
		require.NoError(t, err)
		require.Len(t, commits, 1)

		commits, err = svc.RecentCommits(ctx, 0)
		require.NoError(t, err)
		require.Empty(t, commits)
	})
}

func TestRecentCommitsWithoutHead(t *testing.T) {
	r := gittest.New(t)
	svc := openService(t, nil, r.Dir)

	_, err := svc.RecentCommits(context.Background(), 5)
	require.True(t, errors.Is(err, git.ErrHeadNotFound), "got %v", err)
}

func TestRecentTags(t *testing.T) {
	eachBackend(t, func(t *testing.T, open backend.Opener) {
		m := newMergeRepo(t)
		svc := openService(t, open, m.Dir)
		ctx := context.Background()

		tags, err := svc.RecentTags(ctx, git.DefaultRecentLimit)
		require.NoError(t, err)
		require.Len(t, tags, 2)
		byName := map[string]string{}
		for _, tag := range tags {
			byName[tag.FriendlyName()] = tag.Target().SHA()
		}
		require.Equal(t, map[string]string{"v1": m.tagged, "v2": m.lightTag}, byName)

		tags, err = svc.RecentTags(ctx, 1)
		require.NoError(t, err)
		require.Len(t, tags, 1)

		tags, err = svc.RecentTags(ctx, 0)
		require.NoError(t, err)
		require.Empty(t, tags)
	})
}

func TestBranches(t *testing.T) {
	eachBackend(t, func(t *testing.T, open backend.Opener) {
		m := newMergeRepo(t)
		svc := openService(t, open, m.Dir)
		ctx := context.Background()

		branches, err := svc.Branches(ctx, git.ComparisonConfig{})
		require.NoError(t, err)
		require.Equal(t, []string{"feature1", "main", "origin/feature1", "origin/main"}, branchNames(branches))
		require.Equal(t, m.mainTip, branches[1].Target().SHA())
		require.False(t, branches[1].IsRemote())
		require.True(t, branches[3].IsRemote())

		branches, err = svc.Branches(ctx, git.ComparisonConfig{OriginRefsOnly: true})
		require.NoError(t, err)
		require.Equal(t, []string{"origin/feature1", "origin/main"}, branchNames(branches))
	})
}

func TestBranchByName(t *testing.T) {
	eachBackend(t, func(t *testing.T, open backend.Opener) {
		m := newMergeRepo(t)
		svc := openService(t, open, m.Dir)
		ctx := context.Background()

		br, ok, err := svc.BranchByName(ctx, "main")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, m.mainTip, br.Target().SHA())

		br, ok, err = svc.BranchByName(ctx, "origin/feature1")
		require.NoError(t, err)
		require.True(t, ok)
		require.True(t, br.IsRemote())

		for _, name := range []string{"", "nope", "origin/HEAD"} {
			_, ok, err = svc.BranchByName(ctx, name)
			require.NoError(t, err, name)
			require.False(t, ok, name)
		}
	})
}

func TestTagByName(t *testing.T) {
	m := newMergeRepo(t)
	svc := openService(t, nil, m.Dir)
	ctx := context.Background()

	tag, ok, err := svc.TagByName(ctx, "v1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, m.tagged, tag.Target().SHA())

	_, ok, err = svc.TagByName(ctx, "v404")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestResolveName(t *testing.T) {
	m := newMergeRepo(t)
	svc := openService(t, nil, m.Dir)
	ctx := context.Background()

	tests := []struct {
		name string
		kind git.ReferenceKind
		sha  string
		ok   bool
	}{
		{name: "main", kind: git.KindBranch, sha: m.mainTip, ok: true},
		{name: "v1", kind: git.KindTag, sha: m.tagged, ok: true},
		{name: m.feature, kind: git.KindCommit, sha: m.feature, ok: true},
		{name: missingSHA, ok: false},
		{name: "unknown", ok: false},
		{name: "", ok: false},
	}
	for _, tt := range tests {
		ref, ok, err := svc.ResolveName(ctx, tt.name)
		require.NoError(t, err, tt.name)
		require.Equal(t, tt.ok, ok, tt.name)
		if !ok {
			require.Nil(t, ref, tt.name)
			continue
		}
		require.Equal(t, tt.kind, ref.Kind(), tt.name)
		require.Equal(t, tt.sha, ref.Target().SHA(), tt.name)
	}
}
