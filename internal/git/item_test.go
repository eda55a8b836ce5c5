package git_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/gitscope/internal/git"
	"github.com/thiagokokada/gitscope/internal/git/backend"
)

func TestReadItem(t *testing.T) {
	eachBackend(t, func(t *testing.T, open backend.Opener) {
		m := newMergeRepo(t)
		m.Write("Class1.cs", "class Class1 { void Changed() {} }\n")
		m.Delete("Class4.cs")
		m.Write("Fresh.cs", "class Fresh {}\n")
		svc := openService(t, open, m.Dir)
		ctx := context.Background()
		ref := branchRef(t, "main", m.mainTip)
		cfg := git.ComparisonConfig{Reference: ref}

		tests := []struct {
			path string
			ok   bool
		}{
			// compared with main's tip, not the merge base
			{path: m.Path("Feature/FeatureClass.cs"), ok: true},
			{path: m.Path("Class1.cs"), ok: true},
			{path: m.Path("Fresh.cs"), ok: true},
			{path: "Fresh.cs", ok: true},
			{path: m.Path("Class4.cs"), ok: false},
			{path: m.Path("MainOnly.cs"), ok: false},
			{path: m.Path("Nope.cs"), ok: false},
			{path: m.Path("../outside.cs"), ok: false},
		}
		for _, tt := range tests {
			item, ok, err := svc.ReadItem(ctx, cfg, tt.path)
			require.NoError(t, err, tt.path)
			require.Equal(t, tt.ok, ok, tt.path)
			if ok {
				require.True(t, item.Reference.Equal(ref))
			}
		}

		_, _, err := svc.ReadItem(ctx, git.ComparisonConfig{}, m.Path("Class1.cs"))
		require.True(t, errors.Is(err, git.ErrNothingToCompare))

		_, _, err = svc.ReadItem(ctx, git.ComparisonConfig{Reference: commitRef(missingSHA)}, m.Path("Class1.cs"))
		require.True(t, errors.Is(err, git.ErrTargetNotFound))
	})
}

func TestBaseContent(t *testing.T) {
	eachBackend(t, func(t *testing.T, open backend.Opener) {
		m := newMergeRepo(t)
		m.Commit("add binary", map[string]string{"logo.png": "\x89PNG\x00\x00"})
		svc := openService(t, open, m.Dir)
		ctx := context.Background()
		cfg := git.ComparisonConfig{Reference: branchRef(t, "main", m.mainTip)}

		data, ok, err := svc.BaseContent(ctx, cfg, git.Item{Path: m.Path("Class4.cs")})
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "class Class4 { int x; }\n", string(data))

		// the item's own reference wins over the configured one
		data, ok, err = svc.BaseContent(ctx, cfg, git.Item{Path: m.Path("Class4.cs"), Reference: commitRef(m.initial)})
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "class Class4 {}\n", string(data))

		data, ok, err = svc.BaseContent(ctx, cfg, git.Item{
			Path:      m.Path("Renamed.cs"),
			OldPath:   m.Path("MainOnly.cs"),
			Reference: commitRef(m.mainTip),
		})
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "class MainOnly {}\n", string(data))

		_, ok, err = svc.BaseContent(ctx, cfg, git.Item{Path: m.Path("Feature/FeatureClass.cs")})
		require.NoError(t, err)
		require.False(t, ok, "absent at the base")

		_, ok, err = svc.BaseContent(ctx, cfg, git.Item{Path: m.Path("logo.png"), Reference: commitRef(m.Tip("feature1"))})
		require.NoError(t, err)
		require.False(t, ok, "binary content is not returned")

		_, _, err = svc.BaseContent(ctx, git.ComparisonConfig{}, git.Item{Path: m.Path("Class4.cs")})
		require.True(t, errors.Is(err, git.ErrNothingToCompare))
	})
}
