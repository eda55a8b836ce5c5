package git

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChangesetDedup(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	ref := NewCommit(NewCommitObject(shaA))
	committed := Item{Path: filepath.Join(root, "Src", "Class1.cs"), Reference: ref}
	live := Item{Path: filepath.Join(root, "src", "class1.cs")}

	cs := NewChangeset(committed, live)
	require.Equal(t, 1, cs.Len())

	got, ok := cs.Get(filepath.Join(root, "SRC", "CLASS1.CS"))
	require.True(t, ok)
	require.Nil(t, got.Reference, "later items replace earlier ones")
	require.True(t, cs.Contains(filepath.Join(root, "src", "..", "src", "Class1.cs")))
}

func TestChangesetOrdering(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cs := NewChangeset(
		Item{Path: filepath.Join(root, "b.cs")},
		Item{Path: filepath.Join(root, "a.cs")},
		Item{Path: filepath.Join(root, "c", "d.cs")},
	)
	want := []string{
		filepath.Join(root, "a.cs"),
		filepath.Join(root, "b.cs"),
		filepath.Join(root, "c", "d.cs"),
	}
	require.Equal(t, want, cs.Paths())

	var iterated []string
	for it := range cs.All() {
		iterated = append(iterated, it.Path)
		if len(iterated) == 2 {
			break
		}
	}
	require.Equal(t, want[:2], iterated)
}

func TestChangesetNil(t *testing.T) {
	t.Parallel()

	var cs *Changeset
	require.Zero(t, cs.Len())
	require.False(t, cs.Contains("/x"))
	require.Empty(t, cs.Items())
	require.Empty(t, NewChangeset().Paths())
}
