package git

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindRepositoryRoot walks up from path until a directory containing a .git
// entry is found. The .git entry may be a file, as in linked worktrees and
// submodules.
func FindRepositoryRoot(path string) (string, error) {
	start, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if fi, err := os.Stat(start); err == nil && !fi.IsDir() {
		start = filepath.Dir(start)
	}
	cur := start
	for {
		if _, err := os.Lstat(filepath.Join(cur, ".git")); err == nil {
			return cur, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", fmt.Errorf("%w: %s", ErrRepositoryNotFound, path)
		}
		cur = parent
	}
}
