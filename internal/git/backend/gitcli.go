package backend

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

type gitCLI struct {
	path string
}

// OpenCLI opens root through the git executable found on PATH. The installed
// git must be at least MinGitVersion.
func OpenCLI(root string) (Backend, error) {
	if err := ensureMinGitVersion(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	tmp := &gitCLI{path: abs}
	top, err := tmp.run([]string{"rev-parse", "--show-toplevel"}, false)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	top = strings.TrimSpace(top)
	if top == "" {
		return nil, fmt.Errorf("open repository: git rev-parse returned empty root")
	}
	return &gitCLI{path: filepath.FromSlash(top)}, nil
}

func (g *gitCLI) Root() string {
	if g == nil {
		return ""
	}
	return g.path
}

// Close is a no-op; every query is a separate git process.
func (g *gitCLI) Close() error {
	return nil
}

// run executes git in the repository root. With allowExit1 an exit status of
// 1 with empty stderr is a successful "nothing found" answer.
func (g *gitCLI) run(args []string, allowExit1 bool) (string, error) {
	if g == nil || g.path == "" {
		return "", fmt.Errorf("repository root not set")
	}
	cmdArgs := append([]string{"-C", g.path, "--no-pager", "-c", "core.quotepath=off"}, args...)
	cmd := exec.Command("git", cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if allowExit1 && errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && stderr.Len() == 0 {
			return stdout.String(), nil
		}
		name := "git"
		if len(args) > 0 {
			name = "git " + args[0]
		}
		if stderr.Len() > 0 {
			return "", fmt.Errorf("%s: %v: %s", name, err, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return stdout.String(), nil
}
