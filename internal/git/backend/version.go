package backend

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Minimum git for the CLI backend. `status --porcelain=v2` needs 2.11 and
// `diff-tree -z` rename output is stable from 2.23 onwards.
var minGitVersion = gitVersion{major: 2, minor: 23, patch: 0}

type gitVersion struct {
	major int
	minor int
	patch int
}

func MinGitVersion() string {
	return minGitVersion.String()
}

func (v gitVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

func (v gitVersion) less(other gitVersion) bool {
	if v.major != other.major {
		return v.major < other.major
	}
	if v.minor != other.minor {
		return v.minor < other.minor
	}
	return v.patch < other.patch
}

// parseGitVersionOutput accepts "git version 2.44.0", vendor suffixes such as
// "2.39.3 (Apple Git-146)" or "2.39.3.windows.1", and bare version numbers.
func parseGitVersionOutput(out string) (gitVersion, bool) {
	s := strings.TrimSpace(out)
	if _, rest, ok := strings.Cut(s, "git version"); ok {
		s = strings.TrimSpace(rest)
	}
	start := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
	if start < 0 {
		return gitVersion{}, false
	}
	s = s[start:]
	end := strings.IndexFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '.' })
	if end >= 0 {
		s = s[:end]
	}
	parts := strings.Split(strings.Trim(s, "."), ".")
	if len(parts) < 2 {
		return gitVersion{}, false
	}
	var v gitVersion
	var err error
	if v.major, err = strconv.Atoi(parts[0]); err != nil {
		return gitVersion{}, false
	}
	if v.minor, err = strconv.Atoi(parts[1]); err != nil {
		return gitVersion{}, false
	}
	if len(parts) >= 3 {
		if p, err := strconv.Atoi(parts[2]); err == nil {
			v.patch = p
		}
	}
	return v, true
}

func validateGitVersionOutput(out string) error {
	got, ok := parseGitVersionOutput(out)
	if !ok {
		return fmt.Errorf("unable to parse git version output: %q", strings.TrimSpace(out))
	}
	if got.less(minGitVersion) {
		return fmt.Errorf("git %s is too old; gitscope requires git >= %s", got, minGitVersion)
	}
	return nil
}

var (
	gitVersionOnce sync.Once
	gitVersionOut  string
	gitVersionErr  error
)

func gitVersionOutput() (string, error) {
	gitVersionOnce.Do(func() {
		outBytes, err := exec.Command("git", "--version").CombinedOutput()
		gitVersionOut = strings.TrimSpace(string(outBytes))
		if err != nil {
			if gitVersionOut != "" {
				gitVersionErr = fmt.Errorf("git --version: %v: %s", err, gitVersionOut)
				return
			}
			gitVersionErr = fmt.Errorf("git --version: %w", err)
		}
	})
	return gitVersionOut, gitVersionErr
}

// GitVersion returns the raw `git --version` output of the git on PATH.
func GitVersion() (string, error) {
	return gitVersionOutput()
}

func ensureMinGitVersion() error {
	out, err := gitVersionOutput()
	if err != nil {
		return err
	}
	return validateGitVersionOutput(out)
}
