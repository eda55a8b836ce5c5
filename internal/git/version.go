package git

import gitbackend "github.com/thiagokokada/gitscope/internal/git/backend"

// GitVersion reports the git executable used by the CLI backend.
func GitVersion() (string, error) {
	return gitbackend.GitVersion()
}

func MinGitVersion() string {
	return gitbackend.MinGitVersion()
}
