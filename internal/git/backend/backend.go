package backend

import (
	"errors"
	"fmt"
	"strings"
)

// Backend is a scoped handle on a repository. It exposes the read-only query
// surface the changeset engine needs and must be closed after use.
//
// Hashes are full 40-character hex strings. Lookups that find nothing report
// ok=false instead of an error; errors are reserved for I/O and corrupt data.
type Backend interface {
	Root() string
	Close() error

	Head() (head Head, ok bool, err error)
	LookupCommit(hash string) (commit Commit, ok bool, err error)

	// Branches lists local and remote-tracking branches. Symbolic refs such
	// as origin/HEAD are omitted.
	Branches() ([]Ref, error)
	// Tags lists tags with their targets peeled to commits. Tags whose
	// target cannot be peeled are omitted.
	Tags() ([]Ref, error)

	MergeBase(a, b string) (base string, ok bool, err error)
	DiffTrees(fromCommit, toCommit string) ([]TreeChange, error)
	Status() ([]StatusEntry, error)
	FirstParentLog(fromCommit string, limit int) ([]Commit, error)

	// ReadFile returns the blob at path in commit. Binary content is
	// reported through binary=true.
	ReadFile(commit, path string) (data []byte, binary bool, ok bool, err error)
	// DiffWorktreePath compares path between commit and the working
	// directory. ok=false when the path is identical on both sides.
	DiffWorktreePath(commit, path string) (change TreeChange, ok bool, err error)
}

// Opener opens a scoped Backend for the repository rooted at root.
type Opener func(root string) (Backend, error)

const (
	NameNative = "native"
	NameCLI    = "gitcli"
)

var ErrUnknownBackend = errors.New("unknown backend")

// ForName returns the Opener registered under name. An empty name selects
// the native backend.
func ForName(name string) (Opener, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameNative:
		return OpenNative, nil
	case NameCLI:
		return OpenCLI, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

func shortRefName(full string) (string, RefKind, bool) {
	switch {
	case strings.HasPrefix(full, "refs/heads/"):
		return strings.TrimPrefix(full, "refs/heads/"), RefKindBranch, true
	case strings.HasPrefix(full, "refs/remotes/"):
		return strings.TrimPrefix(full, "refs/remotes/"), RefKindRemoteBranch, true
	case strings.HasPrefix(full, "refs/tags/"):
		return strings.TrimPrefix(full, "refs/tags/"), RefKindTag, true
	default:
		return "", 0, false
	}
}

func isSymbolicRemoteHead(short string) bool {
	return strings.HasSuffix(short, "/HEAD")
}

func summaryLine(message string) string {
	return strings.SplitN(strings.TrimSpace(message), "\n", 2)[0]
}

// IsHash reports whether s is a full 40-character lowercase hex object id,
// the form git prints. Object ids compare case-sensitively.
func IsHash(s string) bool {
	if len(s) != 40 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
