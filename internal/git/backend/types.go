package backend

type Commit struct {
	Hash    string
	Summary string
}

type Head struct {
	Hash string
	// Branch is the short branch name, empty when HEAD is detached.
	Branch string
}

type RefKind uint8

const (
	RefKindBranch RefKind = iota
	RefKindRemoteBranch
	RefKindTag
)

func (k RefKind) String() string {
	switch k {
	case RefKindBranch:
		return "branch"
	case RefKindRemoteBranch:
		return "remote"
	case RefKindTag:
		return "tag"
	default:
		return "unknown"
	}
}

type Ref struct {
	Hash string
	Kind RefKind
	Name string // short name: main, origin/main, v1
}

type ChangeKind uint8

const (
	ChangeAdded ChangeKind = iota + 1
	ChangeModified
	ChangeRenamed
	ChangeDeleted
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeModified:
		return "modified"
	case ChangeRenamed:
		return "renamed"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// TreeChange is a single path difference. Paths are slash separated and
// relative to the repository root.
type TreeChange struct {
	Kind    ChangeKind
	Path    string
	OldPath string // set for ChangeRenamed only
}

// StatusCode mirrors the single letter codes used by git status.
type StatusCode byte

const (
	Unmodified         StatusCode = ' '
	Untracked          StatusCode = '?'
	Modified           StatusCode = 'M'
	Added              StatusCode = 'A'
	Deleted            StatusCode = 'D'
	Renamed            StatusCode = 'R'
	Copied             StatusCode = 'C'
	UpdatedButUnmerged StatusCode = 'U'
)

type StatusEntry struct {
	Path     string
	Staging  StatusCode
	Worktree StatusCode
}
