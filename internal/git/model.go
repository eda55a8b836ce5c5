package git

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const shortSHALen = 7

// Object is a git object identified by its SHA. Two objects are equal when
// their SHAs are equal.
type Object struct {
	sha string
}

func NewObject(sha string) Object {
	return Object{sha: sha}
}

func (o Object) SHA() string {
	return o.sha
}

func (o Object) Equal(other Object) bool {
	return o.sha == other.sha
}

// CommitObject is a commit id, optionally loaded from the repository. A
// placeholder built from a bare SHA carries no message until it is hydrated.
type CommitObject struct {
	Object
	shortMessage string
	resolved     bool
}

func NewCommitObject(sha string) CommitObject {
	return CommitObject{Object: NewObject(sha)}
}

func ResolvedCommitObject(sha, shortMessage string) CommitObject {
	return CommitObject{Object: NewObject(sha), shortMessage: shortMessage, resolved: true}
}

func (c CommitObject) ShortMessage() string {
	return c.shortMessage
}

func (c CommitObject) IsResolved() bool {
	return c.resolved
}

// Equal ignores the message and resolution state.
func (c CommitObject) Equal(other CommitObject) bool {
	return c.Object.Equal(other.Object)
}

type ReferenceKind uint8

const (
	KindCommit ReferenceKind = iota + 1
	KindBranch
	KindTag
)

func (k ReferenceKind) String() string {
	switch k {
	case KindCommit:
		return "commit"
	case KindBranch:
		return "branch"
	case KindTag:
		return "tag"
	default:
		return "unknown"
	}
}

// Reference is a commit reached through a commit id, a branch or a tag. The
// set of implementations is closed: Commit, Branch and Tag.
type Reference interface {
	Target() CommitObject
	FriendlyName() string
	PinToMergeHead() bool
	Kind() ReferenceKind
	// Equal reports whether other is the same variant with the same target.
	Equal(other Reference) bool
	String() string

	isReference()
}

// MatchReference calls the function matching the variant of ref. It panics on
// a nil reference.
func MatchReference[R any](ref Reference, onCommit func(Commit) R, onBranch func(Branch) R, onTag func(Tag) R) R {
	switch r := ref.(type) {
	case Commit:
		return onCommit(r)
	case Branch:
		return onBranch(r)
	case Tag:
		return onTag(r)
	}
	panic(fmt.Sprintf("git: unexpected reference %T", ref))
}

// ReferenceKey is a comparable identity for a Reference.
type ReferenceKey struct {
	Kind ReferenceKind
	SHA  string
}

func KeyOf(ref Reference) ReferenceKey {
	return ReferenceKey{Kind: ref.Kind(), SHA: ref.Target().SHA()}
}

type Commit struct {
	target CommitObject
}

func NewCommit(target CommitObject) Commit {
	return Commit{target: target}
}

func (c Commit) Target() CommitObject { return c.target }
func (c Commit) Kind() ReferenceKind  { return KindCommit }
func (c Commit) FriendlyName() string { return c.ShortSHA() }

// PinToMergeHead is always false; a bare commit has no merge semantics.
func (c Commit) PinToMergeHead() bool { return false }

func (c Commit) ShortSHA() string {
	return shortSHA(c.target.SHA())
}

func (c Commit) ShortMessage() string {
	return c.target.ShortMessage()
}

func (c Commit) Equal(other Reference) bool {
	o, ok := other.(Commit)
	return ok && c.target.Equal(o.target)
}

func (c Commit) String() string {
	if msg := c.ShortMessage(); msg != "" {
		return fmt.Sprintf("commit %s %s", c.ShortSHA(), msg)
	}
	return "commit " + c.ShortSHA()
}

func (Commit) isReference() {}

var errEmptyBranchName = errors.New("branch name is empty")

type Branch struct {
	name   string
	target CommitObject
	pin    bool
	remote bool
}

func NewBranch(name string, target CommitObject, pin bool) (Branch, error) {
	if strings.TrimSpace(name) == "" {
		return Branch{}, errEmptyBranchName
	}
	return Branch{name: name, target: target, pin: pin}, nil
}

func (b Branch) Target() CommitObject { return b.target }
func (b Branch) Kind() ReferenceKind  { return KindBranch }
func (b Branch) FriendlyName() string { return b.name }
func (b Branch) PinToMergeHead() bool { return b.pin }

// Pinned returns a copy of b with the pin flag set.
func (b Branch) Pinned() Branch {
	b.pin = true
	return b
}

// IsRemote reports whether b is a remote-tracking branch such as origin/main.
// Branches rebuilt from settings are never marked remote until hydrated.
func (b Branch) IsRemote() bool {
	return b.remote
}

func (b Branch) Equal(other Reference) bool {
	o, ok := other.(Branch)
	return ok && b.target.Equal(o.target)
}

func (b Branch) String() string {
	return fmt.Sprintf("branch %s (%s)", b.name, shortSHA(b.target.SHA()))
}

func (Branch) isReference() {}

type Tag struct {
	name   string
	target CommitObject
	pin    bool
}

func NewTag(name string, target CommitObject, pin bool) Tag {
	return Tag{name: name, target: target, pin: pin}
}

func (t Tag) Target() CommitObject { return t.target }
func (t Tag) Kind() ReferenceKind  { return KindTag }
func (t Tag) FriendlyName() string { return t.name }
func (t Tag) PinToMergeHead() bool { return t.pin }

// Pinned returns a copy of t with the pin flag set.
func (t Tag) Pinned() Tag {
	t.pin = true
	return t
}

func (t Tag) Equal(other Reference) bool {
	o, ok := other.(Tag)
	return ok && t.target.Equal(o.target)
}

func (t Tag) String() string {
	return fmt.Sprintf("tag %s (%s)", t.name, shortSHA(t.target.SHA()))
}

func (Tag) isReference() {}

func shortSHA(sha string) string {
	if len(sha) > shortSHALen {
		return sha[:shortSHALen]
	}
	return sha
}

// Settings is the persisted form of a Reference.
type Settings struct {
	SHA  string
	Name string
	Kind string
	Pin  bool
}

const (
	SettingsKindBranch = "GitBranch"
	SettingsKindCommit = "GitCommit"
	SettingsKindTag    = "GitTag"
)

func parseSettingsKind(kind string) (ReferenceKind, bool) {
	switch strings.TrimSpace(kind) {
	case SettingsKindBranch, "branch":
		return KindBranch, true
	case SettingsKindCommit, "commit":
		return KindCommit, true
	case SettingsKindTag, "tag":
		return KindTag, true
	default:
		return 0, false
	}
}

// ReferenceFromSettings rebuilds a placeholder reference from its persisted
// form. Unusable settings are logged and reported as absent. The result
// usually needs hydrating before use.
func ReferenceFromSettings(s Settings) (Reference, bool) {
	sha := strings.TrimSpace(s.SHA)
	if sha == "" {
		if s.Kind != "" || s.Name != "" {
			slog.Warn("ignoring stored reference without sha", slog.String("kind", s.Kind), slog.String("name", s.Name))
		}
		return nil, false
	}
	kind, ok := parseSettingsKind(s.Kind)
	if !ok {
		slog.Warn("ignoring stored reference with unknown kind", slog.String("kind", s.Kind), slog.String("sha", sha))
		return nil, false
	}
	target := NewCommitObject(sha)
	switch kind {
	case KindBranch:
		b, err := NewBranch(s.Name, target, s.Pin)
		if err != nil {
			slog.Warn("ignoring stored branch", slog.String("sha", sha), slog.Any("error", err))
			return nil, false
		}
		return b, true
	case KindTag:
		if strings.TrimSpace(s.Name) == "" {
			slog.Warn("ignoring stored tag without name", slog.String("sha", sha))
			return nil, false
		}
		return NewTag(s.Name, target, s.Pin), true
	default:
		return NewCommit(target), true
	}
}

// SettingsOf is the inverse of ReferenceFromSettings.
func SettingsOf(ref Reference) Settings {
	if ref == nil {
		return Settings{}
	}
	return MatchReference(ref,
		func(c Commit) Settings {
			return Settings{SHA: c.Target().SHA(), Name: c.FriendlyName(), Kind: SettingsKindCommit}
		},
		func(b Branch) Settings {
			return Settings{SHA: b.Target().SHA(), Name: b.FriendlyName(), Kind: SettingsKindBranch, Pin: b.pin}
		},
		func(t Tag) Settings {
			return Settings{SHA: t.Target().SHA(), Name: t.FriendlyName(), Kind: SettingsKindTag, Pin: t.pin}
		},
	)
}
