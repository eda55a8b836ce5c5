package backend

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// binarySniffLen matches the window git uses to detect binary blobs.
const binarySniffLen = 8000

func (g *gitCLI) Head() (Head, bool, error) {
	out, err := g.run([]string{"rev-parse", "-q", "--verify", "HEAD"}, true)
	if err != nil {
		return Head{}, false, err
	}
	hash := strings.TrimSpace(out)
	if hash == "" {
		return Head{}, false, nil
	}
	ref, err := g.run([]string{"symbolic-ref", "-q", "--short", "HEAD"}, true)
	if err != nil {
		return Head{}, false, err
	}
	return Head{Hash: hash, Branch: strings.TrimSpace(ref)}, true, nil
}

func (g *gitCLI) LookupCommit(hash string) (Commit, bool, error) {
	if !IsHash(hash) {
		return Commit{}, false, nil
	}
	out, err := g.run([]string{"rev-parse", "-q", "--verify", hash + "^{commit}"}, true)
	if err != nil {
		return Commit{}, false, err
	}
	full := strings.TrimSpace(out)
	// rev-parse peels tag objects; only an exact commit id counts.
	if full != hash {
		return Commit{}, false, nil
	}
	subject, err := g.run([]string{"show", "-s", "--format=%s", full}, false)
	if err != nil {
		return Commit{}, false, err
	}
	return Commit{Hash: full, Summary: strings.TrimSpace(subject)}, true, nil
}

func (g *gitCLI) listRefs() ([]Ref, error) {
	out, err := g.run([]string{"show-ref", "--dereference"}, true)
	if err != nil {
		return nil, err
	}
	return parseRefsFromShowRef(out)
}

func (g *gitCLI) Branches() ([]Ref, error) {
	refs, err := g.listRefs()
	if err != nil {
		return nil, err
	}
	var out []Ref
	for _, ref := range refs {
		switch ref.Kind {
		case RefKindBranch:
			out = append(out, ref)
		case RefKindRemoteBranch:
			if !isSymbolicRemoteHead(ref.Name) {
				out = append(out, ref)
			}
		}
	}
	return out, nil
}

func (g *gitCLI) Tags() ([]Ref, error) {
	refs, err := g.listRefs()
	if err != nil {
		return nil, err
	}
	var out []Ref
	for _, ref := range refs {
		if ref.Kind != RefKindTag {
			continue
		}
		kind, err := g.run([]string{"cat-file", "-t", ref.Hash}, false)
		if err != nil || strings.TrimSpace(kind) != "commit" {
			continue
		}
		out = append(out, ref)
	}
	return out, nil
}

func (g *gitCLI) MergeBase(a, b string) (string, bool, error) {
	out, err := g.run([]string{"merge-base", a, b}, true)
	if err != nil {
		return "", false, err
	}
	base := strings.TrimSpace(out)
	if base == "" {
		return "", false, nil
	}
	return base, true, nil
}

func (g *gitCLI) DiffTrees(fromCommit, toCommit string) ([]TreeChange, error) {
	out, err := g.run([]string{"diff-tree", "-r", "-M", "--no-commit-id", "--name-status", "-z", fromCommit, toCommit}, false)
	if err != nil {
		return nil, err
	}
	return parseNameStatusZ(out)
}

func (g *gitCLI) Status() ([]StatusEntry, error) {
	out, err := g.run([]string{
		"status", "--porcelain=v2", "-z",
		"--untracked-files=all", "--ignore-submodules=all", "--no-renames",
	}, false)
	if err != nil {
		return nil, err
	}
	entries, err := parseStatusPorcelainV2(out)
	if err != nil {
		return nil, fmt.Errorf("parse git status: %w", err)
	}
	return entries, nil
}

func (g *gitCLI) FirstParentLog(fromCommit string, limit int) ([]Commit, error) {
	if limit <= 0 {
		return nil, nil
	}
	out, err := g.run([]string{
		"log", "--first-parent", "--format=%H%x00%s", "-n", strconv.Itoa(limit), fromCommit, "--",
	}, false)
	if err != nil {
		return nil, err
	}
	return parseLogSubjects(out)
}

func (g *gitCLI) ReadFile(commit, path string) ([]byte, bool, bool, error) {
	out, err := g.run([]string{"ls-tree", "-z", commit, "--", path}, false)
	if err != nil {
		return nil, false, false, err
	}
	hash, ok := parseLsTreeBlob(out)
	if !ok {
		return nil, false, false, nil
	}
	data, err := g.run([]string{"cat-file", "blob", hash}, false)
	if err != nil {
		return nil, false, false, err
	}
	if isBinary([]byte(data)) {
		return nil, true, true, nil
	}
	return []byte(data), false, true, nil
}

func (g *gitCLI) DiffWorktreePath(commit, path string) (TreeChange, bool, error) {
	out, err := g.run([]string{"diff", "--no-renames", "--name-status", "-z", commit, "--", path}, true)
	if err != nil {
		return TreeChange{}, false, err
	}
	changes, err := parseNameStatusZ(out)
	if err != nil {
		return TreeChange{}, false, err
	}
	for _, ch := range changes {
		if ch.Path == path {
			return ch, true, nil
		}
	}
	untracked, err := g.run([]string{"ls-files", "-z", "--others", "--exclude-standard", "--", path}, false)
	if err != nil {
		return TreeChange{}, false, err
	}
	for _, p := range strings.Split(untracked, "\x00") {
		if p == path {
			return TreeChange{Kind: ChangeAdded, Path: path}, true, nil
		}
	}
	return TreeChange{}, false, nil
}

func isBinary(data []byte) bool {
	return bytes.IndexByte(data[:min(len(data), binarySniffLen)], 0) >= 0
}

// parseStatusPorcelainV2 parses NUL terminated `git status --porcelain=v2 -z`
// records. '.' codes map to Unmodified; ignored entries are dropped.
func parseStatusPorcelainV2(out string) ([]StatusEntry, error) {
	var entries []StatusEntry
	records := strings.Split(out, "\x00")
	for i := 0; i < len(records); i++ {
		rec := records[i]
		if rec == "" {
			continue
		}
		switch rec[0] {
		case '1', '2', 'u':
			fieldCount := map[byte]int{'1': 9, '2': 10, 'u': 11}[rec[0]]
			fields := strings.SplitN(rec, " ", fieldCount)
			if len(fields) != fieldCount || len(fields[1]) != 2 {
				return nil, fmt.Errorf("unexpected status record: %q", rec)
			}
			entries = append(entries, StatusEntry{
				Path:     fields[fieldCount-1],
				Staging:  porcelainCode(fields[1][0]),
				Worktree: porcelainCode(fields[1][1]),
			})
			if rec[0] == '2' {
				// the original path follows as its own record
				i++
			}
		case '?':
			if len(rec) < 3 {
				return nil, fmt.Errorf("unexpected status record: %q", rec)
			}
			entries = append(entries, StatusEntry{Path: rec[2:], Staging: Untracked, Worktree: Untracked})
		case '!', '#':
		default:
			return nil, fmt.Errorf("unexpected status record: %q", rec)
		}
	}
	return entries, nil
}

func porcelainCode(c byte) StatusCode {
	if c == '.' {
		return Unmodified
	}
	return StatusCode(c)
}

// parseNameStatusZ parses `--name-status -z` output. Renames and copies carry
// a similarity score and two paths; copies are reported as additions.
func parseNameStatusZ(out string) ([]TreeChange, error) {
	tokens := strings.Split(strings.TrimSuffix(out, "\x00"), "\x00")
	if len(tokens) == 1 && tokens[0] == "" {
		return nil, nil
	}
	var changes []TreeChange
	for i := 0; i < len(tokens); i++ {
		status := strings.TrimSpace(tokens[i])
		if status == "" {
			return nil, fmt.Errorf("unexpected name-status output at token %d", i)
		}
		next := func() (string, error) {
			i++
			if i >= len(tokens) || tokens[i] == "" {
				return "", fmt.Errorf("missing path for status %q", status)
			}
			return tokens[i], nil
		}
		switch status[0] {
		case 'R', 'C':
			oldPath, err := next()
			if err != nil {
				return nil, err
			}
			newPath, err := next()
			if err != nil {
				return nil, err
			}
			if status[0] == 'C' {
				changes = append(changes, TreeChange{Kind: ChangeAdded, Path: newPath})
				continue
			}
			changes = append(changes, TreeChange{Kind: ChangeRenamed, Path: newPath, OldPath: oldPath})
		case 'A', 'M', 'T', 'D':
			p, err := next()
			if err != nil {
				return nil, err
			}
			kind := ChangeModified
			switch status[0] {
			case 'A':
				kind = ChangeAdded
			case 'D':
				kind = ChangeDeleted
			}
			changes = append(changes, TreeChange{Kind: kind, Path: p})
		default:
			// U (unmerged) and X (unknown) never appear between two commits.
			if _, err := next(); err != nil {
				return nil, err
			}
		}
	}
	return changes, nil
}

func parseLogSubjects(out string) ([]Commit, error) {
	var commits []Commit
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		hash, subject, ok := strings.Cut(line, "\x00")
		if !ok || !IsHash(hash) {
			return nil, fmt.Errorf("unexpected log line: %q", line)
		}
		commits = append(commits, Commit{Hash: hash, Summary: subject})
	}
	return commits, nil
}

// parseLsTreeBlob returns the object id of a single `ls-tree -z` blob entry.
func parseLsTreeBlob(out string) (string, bool) {
	rec, _, _ := strings.Cut(out, "\x00")
	meta, _, ok := strings.Cut(rec, "\t")
	if !ok {
		return "", false
	}
	fields := strings.Fields(meta)
	if len(fields) != 3 || fields[1] != "blob" {
		return "", false
	}
	return fields[2], true
}

func parseRefsFromShowRef(out string) ([]Ref, error) {
	type refEntry struct {
		hash string
		ref  string
	}

	peeledByTagRef := map[string]string{}
	var entries []refEntry

	for _, rawLine := range strings.Split(out, "\n") {
		line := strings.TrimRight(rawLine, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, fmt.Errorf("unexpected show-ref output line: %q", rawLine)
		}
		hash, refName := parts[0], parts[1]
		if base, ok := strings.CutSuffix(refName, "^{}"); ok {
			if base != "" {
				peeledByTagRef[base] = hash
			}
			continue
		}
		entries = append(entries, refEntry{hash: hash, ref: refName})
	}

	var refs []Ref
	for _, entry := range entries {
		short, kind, ok := shortRefName(entry.ref)
		if !ok || short == "" {
			continue
		}
		hash := entry.hash
		if kind == RefKindTag {
			if peeled, ok := peeledByTagRef[entry.ref]; ok && peeled != "" {
				hash = peeled
			}
		}
		refs = append(refs, Ref{Hash: hash, Kind: kind, Name: short})
	}
	return refs, nil
}
