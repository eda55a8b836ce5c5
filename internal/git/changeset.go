package git

import (
	"iter"
	"maps"
	"path/filepath"
	"slices"
	"strings"
)

// Item is a changed file. Paths are absolute; OldPath is only set for
// renames. Reference is the reference the committed diff was computed
// against, nil for uncommitted working tree changes.
type Item struct {
	Path      string
	OldPath   string
	Reference Reference
}

func (i Item) IsRenamed() bool {
	return i.OldPath != ""
}

func (i Item) key() string {
	return itemKey(i.Path)
}

func itemKey(path string) string {
	return strings.ToLower(filepath.Clean(path))
}

// Changeset is an immutable set of items keyed by case-insensitive path.
type Changeset struct {
	items map[string]Item
}

// NewChangeset builds a changeset. Later items replace earlier ones with the
// same path.
func NewChangeset(items ...Item) *Changeset {
	cs := &Changeset{items: make(map[string]Item, len(items))}
	for _, it := range items {
		cs.items[it.key()] = it
	}
	return cs
}

func (c *Changeset) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

func (c *Changeset) Get(path string) (Item, bool) {
	if c == nil {
		return Item{}, false
	}
	it, ok := c.items[itemKey(path)]
	return it, ok
}

func (c *Changeset) Contains(path string) bool {
	_, ok := c.Get(path)
	return ok
}

// Items returns the items sorted by path.
func (c *Changeset) Items() []Item {
	if c == nil {
		return nil
	}
	keys := slices.Sorted(maps.Keys(c.items))
	out := make([]Item, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.items[k])
	}
	return out
}

func (c *Changeset) Paths() []string {
	items := c.Items()
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Path)
	}
	return out
}

// All iterates the items in path order.
func (c *Changeset) All() iter.Seq[Item] {
	return func(yield func(Item) bool) {
		for _, it := range c.Items() {
			if !yield(it) {
				return
			}
		}
	}
}
