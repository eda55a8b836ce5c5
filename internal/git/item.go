package git

import (
	"context"
	"fmt"

	gitbackend "github.com/thiagokokada/gitscope/internal/git/backend"
)

// ReadItem compares a single file between the literal target commit of cfg
// and the working directory. ok is false when the file is unchanged, deleted
// or outside the repository.
func (s *Service) ReadItem(ctx context.Context, cfg ComparisonConfig, path string) (Item, bool, error) {
	if cfg.Reference == nil {
		return Item{}, false, ErrNothingToCompare
	}
	var (
		item Item
		ok   bool
	)
	err := s.withBackend(ctx, "read_item", func(_ context.Context, b gitbackend.Backend) error {
		target, err := requireTarget(b, cfg.Reference)
		if err != nil {
			return err
		}
		rel, inRepo := s.relPath(path)
		if !inRepo {
			return nil
		}
		ch, changed, err := b.DiffWorktreePath(target, rel)
		if err != nil {
			return fmt.Errorf("diff %s: %w", rel, err)
		}
		if !changed || ch.Kind == gitbackend.ChangeDeleted {
			return nil
		}
		item = Item{Path: s.absPath(ch.Path), Reference: cfg.Reference}
		if ch.Kind == gitbackend.ChangeRenamed {
			item.OldPath = s.absPath(ch.OldPath)
		}
		ok = true
		return nil
	})
	if err != nil {
		return Item{}, false, err
	}
	return item, ok, nil
}

// BaseContent returns the content of item at the commit it was compared
// against. Live items use the reference from cfg. Renamed items are read
// from their old path. ok is false for files absent at that commit and for
// binary files.
func (s *Service) BaseContent(ctx context.Context, cfg ComparisonConfig, item Item) ([]byte, bool, error) {
	ref := item.Reference
	if ref == nil {
		ref = cfg.Reference
	}
	if ref == nil {
		return nil, false, ErrNothingToCompare
	}
	path := item.Path
	if item.OldPath != "" {
		path = item.OldPath
	}
	var (
		data []byte
		ok   bool
	)
	err := s.withBackend(ctx, "base_content", func(_ context.Context, b gitbackend.Backend) error {
		target, err := requireTarget(b, ref)
		if err != nil {
			return err
		}
		rel, inRepo := s.relPath(path)
		if !inRepo {
			return nil
		}
		content, binary, found, err := b.ReadFile(target, rel)
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		if found && !binary {
			data, ok = content, true
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return data, ok, nil
}
