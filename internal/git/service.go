package git

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	gitbackend "github.com/thiagokokada/gitscope/internal/git/backend"
)

const tracerName = "github.com/thiagokokada/gitscope/internal/git"

// Service answers changeset queries for one repository. It holds no open
// handles: every operation opens the repository, queries it and closes it
// again, so each call observes the current on-disk state.
type Service struct {
	root string
	open gitbackend.Opener
}

// Open locates the repository containing path. A nil opener selects the
// native backend.
func Open(path string, opener gitbackend.Opener) (*Service, error) {
	root, err := FindRepositoryRoot(path)
	if err != nil {
		return nil, err
	}
	if opener == nil {
		opener = gitbackend.OpenNative
	}
	slog.Debug("repository located", slog.String("path", path), slog.String("root", root))
	return &Service{root: root, open: opener}, nil
}

func (s *Service) Root() string {
	return s.root
}

func (s *Service) withBackend(ctx context.Context, op string, fn func(ctx context.Context, b gitbackend.Backend) error) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "gitscope."+op,
		trace.WithAttributes(attribute.String("gitscope.repo", s.root)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	b, err := s.open(s.root)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	defer func() {
		if cerr := b.Close(); cerr != nil {
			slog.Debug("close repository", slog.String("op", op), slog.Any("error", cerr))
			if err == nil {
				err = cerr
			}
		}
	}()
	return fn(ctx, b)
}

// absPath turns a slash separated repository path into an absolute one.
func (s *Service) absPath(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// relPath is the inverse of absPath. ok is false for paths outside the
// repository.
func (s *Service) relPath(path string) (string, bool) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." || rel == ".." || filepath.IsAbs(rel) || hasDotDotPrefix(rel) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func hasDotDotPrefix(rel string) bool {
	return len(rel) >= 3 && rel[:2] == ".." && rel[2] == filepath.Separator
}
