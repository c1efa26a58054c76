package knowledge

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultIncludePatterns are the filename patterns ingested when none are
// configured.
var DefaultIncludePatterns = []string{"*.md", "*.txt"}

// =============================================================================
// Ingestor
// =============================================================================

// Ingestor loads knowledge documents from a directory tree into the index.
// Filenames are matched against compiled glob patterns; the first path segment
// under the root becomes the document's tag.
type Ingestor struct {
	index    *Index
	patterns []glob.Glob
	log      *slog.Logger
}

// NewIngestor creates an ingestor with the given include patterns.
func NewIngestor(index *Index, patterns []string, log *slog.Logger) (*Ingestor, error) {
	if len(patterns) == 0 {
		patterns = DefaultIncludePatterns
	}
	if log == nil {
		log = slog.Default()
	}

	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, g)
	}

	return &Ingestor{
		index:    index,
		patterns: compiled,
		log:      log.With("component", "knowledge.ingestor"),
	}, nil
}

// IngestDir walks the directory and indexes every matching file. Returns the
// number of documents indexed. Unreadable files are logged and skipped.
func (ing *Ingestor) IngestDir(ctx context.Context, dir string) (int, error) {
	count := 0

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() || !ing.Matches(path) {
			return nil
		}

		if err := ing.IngestFile(dir, path); err != nil {
			ing.log.Warn("skipping unreadable document", "path", path, "error", err)
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("ingest %s: %w", dir, err)
	}

	ing.log.Info("ingested documents", "dir", dir, "count", count)
	return count, nil
}

// IngestFile indexes a single file below root.
func (ing *Ingestor) IngestFile(root, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return ing.index.Add(Document{
		ID:      DocumentID(root, path),
		Title:   titleFor(path),
		Content: string(content),
		Source:  path,
		Tags:    tagsFor(root, path),
	})
}

// Matches reports whether a path's base name matches any include pattern.
func (ing *Ingestor) Matches(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range ing.patterns {
		if pattern.Match(base) {
			return true
		}
	}
	return false
}

// DocumentID derives the stable document ID for a file below root.
func DocumentID(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

func titleFor(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ReplaceAll(strings.ReplaceAll(name, "-", " "), "_", " ")
}

func tagsFor(root, path string) []string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return nil
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return nil
	}
	return []string{parts[0]}
}
