// Package knowledge implements the knowledge-retrieval capability: a
// full-text index over knowledge documents with query caching, directory
// ingestion and live re-indexing.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/adalundhe/relay/core/capability"
)

// DefaultDocCacheSize bounds the in-memory document cache.
const DefaultDocCacheSize = 4096

var (
	// ErrIndexClosed indicates the index has been closed.
	ErrIndexClosed = errors.New("knowledge index is closed")

	// ErrEmptyQuery indicates a search with no query terms.
	ErrEmptyQuery = errors.New("empty search query")
)

// =============================================================================
// Documents
// =============================================================================

// Document is one unit of knowledge in the index.
type Document struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Source  string   `json:"source"`
	Tags    []string `json:"tags,omitempty"`
}

// =============================================================================
// Index
// =============================================================================

// Index wraps a bleve full-text index with an LRU-bounded document cache so
// passage content survives even when stored fields are unavailable.
type Index struct {
	mu     sync.RWMutex
	idx    bleve.Index
	docs   *lru.Cache[string, *Document]
	closed bool
	log    *slog.Logger
}

// NewIndex opens the index at path, creating it if absent.
func NewIndex(path string, log *slog.Logger) (*Index, error) {
	idx, err := bleve.Open(path)
	if err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("open index %s: %w", path, err)
		}
		idx, err = bleve.New(path, bleve.NewIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index %s: %w", path, err)
		}
	}
	return wrapIndex(idx, log)
}

// NewMemIndex creates an in-memory index, used for tests and ephemeral runs.
func NewMemIndex(log *slog.Logger) (*Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create memory index: %w", err)
	}
	return wrapIndex(idx, log)
}

func wrapIndex(idx bleve.Index, log *slog.Logger) (*Index, error) {
	if log == nil {
		log = slog.Default()
	}

	docs, err := lru.New[string, *Document](DefaultDocCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create document cache: %w", err)
	}

	return &Index{
		idx:  idx,
		docs: docs,
		log:  log.With("component", "knowledge.index"),
	}, nil
}

// Add indexes a document, replacing any existing document with the same ID.
func (i *Index) Add(doc Document) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return ErrIndexClosed
	}

	if err := i.idx.Index(doc.ID, doc); err != nil {
		return fmt.Errorf("index document %s: %w", doc.ID, err)
	}
	i.docs.Add(doc.ID, &doc)
	return nil
}

// Remove deletes a document from the index.
func (i *Index) Remove(id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return ErrIndexClosed
	}

	if err := i.idx.Delete(id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	i.docs.Remove(id)
	return nil
}

// Search runs a match query against the index and returns ranked passages.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]capability.Passage, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = 10
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return nil, ErrIndexClosed
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), limit, 0, false)
	req.Fields = []string{"title", "content", "source"}

	res, err := i.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	passages := make([]capability.Passage, 0, len(res.Hits))
	for _, hit := range res.Hits {
		passage := capability.Passage{
			Score: hit.Score,
		}

		if content, ok := hit.Fields["content"].(string); ok {
			passage.Content = content
		}
		if source, ok := hit.Fields["source"].(string); ok {
			passage.Source = source
		}

		// Stored fields can be missing on older index segments; fall back to
		// the document cache.
		if passage.Content == "" {
			if doc, ok := i.docs.Get(hit.ID); ok {
				passage.Content = doc.Content
				passage.Source = doc.Source
			}
		}

		if passage.Content == "" {
			continue
		}
		passages = append(passages, passage)
	}

	return passages, nil
}

// DocCount returns the number of indexed documents.
func (i *Index) DocCount() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return 0, ErrIndexClosed
	}
	return i.idx.DocCount()
}

// Close closes the underlying index.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil
	}
	i.closed = true
	return i.idx.Close()
}
