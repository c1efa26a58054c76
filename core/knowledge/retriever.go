package knowledge

import (
	"context"
	"log/slog"
	"strings"

	"github.com/adalundhe/relay/core/capability"
)

// DefaultRetrievalLimit is the default number of passages returned per query.
const DefaultRetrievalLimit = 5

// =============================================================================
// Retriever
// =============================================================================

// Retriever is the knowledge-retrieval capability handler. It searches the
// index using the upstream analysis keywords when available, falling back to
// the raw query, and memoizes results in the query cache.
type Retriever struct {
	index *Index
	cache *QueryCache
	limit int
	log   *slog.Logger
}

// NewRetriever creates a retriever. The cache is optional.
func NewRetriever(index *Index, cache *QueryCache, limit int, log *slog.Logger) *Retriever {
	if limit <= 0 {
		limit = DefaultRetrievalLimit
	}
	if log == nil {
		log = slog.Default()
	}
	return &Retriever{
		index: index,
		cache: cache,
		limit: limit,
		log:   log.With("component", "knowledge.retriever"),
	}
}

// Execute implements capability.Handler.
func (r *Retriever) Execute(ctx context.Context, in capability.Input) (capability.Payload, error) {
	query := searchTerms(in)
	if query == "" {
		// Nothing to search on; an empty passage list is a legitimate result.
		return &capability.Passages{}, nil
	}

	if r.cache != nil {
		if passages, ok := r.cache.Get(query); ok {
			r.log.Debug("retrieval cache hit", "query", query, "passages", len(passages))
			return &capability.Passages{Items: passages}, nil
		}
	}

	passages, err := r.index.Search(ctx, query, r.limit)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		r.cache.Put(query, passages)
	}

	r.log.Debug("retrieved passages", "query", query, "passages", len(passages))
	return &capability.Passages{Items: passages}, nil
}

// searchTerms prefers the analysis keywords over the raw query; a dependency
// that produced no analysis leaves the raw query as the search string.
func searchTerms(in capability.Input) string {
	if in.Analysis != nil && len(in.Analysis.Keywords) > 0 {
		return strings.Join(in.Analysis.Keywords, " ")
	}
	if in.Analysis != nil && in.Analysis.Raw != "" {
		return in.Analysis.Raw
	}
	return in.Query
}
