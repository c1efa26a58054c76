package records

import (
	"context"
	"log/slog"

	"github.com/adalundhe/relay/core/capability"
)

// =============================================================================
// Capability Handler
// =============================================================================

// Handler is the record-query capability. It maps the upstream analysis onto
// the record domains it detected and merges results across them.
type Handler struct {
	store *Store
	limit int
	log   *slog.Logger
}

// NewHandler creates the record-query handler.
func NewHandler(store *Store, limit int, log *slog.Logger) *Handler {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		store: store,
		limit: limit,
		log:   log.With("component", "records.handler"),
	}
}

// Execute implements capability.Handler.
func (h *Handler) Execute(ctx context.Context, in capability.Input) (capability.Payload, error) {
	domains, keywords := queryPlan(in)

	var items []capability.Record
	for _, domain := range domains {
		found, err := h.store.Execute(ctx, Query{
			Domain:   domain,
			Keywords: keywords,
			Limit:    h.limit,
		})
		if err != nil {
			return nil, err
		}

		// Keyword filters often name the domain itself ("users", "leave")
		// rather than any row content; an empty filtered result falls back to
		// the newest records in the domain.
		if len(found) == 0 && len(keywords) > 0 {
			found, err = h.store.Execute(ctx, Query{Domain: domain, Limit: h.limit})
			if err != nil {
				return nil, err
			}
		}
		items = append(items, found...)
	}

	h.log.Debug("record query",
		"domains", domains,
		"keywords", len(keywords),
		"records", len(items))

	return &capability.Records{
		Domain: primaryDomain(domains),
		Items:  items,
	}, nil
}

// queryPlan derives the domains and keyword filters from the analysis. With
// no analysis at all, every domain is searched on the raw query words.
func queryPlan(in capability.Input) (domains []string, keywords []string) {
	if in.Analysis != nil {
		domains = in.Analysis.Domains
		keywords = in.Analysis.Keywords
	}
	if len(domains) == 0 {
		domains = Domains()
	}
	return domains, keywords
}

func primaryDomain(domains []string) string {
	if len(domains) == 1 {
		return domains[0]
	}
	return "mixed"
}
