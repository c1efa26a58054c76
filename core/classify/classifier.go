// Package classify decides which pipeline stages a query needs. The default
// implementation is keyword based; the Classifier interface lets a trained
// model be substituted without touching the graph builder.
package classify

import (
	"log/slog"
	"strings"
)

// =============================================================================
// Classification
// =============================================================================

// Complexity is the coarse difficulty label attached to a query.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// Classification holds the needs-flags the graph builder consumes.
type Classification struct {
	// NeedsRetrieval is true when the query has conceptual intent.
	NeedsRetrieval bool `json:"needs_retrieval"`

	// NeedsRecordQuery is true when the query has data-lookup intent.
	NeedsRecordQuery bool `json:"needs_record_query"`

	// NeedsSynthesis is true only when both branches are needed.
	NeedsSynthesis bool `json:"needs_synthesis"`

	// Complexity is complex when both flags are set, medium for one, else simple.
	Complexity Complexity `json:"complexity"`
}

// DefaultClassification is the all-false fallback used when nothing matches
// or classification fails.
func DefaultClassification() Classification {
	return Classification{Complexity: ComplexitySimple}
}

// =============================================================================
// Classifier
// =============================================================================

// Classifier inspects raw query text and produces needs-flags. Implementations
// must be pure; side effects and failure modes belong elsewhere.
type Classifier interface {
	Classify(query string) Classification
}

// Safe classifies with panic containment: any panic inside the classifier is
// swallowed and the all-false default returned instead.
func Safe(c Classifier, query string) (result Classification) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("classifier panicked, using default classification",
				"component", "classify",
				"panic", r)
			result = DefaultClassification()
		}
	}()

	if c == nil {
		return DefaultClassification()
	}
	return c.Classify(query)
}

// =============================================================================
// Keyword Classifier
// =============================================================================

// conceptualPhrases signal explanatory intent served by knowledge retrieval.
var conceptualPhrases = []string{
	"what is",
	"what are",
	"how does",
	"how do",
	"how can",
	"why",
	"explain",
	"describe",
	"tell me about",
	"meaning of",
	"definition of",
	"policy",
	"procedure",
	"guideline",
}

// lookupPhrases signal data-retrieval intent served by the record store.
var lookupPhrases = []string{
	"show me",
	"show all",
	"find",
	"list",
	"get",
	"count",
	"how many",
	"who is",
	"who are",
	"fetch",
	"lookup",
	"records of",
	"status of",
	"pending",
}

// KeywordClassifier is the default phrase-set classifier.
type KeywordClassifier struct {
	conceptual []string
	lookup     []string
}

// NewKeywordClassifier creates a classifier with the default phrase sets.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		conceptual: conceptualPhrases,
		lookup:     lookupPhrases,
	}
}

// NewKeywordClassifierWithPhrases creates a classifier with custom phrase sets.
func NewKeywordClassifierWithPhrases(conceptual, lookup []string) *KeywordClassifier {
	return &KeywordClassifier{
		conceptual: conceptual,
		lookup:     lookup,
	}
}

// Classify implements Classifier. Matching is case-insensitive substring
// matching against the two fixed phrase sets.
func (c *KeywordClassifier) Classify(query string) Classification {
	lowered := strings.ToLower(query)

	result := Classification{
		NeedsRetrieval:   matchesAny(lowered, c.conceptual),
		NeedsRecordQuery: matchesAny(lowered, c.lookup),
	}
	result.NeedsSynthesis = result.NeedsRetrieval && result.NeedsRecordQuery
	result.Complexity = complexityFor(result)

	return result
}

func matchesAny(lowered string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

func complexityFor(c Classification) Complexity {
	switch {
	case c.NeedsRetrieval && c.NeedsRecordQuery:
		return ComplexityComplex
	case c.NeedsRetrieval || c.NeedsRecordQuery:
		return ComplexityMedium
	default:
		return ComplexitySimple
	}
}
