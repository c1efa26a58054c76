// Package analyze implements the query-analysis capability: it turns raw query
// text into the structured analysis downstream stages key their work off.
package analyze

import (
	"context"
	"strings"

	"github.com/adalundhe/relay/core/capability"
	"github.com/adalundhe/relay/core/classify"
)

// stopwords are dropped during keyword extraction.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "how": {}, "in": {}, "is": {}, "it": {},
	"me": {}, "my": {}, "of": {}, "on": {}, "or": {}, "show": {},
	"tell": {}, "that": {}, "the": {}, "this": {}, "to": {}, "was": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "who": {},
	"why": {}, "will": {}, "with": {}, "all": {}, "please": {},
}

// domainSignals maps record domains to the terms that indicate them.
var domainSignals = map[string][]string{
	"users":      {"user", "users", "employee", "employees", "staff", "member", "members", "directory"},
	"attendance": {"attendance", "present", "absent", "check-in", "checkin", "checkout"},
	"leave":      {"leave", "leaves", "vacation", "holiday", "time off", "pto"},
	"notices":    {"notice", "notices", "announcement", "announcements", "circular", "bulletin"},
}

// =============================================================================
// Analyzer
// =============================================================================

// Analyzer is the default query-analysis capability handler.
type Analyzer struct {
	classifier classify.Classifier
}

// New creates an analyzer. The classifier supplies the complexity label; when
// nil the default keyword classifier is used.
func New(classifier classify.Classifier) *Analyzer {
	if classifier == nil {
		classifier = classify.NewKeywordClassifier()
	}
	return &Analyzer{classifier: classifier}
}

// Execute implements capability.Handler.
func (a *Analyzer) Execute(_ context.Context, in capability.Input) (capability.Payload, error) {
	cls := classify.Safe(a.classifier, in.Query)

	return &capability.Analysis{
		Intent:     intentFor(cls),
		Keywords:   ExtractKeywords(in.Query),
		Domains:    DetectDomains(in.Query),
		Complexity: string(cls.Complexity),
		Raw:        in.Query,
	}, nil
}

func intentFor(cls classify.Classification) string {
	switch {
	case cls.NeedsRetrieval && cls.NeedsRecordQuery:
		return "mixed"
	case cls.NeedsRecordQuery:
		return "lookup"
	case cls.NeedsRetrieval:
		return "conceptual"
	default:
		return "conversational"
	}
}

// ExtractKeywords returns the salient terms of a query, lowercased, with
// stopwords and punctuation removed, preserving first-occurrence order.
func ExtractKeywords(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '-'
	})

	seen := make(map[string]struct{}, len(fields))
	keywords := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(field) < 2 {
			continue
		}
		if _, stop := stopwords[field]; stop {
			continue
		}
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		keywords = append(keywords, field)
	}
	return keywords
}

// DetectDomains returns the record domains a query touches, in a stable order.
func DetectDomains(query string) []string {
	lowered := strings.ToLower(query)

	var domains []string
	for _, domain := range []string{"users", "attendance", "leave", "notices"} {
		for _, signal := range domainSignals[domain] {
			if strings.Contains(lowered, signal) {
				domains = append(domains, domain)
				break
			}
		}
	}
	return domains
}
