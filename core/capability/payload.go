package capability

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// Payload Variants
// =============================================================================

// Variant tags a payload with the shape it carries.
type Variant string

const (
	VariantAnalysis Variant = "analysis"
	VariantPassages Variant = "passages"
	VariantRecords  Variant = "records"
	VariantContext  Variant = "composed_context"
	VariantAnswer   Variant = "answer"
)

// Payload is the output of one capability invocation. Consumers pattern-match
// on the concrete variant instead of probing maps for well-known keys.
type Payload interface {
	Variant() Variant
}

// =============================================================================
// Analysis
// =============================================================================

// Analysis is the structured interpretation of a raw query.
type Analysis struct {
	// Intent is the coarse intent label (conceptual, lookup, mixed).
	Intent string `json:"intent"`

	// Keywords are the salient terms extracted from the query.
	Keywords []string `json:"keywords"`

	// Domains are the record domains the query touches (users, leave, ...).
	Domains []string `json:"domains"`

	// Complexity mirrors the classifier's complexity label.
	Complexity string `json:"complexity"`

	// Raw preserves the original query text.
	Raw string `json:"raw"`
}

// Variant implements Payload.
func (*Analysis) Variant() Variant { return VariantAnalysis }

// =============================================================================
// Passages
// =============================================================================

// Passage is one ranked unit of retrieved knowledge.
type Passage struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`

	// Tag marks the passage's provenance; structured records converted into
	// passages carry the tag "structured-source".
	Tag string `json:"tag,omitempty"`
}

// Passages is a ranked list of retrieved passages.
type Passages struct {
	Items []Passage `json:"items"`
}

// Variant implements Payload.
func (*Passages) Variant() Variant { return VariantPassages }

// =============================================================================
// Records
// =============================================================================

// Record is one structured record, field name to value.
type Record map[string]any

// String renders the record as a stable "field: value" line for synthesis.
func (r Record) String() string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, r[k]))
	}
	return strings.Join(parts, ", ")
}

// Records is a set of structured records from one domain.
type Records struct {
	Domain string   `json:"domain"`
	Items  []Record `json:"items"`
}

// Variant implements Payload.
func (*Records) Variant() Variant { return VariantRecords }

// =============================================================================
// Composed Context
// =============================================================================

// ComposedContext is the merged context a synthesis stage hands to generation.
type ComposedContext struct {
	Text    string   `json:"text"`
	Sources []string `json:"sources"`
}

// Variant implements Payload.
func (*ComposedContext) Variant() Variant { return VariantContext }

// =============================================================================
// Answer
// =============================================================================

// Answer is the generated response to the query.
type Answer struct {
	Text       string     `json:"text"`
	Confidence Confidence `json:"confidence"`
	Model      string     `json:"model,omitempty"`
}

// Variant implements Payload.
func (*Answer) Variant() Variant { return VariantAnswer }

// AsSyntheticPassage converts a structured record into a passage so synthesis
// can treat heterogeneous sources uniformly.
func (r Record) AsSyntheticPassage() Passage {
	return Passage{
		Content: r.String(),
		Tag:     "structured-source",
	}
}
