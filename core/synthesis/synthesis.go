// Package synthesis implements the context-synthesis capability: it merges
// ranked passages and structured records into the single composed context the
// generation stage consumes.
package synthesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/adalundhe/relay/core/capability"
)

// DefaultMaxPassages bounds how many passages make it into the context.
const DefaultMaxPassages = 8

// =============================================================================
// Synthesizer
// =============================================================================

// Synthesizer is the default context-synthesis handler. Its input passages
// already include records converted to synthetic passages by parameter
// resolution; the records themselves are rendered in their own section so the
// generation prompt can cite them as data rather than prose.
type Synthesizer struct {
	maxPassages int
}

// New creates a synthesizer.
func New(maxPassages int) *Synthesizer {
	if maxPassages <= 0 {
		maxPassages = DefaultMaxPassages
	}
	return &Synthesizer{maxPassages: maxPassages}
}

// Execute implements capability.Handler.
func (s *Synthesizer) Execute(_ context.Context, in capability.Input) (capability.Payload, error) {
	var sections []string
	var sources []string

	if in.Analysis != nil && len(in.Analysis.Keywords) > 0 {
		sections = append(sections,
			"Query focus: "+strings.Join(in.Analysis.Keywords, ", "))
	}

	prose, synthetic := splitPassages(in.Passages)

	if len(prose) > 0 {
		var b strings.Builder
		b.WriteString("Relevant knowledge:\n")
		for i, passage := range capped(prose, s.maxPassages) {
			fmt.Fprintf(&b, "%d. %s\n", i+1, strings.TrimSpace(passage.Content))
			if passage.Source != "" {
				sources = append(sources, passage.Source)
			}
		}
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}

	if len(in.Records) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "Matching records (%d):\n", len(in.Records))
		for _, record := range in.Records {
			b.WriteString("- " + record.String() + "\n")
		}
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	} else if len(synthetic) > 0 {
		// Records arrived only in passage form; keep them anyway.
		var b strings.Builder
		b.WriteString("Matching records:\n")
		for _, passage := range synthetic {
			b.WriteString("- " + passage.Content + "\n")
		}
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}

	// An empty context is still a valid synthesis result; generation falls
	// back to answering from the query alone.
	return &capability.ComposedContext{
		Text:    strings.Join(sections, "\n\n"),
		Sources: sources,
	}, nil
}

func splitPassages(passages []capability.Passage) (prose, synthetic []capability.Passage) {
	for _, p := range passages {
		if p.Tag == "structured-source" {
			synthetic = append(synthetic, p)
			continue
		}
		prose = append(prose, p)
	}
	return prose, synthetic
}

func capped(passages []capability.Passage, max int) []capability.Passage {
	if len(passages) <= max {
		return passages
	}
	return passages[:max]
}
