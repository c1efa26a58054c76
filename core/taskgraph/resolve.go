package taskgraph

import (
	"fmt"
	"strings"

	"github.com/adalundhe/relay/core/capability"
)

// =============================================================================
// Parameter Resolution
// =============================================================================

// resolveInput reconciles heterogeneous producer shapes into the input one
// task needs. Each consumer kind has a fixed rule that scans the outputs of
// the task's dependencies in dependency order and pattern-matches on payload
// variants. A missing variant never fails resolution: the consumer runs with
// an empty default and only capability-level errors produce a Failed status.
func resolveInput(t *Task, ec *ExecutionContext) capability.Input {
	in := capability.Input{
		Query:     paramString(t, "query"),
		SessionID: paramString(t, "session_id"),
		History:   paramHistory(t),
		Params:    t.Parameters,
	}

	switch t.Kind {
	case capability.KindAnalysis:
		// Analysis consumes only the raw query and history.

	case capability.KindRetrieval, capability.KindRecordQuery:
		in.Analysis = resolveAnalysis(t, ec)

	case capability.KindSynthesis:
		in.Analysis = resolveAnalysis(t, ec)
		in.Passages, in.Records = resolveSources(t, ec)

	case capability.KindGeneration:
		in.Analysis = resolveAnalysis(t, ec)
		in.Context = resolveComposedContext(t, ec)

	case capability.KindConversation:
		in.Answer = resolveAnswer(t, ec)
	}

	return in
}

// resolveAnalysis scans the task's dependencies for an analysis payload. When
// a dependency produced something else entirely, its stringified output is
// treated as the analysis; failing that, the most recent analysis anywhere in
// the run is used.
func resolveAnalysis(t *Task, ec *ExecutionContext) *capability.Analysis {
	for _, dep := range t.Dependencies {
		payload, ok := ec.Result(dep)
		if !ok {
			continue
		}
		if a, ok := payload.(*capability.Analysis); ok {
			return a
		}
	}

	if a := ec.LatestAnalysis(); a != nil {
		return a
	}

	// Treat the first dependency output, whatever its shape, as the analysis.
	for _, dep := range t.Dependencies {
		if payload, ok := ec.Result(dep); ok {
			return &capability.Analysis{Raw: stringifyPayload(payload)}
		}
	}

	return nil
}

// resolveSources accumulates passages and records across all dependencies.
// Structured records are additionally converted into synthetic passages so a
// synthesis stage sees one uniform passage list.
func resolveSources(t *Task, ec *ExecutionContext) ([]capability.Passage, []capability.Record) {
	var passages []capability.Passage
	var records []capability.Record

	for _, dep := range t.Dependencies {
		payload, ok := ec.Result(dep)
		if !ok {
			continue
		}

		switch p := payload.(type) {
		case *capability.Passages:
			passages = append(passages, p.Items...)
		case *capability.Records:
			records = append(records, p.Items...)
			for _, record := range p.Items {
				passages = append(passages, record.AsSyntheticPassage())
			}
		}
	}

	return passages, records
}

// resolveComposedContext looks for a composed context on the task's direct
// dependencies. If none was produced (a partial-graph run), it rebuilds one by
// concatenating every passage and record recorded anywhere in the execution
// context.
func resolveComposedContext(t *Task, ec *ExecutionContext) *capability.ComposedContext {
	for _, dep := range t.Dependencies {
		if payload, ok := ec.Result(dep); ok {
			if c, ok := payload.(*capability.ComposedContext); ok {
				return c
			}
		}
	}

	return rebuildContext(ec)
}

// rebuildContext assembles a best-effort context from the whole run.
func rebuildContext(ec *ExecutionContext) *capability.ComposedContext {
	var sections []string
	var sources []string

	for _, passage := range ec.AllPassages() {
		sections = append(sections, passage.Content)
		if passage.Source != "" {
			sources = append(sources, passage.Source)
		}
	}
	for _, record := range ec.AllRecords() {
		sections = append(sections, record.String())
	}

	if len(sections) == 0 {
		return nil
	}

	return &capability.ComposedContext{
		Text:    strings.Join(sections, "\n\n"),
		Sources: sources,
	}
}

// resolveAnswer looks for the generated answer on the task's dependencies,
// falling back to the most recent answer in the run.
func resolveAnswer(t *Task, ec *ExecutionContext) *capability.Answer {
	for _, dep := range t.Dependencies {
		if payload, ok := ec.Result(dep); ok {
			if a, ok := payload.(*capability.Answer); ok {
				return a
			}
		}
	}

	if payload, ok := ec.Latest(capability.VariantAnswer); ok {
		if a, ok := payload.(*capability.Answer); ok {
			return a
		}
	}

	return nil
}

// =============================================================================
// Helpers
// =============================================================================

func paramString(t *Task, key string) string {
	if t.Parameters == nil {
		return ""
	}
	if v, ok := t.Parameters[key].(string); ok {
		return v
	}
	return ""
}

func paramHistory(t *Task) []capability.Turn {
	if t.Parameters == nil {
		return nil
	}
	if turns, ok := t.Parameters["history"].([]capability.Turn); ok {
		return turns
	}
	return nil
}

func stringifyPayload(p capability.Payload) string {
	switch v := p.(type) {
	case *capability.Analysis:
		return v.Raw
	case *capability.Passages:
		parts := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			parts = append(parts, item.Content)
		}
		return strings.Join(parts, "\n")
	case *capability.Records:
		parts := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			parts = append(parts, item.String())
		}
		return strings.Join(parts, "\n")
	case *capability.ComposedContext:
		return v.Text
	case *capability.Answer:
		return v.Text
	default:
		return fmt.Sprintf("%v", p)
	}
}
