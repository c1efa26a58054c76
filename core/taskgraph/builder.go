package taskgraph

import (
	"fmt"
	"log/slog"

	"github.com/adalundhe/relay/core/capability"
	"github.com/adalundhe/relay/core/classify"
)

// =============================================================================
// Builder
// =============================================================================

// Builder emits the canonical task graph for a classified query:
//
//	analysis -> [knowledge_retrieval] -> [record_query] -> [context_synthesis]
//	         -> answer_generation -> conversation_update
//
// Analysis is always first, generation always last-but-one, conversation
// update always last. Retrieval and record-query are emitted only when their
// needs-flags are set, and record-query chains onto whichever task was emitted
// most recently rather than fanning out from analysis; synthesis is emitted
// only when both branches are present and depends on both of them.
//
// Build never returns an empty graph and never lets an internal error escape:
// any failure while assembling the canonical graph is replaced wholesale by a
// minimal two-task analysis -> generation fallback.
type Builder struct {
	log *slog.Logger
}

// NewBuilder creates a graph builder.
func NewBuilder(log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{
		log: log.With("component", "taskgraph.builder"),
	}
}

// Build constructs the task graph for one query.
func (b *Builder) Build(query string, cls classify.Classification, history []capability.Turn) *Graph {
	graph, err := b.buildCanonical(query, cls, history)
	if err != nil {
		b.log.Warn("canonical graph build failed, using fallback graph",
			"error", err,
			"query_len", len(query))
		return b.buildFallback(query, history)
	}
	return graph
}

func (b *Builder) buildCanonical(query string, cls classify.Classification, history []capability.Turn) (graph *Graph, err error) {
	defer func() {
		if r := recover(); r != nil {
			graph = nil
			err = fmt.Errorf("graph construction panicked: %v", r)
		}
	}()

	emitter := newTaskEmitter(query, history)

	analysis := emitter.emit(capability.KindAnalysis, "Analyze the query", nil)

	var retrieval, record *Task
	if cls.NeedsRetrieval {
		retrieval = emitter.emit(capability.KindRetrieval, "Retrieve knowledge passages", deps(analysis))
	}
	if cls.NeedsRecordQuery {
		// Chains onto the most recently emitted task, not analysis. This
		// bounds external calls to one at a time; see the sequential
		// execution contract in the executor.
		record = emitter.emit(capability.KindRecordQuery, "Query structured records", deps(emitter.last()))
	}

	if cls.NeedsSynthesis {
		if retrieval == nil || record == nil {
			return nil, fmt.Errorf("synthesis requested without both source branches")
		}
		emitter.emit(capability.KindSynthesis, "Synthesize retrieved context", deps(retrieval, record))
	}

	emitter.emit(capability.KindGeneration, "Generate the answer", deps(emitter.last()))
	emitter.emit(capability.KindConversation, "Update conversation history", deps(emitter.last()))

	graph = emitter.graph()
	if err := Validate(graph); err != nil {
		return nil, fmt.Errorf("built graph failed validation: %w", err)
	}
	return graph, nil
}

// buildFallback returns the minimal two-task graph used when canonical
// construction fails: analysis, then generation depending on it. The
// conversation update is deliberately absent; a degraded build does not
// record the exchange.
func (b *Builder) buildFallback(query string, history []capability.Turn) *Graph {
	emitter := newTaskEmitter(query, history)

	analysis := emitter.emit(capability.KindAnalysis, "Analyze the query", nil)
	emitter.emit(capability.KindGeneration, "Generate the answer", deps(analysis))

	return emitter.graph()
}

// =============================================================================
// Task Emitter
// =============================================================================

// taskEmitter assigns IDs strictly by emission order and guarantees dependency
// sets reference only already-emitted tasks.
type taskEmitter struct {
	g       *Graph
	query   string
	history []capability.Turn
	next    int
}

func newTaskEmitter(query string, history []capability.Turn) *taskEmitter {
	return &taskEmitter{
		g:       NewGraph(query, ""),
		query:   query,
		history: history,
		next:    1,
	}
}

func (e *taskEmitter) emit(kind capability.Kind, description string, dependencies []string) *Task {
	task := &Task{
		ID:           fmt.Sprintf("task_%d", e.next),
		Kind:         kind,
		Description:  description,
		Dependencies: dependencies,
		// Earlier tasks win ties among ready tasks; the sequential executor
		// never consults this, but a queue-based one would.
		Priority: -len(e.g.Tasks),
		Status:   TaskPending,
		Parameters: map[string]any{
			"query":   e.query,
			"history": e.history,
		},
	}
	e.next++
	e.g.Tasks = append(e.g.Tasks, task)
	return task
}

// last returns the most recently emitted task.
func (e *taskEmitter) last() *Task {
	return e.g.Tasks[len(e.g.Tasks)-1]
}

func (e *taskEmitter) graph() *Graph {
	return e.g
}

func deps(tasks ...*Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}
