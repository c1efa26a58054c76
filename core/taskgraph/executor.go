package taskgraph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/adalundhe/relay/core/capability"
)

// =============================================================================
// Progress
// =============================================================================

// ProgressStatus labels a progress snapshot.
type ProgressStatus string

const (
	ProgressStarted    ProgressStatus = "started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressSkipped    ProgressStatus = "skipped"
	ProgressError      ProgressStatus = "error"
	ProgressCompleted  ProgressStatus = "completed"
)

// Progress is the full-graph snapshot delivered to sinks at every status
// transition.
type Progress struct {
	Status         ProgressStatus `json:"status"`
	GraphID        string         `json:"graph_id"`
	SessionID      string         `json:"session_id,omitempty"`
	TotalTasks     int            `json:"total_tasks"`
	CompletedTasks int            `json:"completed_tasks"`
	FailedTasks    int            `json:"failed_tasks"`
	SkippedTasks   int            `json:"skipped_tasks"`
	CurrentTask    string         `json:"current_task,omitempty"`
	Tasks          []TaskSnapshot `json:"tasks"`
	Error          string         `json:"error,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// ProgressSink receives progress snapshots. Sinks are invoked synchronously
// from the executor's single thread; panics and long blocks are the sink's
// own concern except that panics are contained and never abort execution.
type ProgressSink func(Progress)

// =============================================================================
// Result
// =============================================================================

// fallbackAnswer is returned when no answer-generation task completes.
const fallbackAnswer = "I'm sorry, I wasn't able to answer that right now. " +
	"Please try rephrasing your question or try again later."

// Result is the aggregated outcome of one graph run.
type Result struct {
	// GraphID identifies the executed graph.
	GraphID string `json:"graph_id"`

	// Answer is the output of the last completed answer-generation task, or
	// the low-confidence apology when none completed.
	Answer capability.Answer `json:"answer"`

	// Fallback is true when the apology answer was synthesized.
	Fallback bool `json:"fallback"`

	// Tasks is the final snapshot of every task.
	Tasks []TaskSnapshot `json:"tasks"`

	TotalTasks     int           `json:"total_tasks"`
	CompletedTasks int           `json:"completed_tasks"`
	FailedTasks    int           `json:"failed_tasks"`
	SkippedTasks   int           `json:"skipped_tasks"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	Duration       time.Duration `json:"duration"`
}

// =============================================================================
// Executor
// =============================================================================

// Executor walks a graph in strict sequence order, dispatching each ready task
// to its capability and skipping tasks whose dependencies did not complete.
// One task failing never aborts the loop: downstream dependents are skipped by
// the readiness predicate while unrelated tasks still run. Execution is
// intentionally sequential; the readiness predicate keeps the data model ready
// for a queue-based concurrent executor without redesign.
type Executor struct {
	registry *capability.Registry
	log      *slog.Logger

	sinksMu sync.RWMutex
	sinks   []ProgressSink
}

// NewExecutor creates an executor dispatching through the given registry.
func NewExecutor(registry *capability.Registry, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{
		registry: registry,
		log:      log.With("component", "taskgraph.executor"),
	}
}

// Subscribe registers a progress sink for all executions. The returned
// function unsubscribes it.
func (e *Executor) Subscribe(sink ProgressSink) func() {
	e.sinksMu.Lock()
	e.sinks = append(e.sinks, sink)
	index := len(e.sinks) - 1
	e.sinksMu.Unlock()

	return func() {
		e.sinksMu.Lock()
		defer e.sinksMu.Unlock()
		if index < len(e.sinks) {
			e.sinks[index] = nil
		}
	}
}

// Execute runs a graph to completion and returns the aggregated result. The
// optional sinks receive progress snapshots for this run only, in addition to
// any subscribed sinks. Execute never returns an error for task failures;
// those are carried per task and in the result counters.
func (e *Executor) Execute(ctx context.Context, g *Graph, sinks ...ProgressSink) (*Result, error) {
	if err := Validate(g); err != nil {
		return nil, err
	}

	start := time.Now()
	ec := NewExecutionContext()
	completed := make(map[string]struct{}, len(g.Tasks))

	e.emit(g, sinks, Progress{
		Status: ProgressStarted,
	})

	for _, task := range g.Tasks {
		if !task.Ready(completed) {
			e.skipTask(g, task, sinks)
			continue
		}

		e.runTask(ctx, g, task, ec, completed, sinks)
	}

	result := e.buildResult(g, ec, start)

	e.emit(g, sinks, Progress{
		Status: ProgressCompleted,
	})

	return result, nil
}

// runTask executes one ready task: InProgress transition, parameter
// resolution, capability dispatch, then the Completed or Failed transition.
func (e *Executor) runTask(
	ctx context.Context,
	g *Graph,
	task *Task,
	ec *ExecutionContext,
	completed map[string]struct{},
	sinks []ProgressSink,
) {
	now := time.Now()
	task.Status = TaskInProgress
	task.StartedAt = &now

	e.emit(g, sinks, Progress{
		Status:      ProgressInProgress,
		CurrentTask: task.ID,
	})

	input := resolveInput(task, ec)
	if input.SessionID == "" {
		input.SessionID = g.SessionID
	}

	payload, err := e.dispatch(ctx, task, input)

	done := time.Now()
	task.CompletedAt = &done

	if err != nil {
		task.Status = TaskFailed
		task.Err = err.Error()

		e.log.Warn("task failed",
			"graph_id", g.ID,
			"task_id", task.ID,
			"kind", task.Kind,
			"error", err)

		e.emit(g, sinks, Progress{
			Status:      ProgressError,
			CurrentTask: task.ID,
			Error:       err.Error(),
		})
		return
	}

	task.Status = TaskCompleted
	task.Result = payload
	ec.Record(task.ID, payload)
	completed[task.ID] = struct{}{}
}

// dispatch resolves the task's handler and invokes it with panic containment,
// so a misbehaving capability degrades to a Failed task rather than tearing
// down the run.
func (e *Executor) dispatch(ctx context.Context, task *Task, input capability.Input) (payload capability.Payload, err error) {
	handler, err := e.registry.Resolve(task.Kind)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = &capabilityPanicError{kind: task.Kind, value: r}
		}
	}()

	return handler.Execute(ctx, input)
}

// skipTask marks a task whose dependencies did not complete. Not an error:
// logged at low severity only.
func (e *Executor) skipTask(g *Graph, task *Task, sinks []ProgressSink) {
	now := time.Now()
	task.Status = TaskSkipped
	task.CompletedAt = &now

	e.log.Debug("task skipped, dependencies unmet",
		"graph_id", g.ID,
		"task_id", task.ID,
		"kind", task.Kind,
		"dependencies", task.Dependencies)

	e.emit(g, sinks, Progress{
		Status:      ProgressSkipped,
		CurrentTask: task.ID,
	})
}

// buildResult assembles the final result from the last completed
// answer-generation task, synthesizing the low-confidence apology when the
// graph produced no answer at all.
func (e *Executor) buildResult(g *Graph, ec *ExecutionContext, start time.Time) *Result {
	completedCount, failed, skipped := g.Counts()
	end := time.Now()

	result := &Result{
		GraphID:        g.ID,
		Tasks:          g.Snapshot(),
		TotalTasks:     len(g.Tasks),
		CompletedTasks: completedCount,
		FailedTasks:    failed,
		SkippedTasks:   skipped,
		StartTime:      start,
		EndTime:        end,
		Duration:       end.Sub(start),
	}

	if answer := lastCompletedAnswer(g); answer != nil {
		result.Answer = *answer
		return result
	}

	result.Answer = capability.Answer{
		Text:       fallbackAnswer,
		Confidence: capability.ConfidenceLow,
	}
	result.Fallback = true
	return result
}

// lastCompletedAnswer returns the output of the last answer-generation task
// that reached Completed.
func lastCompletedAnswer(g *Graph) *capability.Answer {
	for i := len(g.Tasks) - 1; i >= 0; i-- {
		task := g.Tasks[i]
		if task.Kind != capability.KindGeneration || task.Status != TaskCompleted {
			continue
		}
		if answer, ok := task.Result.(*capability.Answer); ok {
			return answer
		}
	}
	return nil
}

// =============================================================================
// Progress Emission
// =============================================================================

// emit fills in the graph-wide fields of a snapshot and delivers it to every
// sink. Sink panics are contained and logged; they never interrupt execution.
func (e *Executor) emit(g *Graph, extra []ProgressSink, p Progress) {
	completed, failed, skipped := g.Counts()

	p.GraphID = g.ID
	p.SessionID = g.SessionID
	p.TotalTasks = len(g.Tasks)
	p.CompletedTasks = completed
	p.FailedTasks = failed
	p.SkippedTasks = skipped
	p.Tasks = g.Snapshot()
	p.Timestamp = time.Now()

	e.sinksMu.RLock()
	sinks := make([]ProgressSink, 0, len(e.sinks)+len(extra))
	sinks = append(sinks, e.sinks...)
	e.sinksMu.RUnlock()
	sinks = append(sinks, extra...)

	for _, sink := range sinks {
		if sink == nil {
			continue
		}
		e.deliver(sink, p)
	}
}

func (e *Executor) deliver(sink ProgressSink, p Progress) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("progress sink panicked",
				"graph_id", p.GraphID,
				"status", p.Status,
				"panic", r)
		}
	}()
	sink(p)
}

// =============================================================================
// Errors
// =============================================================================

// capabilityPanicError wraps a panic recovered from a capability handler.
type capabilityPanicError struct {
	kind  capability.Kind
	value any
}

func (e *capabilityPanicError) Error() string {
	return fmt.Sprintf("capability %s panicked: %v", e.kind, e.value)
}
