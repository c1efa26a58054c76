// Package taskgraph turns one incoming query into a dependency-ordered set of
// capability invocations, executes them sequentially while propagating
// intermediate results forward, reports live progress, and produces a final
// answer even when individual stages fail.
package taskgraph

import (
	"errors"
	"time"

	"github.com/adalundhe/relay/core/capability"
)

// =============================================================================
// Task Status
// =============================================================================

// TaskStatus represents the execution state of a task.
type TaskStatus int

const (
	// TaskPending indicates the task has not started.
	TaskPending TaskStatus = iota
	// TaskInProgress indicates the task is currently executing.
	TaskInProgress
	// TaskCompleted indicates the task finished successfully.
	TaskCompleted
	// TaskFailed indicates the task's capability returned an error.
	TaskFailed
	// TaskSkipped indicates the task's dependencies were not satisfied.
	TaskSkipped
)

var taskStatusNames = map[TaskStatus]string{
	TaskPending:    "pending",
	TaskInProgress: "in_progress",
	TaskCompleted:  "completed",
	TaskFailed:     "failed",
	TaskSkipped:    "skipped",
}

// String returns the string representation of a task status.
func (s TaskStatus) String() string {
	if name, ok := taskStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsTerminal returns true if this is a terminal status.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskFailed || s == TaskSkipped
}

// CanTransition reports whether a status may move to the given next status.
// Statuses only move forward: Pending -> InProgress -> (Completed|Failed),
// or Pending -> Skipped. Terminal statuses never transition again.
func (s TaskStatus) CanTransition(to TaskStatus) bool {
	switch s {
	case TaskPending:
		return to == TaskInProgress || to == TaskSkipped
	case TaskInProgress:
		return to == TaskCompleted || to == TaskFailed
	default:
		return false
	}
}

// =============================================================================
// Task
// =============================================================================

// Task is one scheduled capability invocation within a graph.
type Task struct {
	// ID is unique within the graph, assigned in creation order (task_1, ...).
	ID string `json:"id"`

	// Kind names the capability this task dispatches to.
	Kind capability.Kind `json:"kind"`

	// Description is a human-readable label for tracing only.
	Description string `json:"description"`

	// Parameters are the static inputs known at graph-build time.
	Parameters map[string]any `json:"parameters,omitempty"`

	// Dependencies are the task IDs that must complete before this task runs.
	Dependencies []string `json:"dependencies,omitempty"`

	// Priority is a tie-break among otherwise-ready tasks. Execution is
	// list-order sequential, so it does not affect true scheduling.
	Priority int `json:"priority"`

	// Status is the task's current lifecycle state.
	Status TaskStatus `json:"status"`

	// Result holds the capability output once the task completes. Result and
	// Err are mutually exclusive and set exactly once.
	Result capability.Payload `json:"result,omitempty"`

	// Err holds the capability error message once the task fails.
	Err string `json:"error,omitempty"`

	// StartedAt is set when the task enters InProgress.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is set when the task reaches a terminal status.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Ready reports whether all of the task's dependencies are in the given
// completed set. This is the readiness predicate a future concurrent executor
// would pull from a queue on; the sequential executor evaluates it in list
// order.
func (t *Task) Ready(completed map[string]struct{}) bool {
	for _, dep := range t.Dependencies {
		if _, ok := completed[dep]; !ok {
			return false
		}
	}
	return true
}

// Snapshot returns a copy of the task's observable state.
func (t *Task) Snapshot() TaskSnapshot {
	snap := TaskSnapshot{
		ID:           t.ID,
		Kind:         t.Kind,
		Description:  t.Description,
		Status:       t.Status,
		Error:        t.Err,
		Dependencies: append([]string(nil), t.Dependencies...),
	}
	if t.StartedAt != nil {
		started := *t.StartedAt
		snap.StartedAt = &started
	}
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		snap.CompletedAt = &completed
	}
	return snap
}

// TaskSnapshot is the immutable view of a task handed to progress sinks.
type TaskSnapshot struct {
	ID           string          `json:"id"`
	Kind         capability.Kind `json:"kind"`
	Description  string          `json:"description"`
	Status       TaskStatus      `json:"status"`
	Error        string          `json:"error,omitempty"`
	Dependencies []string        `json:"dependencies,omitempty"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrEmptyGraph indicates the graph has no tasks.
	ErrEmptyGraph = errors.New("task graph has no tasks")

	// ErrDuplicateTask indicates a duplicate task ID.
	ErrDuplicateTask = errors.New("duplicate task ID")

	// ErrMissingDependency indicates a dependency references an unknown task.
	ErrMissingDependency = errors.New("missing dependency")

	// ErrForwardDependency indicates a dependency references a later task,
	// violating the topological sequence invariant.
	ErrForwardDependency = errors.New("dependency references a later task")

	// ErrInvalidTransition indicates a backward status transition was attempted.
	ErrInvalidTransition = errors.New("invalid task status transition")
)
