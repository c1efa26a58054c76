// Package orchestrator composes the classifier, graph builder and executor
// into the session-level query pipeline, and keeps the per-process registry of
// session runs.
package orchestrator

import (
	"time"

	"github.com/adalundhe/relay/core/capability"
	"github.com/adalundhe/relay/core/taskgraph"
)

// =============================================================================
// Session Status
// =============================================================================

// SessionStatus is the lifecycle state of a session's most recent run.
type SessionStatus string

const (
	// SessionProcessing indicates a run is in flight.
	SessionProcessing SessionStatus = "processing"
	// SessionCompleted indicates the last run finished.
	SessionCompleted SessionStatus = "completed"
	// SessionError indicates the last run escaped the executor's containment.
	SessionError SessionStatus = "error"
)

// =============================================================================
// Session
// =============================================================================

// Session is the in-memory record of one conversation's most recent
// task-graph run. Mutated only by the orchestrator driving it, under the
// session's lock.
type Session struct {
	ID          string           `json:"id"`
	Graph       *taskgraph.Graph `json:"graph,omitempty"`
	Status      SessionStatus    `json:"status"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	Error       string           `json:"error,omitempty"`

	// LastProgress is the most recent executor snapshot for the session.
	LastProgress *taskgraph.Progress `json:"last_progress,omitempty"`
}

// SessionView is an immutable copy of a session's observable state.
type SessionView struct {
	ID          string                   `json:"id"`
	Status      SessionStatus            `json:"status"`
	StartedAt   time.Time                `json:"started_at"`
	CompletedAt *time.Time               `json:"completed_at,omitempty"`
	Error       string                   `json:"error,omitempty"`
	Tasks       []taskgraph.TaskSnapshot `json:"tasks,omitempty"`
}

// =============================================================================
// Response
// =============================================================================

// Summary describes how a run executed, for diagnostics and UI.
type Summary struct {
	GraphID        string                   `json:"graph_id"`
	TotalTasks     int                      `json:"total_tasks"`
	CompletedTasks int                      `json:"completed_tasks"`
	FailedTasks    int                      `json:"failed_tasks"`
	SkippedTasks   int                      `json:"skipped_tasks"`
	Duration       time.Duration            `json:"duration"`
	Tasks          []taskgraph.TaskSnapshot `json:"tasks"`
}

// Response is what callers always receive, even in total failure: a response
// string, a confidence label and an execution summary. The pipeline never
// hangs a caller on an unhandled error.
type Response struct {
	SessionID  string                `json:"session_id"`
	Response   string                `json:"response"`
	Confidence capability.Confidence `json:"confidence"`

	// Fallback is true when the answer is the orchestration apology rather
	// than a capability's genuine output.
	Fallback bool `json:"fallback,omitempty"`

	// Error carries diagnostics when the run degraded; the Response text is
	// still populated.
	Error string `json:"error,omitempty"`

	Summary Summary `json:"summary"`
}

// =============================================================================
// Statistics
// =============================================================================

// Stats aggregates the session registry.
type Stats struct {
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	Errored     int     `json:"errored"`
	Processing  int     `json:"processing"`
	SuccessRate float64 `json:"success_rate"`
}
