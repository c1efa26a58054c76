package taskgraph

import (
	"github.com/google/uuid"

	"github.com/adalundhe/relay/core/capability"
)

// =============================================================================
// Graph
// =============================================================================

// Graph is an ordered, dependency-annotated sequence of tasks built for one
// query. The sequence order is always a valid topological ordering: a task's
// dependencies appear earlier in the sequence. A Graph is built once, consumed
// by one executor run, then discarded or archived in the session registry.
type Graph struct {
	// ID is the graph's unique identifier.
	ID string `json:"id"`

	// Query is the raw query the graph was built for.
	Query string `json:"query"`

	// SessionID is the owning session, if any.
	SessionID string `json:"session_id,omitempty"`

	// Tasks is the execution sequence.
	Tasks []*Task `json:"tasks"`
}

// NewGraph creates an empty graph for a query.
func NewGraph(query, sessionID string) *Graph {
	return &Graph{
		ID:        uuid.New().String(),
		Query:     query,
		SessionID: sessionID,
	}
}

// Task returns the task with the given ID.
func (g *Graph) Task(id string) (*Task, bool) {
	for _, t := range g.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// TaskCount returns the number of tasks.
func (g *Graph) TaskCount() int {
	return len(g.Tasks)
}

// LastOfKind returns the last task of the given kind in sequence order.
func (g *Graph) LastOfKind(kind capability.Kind) (*Task, bool) {
	for i := len(g.Tasks) - 1; i >= 0; i-- {
		if g.Tasks[i].Kind == kind {
			return g.Tasks[i], true
		}
	}
	return nil, false
}

// Snapshot returns copies of all tasks' observable state, in sequence order.
func (g *Graph) Snapshot() []TaskSnapshot {
	snaps := make([]TaskSnapshot, 0, len(g.Tasks))
	for _, t := range g.Tasks {
		snaps = append(snaps, t.Snapshot())
	}
	return snaps
}

// Counts tallies tasks by terminal status.
func (g *Graph) Counts() (completed, failed, skipped int) {
	for _, t := range g.Tasks {
		switch t.Status {
		case TaskCompleted:
			completed++
		case TaskFailed:
			failed++
		case TaskSkipped:
			skipped++
		}
	}
	return completed, failed, skipped
}
