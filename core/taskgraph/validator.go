package taskgraph

import (
	"fmt"
)

// =============================================================================
// Validation
// =============================================================================

// Validate checks the structural invariants of a graph: it is non-empty, task
// IDs are unique, every task dispatches a canonical capability, and each
// task's dependencies reference tasks that appear earlier in the sequence.
// The last check subsumes cycle detection: a sequence whose edges all point
// backward is a valid topological ordering by construction.
func Validate(g *Graph) error {
	if g == nil || len(g.Tasks) == 0 {
		return ErrEmptyGraph
	}

	seen := make(map[string]int, len(g.Tasks))

	for pos, task := range g.Tasks {
		if !task.Kind.IsValid() {
			return fmt.Errorf("task %q: invalid capability kind %q", task.ID, task.Kind)
		}

		if _, dup := seen[task.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateTask, task.ID)
		}

		for _, dep := range task.Dependencies {
			depPos, exists := seen[dep]
			if !exists {
				// Either the dependency does not exist at all, or it appears
				// later in the sequence; distinguish for diagnostics.
				if _, inGraph := g.Task(dep); inGraph {
					return fmt.Errorf("%w: task %q depends on %q", ErrForwardDependency, task.ID, dep)
				}
				return fmt.Errorf("%w: task %q depends on %q", ErrMissingDependency, task.ID, dep)
			}
			if depPos >= pos {
				return fmt.Errorf("%w: task %q depends on %q", ErrForwardDependency, task.ID, dep)
			}
		}

		seen[task.ID] = pos
	}

	return nil
}

// IsValid reports whether the graph passes validation.
func IsValid(g *Graph) bool {
	return Validate(g) == nil
}
