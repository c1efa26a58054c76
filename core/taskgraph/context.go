package taskgraph

import (
	"github.com/adalundhe/relay/core/capability"
)

// =============================================================================
// Execution Context
// =============================================================================

// ExecutionContext is the per-run, append-only accumulator of completed tasks'
// outputs. Entries are keyed by task ID; in addition the most recent payload
// of each variant is tracked so consumers can fall back to "the latest
// analysis result" when a dependency's output does not carry the variant they
// need. Owned exclusively by one executor run; never shared across sessions.
type ExecutionContext struct {
	byTask map[string]capability.Payload
	order  []string
	latest map[capability.Variant]capability.Payload
}

// NewExecutionContext creates an empty execution context.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{
		byTask: make(map[string]capability.Payload),
		latest: make(map[capability.Variant]capability.Payload),
	}
}

// Record stores a completed task's output under its task ID and as the most
// recent payload of its variant.
func (c *ExecutionContext) Record(taskID string, payload capability.Payload) {
	if payload == nil {
		return
	}
	if _, exists := c.byTask[taskID]; !exists {
		c.order = append(c.order, taskID)
	}
	c.byTask[taskID] = payload
	c.latest[payload.Variant()] = payload
}

// Result returns the payload recorded for a task ID.
func (c *ExecutionContext) Result(taskID string) (capability.Payload, bool) {
	p, ok := c.byTask[taskID]
	return p, ok
}

// Latest returns the most recently recorded payload of a variant.
func (c *ExecutionContext) Latest(variant capability.Variant) (capability.Payload, bool) {
	p, ok := c.latest[variant]
	return p, ok
}

// LatestAnalysis returns the most recent analysis payload, if any.
func (c *ExecutionContext) LatestAnalysis() *capability.Analysis {
	if p, ok := c.latest[capability.VariantAnalysis]; ok {
		if a, ok := p.(*capability.Analysis); ok {
			return a
		}
	}
	return nil
}

// AllPassages collects passages from every recorded payload, in recording
// order. Used by the answer-generation fallback that rebuilds context from
// the whole execution context rather than direct dependencies.
func (c *ExecutionContext) AllPassages() []capability.Passage {
	var out []capability.Passage
	for _, id := range c.order {
		if p, ok := c.byTask[id].(*capability.Passages); ok {
			out = append(out, p.Items...)
		}
	}
	return out
}

// AllRecords collects structured records from every recorded payload, in
// recording order.
func (c *ExecutionContext) AllRecords() []capability.Record {
	var out []capability.Record
	for _, id := range c.order {
		if r, ok := c.byTask[id].(*capability.Records); ok {
			out = append(out, r.Items...)
		}
	}
	return out
}

// Len returns the number of recorded task outputs.
func (c *ExecutionContext) Len() int {
	return len(c.byTask)
}
