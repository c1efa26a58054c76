package taskgraph_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/adalundhe/relay/core/capability"
	"github.com/adalundhe/relay/core/taskgraph"
)

func TestTaskStatusString(t *testing.T) {
	assert.Equal(t, "pending", taskgraph.TaskPending.String())
	assert.Equal(t, "in_progress", taskgraph.TaskInProgress.String())
	assert.Equal(t, "completed", taskgraph.TaskCompleted.String())
	assert.Equal(t, "failed", taskgraph.TaskFailed.String())
	assert.Equal(t, "skipped", taskgraph.TaskSkipped.String())
	assert.Equal(t, "unknown", taskgraph.TaskStatus(42).String())
}

func TestTaskStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to taskgraph.TaskStatus
		allowed  bool
	}{
		{taskgraph.TaskPending, taskgraph.TaskInProgress, true},
		{taskgraph.TaskPending, taskgraph.TaskSkipped, true},
		{taskgraph.TaskPending, taskgraph.TaskCompleted, false},
		{taskgraph.TaskInProgress, taskgraph.TaskCompleted, true},
		{taskgraph.TaskInProgress, taskgraph.TaskFailed, true},
		{taskgraph.TaskInProgress, taskgraph.TaskPending, false},
		{taskgraph.TaskCompleted, taskgraph.TaskInProgress, false},
		{taskgraph.TaskFailed, taskgraph.TaskPending, false},
		{taskgraph.TaskSkipped, taskgraph.TaskInProgress, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestTaskStatusIsTerminal(t *testing.T) {
	assert.False(t, taskgraph.TaskPending.IsTerminal())
	assert.False(t, taskgraph.TaskInProgress.IsTerminal())
	assert.True(t, taskgraph.TaskCompleted.IsTerminal())
	assert.True(t, taskgraph.TaskFailed.IsTerminal())
	assert.True(t, taskgraph.TaskSkipped.IsTerminal())
}

func TestTaskReady(t *testing.T) {
	tk := task("task_3", capability.KindGeneration, "task_1", "task_2")

	completed := map[string]struct{}{}
	assert.False(t, tk.Ready(completed))

	completed["task_1"] = struct{}{}
	assert.False(t, tk.Ready(completed))

	completed["task_2"] = struct{}{}
	assert.True(t, tk.Ready(completed))

	// No dependencies means always ready.
	assert.True(t, task("task_1", capability.KindAnalysis).Ready(nil))
}

func TestTaskSnapshotIsACopy(t *testing.T) {
	started := time.Now()
	tk := task("task_1", capability.KindAnalysis)
	tk.Status = taskgraph.TaskInProgress
	tk.StartedAt = &started
	tk.Dependencies = []string{"task_0"}

	snap := tk.Snapshot()
	assert.Equal(t, tk.ID, snap.ID)
	assert.Equal(t, taskgraph.TaskInProgress, snap.Status)

	// Mutating the snapshot must not touch the task.
	snap.Dependencies[0] = "other"
	*snap.StartedAt = started.Add(time.Hour)
	assert.Equal(t, "task_0", tk.Dependencies[0])
	assert.Equal(t, started, *tk.StartedAt)
}

func TestGraphAccessors(t *testing.T) {
	g := graphOf(
		task("task_1", capability.KindAnalysis),
		task("task_2", capability.KindRetrieval, "task_1"),
		task("task_3", capability.KindRetrieval, "task_1"),
	)

	assert.Equal(t, 3, g.TaskCount())

	found, ok := g.Task("task_2")
	assert.True(t, ok)
	assert.Equal(t, "task_2", found.ID)

	_, ok = g.Task("task_9")
	assert.False(t, ok)

	last, ok := g.LastOfKind(capability.KindRetrieval)
	assert.True(t, ok)
	assert.Equal(t, "task_3", last.ID)

	_, ok = g.LastOfKind(capability.KindSynthesis)
	assert.False(t, ok)
}

func TestGraphCounts(t *testing.T) {
	g := graphOf(
		task("task_1", capability.KindAnalysis),
		task("task_2", capability.KindRetrieval),
		task("task_3", capability.KindGeneration),
		task("task_4", capability.KindConversation),
	)
	g.Tasks[0].Status = taskgraph.TaskCompleted
	g.Tasks[1].Status = taskgraph.TaskFailed
	g.Tasks[2].Status = taskgraph.TaskSkipped
	g.Tasks[3].Status = taskgraph.TaskSkipped

	completed, failed, skipped := g.Counts()
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, skipped)
}
