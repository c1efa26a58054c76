package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedSession(id string, status SessionStatus, completedAt time.Time) *Session {
	return &Session{
		ID:          id,
		Status:      status,
		StartedAt:   completedAt.Add(-time.Second),
		CompletedAt: &completedAt,
	}
}

func TestRegistryAcquireReusesEntry(t *testing.T) {
	r := NewRegistry()

	first := r.acquire("a")
	second := r.acquire("a")
	assert.Same(t, first, second)
	assert.Equal(t, 1, r.Len())

	r.acquire("b")
	assert.Equal(t, 2, r.Len())
}

func TestRegistryViewAndList(t *testing.T) {
	r := NewRegistry()

	// An acquired entry without a session yet is invisible.
	r.acquire("pending")
	_, ok := r.View("pending")
	assert.False(t, ok)
	assert.Empty(t, r.List())

	r.acquire("done").publish(finishedSession("done", SessionCompleted, time.Now()))

	view, ok := r.View("done")
	require.True(t, ok)
	assert.Equal(t, "done", view.ID)
	assert.Equal(t, SessionCompleted, view.Status)
	assert.Len(t, r.List(), 1)
}

func TestRegistryStats(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	r.acquire("c1").publish(finishedSession("c1", SessionCompleted, now))
	r.acquire("c2").publish(finishedSession("c2", SessionCompleted, now))
	r.acquire("e1").publish(finishedSession("e1", SessionError, now))
	r.acquire("p1").publish(&Session{ID: "p1", Status: SessionProcessing, StartedAt: now})

	stats := r.Stats()
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 1, stats.Errored)
	assert.Equal(t, 1, stats.Processing)
	assert.InDelta(t, 2.0/3.0, stats.SuccessRate, 1e-9)
}

func TestRegistryStatsEmpty(t *testing.T) {
	stats := NewRegistry().Stats()
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.SuccessRate)
}

func TestRegistrySweep(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	r.acquire("old").publish(finishedSession("old", SessionCompleted, now.Add(-2*time.Hour)))
	r.acquire("fresh").publish(finishedSession("fresh", SessionCompleted, now))
	r.acquire("running").publish(&Session{
		ID:        "running",
		Status:    SessionProcessing,
		StartedAt: now.Add(-3 * time.Hour),
	})

	removed := r.Sweep(now.Add(-time.Hour))
	assert.Equal(t, 1, removed)

	_, ok := r.View("old")
	assert.False(t, ok)
	_, ok = r.View("fresh")
	assert.True(t, ok)

	// In-flight sessions are never swept, however old.
	_, ok = r.View("running")
	assert.True(t, ok)
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()
	r.acquire("x").publish(finishedSession("x", SessionCompleted, time.Now()))

	assert.True(t, r.Clear("x"))
	assert.False(t, r.Clear("x"))
	assert.Zero(t, r.Len())
}
