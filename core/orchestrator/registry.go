package orchestrator

import (
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// Session Registry
// =============================================================================

// sessionEntry pairs the lock that serializes runs for a session id with the
// published view of that session. Runs mutate their live Session and Graph
// only while holding mu; everything observable to readers is published as an
// immutable SessionView behind the atomic pointer, so status queries never
// touch run-owned state.
type sessionEntry struct {
	mu   sync.Mutex
	view atomic.Pointer[SessionView]
}

// publish snapshots the session and makes it the entry's visible view. Only
// the run holding the entry's lock may call this.
func (e *sessionEntry) publish(s *Session) {
	view := viewOf(s)
	e.view.Store(&view)
}

// Registry is the process-wide, in-memory map of sessions. Created on first
// use, torn down on process shutdown or explicit clear; a time-based sweep
// removes stale terminal sessions.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*sessionEntry),
	}
}

// acquire returns the entry for a session id, creating it if absent.
func (r *Registry) acquire(sessionID string) *sessionEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[sessionID]
	if !ok {
		entry = &sessionEntry{}
		r.entries[sessionID] = entry
	}
	return entry
}

// View returns the published snapshot of one session.
func (r *Registry) View(sessionID string) (SessionView, bool) {
	r.mu.RLock()
	entry, ok := r.entries[sessionID]
	r.mu.RUnlock()

	if !ok {
		return SessionView{}, false
	}
	view := entry.view.Load()
	if view == nil {
		return SessionView{}, false
	}
	return *view, true
}

// List returns the published snapshots of every registered session.
func (r *Registry) List() []SessionView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	views := make([]SessionView, 0, len(r.entries))
	for _, entry := range r.entries {
		if view := entry.view.Load(); view != nil {
			views = append(views, *view)
		}
	}
	return views
}

// Clear removes one session. Returns false if it was not present.
func (r *Registry) Clear(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[sessionID]; !ok {
		return false
	}
	delete(r.entries, sessionID)
	return true
}

// Stats aggregates the registry by session status.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{}
	for _, entry := range r.entries {
		view := entry.view.Load()
		if view == nil {
			continue
		}
		stats.Total++
		switch view.Status {
		case SessionCompleted:
			stats.Completed++
		case SessionError:
			stats.Errored++
		case SessionProcessing:
			stats.Processing++
		}
	}

	if finished := stats.Completed + stats.Errored; finished > 0 {
		stats.SuccessRate = float64(stats.Completed) / float64(finished)
	}
	return stats
}

// Sweep removes terminal sessions whose runs completed before the cutoff and
// returns how many were removed. In-flight sessions are never swept.
func (r *Registry) Sweep(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, entry := range r.entries {
		view := entry.view.Load()
		if view == nil || view.Status == SessionProcessing || view.CompletedAt == nil {
			continue
		}
		if view.CompletedAt.Before(cutoff) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func viewOf(s *Session) SessionView {
	view := SessionView{
		ID:        s.ID,
		Status:    s.Status,
		StartedAt: s.StartedAt,
		Error:     s.Error,
	}
	if s.CompletedAt != nil {
		completed := *s.CompletedAt
		view.CompletedAt = &completed
	}
	if s.Graph != nil {
		view.Tasks = s.Graph.Snapshot()
	}
	return view
}
