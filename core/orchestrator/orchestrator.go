package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adalundhe/relay/core/capability"
	"github.com/adalundhe/relay/core/classify"
	"github.com/adalundhe/relay/core/taskgraph"
)

// =============================================================================
// Configuration
// =============================================================================

const (
	// DefaultHistoryWindow is how many recent turns are handed to the builder.
	DefaultHistoryWindow = 10

	// DefaultCleanupInterval is how often the stale-session sweep runs.
	DefaultCleanupInterval = 5 * time.Minute

	// DefaultMaxSessionAge is how long a terminal session is retained.
	DefaultMaxSessionAge = time.Hour
)

// ConversationSource supplies recent conversation history for a session.
type ConversationSource interface {
	Recent(ctx context.Context, sessionID string, limit int) ([]capability.Turn, error)
}

// Config configures an Orchestrator.
type Config struct {
	// Classifier decides which stages a query needs. Defaults to the keyword
	// classifier.
	Classifier classify.Classifier

	// Capabilities is the handler registry the executor dispatches through.
	Capabilities *capability.Registry

	// History supplies conversation history to the graph builder. Optional.
	History ConversationSource

	// HistoryWindow is the number of recent turns to load per run.
	HistoryWindow int

	// CleanupInterval is how often stale terminal sessions are swept.
	CleanupInterval time.Duration

	// MaxSessionAge is how long terminal sessions are retained before sweep.
	MaxSessionAge time.Duration

	// Logger is the base structured logger.
	Logger *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.Classifier == nil {
		c.Classifier = classify.NewKeywordClassifier()
	}
	if c.Capabilities == nil {
		c.Capabilities = capability.NewRegistry()
	}
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = DefaultHistoryWindow
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = DefaultCleanupInterval
	}
	if c.MaxSessionAge <= 0 {
		c.MaxSessionAge = DefaultMaxSessionAge
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// =============================================================================
// Orchestrator
// =============================================================================

// Orchestrator drives one query through classification, graph construction and
// execution, mirroring progress into the session registry. Nothing below its
// boundary ever raises to the caller: total failure still yields a response
// with the apology text and a low confidence label.
type Orchestrator struct {
	classifier classify.Classifier
	builder    *taskgraph.Builder
	executor   *taskgraph.Executor
	registry   *Registry
	history    ConversationSource

	historyWindow   int
	cleanupInterval time.Duration
	maxSessionAge   time.Duration

	log *slog.Logger

	stop      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// New creates an orchestrator from the given configuration.
func New(cfg Config) *Orchestrator {
	cfg.applyDefaults()

	log := cfg.Logger.With("component", "orchestrator")

	return &Orchestrator{
		classifier:      cfg.Classifier,
		builder:         taskgraph.NewBuilder(cfg.Logger),
		executor:        taskgraph.NewExecutor(cfg.Capabilities, cfg.Logger),
		registry:        NewRegistry(),
		history:         cfg.History,
		historyWindow:   cfg.HistoryWindow,
		cleanupInterval: cfg.CleanupInterval,
		maxSessionAge:   cfg.MaxSessionAge,
		log:             log,
		stop:            make(chan struct{}),
	}
}

// Executor exposes the underlying executor, e.g. to subscribe progress sinks.
func (o *Orchestrator) Executor() *taskgraph.Executor {
	return o.executor
}

// =============================================================================
// Run
// =============================================================================

// Run processes one query end to end and always returns a response. A session
// id is generated when absent; runs for the same session id are serialized on
// a per-session lock.
func (o *Orchestrator) Run(ctx context.Context, query, sessionID string) *Response {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	entry := o.registry.acquire(sessionID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	history := o.loadHistory(ctx, sessionID)
	cls := classify.Safe(o.classifier, query)

	graph := o.builder.Build(query, cls, history)
	graph.SessionID = sessionID

	session := &Session{
		ID:        sessionID,
		Graph:     graph,
		Status:    SessionProcessing,
		StartedAt: time.Now(),
	}
	entry.publish(session)

	o.log.Info("session run started",
		"session_id", sessionID,
		"graph_id", graph.ID,
		"tasks", graph.TaskCount(),
		"complexity", cls.Complexity)

	response, escaped := o.execute(ctx, entry, session)

	now := time.Now()
	session.CompletedAt = &now
	if escaped {
		// Only failures that escape the executor's own containment mark the
		// session as errored; a degraded run with failed tasks still counts
		// as a completed orchestration.
		session.Status = SessionError
		session.Error = response.Error
	} else {
		session.Status = SessionCompleted
	}
	entry.publish(session)

	o.log.Info("session run finished",
		"session_id", sessionID,
		"status", session.Status,
		"completed", response.Summary.CompletedTasks,
		"failed", response.Summary.FailedTasks,
		"skipped", response.Summary.SkippedTasks,
		"duration", response.Summary.Duration)

	return response
}

// execute runs the session's graph with panic containment. The executor
// already isolates capability failures; this guards the rare path where
// something still escapes, degrading it to an error session with an apology
// response instead of propagating to the caller.
func (o *Orchestrator) execute(ctx context.Context, entry *sessionEntry, session *Session) (response *Response, escaped bool) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("executor escaped containment",
				"session_id", session.ID,
				"panic", r)
			response = o.apologyResponse(session, fmt.Sprintf("internal error: %v", r))
			escaped = true
		}
	}()

	sink := func(p taskgraph.Progress) {
		snapshot := p
		session.LastProgress = &snapshot
		// Re-publish so pollers see each task transition without ever
		// reading the live graph.
		entry.publish(session)
	}

	result, err := o.executor.Execute(ctx, session.Graph, sink)
	if err != nil {
		return o.apologyResponse(session, err.Error()), true
	}

	return o.buildResponse(session, result), false
}

func (o *Orchestrator) buildResponse(session *Session, result *taskgraph.Result) *Response {
	response := &Response{
		SessionID:  session.ID,
		Response:   result.Answer.Text,
		Confidence: result.Answer.Confidence,
		Fallback:   result.Fallback,
		Summary: Summary{
			GraphID:        result.GraphID,
			TotalTasks:     result.TotalTasks,
			CompletedTasks: result.CompletedTasks,
			FailedTasks:    result.FailedTasks,
			SkippedTasks:   result.SkippedTasks,
			Duration:       result.Duration,
			Tasks:          result.Tasks,
		},
	}

	if result.Fallback {
		response.Error = firstTaskError(result.Tasks)
	}
	return response
}

// apologyResponse is the terminal-error path: the only place a low confidence
// label is attached purely due to orchestration failure.
func (o *Orchestrator) apologyResponse(session *Session, errMsg string) *Response {
	summary := Summary{}
	if session.Graph != nil {
		completed, failed, skipped := session.Graph.Counts()
		summary = Summary{
			GraphID:        session.Graph.ID,
			TotalTasks:     session.Graph.TaskCount(),
			CompletedTasks: completed,
			FailedTasks:    failed,
			SkippedTasks:   skipped,
			Tasks:          session.Graph.Snapshot(),
		}
	}

	return &Response{
		SessionID: session.ID,
		Response: "I'm sorry, I wasn't able to answer that right now. " +
			"Please try rephrasing your question or try again later.",
		Confidence: capability.ConfidenceLow,
		Fallback:   true,
		Error:      errMsg,
		Summary:    summary,
	}
}

func firstTaskError(tasks []taskgraph.TaskSnapshot) string {
	for _, t := range tasks {
		if t.Error != "" {
			return t.Error
		}
	}
	return ""
}

func (o *Orchestrator) loadHistory(ctx context.Context, sessionID string) []capability.Turn {
	if o.history == nil {
		return nil
	}

	turns, err := o.history.Recent(ctx, sessionID, o.historyWindow)
	if err != nil {
		o.log.Warn("history load failed, continuing without history",
			"session_id", sessionID,
			"error", err)
		return nil
	}
	return turns
}

// =============================================================================
// Session Operations
// =============================================================================

// Status returns a snapshot of one session.
func (o *Orchestrator) Status(sessionID string) (SessionView, bool) {
	return o.registry.View(sessionID)
}

// Sessions returns snapshots of all registered sessions.
func (o *Orchestrator) Sessions() []SessionView {
	return o.registry.List()
}

// Clear removes one session from the registry.
func (o *Orchestrator) Clear(sessionID string) bool {
	return o.registry.Clear(sessionID)
}

// Statistics aggregates the session registry.
func (o *Orchestrator) Statistics() Stats {
	return o.registry.Stats()
}

// =============================================================================
// Cleanup Sweep
// =============================================================================

// StartCleanup launches the periodic sweep of stale terminal sessions. It is
// a no-op if called more than once before Close.
func (o *Orchestrator) StartCleanup() {
	o.startOnce.Do(func() {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()

			ticker := time.NewTicker(o.cleanupInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					cutoff := time.Now().Add(-o.maxSessionAge)
					if removed := o.registry.Sweep(cutoff); removed > 0 {
						o.log.Debug("swept stale sessions", "removed", removed)
					}
				case <-o.stop:
					return
				}
			}
		}()
	})
}

// Close stops the cleanup sweep and waits for it to exit.
func (o *Orchestrator) Close() {
	o.stopOnce.Do(func() {
		close(o.stop)
	})
	o.wg.Wait()
}
