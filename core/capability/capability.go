// Package capability defines the contract between the task-graph engine and the
// processing stages it dispatches to. The engine knows capabilities only by name
// and by the payload variants they consume and produce.
package capability

import (
	"context"
	"errors"
)

// =============================================================================
// Capability Kinds
// =============================================================================

// Kind identifies one of the canonical processing stages.
type Kind string

const (
	// KindAnalysis analyzes the raw query into intent, keywords and domains.
	KindAnalysis Kind = "query_analysis"
	// KindRetrieval retrieves ranked knowledge passages for the query.
	KindRetrieval Kind = "knowledge_retrieval"
	// KindRecordQuery looks up structured records matching the query.
	KindRecordQuery Kind = "record_query"
	// KindSynthesis composes retrieval and record results into one context.
	KindSynthesis Kind = "context_synthesis"
	// KindGeneration generates the final answer text.
	KindGeneration Kind = "answer_generation"
	// KindConversation appends the exchange to the conversation history.
	KindConversation Kind = "conversation_update"
)

// Kinds returns all canonical capability kinds in pipeline order.
func Kinds() []Kind {
	return []Kind{
		KindAnalysis,
		KindRetrieval,
		KindRecordQuery,
		KindSynthesis,
		KindGeneration,
		KindConversation,
	}
}

// IsValid returns true if the kind is one of the canonical capabilities.
func (k Kind) IsValid() bool {
	switch k {
	case KindAnalysis, KindRetrieval, KindRecordQuery,
		KindSynthesis, KindGeneration, KindConversation:
		return true
	}
	return false
}

// =============================================================================
// Confidence
// =============================================================================

// Confidence labels how trustworthy a generated answer is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// =============================================================================
// Conversation Turns
// =============================================================================

// TurnRole identifies who produced a conversation turn.
type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

// Turn is one entry in a session's conversation history.
type Turn struct {
	Role    TurnRole `json:"role"`
	Content string   `json:"content"`
}

// =============================================================================
// Handler Input
// =============================================================================

// Input carries the resolved parameters for one capability invocation. The
// engine fills in only the fields the capability's kind declares an interest
// in; everything else is left at its zero value.
type Input struct {
	// Query is the raw query text that started the run.
	Query string

	// SessionID identifies the session the run belongs to.
	SessionID string

	// History is the recent conversation history, oldest first.
	History []Turn

	// Params holds the static parameters attached at graph-build time.
	Params map[string]any

	// Analysis is the upstream analysis result, if any.
	Analysis *Analysis

	// Passages are the ranked passages accumulated from dependencies.
	Passages []Passage

	// Records are the structured records accumulated from dependencies.
	Records []Record

	// Context is the composed context produced by a synthesis stage.
	Context *ComposedContext

	// Answer is the generated answer, for post-generation stages.
	Answer *Answer
}

// =============================================================================
// Handler
// =============================================================================

// Handler executes one capability invocation. Implementations return a payload
// variant on success or an error; they must not panic across this boundary.
type Handler interface {
	Execute(ctx context.Context, in Input) (Payload, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, in Input) (Payload, error)

// Execute implements Handler.
func (f HandlerFunc) Execute(ctx context.Context, in Input) (Payload, error) {
	return f(ctx, in)
}

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrUnknownCapability indicates no handler is registered for a kind.
	ErrUnknownCapability = errors.New("unknown capability")

	// ErrDuplicateCapability indicates a handler is already registered.
	ErrDuplicateCapability = errors.New("capability already registered")

	// ErrInvalidKind indicates a kind outside the canonical set.
	ErrInvalidKind = errors.New("invalid capability kind")
)
