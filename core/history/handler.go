package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adalundhe/relay/core/capability"
)

// Handler is the conversation-update capability. It appends the user's query
// and the generated answer to the session's conversation log.
type Handler struct {
	store *Store
	log   *slog.Logger
}

// NewHandler creates the conversation-update capability over a store.
func NewHandler(store *Store, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		store: store,
		log:   log.With("component", "conversation"),
	}
}

// Execute records the turn pair and passes the answer through unchanged so
// downstream consumers still see it.
func (h *Handler) Execute(ctx context.Context, in capability.Input) (capability.Payload, error) {
	if in.Query != "" {
		err := h.store.Append(ctx, in.SessionID, capability.Turn{
			Role:    capability.TurnRoleUser,
			Content: in.Query,
		})
		if err != nil {
			return nil, fmt.Errorf("record user turn: %w", err)
		}
	}

	answer := in.Answer
	if answer == nil {
		// Nothing generated upstream; the user turn alone is still recorded.
		h.log.Debug("conversation update without answer", "session_id", in.SessionID)
		return &capability.Answer{Confidence: capability.ConfidenceLow}, nil
	}

	err := h.store.Append(ctx, in.SessionID, capability.Turn{
		Role:    capability.TurnRoleAssistant,
		Content: answer.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("record assistant turn: %w", err)
	}

	return answer, nil
}
