// Package providers adapts language-model vendors behind one completion
// interface and implements the answer-generation capability on top of it.
package providers

import (
	"context"
	"errors"
)

// =============================================================================
// Provider Interface
// =============================================================================

// Provider performs non-streaming completions for one vendor.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// ProviderType identifies a vendor.
type ProviderType string

const (
	ProviderTypeAnthropic ProviderType = "anthropic"
	ProviderTypeOpenAI    ProviderType = "openai"
	ProviderTypeLocal     ProviderType = "local"
)

// =============================================================================
// Request / Response
// =============================================================================

// Role identifies a message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one conversation message in a completion request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a vendor-neutral completion request.
type Request struct {
	Messages     []Message `json:"messages"`
	Model        string    `json:"model,omitempty"`
	MaxTokens    int       `json:"max_tokens,omitempty"`
	Temperature  *float64  `json:"temperature,omitempty"`
	SystemPrompt string    `json:"system_prompt,omitempty"`
}

// Usage is the token accounting for a completion.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Response is a vendor-neutral completion response.
type Response struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrMissingAPIKey indicates a provider config without credentials.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrUnknownProvider indicates an unrecognized provider type.
	ErrUnknownProvider = errors.New("unknown provider type")

	// ErrEmptyResponse indicates the vendor returned no content.
	ErrEmptyResponse = errors.New("provider returned empty response")
)
