package providers

import (
	"context"
	"strings"
)

// LocalProvider is a deterministic, offline provider. It extracts the context
// and question from the request and composes a plain answer from them, so the
// pipeline stays usable without vendor credentials and tests stay hermetic.
type LocalProvider struct{}

// NewLocalProvider creates the offline provider.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

// Name returns the provider identifier.
func (p *LocalProvider) Name() string {
	return string(ProviderTypeLocal)
}

// Generate composes an answer from the last user message without calling any
// external service.
func (p *LocalProvider) Generate(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prompt := lastUserContent(req.Messages)
	question, background := splitPrompt(prompt)

	var b strings.Builder
	if background != "" {
		b.WriteString("Based on the available information:\n\n")
		b.WriteString(background)
		if question != "" {
			b.WriteString("\n\nThis is the most relevant material for: ")
			b.WriteString(question)
		}
	} else if question != "" {
		b.WriteString("I don't have supporting material for this question, but here is what was asked: ")
		b.WriteString(question)
	}

	content := strings.TrimSpace(b.String())
	if content == "" {
		return nil, ErrEmptyResponse
	}

	return &Response{
		Content: content,
		Model:   "local",
		Usage: Usage{
			InputTokens:  approximateTokens(prompt),
			OutputTokens: approximateTokens(content),
			TotalTokens:  approximateTokens(prompt) + approximateTokens(content),
		},
	}, nil
}

func lastUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// splitPrompt separates the question line from the background block that
// generator.buildPrompt assembles.
func splitPrompt(prompt string) (question, background string) {
	const questionMarker = "Question: "
	const contextMarker = "Context:\n"

	if idx := strings.Index(prompt, questionMarker); idx >= 0 {
		rest := prompt[idx+len(questionMarker):]
		if end := strings.IndexByte(rest, '\n'); end >= 0 {
			question = strings.TrimSpace(rest[:end])
		} else {
			question = strings.TrimSpace(rest)
		}
	}
	if idx := strings.Index(prompt, contextMarker); idx >= 0 {
		background = strings.TrimSpace(prompt[idx+len(contextMarker):])
	}
	if question == "" && background == "" {
		question = strings.TrimSpace(prompt)
	}
	return question, background
}

func approximateTokens(s string) int {
	return len(strings.Fields(s))
}
