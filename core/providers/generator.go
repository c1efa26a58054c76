package providers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adalundhe/relay/core/capability"
)

const generatorSystemPrompt = "You are a helpful assistant. Answer the question using the provided context. " +
	"If the context does not contain the answer, say so plainly instead of guessing."

// DefaultHistoryTurns limits how many prior turns the prompt carries.
const DefaultHistoryTurns = 6

// Generator is the answer-generation capability. It builds a grounded prompt
// from the composed context and conversation history, delegates to a Provider,
// and grades the answer's confidence by how much supporting material it had.
type Generator struct {
	provider Provider
	log      *slog.Logger
}

// NewGenerator creates a generation capability over a provider.
func NewGenerator(provider Provider, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		provider: provider,
		log:      log.With("component", "generator"),
	}
}

// Execute produces an answer payload for the input query.
func (g *Generator) Execute(ctx context.Context, in capability.Input) (capability.Payload, error) {
	prompt, sourceCount := g.buildPrompt(in)

	req := &Request{
		SystemPrompt: generatorSystemPrompt,
		Messages:     g.buildMessages(in.History, prompt),
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	answer := &capability.Answer{
		Text:       resp.Content,
		Confidence: confidenceFor(sourceCount),
		Model:      resp.Model,
	}

	g.log.Debug("answer generated",
		"provider", g.provider.Name(),
		"sources", sourceCount,
		"confidence", answer.Confidence)

	return answer, nil
}

// buildPrompt assembles the user prompt and reports how many source sections
// backed it.
func (g *Generator) buildPrompt(in capability.Input) (string, int) {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(in.Query)
	b.WriteString("\n")

	background, sources := g.background(in)
	if background != "" {
		b.WriteString("\nContext:\n")
		b.WriteString(background)
		b.WriteString("\n")
	}

	return b.String(), sources
}

// background prefers the synthesized context and falls back to raw passages
// and records when synthesis did not run.
func (g *Generator) background(in capability.Input) (string, int) {
	if in.Context != nil && strings.TrimSpace(in.Context.Text) != "" {
		return in.Context.Text, len(in.Context.Sources)
	}

	var sections []string
	for _, p := range in.Passages {
		sections = append(sections, p.Content)
	}
	for _, r := range in.Records {
		sections = append(sections, r.String())
	}
	return strings.Join(sections, "\n\n"), len(sections)
}

func (g *Generator) buildMessages(history []capability.Turn, prompt string) []Message {
	turns := history
	if len(turns) > DefaultHistoryTurns {
		turns = turns[len(turns)-DefaultHistoryTurns:]
	}

	messages := make([]Message, 0, len(turns)+1)
	for _, turn := range turns {
		role := RoleUser
		if turn.Role == capability.TurnRoleAssistant {
			role = RoleAssistant
		}
		messages = append(messages, Message{Role: role, Content: turn.Content})
	}

	return append(messages, Message{Role: RoleUser, Content: prompt})
}

func confidenceFor(sources int) capability.Confidence {
	switch {
	case sources >= 2:
		return capability.ConfidenceHigh
	case sources == 1:
		return capability.ConfidenceMedium
	default:
		return capability.ConfidenceLow
	}
}
