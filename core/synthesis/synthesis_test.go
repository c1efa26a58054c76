package synthesis_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/relay/core/capability"
	"github.com/adalundhe/relay/core/synthesis"
)

func compose(t *testing.T, in capability.Input) *capability.ComposedContext {
	t.Helper()
	payload, err := synthesis.New(0).Execute(context.Background(), in)
	require.NoError(t, err)
	return payload.(*capability.ComposedContext)
}

func TestExecuteMergesAllSections(t *testing.T) {
	ctx := compose(t, capability.Input{
		Analysis: &capability.Analysis{Keywords: []string{"leave", "policy"}},
		Passages: []capability.Passage{
			{Content: "Leave requires two days notice.", Source: "handbook.md"},
		},
		Records: []capability.Record{
			{"user_name": "Mei Lin", "status": "pending"},
		},
	})

	assert.Contains(t, ctx.Text, "Query focus: leave, policy")
	assert.Contains(t, ctx.Text, "Relevant knowledge:\n1. Leave requires two days notice.")
	assert.Contains(t, ctx.Text, "Matching records (1):")
	assert.Contains(t, ctx.Text, "status: pending, user_name: Mei Lin")
	assert.Equal(t, []string{"handbook.md"}, ctx.Sources)
}

func TestExecuteEmptyInputIsValid(t *testing.T) {
	ctx := compose(t, capability.Input{})
	assert.Empty(t, ctx.Text)
	assert.Empty(t, ctx.Sources)
}

func TestExecuteCapsPassages(t *testing.T) {
	passages := make([]capability.Passage, 12)
	for i := range passages {
		passages[i] = capability.Passage{Content: "passage", Source: "doc.md"}
	}

	payload, err := synthesis.New(3).Execute(context.Background(), capability.Input{Passages: passages})
	require.NoError(t, err)
	ctx := payload.(*capability.ComposedContext)

	assert.Equal(t, 3, strings.Count(ctx.Text, "passage"))
	assert.Len(t, ctx.Sources, 3)
}

func TestExecuteSyntheticPassagesRenderAsRecords(t *testing.T) {
	// Records that only arrived in passage form still get a records section.
	ctx := compose(t, capability.Input{
		Passages: []capability.Passage{
			{Content: "name: Asha Rao, role: admin", Tag: "structured-source"},
		},
	})

	assert.Contains(t, ctx.Text, "Matching records:")
	assert.Contains(t, ctx.Text, "name: Asha Rao, role: admin")
	assert.NotContains(t, ctx.Text, "Relevant knowledge:")
}

func TestExecuteProseAndSyntheticSplit(t *testing.T) {
	ctx := compose(t, capability.Input{
		Passages: []capability.Passage{
			{Content: "Prose passage.", Source: "doc.md"},
			{Content: "id: 1, name: Mei Lin", Tag: "structured-source"},
		},
		Records: []capability.Record{{"id": 1, "name": "Mei Lin"}},
	})

	// The synthetic passage must not be double-counted as prose knowledge.
	assert.Contains(t, ctx.Text, "Relevant knowledge:\n1. Prose passage.")
	assert.NotContains(t, ctx.Text, "2. id: 1")
	assert.Contains(t, ctx.Text, "Matching records (1):")
}
