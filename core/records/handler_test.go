package records_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/relay/core/capability"
	"github.com/adalundhe/relay/core/records"
)

func runHandler(t *testing.T, in capability.Input) *capability.Records {
	t.Helper()
	handler := records.NewHandler(openSeeded(t), 0, nil)
	payload, err := handler.Execute(context.Background(), in)
	require.NoError(t, err)
	return payload.(*capability.Records)
}

func TestHandlerScopedToAnalyzedDomain(t *testing.T) {
	result := runHandler(t, capability.Input{
		Analysis: &capability.Analysis{
			Domains:  []string{"leave"},
			Keywords: []string{"pending"},
		},
	})

	assert.Equal(t, "leave", result.Domain)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "pending", result.Items[0]["status"])
}

func TestHandlerFallsBackToNewestWhenKeywordsMissRows(t *testing.T) {
	// "users" names the domain, not any row content; the filtered query is
	// empty, so the newest rows in the domain are returned instead.
	result := runHandler(t, capability.Input{
		Analysis: &capability.Analysis{
			Domains:  []string{"users"},
			Keywords: []string{"users"},
		},
	})

	assert.Equal(t, "users", result.Domain)
	assert.Len(t, result.Items, 4)
}

func TestHandlerSearchesAllDomainsWithoutAnalysis(t *testing.T) {
	result := runHandler(t, capability.Input{Query: "anything"})

	assert.Equal(t, "mixed", result.Domain)
	// 4 users + 3 attendance + 2 leave + 2 notices from the seed data.
	assert.Len(t, result.Items, 11)
}

func TestHandlerMergesMultipleDomains(t *testing.T) {
	result := runHandler(t, capability.Input{
		Analysis: &capability.Analysis{
			Domains:  []string{"leave", "notices"},
			Keywords: []string{"leave"},
		},
	})

	assert.Equal(t, "mixed", result.Domain)
	assert.NotEmpty(t, result.Items)
}
