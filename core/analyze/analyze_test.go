package analyze_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/relay/core/analyze"
	"github.com/adalundhe/relay/core/capability"
)

func analysisFor(t *testing.T, query string) *capability.Analysis {
	t.Helper()
	payload, err := analyze.New(nil).Execute(context.Background(), capability.Input{Query: query})
	require.NoError(t, err)
	return payload.(*capability.Analysis)
}

func TestExecuteIntent(t *testing.T) {
	tests := []struct {
		query  string
		intent string
	}{
		{"What is the leave policy?", "conceptual"},
		{"Show me all pending leave requests", "lookup"},
		{"Explain the policy and count pending requests", "mixed"},
		{"Good morning!", "conversational"},
	}

	for _, tt := range tests {
		t.Run(tt.intent, func(t *testing.T) {
			a := analysisFor(t, tt.query)
			assert.Equal(t, tt.intent, a.Intent)
			assert.Equal(t, tt.query, a.Raw)
		})
	}
}

func TestExtractKeywords(t *testing.T) {
	keywords := analyze.ExtractKeywords("Show me all PENDING leave requests, please!")

	// Stopwords, punctuation and duplicates are gone, order is preserved.
	assert.Equal(t, []string{"pending", "leave", "requests"}, keywords)
}

func TestExtractKeywordsDedupAndShortTerms(t *testing.T) {
	keywords := analyze.ExtractKeywords("a leave leave x 42 check-in")
	assert.Equal(t, []string{"leave", "42", "check-in"}, keywords)
}

func TestExtractKeywordsEmpty(t *testing.T) {
	assert.Empty(t, analyze.ExtractKeywords(""))
	assert.Empty(t, analyze.ExtractKeywords("the of and"))
}

func TestDetectDomains(t *testing.T) {
	tests := []struct {
		query   string
		domains []string
	}{
		{"Show me all users", []string{"users"}},
		{"Who was absent yesterday?", []string{"attendance"}},
		{"pending leave requests", []string{"leave"}},
		{"any new announcements?", []string{"notices"}},
		{"leave status for employees", []string{"users", "leave"}},
		{"hello there", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.domains, analyze.DetectDomains(tt.query), "query %q", tt.query)
	}
}

func TestDomainOrderIsStable(t *testing.T) {
	// Domains report in canonical order regardless of word order in the query.
	a := analyze.DetectDomains("notices about leave for users with attendance issues")
	b := analyze.DetectDomains("attendance of users, their leave and notices")
	assert.Equal(t, a, b)
	assert.Equal(t, []string{"users", "attendance", "leave", "notices"}, a)
}
