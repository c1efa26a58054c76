package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adalundhe/relay/core/classify"
)

type panickingClassifier struct{}

func (panickingClassifier) Classify(string) classify.Classification {
	panic("classifier exploded")
}

func TestKeywordClassifier(t *testing.T) {
	c := classify.NewKeywordClassifier()

	tests := []struct {
		name  string
		query string
		want  classify.Classification
	}{
		{
			name:  "conceptual question",
			query: "What is the leave policy?",
			want: classify.Classification{
				NeedsRetrieval: true,
				Complexity:     classify.ComplexityMedium,
			},
		},
		{
			name:  "lookup question",
			query: "Show me all pending leave requests",
			want: classify.Classification{
				NeedsRecordQuery: true,
				Complexity:       classify.ComplexityMedium,
			},
		},
		{
			name:  "mixed question",
			query: "Explain the attendance rules and list who is absent today",
			want: classify.Classification{
				NeedsRetrieval:   true,
				NeedsRecordQuery: true,
				NeedsSynthesis:   true,
				Complexity:       classify.ComplexityComplex,
			},
		},
		{
			name:  "conversational",
			query: "Thanks, that was helpful!",
			want: classify.Classification{
				Complexity: classify.ComplexitySimple,
			},
		},
		{
			name:  "case insensitive",
			query: "WHAT IS an SLA?",
			want: classify.Classification{
				NeedsRetrieval: true,
				Complexity:     classify.ComplexityMedium,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.query))
		})
	}
}

func TestSynthesisRequiresBothBranches(t *testing.T) {
	c := classify.NewKeywordClassifier()

	retrievalOnly := c.Classify("Explain the onboarding procedure")
	assert.True(t, retrievalOnly.NeedsRetrieval)
	assert.False(t, retrievalOnly.NeedsSynthesis)

	lookupOnly := c.Classify("Count absent employees")
	assert.True(t, lookupOnly.NeedsRecordQuery)
	assert.False(t, lookupOnly.NeedsSynthesis)
}

func TestCustomPhrases(t *testing.T) {
	c := classify.NewKeywordClassifierWithPhrases(
		[]string{"wissen"},
		[]string{"zeige"},
	)

	got := c.Classify("Zeige mir das Wissen")
	assert.True(t, got.NeedsRetrieval)
	assert.True(t, got.NeedsRecordQuery)
	assert.True(t, got.NeedsSynthesis)
	assert.Equal(t, classify.ComplexityComplex, got.Complexity)

	// Default phrases do not apply to a custom classifier.
	assert.Equal(t, classify.DefaultClassification(), c.Classify("what is this"))
}

func TestSafeContainsPanics(t *testing.T) {
	got := classify.Safe(panickingClassifier{}, "any query")
	assert.Equal(t, classify.DefaultClassification(), got)
}

func TestSafeNilClassifier(t *testing.T) {
	got := classify.Safe(nil, "any query")
	assert.Equal(t, classify.DefaultClassification(), got)
}
