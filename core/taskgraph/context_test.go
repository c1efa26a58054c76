package taskgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adalundhe/relay/core/capability"
	"github.com/adalundhe/relay/core/taskgraph"
)

func TestExecutionContextRecordAndResult(t *testing.T) {
	ec := taskgraph.NewExecutionContext()

	analysis := &capability.Analysis{Intent: "lookup", Raw: "q"}
	ec.Record("task_1", analysis)

	got, ok := ec.Result("task_1")
	assert.True(t, ok)
	assert.Same(t, analysis, got.(*capability.Analysis))

	_, ok = ec.Result("task_2")
	assert.False(t, ok)

	assert.Equal(t, 1, ec.Len())
}

func TestExecutionContextLatestPerVariant(t *testing.T) {
	ec := taskgraph.NewExecutionContext()

	first := &capability.Analysis{Intent: "lookup"}
	second := &capability.Analysis{Intent: "mixed"}
	ec.Record("task_1", first)
	ec.Record("task_2", second)

	latest, ok := ec.Latest(capability.VariantAnalysis)
	assert.True(t, ok)
	assert.Same(t, second, latest.(*capability.Analysis))
	assert.Same(t, second, ec.LatestAnalysis())

	_, ok = ec.Latest(capability.VariantAnswer)
	assert.False(t, ok)
	assert.Nil(t, taskgraph.NewExecutionContext().LatestAnalysis())
}

func TestExecutionContextIgnoresNilPayload(t *testing.T) {
	ec := taskgraph.NewExecutionContext()
	ec.Record("task_1", nil)

	_, ok := ec.Result("task_1")
	assert.False(t, ok)
	assert.Equal(t, 0, ec.Len())
}

func TestExecutionContextAccumulators(t *testing.T) {
	ec := taskgraph.NewExecutionContext()

	ec.Record("task_2", &capability.Passages{Items: []capability.Passage{
		{Content: "first passage"},
	}})
	ec.Record("task_3", &capability.Records{Items: []capability.Record{
		{"name": "Mei Lin"},
	}})
	ec.Record("task_4", &capability.Passages{Items: []capability.Passage{
		{Content: "second passage"},
	}})

	passages := ec.AllPassages()
	assert.Len(t, passages, 2)
	assert.Equal(t, "first passage", passages[0].Content)
	assert.Equal(t, "second passage", passages[1].Content)

	records := ec.AllRecords()
	assert.Len(t, records, 1)
	assert.Equal(t, "Mei Lin", records[0]["name"])
}
