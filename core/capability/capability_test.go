package capability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/relay/core/capability"
)

func TestKindIsValid(t *testing.T) {
	for _, kind := range capability.Kinds() {
		assert.True(t, kind.IsValid(), "kind %q", kind)
	}
	assert.False(t, capability.Kind("make_coffee").IsValid())
	assert.False(t, capability.Kind("").IsValid())
}

func TestRecordString(t *testing.T) {
	record := capability.Record{
		"name":   "Mei Lin",
		"status": "pending",
		"id":     int64(7),
	}

	// Fields render sorted by name so output is stable across runs.
	assert.Equal(t, "id: 7, name: Mei Lin, status: pending", record.String())
	assert.Equal(t, "", capability.Record{}.String())
}

func TestAsSyntheticPassage(t *testing.T) {
	record := capability.Record{"name": "Asha Rao", "role": "admin"}

	passage := record.AsSyntheticPassage()
	assert.Equal(t, "name: Asha Rao, role: admin", passage.Content)
	assert.Equal(t, "structured-source", passage.Tag)
	assert.Zero(t, passage.Score)
}

func TestPayloadVariants(t *testing.T) {
	tests := []struct {
		payload capability.Payload
		want    capability.Variant
	}{
		{&capability.Analysis{}, capability.VariantAnalysis},
		{&capability.Passages{}, capability.VariantPassages},
		{&capability.Records{}, capability.VariantRecords},
		{&capability.ComposedContext{}, capability.VariantContext},
		{&capability.Answer{}, capability.VariantAnswer},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.payload.Variant())
	}
}

func TestRegistryRegisterAndResolve(t *testing.T) {
	registry := capability.NewRegistry()

	handler := capability.HandlerFunc(func(context.Context, capability.Input) (capability.Payload, error) {
		return &capability.Answer{Text: "ok"}, nil
	})

	require.NoError(t, registry.Register(capability.KindGeneration, handler))

	resolved, err := registry.Resolve(capability.KindGeneration)
	require.NoError(t, err)

	payload, err := resolved.Execute(context.Background(), capability.Input{})
	require.NoError(t, err)
	assert.Equal(t, "ok", payload.(*capability.Answer).Text)
}

func TestRegistryDuplicateRegistration(t *testing.T) {
	registry := capability.NewRegistry()
	handler := capability.HandlerFunc(func(context.Context, capability.Input) (capability.Payload, error) {
		return nil, nil
	})

	require.NoError(t, registry.Register(capability.KindAnalysis, handler))

	err := registry.Register(capability.KindAnalysis, handler)
	assert.ErrorIs(t, err, capability.ErrDuplicateCapability)

	// Replace swaps without error.
	assert.NoError(t, registry.Replace(capability.KindAnalysis, handler))
}

func TestRegistryInvalidKind(t *testing.T) {
	registry := capability.NewRegistry()
	handler := capability.HandlerFunc(func(context.Context, capability.Input) (capability.Payload, error) {
		return nil, nil
	})

	assert.ErrorIs(t, registry.Register("bogus", handler), capability.ErrInvalidKind)
}

func TestRegistryUnknownCapability(t *testing.T) {
	registry := capability.NewRegistry()

	_, err := registry.Resolve(capability.KindRetrieval)
	assert.ErrorIs(t, err, capability.ErrUnknownCapability)
}

func TestRegistered(t *testing.T) {
	registry := capability.NewRegistry()
	handler := capability.HandlerFunc(func(context.Context, capability.Input) (capability.Payload, error) {
		return nil, nil
	})

	require.NoError(t, registry.Register(capability.KindConversation, handler))
	require.NoError(t, registry.Register(capability.KindAnalysis, handler))

	// Registered reports in canonical kind order regardless of insertion.
	assert.Equal(t, []capability.Kind{capability.KindAnalysis, capability.KindConversation}, registry.Registered())
}
