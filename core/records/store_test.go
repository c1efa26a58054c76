package records_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/relay/core/records"
)

func openSeeded(t *testing.T) *records.Store {
	t.Helper()
	store, err := records.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Seed(context.Background()))
	return store
}

func TestDomains(t *testing.T) {
	assert.Equal(t, []string{"users", "attendance", "leave", "notices"}, records.Domains())
}

func TestSeedIsIdempotent(t *testing.T) {
	store := openSeeded(t)
	require.NoError(t, store.Seed(context.Background()))

	users, err := store.Execute(context.Background(), records.Query{Domain: "users"})
	require.NoError(t, err)
	assert.Len(t, users, 4)
}

func TestExecuteUnknownDomain(t *testing.T) {
	store := openSeeded(t)

	_, err := store.Execute(context.Background(), records.Query{Domain: "payroll"})
	assert.ErrorIs(t, err, records.ErrUnknownDomain)
}

func TestExecuteKeywordFilter(t *testing.T) {
	store := openSeeded(t)

	pending, err := store.Execute(context.Background(), records.Query{
		Domain:   "leave",
		Keywords: []string{"pending"},
	})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Mei Lin", pending[0]["user_name"])
	assert.Equal(t, "pending", pending[0]["status"])
}

func TestExecuteKeywordFilterMatchesAnyColumn(t *testing.T) {
	store := openSeeded(t)

	// "engineering" only appears in the department column.
	engineers, err := store.Execute(context.Background(), records.Query{
		Domain:   "users",
		Keywords: []string{"engineering"},
	})
	require.NoError(t, err)
	assert.Len(t, engineers, 2)
}

func TestExecuteEmptyKeywordsReturnNewest(t *testing.T) {
	store := openSeeded(t)

	notices, err := store.Execute(context.Background(), records.Query{Domain: "notices"})
	require.NoError(t, err)
	require.Len(t, notices, 2)

	// Newest first.
	assert.Equal(t, "Leave policy update", notices[0]["title"])
}

func TestExecuteLimit(t *testing.T) {
	store := openSeeded(t)

	users, err := store.Execute(context.Background(), records.Query{Domain: "users", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestExecuteNoMatches(t *testing.T) {
	store := openSeeded(t)

	none, err := store.Execute(context.Background(), records.Query{
		Domain:   "users",
		Keywords: []string{"zzz-no-such-person"},
	})
	require.NoError(t, err)
	assert.Empty(t, none)
}
