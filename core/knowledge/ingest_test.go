package knowledge_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/relay/core/knowledge"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngestDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "policies/leave-policy.md", "Leave requires two days notice.")
	writeFile(t, dir, "guides/onboarding.txt", "Onboarding happens in week one.")
	writeFile(t, dir, "scripts/build.sh", "#!/bin/sh")

	index := memIndex(t)
	ingestor, err := knowledge.NewIngestor(index, nil, nil)
	require.NoError(t, err)

	count, err := ingestor.IngestDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "only files matching the include patterns are indexed")

	passages, err := index.Search(context.Background(), "leave notice", 10)
	require.NoError(t, err)
	require.NotEmpty(t, passages)
	assert.Contains(t, passages[0].Content, "two days notice")
}

func TestIngestDirCustomPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.rst", "A restructured text note about holidays.")
	writeFile(t, dir, "readme.md", "Markdown that should be skipped.")

	index := memIndex(t)
	ingestor, err := knowledge.NewIngestor(index, []string{"*.rst"}, nil)
	require.NoError(t, err)

	count, err := ingestor.IngestDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIngestorInvalidPattern(t *testing.T) {
	_, err := knowledge.NewIngestor(memIndex(t), []string{"[unclosed"}, nil)
	assert.Error(t, err)
}

func TestIngestDirCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.md", "content")

	ingestor, err := knowledge.NewIngestor(memIndex(t), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ingestor.IngestDir(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDocumentID(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "policies/leave.md", "text")

	assert.Equal(t, "policies/leave.md", knowledge.DocumentID(dir, path))
}

func TestMatches(t *testing.T) {
	ingestor, err := knowledge.NewIngestor(memIndex(t), nil, nil)
	require.NoError(t, err)

	assert.True(t, ingestor.Matches("/docs/a.md"))
	assert.True(t, ingestor.Matches("b.txt"))
	assert.False(t, ingestor.Matches("/docs/c.go"))
}
