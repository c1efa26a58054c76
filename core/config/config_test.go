package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/relay/core/config"
)

func TestDefaults(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 1024, cfg.LLM.MaxTokens)
	assert.Equal(t, "relay.bleve", cfg.Knowledge.IndexPath)
	assert.Equal(t, []string{"*.md", "*.txt"}, cfg.Knowledge.IncludePatterns)
	assert.Equal(t, "relay.db", cfg.Records.Path)
	assert.True(t, cfg.Records.Seed)
	assert.Equal(t, 10, cfg.History.Window)
	assert.Equal(t, time.Hour, cfg.Session.MaxAge)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	data := []byte(`
llm:
  provider: local
  max_tokens: 256
knowledge:
  docs_dir: /srv/docs
logging:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	m := config.NewManager(path)
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, "local", cfg.LLM.Provider)
	assert.Equal(t, 256, cfg.LLM.MaxTokens)
	assert.Equal(t, "/srv/docs", cfg.Knowledge.DocsDir)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unset keys keep their defaults.
	assert.Equal(t, 2*time.Minute, cfg.LLM.Timeout)
	assert.Equal(t, "relay.db", cfg.Records.Path)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	m := config.NewManager(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, m.Load())
	assert.Equal(t, "anthropic", m.Get().LLM.Provider)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [not a map"), 0o644))

	m := config.NewManager(path)
	assert.Error(t, m.Load())

	// A failed load leaves the published config untouched.
	assert.Equal(t, "anthropic", m.Get().LLM.Provider)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("RELAY_LLM_PROVIDER", "openai")
	t.Setenv("RELAY_LLM_TIMEOUT", "30s")
	t.Setenv("RELAY_HISTORY_WINDOW", "4")
	t.Setenv("RELAY_LOG_LEVEL", "DEBUG")

	m := config.NewManager("")
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 4, cfg.History.Window)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  provider: local\n"), 0o644))
	t.Setenv("RELAY_LLM_PROVIDER", "anthropic")

	m := config.NewManager(path)
	require.NoError(t, m.Load())
	assert.Equal(t, "anthropic", m.Get().LLM.Provider)
}

func TestOnChange(t *testing.T) {
	m := config.NewManager("")

	var seen []*config.Config
	m.OnChange(func(cfg *config.Config) {
		seen = append(seen, cfg)
	})

	require.NoError(t, m.Load())
	require.NoError(t, m.Reload())
	require.Len(t, seen, 2)
	assert.Same(t, m.Get(), seen[1])
}
