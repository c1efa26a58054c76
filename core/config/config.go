// Package config loads and watches the application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Configuration Types
// =============================================================================

// Config is the full application configuration.
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Records   RecordsConfig   `yaml:"records"`
	History   HistoryConfig   `yaml:"history"`
	Session   SessionConfig   `yaml:"session"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LLMConfig selects and tunes the generation provider.
type LLMConfig struct {
	Provider  string        `yaml:"provider"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

// KnowledgeConfig configures document indexing and retrieval.
type KnowledgeConfig struct {
	IndexPath       string        `yaml:"index_path"`
	DocsDir         string        `yaml:"docs_dir"`
	IncludePatterns []string      `yaml:"include_patterns"`
	SearchLimit     int           `yaml:"search_limit"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	Watch           bool          `yaml:"watch"`
}

// RecordsConfig configures the structured record store.
type RecordsConfig struct {
	Path       string `yaml:"path"`
	QueryLimit int    `yaml:"query_limit"`
	Seed       bool   `yaml:"seed"`
}

// HistoryConfig configures conversation persistence.
type HistoryConfig struct {
	Path   string `yaml:"path"`
	Window int    `yaml:"window"`
}

// SessionConfig tunes session lifecycle management.
type SessionConfig struct {
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	MaxAge          time.Duration `yaml:"max_age"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:  "anthropic",
			Model:     "",
			MaxTokens: 1024,
			Timeout:   2 * time.Minute,
		},
		Knowledge: KnowledgeConfig{
			IndexPath:       "relay.bleve",
			DocsDir:         "docs",
			IncludePatterns: []string{"*.md", "*.txt"},
			SearchLimit:     5,
			CacheTTL:        5 * time.Minute,
			Watch:           false,
		},
		Records: RecordsConfig{
			Path:       "relay.db",
			QueryLimit: 50,
			Seed:       true,
		},
		History: HistoryConfig{
			Path:   "relay.db",
			Window: 10,
		},
		Session: SessionConfig{
			CleanupInterval: 5 * time.Minute,
			MaxAge:          time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// =============================================================================
// Manager
// =============================================================================

// Manager holds the live configuration behind an atomic pointer so readers
// never block behind a reload.
type Manager struct {
	configPtr unsafe.Pointer
	path      string
	watchers  []func(*Config)
	watcherMu sync.RWMutex
}

// NewManager creates a manager anchored at a config file path. The file does
// not need to exist; defaults apply until it does.
func NewManager(path string) *Manager {
	m := &Manager{path: path}
	cfg := DefaultConfig()
	atomic.StorePointer(&m.configPtr, unsafe.Pointer(cfg))
	return m
}

// Get returns the current configuration. The returned value must be treated
// as read-only.
func (m *Manager) Get() *Config {
	return (*Config)(atomic.LoadPointer(&m.configPtr))
}

// Load reads the config file over defaults, applies environment overrides,
// and publishes the result.
func (m *Manager) Load() error {
	cfg := DefaultConfig()

	if err := loadYAMLFile(m.path, cfg); err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	applyEnvironment(cfg)

	atomic.StorePointer(&m.configPtr, unsafe.Pointer(cfg))
	m.notifyWatchers(cfg)
	return nil
}

// Reload re-reads the config file, keeping registered watchers informed.
func (m *Manager) Reload() error {
	return m.Load()
}

// OnChange registers a callback invoked after every successful Load.
func (m *Manager) OnChange(fn func(*Config)) {
	m.watcherMu.Lock()
	m.watchers = append(m.watchers, fn)
	m.watcherMu.Unlock()
}

func (m *Manager) notifyWatchers(cfg *Config) {
	m.watcherMu.RLock()
	watchers := m.watchers
	m.watcherMu.RUnlock()

	for _, fn := range watchers {
		fn(cfg)
	}
}

func loadYAMLFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// =============================================================================
// Environment Overrides
// =============================================================================

func applyEnvironment(cfg *Config) {
	if v := os.Getenv("RELAY_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("RELAY_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("RELAY_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Timeout = d
		}
	}
	if v := os.Getenv("RELAY_KNOWLEDGE_INDEX_PATH"); v != "" {
		cfg.Knowledge.IndexPath = v
	}
	if v := os.Getenv("RELAY_KNOWLEDGE_DOCS_DIR"); v != "" {
		cfg.Knowledge.DocsDir = v
	}
	if v := os.Getenv("RELAY_KNOWLEDGE_SEARCH_LIMIT"); v != "" {
		if n, err := parseInt(v); err == nil {
			cfg.Knowledge.SearchLimit = n
		}
	}
	if v := os.Getenv("RELAY_RECORDS_PATH"); v != "" {
		cfg.Records.Path = v
	}
	if v := os.Getenv("RELAY_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
	if v := os.Getenv("RELAY_HISTORY_WINDOW"); v != "" {
		if n, err := parseInt(v); err == nil {
			cfg.History.Window = n
		}
	}
	if v := os.Getenv("RELAY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

func parseInt(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}
