package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adalundhe/relay/core/analyze"
	"github.com/adalundhe/relay/core/capability"
	"github.com/adalundhe/relay/core/classify"
	"github.com/adalundhe/relay/core/config"
	"github.com/adalundhe/relay/core/history"
	"github.com/adalundhe/relay/core/knowledge"
	"github.com/adalundhe/relay/core/orchestrator"
	"github.com/adalundhe/relay/core/providers"
	"github.com/adalundhe/relay/core/records"
	"github.com/adalundhe/relay/core/synthesis"
)

// app bundles the wired pipeline and the resources it owns.
type app struct {
	orchestrator *orchestrator.Orchestrator
	index        *knowledge.Index
	cache        *knowledge.QueryCache
	store        *records.Store
	conversation *history.Store
	log          *slog.Logger
}

// buildApp wires every capability into an orchestrator from config.
func buildApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	index, err := knowledge.NewIndex(cfg.Knowledge.IndexPath, log)
	if err != nil {
		return nil, fmt.Errorf("open knowledge index: %w", err)
	}

	cache, err := knowledge.NewQueryCache(knowledge.QueryCacheConfig{TTL: cfg.Knowledge.CacheTTL})
	if err != nil {
		index.Close()
		return nil, fmt.Errorf("create query cache: %w", err)
	}

	store, err := records.Open(cfg.Records.Path, log)
	if err != nil {
		cache.Close()
		index.Close()
		return nil, fmt.Errorf("open record store: %w", err)
	}
	if cfg.Records.Seed {
		if err := store.Seed(ctx); err != nil {
			store.Close()
			cache.Close()
			index.Close()
			return nil, fmt.Errorf("seed record store: %w", err)
		}
	}

	conversation, err := history.Open(cfg.History.Path, log)
	if err != nil {
		store.Close()
		cache.Close()
		index.Close()
		return nil, fmt.Errorf("open history store: %w", err)
	}

	provider, err := providers.ForType(providers.ProviderType(cfg.LLM.Provider), log)
	if err != nil {
		conversation.Close()
		store.Close()
		cache.Close()
		index.Close()
		return nil, fmt.Errorf("create provider: %w", err)
	}

	classifier := classify.NewKeywordClassifier()

	registry := capability.NewRegistry()
	handlers := map[capability.Kind]capability.Handler{
		capability.KindAnalysis:     analyze.New(classifier),
		capability.KindRetrieval:    knowledge.NewRetriever(index, cache, cfg.Knowledge.SearchLimit, log),
		capability.KindRecordQuery:  records.NewHandler(store, cfg.Records.QueryLimit, log),
		capability.KindSynthesis:    synthesis.New(0),
		capability.KindGeneration:   providers.NewGenerator(provider, log),
		capability.KindConversation: history.NewHandler(conversation, log),
	}
	for kind, handler := range handlers {
		if err := registry.Register(kind, handler); err != nil {
			conversation.Close()
			store.Close()
			cache.Close()
			index.Close()
			return nil, fmt.Errorf("register %s: %w", kind, err)
		}
	}

	orch := orchestrator.New(orchestrator.Config{
		Classifier:      classifier,
		Capabilities:    registry,
		History:         conversation,
		HistoryWindow:   cfg.History.Window,
		CleanupInterval: cfg.Session.CleanupInterval,
		MaxSessionAge:   cfg.Session.MaxAge,
		Logger:          log,
	})

	return &app{
		orchestrator: orch,
		index:        index,
		cache:        cache,
		store:        store,
		conversation: conversation,
		log:          log,
	}, nil
}

// Close releases everything the app owns, in reverse wiring order.
func (a *app) Close() {
	a.orchestrator.Close()
	a.conversation.Close()
	a.store.Close()
	a.cache.Close()
	a.index.Close()
}
