package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ahvonen/notesmith/internal/chunker"
	"github.com/ahvonen/notesmith/internal/config"
	"github.com/ahvonen/notesmith/internal/db"
	"github.com/ahvonen/notesmith/internal/embeddings"
	"github.com/ahvonen/notesmith/internal/engine"
	"github.com/ahvonen/notesmith/internal/llm"
	"github.com/ahvonen/notesmith/internal/notes"
	"github.com/ahvonen/notesmith/internal/vecstore"
)

// embeddingRequestsPerSecond throttles the embedding client so large
// syncs stay under provider rate limits.
const embeddingRequestsPerSecond = 5.0

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `notesmith init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w\nRun `notesmith init` to reconfigure", cfgFile, err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config,
// wrapped with rate limiting and retries.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}

	var inner embeddings.Embedder
	switch provider {
	case config.ProviderOllama:
		inner = embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, 768, cfg.BaseURL)
	default:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		inner = embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel), cfg.BaseURL)
	}

	return embeddings.WithRetry(inner, embeddingRequestsPerSecond, 0), nil
}

// createLLMProviderFromConfig creates the chat provider, or nil when it is
// not configured. A nil provider disables answer generation but leaves
// search fully functional.
func createLLMProviderFromConfig(cfg *config.Config, log zerolog.Logger) llm.Provider {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model, cfg.BaseURL)
	if err != nil {
		log.Warn().Err(err).Msg("chat provider unavailable; answers disabled")
		return nil
	}
	return provider
}

// buildEngine assembles the full engine from config: database, vector
// store, embedder, and chat provider. The returned cleanup closes the
// database.
func buildEngine(cfg *config.Config, log zerolog.Logger) (*engine.Engine, func(), error) {
	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	cleanup := func() { database.Close() }

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	store, err := vecstore.NewChromemStore(embedder)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("creating vector store: %w", err)
	}
	if err := store.Load(cfg.DataDir); err != nil {
		// The store may not exist yet; sync rebuilds it from the ledger.
		log.Warn().Err(err).Str("dir", cfg.DataDir).Msg("could not load vector store")
	}

	eng := engine.New(engine.Options{
		Scanner:          notes.NewScanner(cfg.NotesDirs, cfg.Include, cfg.Exclude, 0),
		Splitter:         chunker.New(cfg.Chunk.Size, cfg.Chunk.Overlap),
		DB:               database,
		Vectors:          store,
		Embedder:         embedder,
		Provider:         createLLMProviderFromConfig(cfg, log),
		Logger:           log,
		ChatModel:        cfg.Model,
		DataDir:          cfg.DataDir,
		NotesDirs:        cfg.NotesDirs,
		APIKeyConfigured: os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI)) != "",
		BM25K1:           cfg.Search.BM25K1,
		BM25B:            cfg.Search.BM25B,
		CandidatePool:    cfg.Search.CandidatePool,
		RRFK:             cfg.Search.RRFK,
		HalfLifeDays:     cfg.Search.HalfLifeDays,
		MaxConcurrency:   cfg.MaxConcurrency,
	})

	return eng, cleanup, nil
}
