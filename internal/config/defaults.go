package config

import (
	"os"
	"path/filepath"
)

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:           defaultDataDir(),
		Provider:          ProviderOpenAI,
		Model:             "gpt-4o-mini",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		MaxConcurrency:    4,
		Chunk: ChunkConfig{
			Size:    512,
			Overlap: 50,
		},
		Search: SearchConfig{
			BM25K1:        1.2,
			BM25B:         0.75,
			RRFK:          60,
			CandidatePool: 50,
			HalfLifeDays:  30,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8787,
		},
	}
}

// DefaultPath returns the default config file location,
// ~/.notesmith/notesmith.yml.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "notesmith.yml")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".notesmith"
	}
	return filepath.Join(home, ".notesmith")
}
