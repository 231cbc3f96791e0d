package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Provider != ProviderOpenAI {
		t.Errorf("provider = %q", cfg.Provider)
	}
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("embedding model = %q", cfg.EmbeddingModel)
	}
	if cfg.Chunk.Size != 512 || cfg.Chunk.Overlap != 50 {
		t.Errorf("chunk = %+v", cfg.Chunk)
	}
	if cfg.Search.RRFK != 60 || cfg.Search.HalfLifeDays != 30 {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.Server.Port != 8787 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", cfg.Model)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notesmith.yml")
	content := `notes_dirs:
  - /tmp/notes
model: gpt-4o
chunk:
  size: 256
  overlap: 25
server:
  port: 9999
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg.NotesDirs, []string{"/tmp/notes"}) {
		t.Errorf("notes_dirs = %v", cfg.NotesDirs)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("model = %q", cfg.Model)
	}
	if cfg.Chunk.Size != 256 || cfg.Chunk.Overlap != 25 {
		t.Errorf("chunk = %+v", cfg.Chunk)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	// Unset keys keep their defaults.
	if cfg.Search.RRFK != 60 {
		t.Errorf("rrf_k = %d", cfg.Search.RRFK)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("NOTESMITH_MODEL", "gpt-4o")
	t.Setenv("NOTESMITH_DATA_DIR", "/srv/notesmith")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("model = %q", cfg.Model)
	}
	if cfg.DataDir != "/srv/notesmith" {
		t.Errorf("data_dir = %q", cfg.DataDir)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "notesmith.yml")

	cfg := DefaultConfig()
	cfg.NotesDirs = []string{"/home/x/notes"}
	cfg.Model = "gpt-4o"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(loaded.NotesDirs, cfg.NotesDirs) {
		t.Errorf("notes_dirs = %v", loaded.NotesDirs)
	}
	if loaded.Model != "gpt-4o" {
		t.Errorf("model = %q", loaded.Model)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.NotesDirs = []string{"/tmp/notes"}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"no notes dirs", func(c *Config) { c.NotesDirs = nil }, true},
		{"no data dir", func(c *Config) { c.DataDir = "" }, true},
		{"bad provider", func(c *Config) { c.Provider = "grok" }, true},
		{"no model", func(c *Config) { c.Model = "" }, true},
		{"bad embedding provider", func(c *Config) { c.EmbeddingProvider = "x" }, true},
		{"no embedding model", func(c *Config) { c.EmbeddingModel = "" }, true},
		{"negative concurrency", func(c *Config) { c.MaxConcurrency = -1 }, true},
		{"zero chunk size", func(c *Config) { c.Chunk.Size = 0 }, true},
		{"overlap >= size", func(c *Config) { c.Chunk.Overlap = c.Chunk.Size }, true},
		{"bm25 b out of range", func(c *Config) { c.Search.BM25B = 1.5 }, true},
		{"zero rrf k", func(c *Config) { c.Search.RRFK = 0 }, true},
		{"zero candidate pool", func(c *Config) { c.Search.CandidatePool = 0 }, true},
		{"zero half life", func(c *Config) { c.Search.HalfLifeDays = 0 }, true},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	if got := APIKeyEnvVar(ProviderOpenAI); got != "OPENAI_API_KEY" {
		t.Errorf("openai env var = %q", got)
	}
	if got := APIKeyEnvVar(ProviderOllama); got != "" {
		t.Errorf("ollama env var = %q", got)
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" /a/notes , /b/notes ,, ")
	want := []string{"/a/notes", "/b/notes"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitAndTrim = %v, want %v", got, want)
	}
}
