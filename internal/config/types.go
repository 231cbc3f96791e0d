package config

// ProviderType identifies a model backend.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level notesmith configuration, corresponding to
// notesmith.yml.
type Config struct {
	NotesDirs []string `yaml:"notes_dirs" koanf:"notes_dirs"`
	DataDir   string   `yaml:"data_dir" koanf:"data_dir"`
	Include   []string `yaml:"include" koanf:"include"`
	Exclude   []string `yaml:"exclude" koanf:"exclude"`

	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	BaseURL           string       `yaml:"base_url" koanf:"base_url"`

	MaxConcurrency int `yaml:"max_concurrency" koanf:"max_concurrency"`

	Chunk  ChunkConfig  `yaml:"chunk" koanf:"chunk"`
	Search SearchConfig `yaml:"search" koanf:"search"`
	Server ServerConfig `yaml:"server" koanf:"server"`
}

// ChunkConfig tunes the splitter.
type ChunkConfig struct {
	Size    int `yaml:"size" koanf:"size"`
	Overlap int `yaml:"overlap" koanf:"overlap"`
}

// SearchConfig tunes ranking. The defaults are documented working values,
// not claimed optima.
type SearchConfig struct {
	BM25K1        float64 `yaml:"bm25_k1" koanf:"bm25_k1"`
	BM25B         float64 `yaml:"bm25_b" koanf:"bm25_b"`
	RRFK          int     `yaml:"rrf_k" koanf:"rrf_k"`
	CandidatePool int     `yaml:"candidate_pool" koanf:"candidate_pool"`
	HalfLifeDays  float64 `yaml:"half_life_days" koanf:"half_life_days"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host" koanf:"host"`
	Port int    `yaml:"port" koanf:"port"`
}
