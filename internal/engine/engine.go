// Package engine ties the scanner, ledger, indexes, and clients together:
// it orchestrates incremental sync and answers hybrid queries.
package engine

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ahvonen/notesmith/internal/chunker"
	"github.com/ahvonen/notesmith/internal/db"
	"github.com/ahvonen/notesmith/internal/embeddings"
	"github.com/ahvonen/notesmith/internal/ledger"
	"github.com/ahvonen/notesmith/internal/lexical"
	"github.com/ahvonen/notesmith/internal/llm"
	"github.com/ahvonen/notesmith/internal/notes"
	"github.com/ahvonen/notesmith/internal/vecstore"
)

// Ranking defaults, from the original tuning.
const (
	DefaultCandidatePool  = 50
	DefaultRRFK           = 60
	DefaultHalfLifeDays   = 30.0
	DefaultMaxConcurrency = 4
)

// Options configures an Engine. Zero values fall back to the defaults
// above; Provider may be nil, which disables answer generation.
type Options struct {
	Scanner  *notes.Scanner
	Splitter *chunker.Splitter
	DB       *db.DB
	Vectors  vecstore.Store
	Embedder embeddings.Embedder
	Provider llm.Provider
	Logger   zerolog.Logger

	ChatModel        string
	DataDir          string
	NotesDirs        []string
	APIKeyConfigured bool
	BM25K1           float64
	BM25B            float64
	CandidatePool    int
	RRFK             int
	HalfLifeDays     float64
	MaxConcurrency   int
}

// Engine is the sync orchestrator and hybrid query engine. Queries are safe
// to run concurrently; sync is single-writer.
type Engine struct {
	scanner  *notes.Scanner
	splitter *chunker.Splitter
	db       *db.DB
	ledger   *ledger.Store
	lexical  *lexical.Index
	vectors  vecstore.Store
	embedder embeddings.Embedder
	provider llm.Provider
	log      zerolog.Logger

	chatModel        string
	dataDir          string
	notesDirs        []string
	apiKeyConfigured bool
	candidatePool    int
	rrfK             int
	halfLifeDays     float64
	maxConcurrency   int

	syncMu   sync.Mutex
	progress func(done, total int)
}

// New assembles an Engine from its parts.
func New(opts Options) *Engine {
	if opts.Splitter == nil {
		opts.Splitter = chunker.New(chunker.DefaultChunkSize, chunker.DefaultOverlap)
	}
	if opts.CandidatePool <= 0 {
		opts.CandidatePool = DefaultCandidatePool
	}
	if opts.RRFK <= 0 {
		opts.RRFK = DefaultRRFK
	}
	if opts.HalfLifeDays <= 0 {
		opts.HalfLifeDays = DefaultHalfLifeDays
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}

	return &Engine{
		scanner:          opts.Scanner,
		splitter:         opts.Splitter,
		db:               opts.DB,
		ledger:           ledger.NewStore(opts.DB),
		lexical:          lexical.NewIndex(opts.DB, opts.BM25K1, opts.BM25B),
		vectors:          opts.Vectors,
		embedder:         opts.Embedder,
		provider:         opts.Provider,
		log:              opts.Logger,
		chatModel:        opts.ChatModel,
		dataDir:          opts.DataDir,
		notesDirs:        opts.NotesDirs,
		apiKeyConfigured: opts.APIKeyConfigured,
		candidatePool:    opts.CandidatePool,
		rrfK:             opts.RRFK,
		halfLifeDays:     opts.HalfLifeDays,
		maxConcurrency:   opts.MaxConcurrency,
	}
}

// SetProgressFunc installs a callback invoked after each document is
// processed during sync. Used by the CLI progress bar.
func (e *Engine) SetProgressFunc(fn func(done, total int)) {
	e.progress = fn
}

func infoFromRecord(rec ledger.Record) DocumentInfo {
	return DocumentInfo{
		DocID:     rec.ID,
		Title:     rec.Title,
		Path:      rec.Path,
		Tags:      rec.Tags,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func csvTags(tags []string) string {
	return strings.Join(tags, ",")
}

func parseIntOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseTimeOr(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
