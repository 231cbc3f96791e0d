package engine

import (
	"time"
)

// SearchRequest carries one hybrid query. TimeRange takes a named window
// ("today", "week", "month", "year"); StartDate/EndDate take explicit
// ISO dates (2006-01-02) and win over TimeRange when set.
type SearchRequest struct {
	Query     string   `json:"query"`
	TopK      int      `json:"top_k"`
	TimeRange string   `json:"time_range,omitempty"`
	StartDate string   `json:"start_date,omitempty"`
	EndDate   string   `json:"end_date,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// SearchResult is one ranked document. Excerpt comes from the document's
// best-scoring chunk.
type SearchResult struct {
	DocID     string    `json:"doc_id"`
	Title     string    `json:"title"`
	Excerpt   string    `json:"excerpt"`
	Score     float64   `json:"score"`
	Path      string    `json:"path"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentInfo is a document's ledger metadata, without content.
type DocumentInfo struct {
	DocID     string    `json:"doc_id"`
	Title     string    `json:"title"`
	Path      string    `json:"path"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SyncFailure records one document that could not be indexed during a run.
type SyncFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// SyncResult summarizes one sync run.
type SyncResult struct {
	RunID    string        `json:"run_id"`
	Scanned  int           `json:"scanned"`
	Added    int           `json:"added"`
	Updated  int           `json:"updated"`
	Deleted  int           `json:"deleted"`
	Chunks   int           `json:"chunks_indexed"`
	Failures []SyncFailure `json:"failures,omitempty"`
	Elapsed  time.Duration `json:"-"`
}

// Source is one retrieved note cited by a generated answer.
type Source struct {
	Index   int     `json:"index"`
	DocID   string  `json:"doc_id"`
	Title   string  `json:"title"`
	Path    string  `json:"path"`
	Excerpt string  `json:"excerpt"`
	Score   float64 `json:"score"`
}

// Answer is a generated response grounded in retrieved notes.
type Answer struct {
	Content string   `json:"content"`
	Sources []Source `json:"sources"`
	Model   string   `json:"model,omitempty"`
}

// Stats reports index sizes.
type Stats struct {
	Documents      int       `json:"documents"`
	Chunks         int       `json:"chunks"`
	Vectors        int       `json:"vectors"`
	EmbeddingModel string    `json:"embedding_model,omitempty"`
	LastSync       time.Time `json:"last_sync,omitempty"`
}

// Health reports whether the engine is ready to serve queries.
type Health struct {
	Status           string   `json:"status"`
	APIKeyConfigured bool     `json:"api_key_configured"`
	NotesDirectories []string `json:"notes_directories"`
	Documents        int      `json:"documents"`
}
