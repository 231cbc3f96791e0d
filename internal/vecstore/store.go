// Package vecstore provides the nearest-neighbor index over chunk
// embeddings.
package vecstore

import "context"

// Record is one chunk projected into the vector index. Embedding is
// computed at index time by the embedding client; Meta carries enough to
// resolve the owning document without touching disk.
type Record struct {
	ChunkID   string
	DocID     string
	Seq       int
	Text      string
	Embedding []float32
	Meta      map[string]string
}

// Hit pairs a chunk with its similarity to the query embedding.
type Hit struct {
	ChunkID    string
	DocID      string
	Similarity float32
	Text       string
}

// Store defines the vector index operations used by the sync orchestrator
// and the query engine.
type Store interface {
	// Upsert adds or replaces records by chunk id.
	Upsert(ctx context.Context, records []Record) error

	// Search embeds the query text and returns up to limit chunks by
	// descending similarity.
	Search(ctx context.Context, query string, limit int) ([]Hit, error)

	// RemoveDocument deletes every record belonging to a document.
	RemoveDocument(ctx context.Context, docID string) error

	// RemoveAll clears the index.
	RemoveAll(ctx context.Context) error

	// Count returns the number of stored records.
	Count() int

	// Persist saves the index under the given directory.
	Persist(dir string) error

	// Load restores the index from the given directory. A missing snapshot
	// is not an error; the store simply starts empty.
	Load(dir string) error
}
