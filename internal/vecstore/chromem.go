package vecstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ahvonen/notesmith/internal/embeddings"
)

const (
	collectionName = "notes"
	snapshotFile   = "vectors.gob.gz"
)

// ChromemStore implements Store using chromem-go, an embedded vector
// database with gob snapshot persistence.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
}

// NewChromemStore creates an in-memory store. The embedder is only
// invoked for query texts; indexed records carry precomputed embeddings.
func NewChromemStore(embedder embeddings.Embedder) (*ChromemStore, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("vecstore: create collection: %w", err)
	}

	return &ChromemStore{
		db:         db,
		collection: col,
		embedFunc:  ef,
	}, nil
}

func (s *ChromemStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(records))
	for i, rec := range records {
		meta := map[string]string{
			"doc_id": rec.DocID,
			"seq":    strconv.Itoa(rec.Seq),
		}
		for k, v := range rec.Meta {
			meta[k] = v
		}
		docs[i] = chromem.Document{
			ID:        rec.ChunkID,
			Content:   rec.Text,
			Embedding: rec.Embedding,
			Metadata:  meta,
		}
	}

	return s.collection.AddDocuments(ctx, docs, 1)
}

func (s *ChromemStore) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		return nil, nil
	}

	// chromem-go requires nResults <= collection size.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := s.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vecstore: query: %w", err)
	}

	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{
			ChunkID:    r.ID,
			DocID:      r.Metadata["doc_id"],
			Similarity: r.Similarity,
			Text:       r.Content,
		}
	}
	return hits, nil
}

func (s *ChromemStore) RemoveDocument(ctx context.Context, docID string) error {
	return s.collection.Delete(ctx, map[string]string{"doc_id": docID}, nil)
}

func (s *ChromemStore) RemoveAll(ctx context.Context) error {
	if err := s.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("vecstore: delete collection: %w", err)
	}
	col, err := s.db.GetOrCreateCollection(collectionName, nil, s.embedFunc)
	if err != nil {
		return fmt.Errorf("vecstore: recreate collection: %w", err)
	}
	s.collection = col
	return nil
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

func (s *ChromemStore) Persist(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("vecstore: create dir: %w", err)
	}
	return s.db.ExportToFile(filepath.Join(dir, snapshotFile), true, "")
}

func (s *ChromemStore) Load(dir string) error {
	path := filepath.Join(dir, snapshotFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := s.db.ImportFromFile(path, ""); err != nil {
		return fmt.Errorf("vecstore: import snapshot: %w", err)
	}

	// Re-acquire the collection reference after import.
	col := s.db.GetCollection(collectionName, s.embedFunc)
	if col == nil {
		return fmt.Errorf("vecstore: collection %q not found after import", collectionName)
	}
	s.collection = col
	return nil
}
