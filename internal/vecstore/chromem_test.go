package vecstore

import (
	"context"
	"math"
	"strings"
	"testing"
)

// wordEmbedder produces tiny deterministic embeddings from marker-word
// counts so similarity ordering is predictable in tests.
type wordEmbedder struct{}

var markers = []string{"cat", "dog", "bird", "fish"}

func embedText(text string) []float32 {
	vec := make([]float32, len(markers))
	lower := strings.ToLower(text)
	for i, w := range markers {
		vec[i] = float32(strings.Count(lower, w))
	}
	// Normalize; all-zero vectors get a stable fallback direction.
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[len(vec)-1] = 1
		return vec
	}
	n := float32(math.Sqrt(norm))
	for i := range vec {
		vec[i] /= n
	}
	return vec
}

func (wordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embedText(t)
	}
	return out, nil
}

func (wordEmbedder) Dimensions() int { return len(markers) }
func (wordEmbedder) Name() string    { return "word-test" }

func record(chunkID, docID, text string) Record {
	return Record{
		ChunkID:   chunkID,
		DocID:     docID,
		Text:      text,
		Embedding: embedText(text),
	}
}

func newStore(t *testing.T) *ChromemStore {
	t.Helper()
	store, err := NewChromemStore(wordEmbedder{})
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	return store
}

func TestSearchOrdersBySimilarity(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	err := store.Upsert(ctx, []Record{
		record("a#0000", "a", "cat cat cat"),
		record("b#0000", "b", "cat dog"),
		record("c#0000", "c", "fish only"),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	hits, err := store.Search(ctx, "cat", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].DocID != "a" {
		t.Errorf("best hit = %s, want a", hits[0].DocID)
	}
	if hits[0].Similarity < hits[1].Similarity {
		t.Error("similarities not descending")
	}
}

func TestSearchEmptyStore(t *testing.T) {
	store := newStore(t)
	hits, err := store.Search(context.Background(), "cat", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if hits != nil {
		t.Errorf("expected nil, got %v", hits)
	}
}

func TestUpsertReplacesByChunkID(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	if err := store.Upsert(ctx, []Record{record("a#0000", "a", "cat")}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := store.Upsert(ctx, []Record{record("a#0000", "a", "dog")}); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if store.Count() != 1 {
		t.Errorf("count = %d, want 1", store.Count())
	}
}

func TestRemoveDocument(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	err := store.Upsert(ctx, []Record{
		record("a#0000", "a", "cat"),
		record("a#0001", "a", "more cat"),
		record("b#0000", "b", "dog"),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := store.RemoveDocument(ctx, "a"); err != nil {
		t.Fatalf("RemoveDocument: %v", err)
	}
	if store.Count() != 1 {
		t.Errorf("count = %d, want 1", store.Count())
	}

	hits, err := store.Search(ctx, "cat", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, h := range hits {
		if h.DocID == "a" {
			t.Errorf("removed document still returned: %v", h)
		}
	}
}

func TestRemoveAll(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	if err := store.Upsert(ctx, []Record{record("a#0000", "a", "cat")}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := store.RemoveAll(ctx); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("count = %d, want 0", store.Count())
	}

	// Store must remain usable after a wipe.
	if err := store.Upsert(ctx, []Record{record("b#0000", "b", "dog")}); err != nil {
		t.Fatalf("Upsert after RemoveAll: %v", err)
	}
}

func TestPersistAndLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store := newStore(t)
	err := store.Upsert(ctx, []Record{
		record("a#0000", "a", "cat"),
		record("b#0000", "b", "dog"),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := store.Persist(dir); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	restored := newStore(t)
	if err := restored.Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if restored.Count() != 2 {
		t.Errorf("count after load = %d, want 2", restored.Count())
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	store := newStore(t)
	if err := store.Load(t.TempDir()); err != nil {
		t.Fatalf("Load of empty dir should not fail: %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("count = %d", store.Count())
	}
}
