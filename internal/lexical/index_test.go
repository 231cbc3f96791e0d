package lexical

import (
	"context"
	"reflect"
	"testing"

	"github.com/ahvonen/notesmith/internal/chunker"
	"github.com/ahvonen/notesmith/internal/db"
)

func newIndex(t *testing.T) *Index {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewIndex(database, 0, -1)
}

func chunkOf(docID string, seq int, text string) chunker.Chunk {
	return chunker.Chunk{DocID: docID, Seq: seq, Start: 0, End: len(text), Text: text}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Hello, World!", []string{"hello", "world"}},
		{"BM25-style scoring (v2)", []string{"bm25", "style", "scoring", "v2"}},
		{"", nil},
		{"   \n\t ", nil},
	}
	for _, tt := range tests {
		got := Tokenize(tt.in)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSearchRanksFrequencyAndRarity(t *testing.T) {
	ctx := context.Background()
	ix := newIndex(t)

	err := ix.Upsert(ctx, []chunker.Chunk{
		chunkOf("a", 0, "roadmap roadmap roadmap roadmap roadmap planning notes"),
		chunkOf("b", 0, "roadmap mentioned once in a longer rambling note about lunch"),
		chunkOf("c", 0, "nothing relevant here at all"),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	hits, err := ix.Search(ctx, "roadmap", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].DocID != "a" || hits[1].DocID != "b" {
		t.Errorf("order = %s, %s; want a, b", hits[0].DocID, hits[1].DocID)
	}
	if hits[0].Score <= hits[1].Score {
		t.Errorf("scores not descending: %v vs %v", hits[0].Score, hits[1].Score)
	}
}

func TestSearchDeterministicTieBreak(t *testing.T) {
	ctx := context.Background()
	ix := newIndex(t)

	// Identical chunks score identically; order must fall back to chunk id.
	err := ix.Upsert(ctx, []chunker.Chunk{
		chunkOf("b", 0, "identical text"),
		chunkOf("a", 0, "identical text"),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	for i := 0; i < 5; i++ {
		hits, err := ix.Search(ctx, "identical", 10)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(hits) != 2 || hits[0].ChunkID != "a#0000" || hits[1].ChunkID != "b#0000" {
			t.Fatalf("run %d: unexpected order %v", i, hits)
		}
	}
}

func TestUpsertReplacesByChunkID(t *testing.T) {
	ctx := context.Background()
	ix := newIndex(t)

	if err := ix.Upsert(ctx, []chunker.Chunk{chunkOf("a", 0, "old unique zebra")}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := ix.Upsert(ctx, []chunker.Chunk{chunkOf("a", 0, "new shiny giraffe")}); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	hits, err := ix.Search(ctx, "zebra", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("stale postings survived: %v", hits)
	}

	hits, err = ix.Search(ctx, "giraffe", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("expected new posting, got %v", hits)
	}

	n, _ := ix.ChunkCount(ctx)
	if n != 1 {
		t.Errorf("chunk count = %d, want 1", n)
	}
}

func TestRemoveDocument(t *testing.T) {
	ctx := context.Background()
	ix := newIndex(t)

	err := ix.Upsert(ctx, []chunker.Chunk{
		chunkOf("a", 0, "keep this around"),
		chunkOf("gone", 0, "delete everything about walrus"),
		chunkOf("gone", 1, "more walrus material"),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := ix.RemoveDocument(ctx, "gone"); err != nil {
		t.Fatalf("RemoveDocument: %v", err)
	}

	hits, err := ix.Search(ctx, "walrus", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %v", hits)
	}
	n, _ := ix.ChunkCount(ctx)
	if n != 1 {
		t.Errorf("chunk count = %d, want 1", n)
	}
}

func TestSearchEmptyQueryAndCorpus(t *testing.T) {
	ctx := context.Background()
	ix := newIndex(t)

	hits, err := ix.Search(ctx, "anything", 10)
	if err != nil {
		t.Fatalf("Search on empty corpus: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %v", hits)
	}

	if err := ix.Upsert(ctx, []chunker.Chunk{chunkOf("a", 0, "text")}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	hits, err = ix.Search(ctx, "...", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("punctuation-only query should yield nothing, got %v", hits)
	}
}

func TestSearchLimit(t *testing.T) {
	ctx := context.Background()
	ix := newIndex(t)

	var chunks []chunker.Chunk
	for i := 0; i < 10; i++ {
		chunks = append(chunks, chunkOf("d", i, "common term plus filler"))
	}
	if err := ix.Upsert(ctx, chunks); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	hits, err := ix.Search(ctx, "common", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("limit not applied: got %d hits", len(hits))
	}
}
