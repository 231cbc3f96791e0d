// Package lexical implements a BM25 inverted index over note chunks,
// persisted in SQLite alongside the hash ledger.
package lexical

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/ahvonen/notesmith/internal/chunker"
	"github.com/ahvonen/notesmith/internal/db"
)

// Default BM25 tuning constants. K1 controls term-frequency saturation,
// B the strength of chunk-length normalization.
const (
	DefaultK1 = 1.2
	DefaultB  = 0.75
)

// Hit is one scored chunk from a lexical search, ordered best first.
type Hit struct {
	ChunkID string
	DocID   string
	Score   float64
	Text    string
}

// Index stores postings and scores queries with BM25.
type Index struct {
	db *db.DB
	k1 float64
	b  float64
}

// NewIndex creates an Index over the shared database. Non-positive tuning
// values fall back to the defaults.
func NewIndex(database *db.DB, k1, b float64) *Index {
	if k1 <= 0 {
		k1 = DefaultK1
	}
	if b < 0 || b > 1 {
		b = DefaultB
	}
	return &Index{db: database, k1: k1, b: b}
}

// Upsert inserts or replaces the postings for the given chunks. Replacement
// is by chunk id, so re-indexing a document's chunks supersedes the old
// postings in the same slots.
func (ix *Index) Upsert(ctx context.Context, chunks []chunker.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("lexical: begin: %w", err)
	}
	defer tx.Rollback()

	for _, c := range chunks {
		id := c.ID()
		if _, err := tx.ExecContext(ctx, `DELETE FROM postings WHERE chunk_id = ?`, id); err != nil {
			return fmt.Errorf("lexical: clear postings for %s: %w", id, err)
		}

		tokens := Tokenize(c.Text)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (id, doc_id, seq, start_offset, end_offset, text, token_count)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				doc_id = excluded.doc_id,
				seq = excluded.seq,
				start_offset = excluded.start_offset,
				end_offset = excluded.end_offset,
				text = excluded.text,
				token_count = excluded.token_count`,
			id, c.DocID, c.Seq, c.Start, c.End, c.Text, len(tokens))
		if err != nil {
			return fmt.Errorf("lexical: upsert chunk %s: %w", id, err)
		}

		for term, tf := range termCounts(tokens) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO postings (term, chunk_id, tf) VALUES (?, ?, ?)`,
				term, id, tf); err != nil {
				return fmt.Errorf("lexical: insert posting %q/%s: %w", term, id, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("lexical: commit: %w", err)
	}
	return nil
}

// RemoveDocument deletes every chunk and posting belonging to a document.
func (ix *Index) RemoveDocument(ctx context.Context, docID string) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("lexical: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM postings WHERE chunk_id IN (SELECT id FROM chunks WHERE doc_id = ?)`,
		docID); err != nil {
		return fmt.Errorf("lexical: remove postings for %s: %w", docID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE doc_id = ?`, docID); err != nil {
		return fmt.Errorf("lexical: remove chunks for %s: %w", docID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("lexical: commit: %w", err)
	}
	return nil
}

// RemoveAll clears the whole index. Used by force rebuilds.
func (ix *Index) RemoveAll(ctx context.Context) error {
	if _, err := ix.db.ExecContext(ctx, `DELETE FROM postings`); err != nil {
		return fmt.Errorf("lexical: clear postings: %w", err)
	}
	if _, err := ix.db.ExecContext(ctx, `DELETE FROM chunks`); err != nil {
		return fmt.Errorf("lexical: clear chunks: %w", err)
	}
	return nil
}

// ChunkCount returns the number of indexed chunks.
func (ix *Index) ChunkCount(ctx context.Context) (int, error) {
	var n int
	if err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("lexical: count: %w", err)
	}
	return n, nil
}

// Search scores the query terms with BM25 and returns up to limit chunks,
// best first. Ties are broken by chunk id ascending so the ordering is
// deterministic. An empty term list yields no hits.
func (ix *Index) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	terms := Tokenize(query)
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}

	totalChunks, avgLen, err := ix.corpusStats(ctx)
	if err != nil {
		return nil, err
	}
	if totalChunks == 0 {
		return nil, nil
	}

	type chunkAcc struct {
		docID string
		text  string
		score float64
	}
	acc := make(map[string]*chunkAcc)

	for term := range termCounts(terms) {
		rows, err := ix.db.QueryContext(ctx, `
			SELECT p.chunk_id, p.tf, c.doc_id, c.token_count, c.text
			FROM postings p JOIN chunks c ON c.id = p.chunk_id
			WHERE p.term = ?`, term)
		if err != nil {
			return nil, fmt.Errorf("lexical: postings for %q: %w", term, err)
		}

		type posting struct {
			chunkID  string
			tf       int
			docID    string
			tokenCnt int
			text     string
		}
		var postings []posting
		for rows.Next() {
			var p posting
			if err := rows.Scan(&p.chunkID, &p.tf, &p.docID, &p.tokenCnt, &p.text); err != nil {
				rows.Close()
				return nil, fmt.Errorf("lexical: scan posting: %w", err)
			}
			postings = append(postings, p)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()

		df := float64(len(postings))
		if df == 0 {
			continue
		}
		idf := math.Log(1 + (float64(totalChunks)-df+0.5)/(df+0.5))

		for _, p := range postings {
			norm := 1 - ix.b + ix.b*float64(p.tokenCnt)/avgLen
			partial := idf * float64(p.tf) * (ix.k1 + 1) / (float64(p.tf) + ix.k1*norm)

			entry, ok := acc[p.chunkID]
			if !ok {
				entry = &chunkAcc{docID: p.docID, text: p.text}
				acc[p.chunkID] = entry
			}
			entry.score += partial
		}
	}

	hits := make([]Hit, 0, len(acc))
	for chunkID, entry := range acc {
		hits = append(hits, Hit{
			ChunkID: chunkID,
			DocID:   entry.docID,
			Score:   entry.score,
			Text:    entry.text,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// corpusStats returns the chunk count and average chunk length in tokens.
func (ix *Index) corpusStats(ctx context.Context) (int, float64, error) {
	var n int
	var avg float64
	err := ix.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(token_count), 0) FROM chunks`).Scan(&n, &avg)
	if err != nil {
		return 0, 0, fmt.Errorf("lexical: corpus stats: %w", err)
	}
	if avg == 0 {
		avg = 1
	}
	return n, avg, nil
}
