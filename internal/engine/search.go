package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// excerptRunes caps how much of the best chunk each result carries.
const excerptRunes = 500

// Search runs one hybrid query: BM25 and vector candidates fused with
// Reciprocal Rank Fusion, decayed by document age, filtered, grouped to
// one result per document, best first. An empty query returns no results;
// a non-positive TopK is a QueryError.
func (e *Engine) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	if req.TopK <= 0 {
		return nil, &QueryError{Reason: fmt.Sprintf("top_k must be positive, got %d", req.TopK)}
	}
	filter, err := buildFilter(req, time.Now())
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return []SearchResult{}, nil
	}

	lexHits, err := e.lexical.Search(ctx, query, e.candidatePool)
	if err != nil {
		return nil, fmt.Errorf("engine: lexical search: %w", err)
	}
	vecHits, err := e.vectors.Search(ctx, query, e.candidatePool)
	if err != nil {
		return nil, fmt.Errorf("engine: vector search: %w", err)
	}

	// Track chunk text and owning document across both candidate lists.
	chunkText := make(map[string]string, len(lexHits)+len(vecHits))
	chunkDoc := make(map[string]string, len(lexHits)+len(vecHits))

	lexIDs := make([]string, len(lexHits))
	for i, h := range lexHits {
		lexIDs[i] = h.ChunkID
		chunkText[h.ChunkID] = h.Text
		chunkDoc[h.ChunkID] = h.DocID
	}
	vecIDs := make([]string, len(vecHits))
	for i, h := range vecHits {
		vecIDs[i] = h.ChunkID
		chunkText[h.ChunkID] = h.Text
		chunkDoc[h.ChunkID] = h.DocID
	}

	fused := rrfFuse(e.rrfK, lexIDs, vecIDs)

	// Keep the best-scoring chunk per document; ties go to the lower
	// chunk id so the result set is deterministic.
	type bestChunk struct {
		chunkID string
		score   float64
	}
	best := make(map[string]bestChunk)
	for chunkID, score := range fused {
		docID := chunkDoc[chunkID]
		cur, ok := best[docID]
		if !ok || score > cur.score || (score == cur.score && chunkID < cur.chunkID) {
			best[docID] = bestChunk{chunkID: chunkID, score: score}
		}
	}

	now := time.Now()
	results := make([]SearchResult, 0, len(best))
	for docID, b := range best {
		rec, ok, err := e.ledger.Get(ctx, docID)
		if err != nil {
			return nil, fmt.Errorf("engine: resolve %s: %w", docID, err)
		}
		if !ok {
			// Chunk outlived its document; the next sync will clean it up.
			continue
		}
		if !filter.matches(rec) {
			continue
		}

		results = append(results, SearchResult{
			DocID:     rec.ID,
			Title:     rec.Title,
			Excerpt:   excerpt(chunkText[b.chunkID]),
			Score:     b.score * timeDecay(now.Sub(rec.UpdatedAt), e.halfLifeDays),
			Path:      rec.Path,
			Tags:      rec.Tags,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})

	if len(results) > req.TopK {
		results = results[:req.TopK]
	}
	return results, nil
}

// Similar finds documents related to the note at the given path by using
// the note's own text as the query, excluding the note itself.
func (e *Engine) Similar(ctx context.Context, path string, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		return nil, &QueryError{Reason: fmt.Sprintf("top_k must be positive, got %d", topK)}
	}

	doc, err := e.scanner.Read(path)
	if err != nil {
		return nil, fmt.Errorf("engine: read %s: %w", path, err)
	}

	// The opening of a note is usually its most representative part.
	query := doc.Text
	if runes := []rune(query); len(runes) > 1000 {
		query = string(runes[:1000])
	}

	results, err := e.Search(ctx, SearchRequest{Query: query, TopK: topK + 1})
	if err != nil {
		return nil, err
	}

	filtered := results[:0]
	for _, r := range results {
		if r.DocID == doc.ID {
			continue
		}
		filtered = append(filtered, r)
	}
	if len(filtered) > topK {
		filtered = filtered[:topK]
	}
	return filtered, nil
}

// Recent returns the most recently updated documents, newest first.
func (e *Engine) Recent(ctx context.Context, limit int) ([]DocumentInfo, error) {
	records, err := e.ledger.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	infos := make([]DocumentInfo, len(records))
	for i, rec := range records {
		infos[i] = infoFromRecord(rec)
	}
	return infos, nil
}

// Documents lists every indexed document, ordered by id.
func (e *Engine) Documents(ctx context.Context) ([]DocumentInfo, error) {
	records, err := e.ledger.All(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]DocumentInfo, len(records))
	for i, rec := range records {
		infos[i] = infoFromRecord(rec)
	}
	return infos, nil
}

// Stats reports index sizes and the last completed sync.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	docs, err := e.ledger.Count(ctx)
	if err != nil {
		return nil, err
	}
	chunks, err := e.lexical.ChunkCount(ctx)
	if err != nil {
		return nil, err
	}

	s := &Stats{
		Documents: docs,
		Chunks:    chunks,
		Vectors:   e.vectors.Count(),
	}
	if model, ok, err := e.db.GetMeta(ctx, metaEmbeddingModel); err == nil && ok {
		s.EmbeddingModel = model
	}
	if last, ok, err := e.db.GetMeta(ctx, metaLastSync); err == nil && ok {
		s.LastSync = parseTimeOr(last)
	}
	return s, nil
}

// Health reports readiness for the health endpoint.
func (e *Engine) Health(ctx context.Context) (*Health, error) {
	docs, err := e.ledger.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Health{
		Status:           "ok",
		APIKeyConfigured: e.apiKeyConfigured,
		NotesDirectories: e.notesDirs,
		Documents:        docs,
	}, nil
}

// timeDecay halves a score every halfLifeDays of document age. Fresh and
// future-dated documents decay by nothing; the factor approaches but
// never reaches zero.
func timeDecay(age time.Duration, halfLifeDays float64) float64 {
	days := age.Hours() / 24
	if days <= 0 {
		return 1
	}
	return math.Pow(0.5, days/halfLifeDays)
}

// excerpt trims chunk text for display.
func excerpt(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= excerptRunes {
		return text
	}
	return strings.TrimSpace(string(runes[:excerptRunes])) + "…"
}
