package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ahvonen/notesmith/internal/chunker"
	"github.com/ahvonen/notesmith/internal/embeddings"
	"github.com/ahvonen/notesmith/internal/notes"
	"github.com/ahvonen/notesmith/internal/vecstore"
)

// index_meta keys.
const (
	metaEmbeddingModel = "embedding_model"
	metaEmbeddingDims  = "embedding_dimensions"
	metaLastSync       = "last_sync"
)

// syncJob is one document headed for the indexes.
type syncJob struct {
	doc    notes.Document
	update bool
}

// prepared is a document with its chunks embedded, ready for index writes.
type prepared struct {
	job     syncJob
	chunks  []chunker.Chunk
	records []vecstore.Record
	err     error
}

// Sync reconciles the indexes with the note directories. Only one run may
// execute at a time; a concurrent call returns ErrSyncInProgress. force
// wipes the ledger and both indexes first, re-indexing everything.
//
// Embedding runs on a bounded worker pool; index writes are serialized on
// this goroutine. A document's ledger record is committed only after its
// chunks have landed in both indexes, so a crash mid-run leaves the
// document marked stale and the next run redoes it. Per-document failures
// are collected in the result; a non-retryable embedding error (bad
// credentials) aborts the run.
func (e *Engine) Sync(ctx context.Context, force bool) (*SyncResult, error) {
	if !e.syncMu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer e.syncMu.Unlock()

	start := time.Now()
	res := &SyncResult{RunID: uuid.NewString()}

	if err := e.checkConsistency(ctx, force); err != nil {
		return nil, err
	}

	docs, warnings, err := e.scanner.Scan()
	if err != nil {
		return nil, fmt.Errorf("engine: scan: %w", err)
	}
	res.Scanned = len(docs)
	for _, w := range warnings {
		e.log.Warn().Str("path", w.Path).Err(w.Err).Msg("skipping note")
		res.Failures = append(res.Failures, SyncFailure{Path: w.Path, Reason: w.Err.Error()})
	}

	if force {
		if err := e.vectors.RemoveAll(ctx); err != nil {
			return nil, fmt.Errorf("engine: clear vectors: %w", err)
		}
		if err := e.lexical.RemoveAll(ctx); err != nil {
			return nil, fmt.Errorf("engine: clear lexical index: %w", err)
		}
		if err := e.ledger.Prune(ctx); err != nil {
			return nil, fmt.Errorf("engine: prune ledger: %w", err)
		}
	}

	diff, err := e.ledger.Diff(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("engine: diff: %w", err)
	}

	e.log.Info().
		Str("run_id", res.RunID).
		Int("scanned", res.Scanned).
		Int("to_add", len(diff.ToAdd)).
		Int("to_update", len(diff.ToUpdate)).
		Int("to_delete", len(diff.ToDelete)).
		Bool("force", force).
		Msg("sync started")

	for _, rec := range diff.ToDelete {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := e.removeDocument(ctx, rec.ID); err != nil {
			res.Failures = append(res.Failures, SyncFailure{Path: rec.Path, Reason: err.Error()})
			continue
		}
		res.Deleted++
	}

	jobs := make([]syncJob, 0, len(diff.ToAdd)+len(diff.ToUpdate))
	for _, doc := range diff.ToAdd {
		jobs = append(jobs, syncJob{doc: doc})
	}
	for _, doc := range diff.ToUpdate {
		jobs = append(jobs, syncJob{doc: doc, update: true})
	}

	fatal := e.runJobs(ctx, jobs, res)

	if err := e.vectors.Persist(e.dataDir); err != nil {
		return res, fmt.Errorf("engine: persist vectors: %w", err)
	}
	if err := e.writeMeta(ctx); err != nil {
		return res, err
	}

	res.Elapsed = time.Since(start)
	e.log.Info().
		Str("run_id", res.RunID).
		Int("added", res.Added).
		Int("updated", res.Updated).
		Int("deleted", res.Deleted).
		Int("failures", len(res.Failures)).
		Dur("elapsed", res.Elapsed).
		Msg("sync finished")

	if fatal != nil {
		return res, fatal
	}
	return res, ctx.Err()
}

// runJobs embeds documents on a worker pool and applies index writes
// serially. Returns the first fatal error, or nil.
func (e *Engine) runJobs(ctx context.Context, jobs []syncJob, res *SyncResult) error {
	if len(jobs) == 0 {
		return nil
	}

	jobCh := make(chan syncJob)
	prepCh := make(chan prepared)

	var workers sync.WaitGroup
	for i := 0; i < e.maxConcurrency; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for job := range jobCh {
				prepCh <- e.prepare(ctx, job)
			}
		}()
	}

	go func() {
		defer close(jobCh)
		for _, job := range jobs {
			select {
			case jobCh <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		workers.Wait()
		close(prepCh)
	}()

	var fatal error
	done := 0
	for p := range prepCh {
		done++
		if e.progress != nil {
			e.progress(done, len(jobs))
		}

		if p.err != nil {
			res.Failures = append(res.Failures, SyncFailure{Path: p.job.doc.Path, Reason: p.err.Error()})
			if fatal == nil && isFatalEmbedding(p.err) {
				fatal = fmt.Errorf("engine: embedding service rejected the run: %w", p.err)
			}
			continue
		}
		if fatal != nil || ctx.Err() != nil {
			continue
		}

		if err := e.apply(ctx, p); err != nil {
			res.Failures = append(res.Failures, SyncFailure{Path: p.job.doc.Path, Reason: err.Error()})
			continue
		}
		if p.job.update {
			res.Updated++
		} else {
			res.Added++
		}
		res.Chunks += len(p.chunks)
	}

	return fatal
}

// prepare chunks a document and embeds its chunk texts.
func (e *Engine) prepare(ctx context.Context, job syncJob) prepared {
	doc := job.doc
	chunks := e.splitter.Split(doc.ID, doc.Text)
	if len(chunks) == 0 {
		return prepared{job: job}
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := e.embedder.Embed(ctx, texts)
	if err != nil {
		return prepared{job: job, err: err}
	}
	if len(vectors) != len(chunks) {
		return prepared{job: job, err: fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))}
	}

	records := make([]vecstore.Record, len(chunks))
	for i, c := range chunks {
		records[i] = vecstore.Record{
			ChunkID:   c.ID(),
			DocID:     doc.ID,
			Seq:       c.Seq,
			Text:      c.Text,
			Embedding: vectors[i],
			Meta: map[string]string{
				"path":       doc.Path,
				"title":      doc.Title,
				"tags":       csvTags(doc.Tags),
				"created_at": doc.CreatedAt.UTC().Format(time.RFC3339),
				"updated_at": doc.UpdatedAt.UTC().Format(time.RFC3339),
			},
		}
	}

	return prepared{job: job, chunks: chunks, records: records}
}

// apply writes one prepared document into both indexes and commits its
// ledger record last. Updates remove the old chunks first so a shrunk
// document leaves no orphaned trailing chunks behind.
func (e *Engine) apply(ctx context.Context, p prepared) error {
	doc := p.job.doc

	if p.job.update {
		if err := e.lexical.RemoveDocument(ctx, doc.ID); err != nil {
			return err
		}
		if err := e.vectors.RemoveDocument(ctx, doc.ID); err != nil {
			return err
		}
	}

	if len(p.chunks) > 0 {
		if err := e.lexical.Upsert(ctx, p.chunks); err != nil {
			return err
		}
		if err := e.vectors.Upsert(ctx, p.records); err != nil {
			return err
		}
	}

	return e.ledger.Commit(ctx, doc)
}

// removeDocument takes one document out of both indexes and the ledger.
func (e *Engine) removeDocument(ctx context.Context, docID string) error {
	if err := e.vectors.RemoveDocument(ctx, docID); err != nil {
		return err
	}
	if err := e.lexical.RemoveDocument(ctx, docID); err != nil {
		return err
	}
	return e.ledger.Remove(ctx, docID)
}

// checkConsistency rejects a sync whose configured embedder does not match
// the vectors already in the index. A forced run is exempt since it wipes
// everything anyway.
func (e *Engine) checkConsistency(ctx context.Context, force bool) error {
	if force {
		return nil
	}

	model, ok, err := e.db.GetMeta(ctx, metaEmbeddingModel)
	if err != nil || !ok {
		return err
	}
	dimsStr, _, err := e.db.GetMeta(ctx, metaEmbeddingDims)
	if err != nil {
		return err
	}
	dims := parseIntOr(dimsStr, 0)

	if model != e.embedder.Name() || dims != e.embedder.Dimensions() {
		return &ConsistencyError{
			StoredModel:     model,
			ConfiguredModel: e.embedder.Name(),
			StoredDims:      dims,
			ConfiguredDims:  e.embedder.Dimensions(),
		}
	}
	return nil
}

func (e *Engine) writeMeta(ctx context.Context) error {
	if err := e.db.SetMeta(ctx, metaEmbeddingModel, e.embedder.Name()); err != nil {
		return err
	}
	if err := e.db.SetMeta(ctx, metaEmbeddingDims, strconv.Itoa(e.embedder.Dimensions())); err != nil {
		return err
	}
	return e.db.SetMeta(ctx, metaLastSync, time.Now().UTC().Format(time.RFC3339))
}

// isFatalEmbedding reports whether an embedding failure should abort the
// whole run rather than just fail one document.
func isFatalEmbedding(err error) bool {
	var svcErr *embeddings.ServiceError
	if errors.As(err, &svcErr) {
		return !svcErr.Retryable
	}
	return false
}
