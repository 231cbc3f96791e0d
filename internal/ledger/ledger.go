// Package ledger persists the per-document content fingerprints and
// metadata that make sync incremental and idempotent.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ahvonen/notesmith/internal/db"
	"github.com/ahvonen/notesmith/internal/notes"
)

// Record is one ledger row: the fingerprint and display metadata of a
// document at the time it was last synced.
type Record struct {
	ID          string
	Path        string
	Title       string
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Fingerprint string
	LastSynced  time.Time
}

// Diff partitions freshly scanned documents against the ledger.
type Diff struct {
	ToAdd    []notes.Document
	ToUpdate []notes.Document
	ToDelete []Record
}

// Store reads and writes ledger records in SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates a ledger store over the shared database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Diff compares the scanned document set with the persisted records.
// A document with no record is added, one whose fingerprint differs is
// updated, and a record with no scanned document is deleted. Unchanged
// documents appear in none of the three lists. Diff never reads note
// content; the comparison is fingerprint-only.
func (s *Store) Diff(ctx context.Context, scanned []notes.Document) (Diff, error) {
	records, err := s.All(ctx)
	if err != nil {
		return Diff{}, err
	}

	byID := make(map[string]Record, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}

	var d Diff
	seen := make(map[string]bool, len(scanned))
	for _, doc := range scanned {
		seen[doc.ID] = true
		rec, ok := byID[doc.ID]
		switch {
		case !ok:
			d.ToAdd = append(d.ToAdd, doc)
		case rec.Fingerprint != doc.Fingerprint:
			d.ToUpdate = append(d.ToUpdate, doc)
		}
	}

	for _, r := range records {
		if !seen[r.ID] {
			d.ToDelete = append(d.ToDelete, r)
		}
	}

	return d, nil
}

// Commit persists or overwrites the record for a document. It is called
// only after the document's chunks have landed in both indexes. The stored
// created_at survives updates: a scanned mtime only seeds it on first
// insert, while an explicit frontmatter date always wins.
func (s *Store) Commit(ctx context.Context, doc notes.Document) error {
	tags, err := json.Marshal(tagsOrEmpty(doc.Tags))
	if err != nil {
		return fmt.Errorf("ledger: marshal tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, path, title, tags, created_at, updated_at, fingerprint, last_synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path = excluded.path,
			title = excluded.title,
			tags = excluded.tags,
			created_at = CASE WHEN ? THEN excluded.created_at ELSE documents.created_at END,
			updated_at = excluded.updated_at,
			fingerprint = excluded.fingerprint,
			last_synced = excluded.last_synced`,
		doc.ID, doc.Path, doc.Title, string(tags),
		doc.CreatedAt.UTC(), doc.UpdatedAt.UTC(), doc.Fingerprint, time.Now().UTC(),
		doc.CreatedExplicit,
	)
	if err != nil {
		return fmt.Errorf("ledger: commit %s: %w", doc.ID, err)
	}
	return nil
}

// Remove deletes the record for a document id.
func (s *Store) Remove(ctx context.Context, docID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, docID); err != nil {
		return fmt.Errorf("ledger: remove %s: %w", docID, err)
	}
	return nil
}

// Prune deletes every record. Used by force rebuilds.
func (s *Store) Prune(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("ledger: prune: %w", err)
	}
	return nil
}

// Get fetches a single record by document id.
func (s *Store) Get(ctx context.Context, docID string) (Record, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, title, tags, created_at, updated_at, fingerprint, last_synced
		FROM documents WHERE id = ?`, docID)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("ledger: get %s: %w", docID, err)
	}
	return rec, true, nil
}

// All returns every ledger record, ordered by document id.
func (s *Store) All(ctx context.Context) ([]Record, error) {
	return s.queryRecords(ctx, `
		SELECT id, path, title, tags, created_at, updated_at, fingerprint, last_synced
		FROM documents ORDER BY id`)
}

// Recent returns the most recently updated documents, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryRecords(ctx, `
		SELECT id, path, title, tags, created_at, updated_at, fingerprint, last_synced
		FROM documents ORDER BY updated_at DESC, id LIMIT ?`, limit)
}

// Count returns the number of tracked documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("ledger: count: %w", err)
	}
	return n, nil
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger: query: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("ledger: scan: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var tags string
	err := row.Scan(&rec.ID, &rec.Path, &rec.Title, &tags,
		&rec.CreatedAt, &rec.UpdatedAt, &rec.Fingerprint, &rec.LastSynced)
	if err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(tags), &rec.Tags); err != nil {
		return Record{}, fmt.Errorf("decode tags: %w", err)
	}
	return rec, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
