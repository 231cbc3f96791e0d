package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/ahvonen/notesmith/internal/db"
	"github.com/ahvonen/notesmith/internal/notes"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func doc(id, fingerprint string) notes.Document {
	return notes.Document{
		ID:          id,
		Path:        "/notes/" + id + ".md",
		Title:       id,
		Fingerprint: fingerprint,
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestDiff(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	if err := store.Commit(ctx, doc("a", "f1")); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := store.Commit(ctx, doc("b", "f2")); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// a unchanged, b edited, c new, and the record for b's sibling d is gone.
	if err := store.Commit(ctx, doc("d", "f4")); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	scanned := []notes.Document{doc("a", "f1"), doc("b", "f2-changed"), doc("c", "f3")}
	diff, err := store.Diff(ctx, scanned)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	if len(diff.ToAdd) != 1 || diff.ToAdd[0].ID != "c" {
		t.Errorf("ToAdd = %v", diff.ToAdd)
	}
	if len(diff.ToUpdate) != 1 || diff.ToUpdate[0].ID != "b" {
		t.Errorf("ToUpdate = %v", diff.ToUpdate)
	}
	if len(diff.ToDelete) != 1 || diff.ToDelete[0].ID != "d" {
		t.Errorf("ToDelete = %v", diff.ToDelete)
	}
}

func TestDiffEmptyLedger(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	diff, err := store.Diff(ctx, []notes.Document{doc("a", "f1")})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(diff.ToAdd) != 1 || len(diff.ToUpdate) != 0 || len(diff.ToDelete) != 0 {
		t.Errorf("unexpected diff: %+v", diff)
	}
}

func TestDiffNoChanges(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	d := doc("a", "f1")
	if err := store.Commit(ctx, d); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	diff, err := store.Diff(ctx, []notes.Document{d})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(diff.ToAdd)+len(diff.ToUpdate)+len(diff.ToDelete) != 0 {
		t.Errorf("expected empty diff, got %+v", diff)
	}
}

func TestCommitOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	d := doc("a", "f1")
	d.Tags = []string{"work"}
	if err := store.Commit(ctx, d); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	d.Fingerprint = "f2"
	d.Title = "renamed"
	if err := store.Commit(ctx, d); err != nil {
		t.Fatalf("second Commit: %v", err)
	}

	rec, ok, err := store.Get(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if rec.Fingerprint != "f2" || rec.Title != "renamed" {
		t.Errorf("record = %+v", rec)
	}
	if len(rec.Tags) != 1 || rec.Tags[0] != "work" {
		t.Errorf("tags = %v", rec.Tags)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestCommitPreservesCreatedAt(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	first := doc("a", "f1")
	if err := store.Commit(ctx, first); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// An edit moves mtime forward; the original created date must survive.
	edited := doc("a", "f2")
	edited.CreatedAt = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	edited.UpdatedAt = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	if err := store.Commit(ctx, edited); err != nil {
		t.Fatalf("second Commit: %v", err)
	}

	rec, ok, err := store.Get(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if !rec.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at = %v, want %v", rec.CreatedAt, first.CreatedAt)
	}
	if !rec.UpdatedAt.Equal(edited.UpdatedAt) {
		t.Errorf("updated_at = %v, want %v", rec.UpdatedAt, edited.UpdatedAt)
	}

	// A frontmatter date is authoritative and does overwrite.
	dated := doc("a", "f3")
	dated.CreatedAt = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	dated.CreatedExplicit = true
	if err := store.Commit(ctx, dated); err != nil {
		t.Fatalf("third Commit: %v", err)
	}

	rec, _, err = store.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !rec.CreatedAt.Equal(dated.CreatedAt) {
		t.Errorf("created_at = %v, want frontmatter date %v", rec.CreatedAt, dated.CreatedAt)
	}
}

func TestRemoveAndPrune(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Commit(ctx, doc(id, "f")); err != nil {
			t.Fatalf("Commit: %v", err)
		}
	}

	if err := store.Remove(ctx, "b"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "b"); ok {
		t.Error("b should be gone")
	}

	if err := store.Prune(ctx); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	n, _ := store.Count(ctx)
	if n != 0 {
		t.Errorf("count after prune = %d", n)
	}
}

func TestRecentOrder(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	old := doc("old", "f")
	old.UpdatedAt = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	fresh := doc("fresh", "f")
	fresh.UpdatedAt = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	if err := store.Commit(ctx, old); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := store.Commit(ctx, fresh); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	records, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 2 || records[0].ID != "fresh" {
		t.Errorf("records = %v", records)
	}
}
