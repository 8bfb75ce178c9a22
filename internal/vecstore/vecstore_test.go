package vecstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/TobiSchelling/legisync/internal/database"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := New(db.Conn())
	if err != nil {
		t.Fatalf("failed to create vector store: %v", err)
	}
	return store
}

func TestUpsertOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	meta := Metadata{BillNumber: "HR1", Title: "First title", TextPreview: "preview"}
	if err := store.Upsert(ctx, 1, []float32{1, 0, 0}, meta); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, 1, []float32{0, 1, 0}, meta); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("re-upserting the same bill should not duplicate, count = %d", count)
	}

	// The stored vector is the second one.
	results, err := store.Search(ctx, []float32{0, 1, 0}, 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 || results[0].Score < 0.99 {
		t.Errorf("expected overwritten vector to match query, got %+v", results)
	}
}

func TestSearchRanksByCosineSimilarity(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	vectors := map[int64][]float32{
		1: {1, 0, 0},
		2: {0.9, 0.1, 0},
		3: {0, 0, 1},
	}
	for id, vec := range vectors {
		if err := store.Upsert(ctx, id, vec, Metadata{BillNumber: "HR1"}); err != nil {
			t.Fatalf("upsert %d failed: %v", id, err)
		}
	}

	results, err := store.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].BillID != 1 || results[1].BillID != 2 {
		t.Errorf("unexpected ranking: %+v", results)
	}
}

func TestHas(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ok, err := store.Has(ctx, 42)
	if err != nil {
		t.Fatalf("has failed: %v", err)
	}
	if ok {
		t.Error("empty store should not report a vector")
	}

	if err := store.Upsert(ctx, 42, []float32{1}, Metadata{BillNumber: "S7"}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	ok, err = store.Has(ctx, 42)
	if err != nil {
		t.Fatalf("has failed: %v", err)
	}
	if !ok {
		t.Error("expected vector after upsert")
	}
}
