package memory

import (
	"context"
	"testing"

	"github.com/paperbase/ragd/internal/errdefs"
	"github.com/paperbase/ragd/internal/models"
	"github.com/paperbase/ragd/internal/vectorstore"
)

func entry(id string, vector ...float32) vectorstore.Entry {
	return vectorstore.Entry{
		Chunk:  models.Chunk{ID: id, DocumentID: "doc-1", Text: "chunk " + id},
		Vector: vector,
	}
}

func TestSearch_EmptyStore(t *testing.T) {
	store := New()

	results, err := store.Search(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Expected no error on empty store, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected empty result, got %d hits", len(results))
	}
}

func TestSearch_RanksByScore(t *testing.T) {
	store := New()
	ctx := context.Background()

	err := store.Add(ctx, []vectorstore.Entry{
		entry("a", 1, 0),
		entry("b", 0, 1),
		entry("c", 0.9, 0.1),
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := store.Search(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.ID != "a" {
		t.Errorf("Expected best match 'a', got %q", results[0].Chunk.ID)
	}
	if results[1].Chunk.ID != "c" {
		t.Errorf("Expected second match 'c', got %q", results[1].Chunk.ID)
	}
	if results[0].Score < results[1].Score {
		t.Error("Expected scores in non-increasing order")
	}
	for _, r := range results {
		if r.Score < 0 || r.Score > 1 {
			t.Errorf("Score %f out of [0,1]", r.Score)
		}
	}
}

func TestSearch_FewerEntriesThanTopK(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.Add(ctx, []vectorstore.Entry{entry("only", 1, 0)}); err != nil {
		t.Fatal(err)
	}

	results, err := store.Search(ctx, []float32{1, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("Expected min(k, total)=1 result, got %d", len(results))
	}
}

func TestSearch_NoDuplicateChunks(t *testing.T) {
	store := New()
	ctx := context.Background()

	// The same chunk added twice must surface once.
	if err := store.Add(ctx, []vectorstore.Entry{entry("dup", 1, 0)}); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(ctx, []vectorstore.Entry{entry("dup", 1, 0)}); err != nil {
		t.Fatal(err)
	}

	results, err := store.Search(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("Expected 1 deduplicated result, got %d", len(results))
	}
}

func TestAdd_DimensionMismatch(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.Add(ctx, []vectorstore.Entry{entry("a", 1, 0)}); err != nil {
		t.Fatal(err)
	}

	err := store.Add(ctx, []vectorstore.Entry{entry("b", 1, 0, 0)})
	if err == nil {
		t.Fatal("Expected error for mismatched dimension")
	}
	if !errdefs.IsKind(err, errdefs.KindEmbedding) {
		t.Errorf("Expected embedding error, got %v", err)
	}
}

func TestCount(t *testing.T) {
	store := New()
	ctx := context.Background()

	count, err := store.Count(ctx)
	if err != nil || count != 0 {
		t.Fatalf("Expected empty store, got count=%d err=%v", count, err)
	}

	if err := store.Add(ctx, []vectorstore.Entry{entry("a", 1, 0), entry("b", 0, 1)}); err != nil {
		t.Fatal(err)
	}
	count, err = store.Count(ctx)
	if err != nil || count != 2 {
		t.Fatalf("Expected count=2, got count=%d err=%v", count, err)
	}
}
