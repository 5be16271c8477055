package embedding

import (
	"context"
	"math"
	"testing"
)

func TestFakeEmbedder_Deterministic(t *testing.T) {
	e, err := NewFakeEmbedder(16)
	if err != nil {
		t.Fatal(err)
	}

	first, err := e.Embed(context.Background(), "vector stores rank by similarity")
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Embed(context.Background(), "vector stores rank by similarity")
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != 16 {
		t.Fatalf("Expected dimension 16, got %d", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Embeddings differ at index %d", i)
		}
	}
}

func TestFakeEmbedder_Normalized(t *testing.T) {
	e, err := NewFakeEmbedder(16)
	if err != nil {
		t.Fatal(err)
	}

	vec, err := e.Embed(context.Background(), "several distinct tokens here")
	if err != nil {
		t.Fatal(err)
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if norm := math.Sqrt(sum); math.Abs(norm-1.0) > 1e-5 {
		t.Errorf("Expected unit norm, got %f", norm)
	}
}

func TestFakeEmbedder_SimilarTextsScoreHigher(t *testing.T) {
	e, err := NewFakeEmbedder(64)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	query, _ := e.Embed(ctx, "chunking splits documents into pieces")
	related, _ := e.Embed(ctx, "chunking splits large documents")
	unrelated, _ := e.Embed(ctx, "redis caches generated answers")

	if dot(query, related) <= dot(query, unrelated) {
		t.Error("Expected overlapping tokens to score higher than disjoint ones")
	}
}

func TestFakeEmbedder_EmbedBatch(t *testing.T) {
	e, err := NewFakeEmbedder(8)
	if err != nil {
		t.Fatal(err)
	}

	vectors, err := e.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vectors) != 3 {
		t.Fatalf("Expected 3 vectors, got %d", len(vectors))
	}
	for i, vec := range vectors {
		if len(vec) != 8 {
			t.Errorf("Vector %d has dimension %d", i, len(vec))
		}
	}
}

func TestNewFakeEmbedder_InvalidDimension(t *testing.T) {
	if _, err := NewFakeEmbedder(0); err == nil {
		t.Error("Expected error for zero dimension")
	}
	if _, err := NewFakeEmbedder(-5); err == nil {
		t.Error("Expected error for negative dimension")
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
