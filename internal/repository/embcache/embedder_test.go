package embcache

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rescuelink/emsearch/internal/domain"
)

type stubEmbedder struct {
	calls int
	err   error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	s.calls++
	if s.err != nil {
		return domain.EmbeddingResult{}, s.err
	}
	return domain.EmbeddingResult{
		Embedding:   []float32{float32(len(text)), 1.0},
		TotalTokens: 5,
	}, nil
}

func TestCachedEmbedder_HitSkipsProvider(t *testing.T) {
	inner := &stubEmbedder{}
	emb := New(inner, 10, nil)

	first, err := emb.Embed(context.Background(), "epinephrine dose")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := emb.Embed(context.Background(), "epinephrine dose")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("provider calls = %d, want 1", inner.calls)
	}
	if len(second.Embedding) != len(first.Embedding) {
		t.Fatalf("cached vector differs: %v vs %v", second.Embedding, first.Embedding)
	}
	if second.TotalTokens != 0 {
		t.Errorf("cache hit should report 0 tokens, got %d", second.TotalTokens)
	}
}

func TestCachedEmbedder_ErrorNotCached(t *testing.T) {
	inner := &stubEmbedder{err: errors.New("provider down")}
	emb := New(inner, 10, nil)

	if _, err := emb.Embed(context.Background(), "q"); err == nil {
		t.Fatal("expected error")
	}

	inner.err = nil
	if _, err := emb.Embed(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("provider calls = %d, want 2 (failure must not be cached)", inner.calls)
	}
}

func TestCachedEmbedder_HitReturnsCopy(t *testing.T) {
	inner := &stubEmbedder{}
	emb := New(inner, 10, nil)

	first, _ := emb.Embed(context.Background(), "text")
	first.Embedding[0] = 999

	second, _ := emb.Embed(context.Background(), "text")
	if second.Embedding[0] == 999 {
		t.Error("mutating a returned vector leaked into the cache")
	}
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newLRU[int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	// Touch "a" so "b" becomes the eviction victim.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be present")
	}

	c.Put("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should have survived")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should be present")
	}
	if c.Len() != 2 {
		t.Errorf("len = %d, want 2", c.Len())
	}
}

func TestLRU_BoundedUnderChurn(t *testing.T) {
	c := newLRU[int](8)
	for i := 0; i < 100; i++ {
		c.Put(fmt.Sprintf("key-%d", i), i)
	}
	if c.Len() != 8 {
		t.Errorf("len = %d, want capacity 8", c.Len())
	}
}
