package document

import (
	"context"
	"errors"
	"testing"

	"github.com/kjhmoon/ielts-chat-bot/internal/db"
	"github.com/kjhmoon/ielts-chat-bot/internal/domain"
	"github.com/kjhmoon/ielts-chat-bot/internal/repository/collection"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn   func(ctx context.Context, items []db.HashSetItem) error
	searchCountFn func(ctx context.Context, index string) (int, error)
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) SearchCount(ctx context.Context, index string) (int, error) {
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, index)
	}
	return 0, nil
}

func testGen() collection.Generation {
	return collection.Generation{Collection: domain.CollectionFAQ, ID: "1700000000000"}
}

func TestBatchUpsert(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, 3)

	var got []db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		got = items
		return nil
	}

	docs := []domain.IndexedDocument{
		{
			ID:      "faq_001_0",
			Vector:  []float32{0.1, 0.2, 0.3},
			Content: "Q: 환불은 어떻게 받나요?\nA: 개강 전 전액 환불이 가능합니다.",
			Metadata: map[string]string{
				"source":      "faq",
				"bm25_tokens": "환불 환불 수강취소 수강취소",
			},
		},
	}

	if err := repo.BatchUpsert(context.Background(), testGen(), docs); err != nil {
		t.Fatalf("BatchUpsert() unexpected error: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("HSetMulti received %d items, want 1", len(got))
	}
	item := got[0]
	if item.Key != "ielts:faq:1700000000000:faq_001_0" {
		t.Errorf("doc key = %q", item.Key)
	}
	if item.Fields["source"] != "faq" {
		t.Errorf("source field = %q", item.Fields["source"])
	}
	if item.Fields["content"] == "" {
		t.Error("content field is empty")
	}
	wantVec := string(db.VectorBytes([]float32{0.1, 0.2, 0.3}))
	if item.Fields["vector"] != wantVec {
		t.Error("vector field does not match LE float32 encoding")
	}
}

func TestBatchUpsertDimMismatch(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, 3)

	called := false
	ms.hsetMultiFn = func(_ context.Context, _ []db.HashSetItem) error {
		called = true
		return nil
	}

	docs := []domain.IndexedDocument{
		{ID: "x", Vector: []float32{0.1}, Content: "c"},
	}

	err := repo.BatchUpsert(context.Background(), testGen(), docs)
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("BatchUpsert() error = %v, want ErrVectorDimMismatch", err)
	}
	if called {
		t.Error("BatchUpsert() wrote despite dimension mismatch")
	}
}

func TestBatchUpsertMetadataCannotShadowReservedFields(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, 1)

	var got []db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		got = items
		return nil
	}

	docs := []domain.IndexedDocument{
		{
			ID:       "x",
			Vector:   []float32{1},
			Content:  "real content",
			Metadata: map[string]string{"content": "spoofed", "vector": "spoofed"},
		},
	}

	if err := repo.BatchUpsert(context.Background(), testGen(), docs); err != nil {
		t.Fatalf("BatchUpsert() unexpected error: %v", err)
	}

	if got[0].Fields["content"] != "real content" {
		t.Errorf("content field = %q, metadata shadowed it", got[0].Fields["content"])
	}
	if got[0].Fields["vector"] != string(db.VectorBytes([]float32{1})) {
		t.Error("vector field was shadowed by metadata")
	}
}

func TestBatchUpsertEmpty(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, 3)

	called := false
	ms.hsetMultiFn = func(_ context.Context, _ []db.HashSetItem) error {
		called = true
		return nil
	}

	if err := repo.BatchUpsert(context.Background(), testGen(), nil); err != nil {
		t.Fatalf("BatchUpsert() unexpected error: %v", err)
	}
	if called {
		t.Error("BatchUpsert() wrote an empty batch")
	}
}

func TestCount(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, 3)

	ms.searchCountFn = func(_ context.Context, index string) (int, error) {
		if index != "ielts:faq" {
			t.Errorf("index = %q", index)
		}
		return 42, nil
	}

	n, err := repo.Count(context.Background(), "ielts:faq")
	if err != nil {
		t.Fatalf("Count() unexpected error: %v", err)
	}
	if n != 42 {
		t.Errorf("Count() = %d, want 42", n)
	}
}
