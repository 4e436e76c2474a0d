package search

import (
	"context"
	"errors"
	"testing"

	"github.com/kjhmoon/ielts-chat-bot/internal/db"
	"github.com/kjhmoon/ielts-chat-bot/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func TestSearchKNNQueriesAlias(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)

	var got *db.KNNQuery
	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		got = q
		return &db.SearchResult{}, nil
	}

	_, err := repo.SearchKNN(context.Background(), domain.CollectionFAQ, []float32{0.1, 0.2}, 10)
	if err != nil {
		t.Fatalf("SearchKNN() unexpected error: %v", err)
	}

	if got.IndexName != "ielts:faq" {
		t.Errorf("query index = %q, want alias ielts:faq", got.IndexName)
	}
	if got.K != 10 {
		t.Errorf("query K = %d, want 10", got.K)
	}
}

func TestSearchKNNParsesEntries(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)

	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{
			Total: 1,
			Entries: []db.SearchEntry{
				{
					Key:   "ielts:faq:1700000000000:faq_001_0",
					Score: 0.93,
					Fields: map[string]string{
						"content":        "Q: 환불은 어떻게 받나요?\nA: 개강 전 전액 환불이 가능합니다.",
						"vector":         "\x00\x00\x80?",
						"__vector_score": "0.07",
						"source":         "faq",
						"category":       "환불",
					},
				},
			},
		}, nil
	}

	docs, err := repo.SearchKNN(context.Background(), domain.CollectionFAQ, []float32{1}, 10)
	if err != nil {
		t.Fatalf("SearchKNN() unexpected error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d docs, want 1", len(docs))
	}

	doc := docs[0]
	if doc.ID != "faq_001_0" {
		t.Errorf("ID = %q, want faq_001_0", doc.ID)
	}
	if doc.Score != 0.93 {
		t.Errorf("Score = %v", doc.Score)
	}
	if doc.Content == "" {
		t.Error("Content is empty")
	}
	if _, ok := doc.Metadata["vector"]; ok {
		t.Error("raw vector leaked into metadata")
	}
	if _, ok := doc.Metadata["__vector_score"]; ok {
		t.Error("score field leaked into metadata")
	}
	if doc.Metadata["category"] != "환불" {
		t.Errorf("metadata category = %q", doc.Metadata["category"])
	}
}

func TestSearchKNNEmptyResult(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)

	docs, err := repo.SearchKNN(context.Background(), domain.CollectionTimetable, []float32{1}, 10)
	if err != nil {
		t.Fatalf("SearchKNN() unexpected error: %v", err)
	}
	if docs != nil {
		t.Errorf("got %v, want nil for empty result", docs)
	}
}

func TestSearchKNNIndexMissing(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)

	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return nil, db.ErrIndexNotFound
	}

	_, err := repo.SearchKNN(context.Background(), domain.CollectionFAQ, []float32{1}, 10)
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("SearchKNN() error = %v, want ErrIndexNotFound", err)
	}
}
