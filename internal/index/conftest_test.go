package index

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/kjhmoon/ielts-chat-bot/internal/corpus"
	"github.com/kjhmoon/ielts-chat-bot/internal/domain"
	colrepo "github.com/kjhmoon/ielts-chat-bot/internal/repository/collection"
)

type mockSource struct {
	structured    map[string][]json.RawMessage
	structuredErr error
	precomputed   map[string][]corpus.Precomputed
}

func (m *mockSource) LoadStructured(collection string) ([]json.RawMessage, error) {
	if m.structuredErr != nil {
		return nil, m.structuredErr
	}
	return m.structured[collection], nil
}

func (m *mockSource) LoadPrecomputed(collection string) ([]corpus.Precomputed, error) {
	return m.precomputed[collection], nil
}

func (m *mockSource) HasPrecomputed(collection string) bool {
	_, ok := m.precomputed[collection]
	return ok
}

type mockCollections struct {
	beginErr   error
	promoteErr error
	prevGen    string

	begun    []string
	promoted []colrepo.Generation
	dropped  []string
}

func (m *mockCollections) Begin(_ context.Context, collection string) (colrepo.Generation, error) {
	if m.beginErr != nil {
		return colrepo.Generation{}, m.beginErr
	}
	m.begun = append(m.begun, collection)
	return colrepo.Generation{Collection: collection, ID: "gen-new"}, nil
}

func (m *mockCollections) Promote(_ context.Context, gen colrepo.Generation) (string, error) {
	if m.promoteErr != nil {
		return "", m.promoteErr
	}
	m.promoted = append(m.promoted, gen)
	return m.prevGen, nil
}

func (m *mockCollections) DropGeneration(_ context.Context, _, genID string) error {
	m.dropped = append(m.dropped, genID)
	return nil
}

type mockDocuments struct {
	upsertErr  error
	upsertErrs map[int]error // per-call failures, 0-based

	calls   int
	batches [][]domain.IndexedDocument
}

func (m *mockDocuments) BatchUpsert(_ context.Context, _ colrepo.Generation, docs []domain.IndexedDocument) error {
	call := m.calls
	m.calls++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if err, ok := m.upsertErrs[call]; ok {
		return err
	}
	m.batches = append(m.batches, docs)
	return nil
}

func (m *mockDocuments) Count(_ context.Context, _ string) (int, error) {
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n, nil
}

type mockBatchEmbedder struct {
	dim   int
	err   error
	calls int
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		vec := make([]float32, m.dim)
		vec[0] = float32(i + 1)
		embeddings[i] = vec
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings}, nil
}

func newTestBuilder(t *testing.T) (*Builder, *mockSource, *mockCollections, *mockDocuments, *mockBatchEmbedder) {
	t.Helper()
	src := &mockSource{
		structured:  map[string][]json.RawMessage{},
		precomputed: map[string][]corpus.Precomputed{},
	}
	cols := &mockCollections{}
	docs := &mockDocuments{upsertErrs: map[int]error{}}
	emb := &mockBatchEmbedder{dim: 4}
	b := NewBuilder(src, cols, docs, emb, zap.NewNop())
	return b, src, cols, docs, emb
}

func faqRecord(q, a string) json.RawMessage {
	rec := map[string]any{
		"meta_data":       map[string]any{"doc_id": "faq_001"},
		"search_criteria": map[string]any{"keywords": []string{"환불"}},
		"faq_details":     map[string]any{"question_summary": q, "answer_summary": a},
	}
	data, _ := json.Marshal(rec)
	return data
}
