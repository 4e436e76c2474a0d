// Package document persists indexed documents as hashes inside a collection
// generation.
package document

import (
	"context"
	"fmt"

	"github.com/kjhmoon/ielts-chat-bot/internal/db"
	"github.com/kjhmoon/ielts-chat-bot/internal/domain"
	"github.com/kjhmoon/ielts-chat-bot/internal/repository/collection"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	SearchCount(ctx context.Context, index string) (int, error)
}

// Repo implements document persistence for the index builder.
type Repo struct {
	store     store
	vectorDim int
}

// New creates a document repository.
func New(s store, vectorDim int) *Repo {
	return &Repo{store: s, vectorDim: vectorDim}
}

// BatchUpsert writes a batch of documents into a generation with one
// pipelined HSET round trip. Every vector must match the configured
// dimension; a mismatch fails the whole batch before anything is written.
func (r *Repo) BatchUpsert(ctx context.Context, gen collection.Generation, docs []domain.IndexedDocument) error {
	if len(docs) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(docs))
	for i := range docs {
		doc := &docs[i]
		if len(doc.Vector) != r.vectorDim {
			return fmt.Errorf("document %s: got dim %d, want %d: %w",
				doc.ID, len(doc.Vector), r.vectorDim, domain.ErrVectorDimMismatch)
		}
		items = append(items, db.HashSetItem{
			Key:    gen.DocKey(doc.ID),
			Fields: buildHash(doc),
		})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset batch of %d: %w", len(items), err)
	}
	return nil
}

// Count returns the number of documents behind an index name or alias.
func (r *Repo) Count(ctx context.Context, index string) (int, error) {
	n, err := r.store.SearchCount(ctx, index)
	if err != nil {
		return 0, fmt.Errorf("search count %s: %w", index, err)
	}
	return n, nil
}

// buildHash lays out one document as hash fields. Metadata goes first so the
// reserved vector and content fields can never be shadowed by it.
func buildHash(doc *domain.IndexedDocument) map[string]string {
	fields := make(map[string]string, len(doc.Metadata)+2)
	for k, v := range doc.Metadata {
		fields[k] = v
	}
	fields["content"] = doc.Content
	fields["vector"] = string(db.VectorBytes(doc.Vector))
	return fields
}
