// Package search runs KNN queries against a collection alias and shapes the
// raw hash fields back into retrieved documents.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/kjhmoon/ielts-chat-bot/internal/db"
	"github.com/kjhmoon/ielts-chat-bot/internal/domain"
	"github.com/kjhmoon/ielts-chat-bot/internal/repository/collection"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements vector search for the retriever.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchKNN performs a vector similarity search on a collection. Queries go
// through the collection alias, so they always hit the current generation.
func (r *Repo) SearchKNN(
	ctx context.Context, collectionName string, vector []float32, topK int,
) ([]domain.RetrievedDocument, error) {
	q := &db.KNNQuery{
		IndexName: collection.Alias(collectionName),
		Vector:    vector,
		K:         topK,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", collectionName, err)
	}

	return parseKNNResults(sr), nil
}

func parseKNNResults(sr *db.SearchResult) []domain.RetrievedDocument {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	results := make([]domain.RetrievedDocument, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		results = append(results, parseEntryFields(entry))
	}
	return results
}

// parseEntryFields splits one hash entry into content and display metadata.
// The raw vector blob and the score field are storage internals and never
// reach callers.
func parseEntryFields(entry db.SearchEntry) domain.RetrievedDocument {
	var content string
	metadata := make(map[string]string)

	for k, v := range entry.Fields {
		switch k {
		case "content":
			content = v
		case "vector", "__vector_score":
			// storage internals
		default:
			metadata[k] = v
		}
	}

	return domain.RetrievedDocument{
		ID:       docID(entry.Key),
		Score:    entry.Score,
		Content:  content,
		Metadata: metadata,
	}
}

// docID strips the generation prefix ielts:{collection}:{gen}: from a hash key.
func docID(key string) string {
	trimmed := strings.TrimPrefix(key, domain.KeyPrefix)
	if i := strings.Index(trimmed, ":"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if i := strings.Index(trimmed, ":"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return trimmed
}
