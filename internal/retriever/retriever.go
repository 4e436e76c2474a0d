// Package retriever turns a user query into formatted reference context:
// embed the query, run KNN over the collection alias, render the hits.
package retriever

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kjhmoon/ielts-chat-bot/internal/domain"
)

// NoResults is the in-band marker the response composer receives when a
// search legitimately came back empty.
const NoResults = "검색 결과가 없습니다."

// searcher is the consumer interface for vector search (ISP).
type searcher interface {
	SearchKNN(ctx context.Context, collection string, vector []float32, topK int) ([]domain.RetrievedDocument, error)
}

// Retriever embeds queries and searches one collection per call.
type Retriever struct {
	search   searcher
	embedder domain.Embedder
	logger   *zap.Logger
}

// New creates a retriever. The embedder must carry the query-task
// instruction, not the document one.
func New(search searcher, embedder domain.Embedder, logger *zap.Logger) *Retriever {
	return &Retriever{search: search, embedder: embedder, logger: logger}
}

// Retrieve returns the topK most similar documents for a query.
func (r *Retriever) Retrieve(
	ctx context.Context, collection, query string, topK int,
) ([]domain.RetrievedDocument, error) {
	res, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	docs, err := r.search.SearchKNN(ctx, collection, res.Embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}

	r.logger.Debug("Retrieved documents",
		zap.String("collection", collection),
		zap.Int("top_k", topK),
		zap.Int("hits", len(docs)))

	return docs, nil
}

// Format renders retrieved documents as the reference block the answer
// prompt consumes. An empty hit list renders the NoResults marker so the
// model can say so instead of inventing an answer.
func Format(docs []domain.RetrievedDocument) string {
	if len(docs) == 0 {
		return NoResults
	}

	var b strings.Builder
	for i, doc := range docs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Result %d]\n", i+1)
		fmt.Fprintf(&b, "Content: %s\n", doc.Content)
		fmt.Fprintf(&b, "Source: %s", doc.Metadata["source"])
	}
	return b.String()
}
