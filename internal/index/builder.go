package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kjhmoon/ielts-chat-bot/internal/corpus"
	"github.com/kjhmoon/ielts-chat-bot/internal/domain"
	colrepo "github.com/kjhmoon/ielts-chat-bot/internal/repository/collection"
)

// ErrNothingIndexed aborts a rebuild that produced an empty generation; the
// previous generation stays live.
var ErrNothingIndexed = errors.New("no documents indexed")

const (
	generateBatchSize = 50
	reuseBatchSize    = 100
)

// source provides corpus artifacts for one collection.
type source interface {
	LoadStructured(collection string) ([]json.RawMessage, error)
	LoadPrecomputed(collection string) ([]corpus.Precomputed, error)
	HasPrecomputed(collection string) bool
}

// collections drives the generation lifecycle.
type collections interface {
	Begin(ctx context.Context, collection string) (colrepo.Generation, error)
	Promote(ctx context.Context, gen colrepo.Generation) (string, error)
	DropGeneration(ctx context.Context, collection, genID string) error
}

// documents persists batches into a generation.
type documents interface {
	BatchUpsert(ctx context.Context, gen colrepo.Generation, docs []domain.IndexedDocument) error
	Count(ctx context.Context, index string) (int, error)
}

// Stats summarizes one collection rebuild.
type Stats struct {
	Collection    string
	Generation    string
	Indexed       int
	Skipped       int
	FailedBatches int
	Reused        bool
}

// Builder rebuilds collections from corpus artifacts. Each rebuild writes
// into a fresh generation and promotes it only when at least one document
// landed, so a broken corpus never takes down the live index.
type Builder struct {
	src         source
	collections collections
	documents   documents
	embedder    domain.BatchEmbedder
	logger      *zap.Logger
}

// NewBuilder creates an index builder. The embedder must carry the
// document-task instruction; it is only called for collections without
// precomputed vectors.
func NewBuilder(
	src source,
	cols collections,
	docs documents,
	embedder domain.BatchEmbedder,
	logger *zap.Logger,
) *Builder {
	return &Builder{
		src:         src,
		collections: cols,
		documents:   docs,
		embedder:    embedder,
		logger:      logger,
	}
}

// RebuildAll rebuilds every collection, continuing past per-collection
// failures. It returns the stats of the collections that succeeded and a
// joined error for those that did not.
func (b *Builder) RebuildAll(ctx context.Context) ([]Stats, error) {
	var all []Stats
	var errs []error

	for _, name := range domain.Collections() {
		stats, err := b.Rebuild(ctx, name)
		if err != nil {
			b.logger.Error("Collection rebuild failed",
				zap.String("collection", name), zap.Error(err))
			errs = append(errs, fmt.Errorf("rebuild %s: %w", name, err))
			continue
		}
		all = append(all, stats)
	}

	return all, errors.Join(errs...)
}

// Rebuild rebuilds one collection. Precomputed vectors are reused when a
// db-ready artifact exists; otherwise documents are shaped from the
// structured corpus and embedded in batches.
func (b *Builder) Rebuild(ctx context.Context, collectionName string) (Stats, error) {
	gen, err := b.collections.Begin(ctx, collectionName)
	if err != nil {
		return Stats{}, fmt.Errorf("begin generation: %w", err)
	}

	stats := Stats{Collection: collectionName, Generation: gen.ID}

	if b.src.HasPrecomputed(collectionName) {
		stats.Reused = true
		err = b.ingestPrecomputed(ctx, gen, &stats)
	} else {
		err = b.ingestStructured(ctx, gen, &stats)
	}
	if err == nil && stats.Indexed == 0 {
		err = ErrNothingIndexed
	}
	if err != nil {
		b.abort(ctx, gen)
		return Stats{}, err
	}

	prev, err := b.collections.Promote(ctx, gen)
	if err != nil {
		b.abort(ctx, gen)
		return Stats{}, fmt.Errorf("promote generation %s: %w", gen.ID, err)
	}

	if prev != "" && prev != gen.ID {
		if err := b.collections.DropGeneration(ctx, collectionName, prev); err != nil {
			b.logger.Warn("Failed to drop retired generation",
				zap.String("collection", collectionName),
				zap.String("generation", prev), zap.Error(err))
		}
	}

	if n, err := b.documents.Count(ctx, gen.IndexName()); err == nil {
		b.logger.Info("Collection rebuilt",
			zap.String("collection", collectionName),
			zap.String("generation", gen.ID),
			zap.Int("indexed", stats.Indexed),
			zap.Int("searchable", n),
			zap.Int("skipped", stats.Skipped),
			zap.Int("failed_batches", stats.FailedBatches),
			zap.Bool("reused_vectors", stats.Reused))
	}

	return stats, nil
}

// ingestStructured shapes, embeds, and writes records from the structured
// corpus. Malformed records are skipped; a failed batch is logged and
// skipped without stopping the rest of the build.
func (b *Builder) ingestStructured(ctx context.Context, gen colrepo.Generation, stats *Stats) error {
	records, err := b.src.LoadStructured(gen.Collection)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	if b.embedder == nil {
		return fmt.Errorf("collection %s has no precomputed vectors and no embedder is configured", gen.Collection)
	}

	pending := make([]domain.IndexedDocument, 0, generateBatchSize)
	texts := make([]string, 0, generateBatchSize)
	ordinal := 0

	flush := func() {
		if len(pending) == 0 {
			return
		}
		if err := b.embedAndUpsert(ctx, gen, pending, texts); err != nil {
			stats.FailedBatches++
			b.logger.Warn("Batch failed, continuing",
				zap.String("collection", gen.Collection),
				zap.Int("batch_size", len(pending)), zap.Error(err))
		} else {
			stats.Indexed += len(pending)
		}
		pending = pending[:0]
		texts = texts[:0]
	}

	for i, raw := range records {
		doc, err := corpus.BuildDocument(gen.Collection, raw)
		if err != nil {
			stats.Skipped++
			b.logger.Warn("Skipping malformed record",
				zap.String("collection", gen.Collection),
				zap.Int("record", i), zap.Error(err))
			continue
		}

		metadata := CleanMetadata(doc.Metadata)
		metadata["bm25_tokens"] = KeywordTokens(doc.Tags, doc.NounText)

		pending = append(pending, domain.IndexedDocument{
			ID:       fmt.Sprintf("%s_%d", doc.SourceID, ordinal),
			Content:  doc.Text,
			Metadata: metadata,
		})
		texts = append(texts, doc.Text)
		ordinal++

		if len(pending) == generateBatchSize {
			flush()
		}
	}
	flush()

	return nil
}

func (b *Builder) embedAndUpsert(
	ctx context.Context, gen colrepo.Generation, docs []domain.IndexedDocument, texts []string,
) error {
	result, err := b.embedder.BatchEmbed(ctx, texts)
	if err != nil {
		return fmt.Errorf("batch embed: %w", err)
	}
	if len(result.Embeddings) != len(docs) {
		return fmt.Errorf("batch embed returned %d vectors for %d texts", len(result.Embeddings), len(docs))
	}

	batch := make([]domain.IndexedDocument, len(docs))
	copy(batch, docs)
	for i := range batch {
		batch[i].Vector = result.Embeddings[i]
	}

	if err := b.documents.BatchUpsert(ctx, gen, batch); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// ingestPrecomputed loads db-ready records that already carry vectors.
// The artifacts predate keyword tokenization, so bm25_tokens is derived
// here from the display tags and document text, same as the generate path.
func (b *Builder) ingestPrecomputed(ctx context.Context, gen colrepo.Generation, stats *Stats) error {
	records, err := b.src.LoadPrecomputed(gen.Collection)
	if err != nil {
		return fmt.Errorf("load precomputed corpus: %w", err)
	}

	ordinal := 0
	for start := 0; start < len(records); start += reuseBatchSize {
		end := start + reuseBatchSize
		if end > len(records) {
			end = len(records)
		}

		batch := make([]domain.IndexedDocument, 0, end-start)
		for _, rec := range records[start:end] {
			if rec.ID == "" || len(rec.Values) == 0 {
				stats.Skipped++
				b.logger.Warn("Skipping malformed precomputed record",
					zap.String("collection", gen.Collection), zap.String("id", rec.ID))
				continue
			}

			metadata := CleanMetadata(rec.Metadata)
			metadata["bm25_tokens"] = KeywordTokens(displayTags(rec.Metadata), rec.Document)

			batch = append(batch, domain.IndexedDocument{
				ID:       fmt.Sprintf("%s_%d", rec.ID, ordinal),
				Vector:   rec.Values,
				Content:  rec.Document,
				Metadata: metadata,
			})
			ordinal++
		}
		if len(batch) == 0 {
			continue
		}

		if err := b.documents.BatchUpsert(ctx, gen, batch); err != nil {
			stats.FailedBatches++
			b.logger.Warn("Batch failed, continuing",
				zap.String("collection", gen.Collection),
				zap.Int("batch_size", len(batch)), zap.Error(err))
			continue
		}
		stats.Indexed += len(batch)
	}

	return nil
}

// displayTags recovers the tag list a precomputed record carries inside its
// serialized display_json metadata field. Records without one, or with one
// that does not parse, simply yield no tags.
func displayTags(metadata map[string]any) []string {
	raw, ok := metadata["display_json"].(string)
	if !ok || raw == "" {
		return nil
	}

	var display struct {
		Tags []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(raw), &display); err != nil {
		return nil
	}
	return display.Tags
}

// abort drops a generation that will never be promoted.
func (b *Builder) abort(ctx context.Context, gen colrepo.Generation) {
	if err := b.collections.DropGeneration(ctx, gen.Collection, gen.ID); err != nil {
		b.logger.Warn("Failed to drop aborted generation",
			zap.String("collection", gen.Collection),
			zap.String("generation", gen.ID), zap.Error(err))
	}
}
