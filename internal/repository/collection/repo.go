// Package collection manages the generation lifecycle of a corpus collection:
// each rebuild writes into a fresh generation, and the collection alias is
// repointed only once the new generation is complete.
package collection

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kjhmoon/ielts-chat-bot/internal/db"
	"github.com/kjhmoon/ielts-chat-bot/internal/domain"
)

// store is the consumer interface for collection lifecycle (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	DelMulti(ctx context.Context, keys []string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	AliasUpdate(ctx context.Context, alias, index string) error
}

// FlatConfig FLAT index parameters.
type FlatConfig struct {
	BlockSize int
}

// Generation identifies one physical build of a collection. The alias only
// ever points at a promoted generation, so readers never observe a partial one.
type Generation struct {
	Collection string
	ID         string
}

// IndexName is the physical FT index name of this generation.
func (g Generation) IndexName() string {
	return fmt.Sprintf("%s%s:%s:idx", domain.KeyPrefix, g.Collection, g.ID)
}

// Prefix is the document key prefix of this generation.
func (g Generation) Prefix() string {
	return fmt.Sprintf("%s%s:%s:", domain.KeyPrefix, g.Collection, g.ID)
}

// DocKey is the hash key of one document inside this generation.
func (g Generation) DocKey(docID string) string {
	return g.Prefix() + docID
}

// Alias is the stable search entry point of a collection, independent of
// which generation currently backs it.
func Alias(collection string) string {
	return domain.KeyPrefix + collection
}

// Repo implements the shadow-generation lifecycle over Redis Search.
type Repo struct {
	store     store
	vectorDim int
	flat      FlatConfig
	now       func() time.Time
}

// New creates a collection repository.
func New(s store, vectorDim int) *Repo {
	return &Repo{
		store:     s,
		vectorDim: vectorDim,
		flat:      FlatConfig{BlockSize: 1024},
		now:       time.Now,
	}
}

// WithFlat configures FLAT index parameters.
func (r *Repo) WithFlat(cfg FlatConfig) *Repo {
	if cfg.BlockSize > 0 {
		r.flat.BlockSize = cfg.BlockSize
	}
	return r
}

// Begin opens a new generation for the collection and creates its FT index.
// Nothing observable changes for readers until Promote.
func (r *Repo) Begin(ctx context.Context, collection string) (Generation, error) {
	gen := Generation{
		Collection: collection,
		ID:         strconv.FormatInt(r.now().UnixMilli(), 10),
	}

	def := r.buildIndex(gen)
	if err := def.Validate(); err != nil {
		return Generation{}, fmt.Errorf("index definition for %s: %w", collection, err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return Generation{}, fmt.Errorf("create index %s: %w", def.Name, err)
	}

	return gen, nil
}

// Promote repoints the collection alias to the generation's index and records
// it as current. It returns the ID of the generation it replaced, empty when
// this is the first build.
func (r *Repo) Promote(ctx context.Context, gen Generation) (string, error) {
	prev, err := r.Current(ctx, gen.Collection)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("read current generation: %w", err)
	}

	if err := r.store.AliasUpdate(ctx, Alias(gen.Collection), gen.IndexName()); err != nil {
		return "", fmt.Errorf("alias update %s: %w", Alias(gen.Collection), err)
	}

	if err := r.store.Set(ctx, genKey(gen.Collection), []byte(gen.ID)); err != nil {
		return "", fmt.Errorf("record generation %s: %w", gen.ID, err)
	}

	return prev, nil
}

// Current returns the promoted generation ID of a collection, or
// domain.ErrNotFound when it has never been built.
func (r *Repo) Current(ctx context.Context, collection string) (string, error) {
	v, err := r.store.Get(ctx, genKey(collection))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get generation pointer: %w", err)
	}
	return string(v), nil
}

// DropGeneration removes a retired generation: its index and all of its
// document hashes. It is safe to call for a generation that was never
// promoted, e.g. when aborting a failed build.
func (r *Repo) DropGeneration(ctx context.Context, collection, genID string) error {
	gen := Generation{Collection: collection, ID: genID}

	if err := r.store.DropIndex(ctx, gen.IndexName()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", gen.IndexName(), err)
	}

	keys, err := r.store.Scan(ctx, gen.Prefix()+"*")
	if err != nil {
		return fmt.Errorf("scan generation %s: %w", genID, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.store.DelMulti(ctx, keys); err != nil {
		return fmt.Errorf("delete generation %s documents: %w", genID, err)
	}

	return nil
}

func (r *Repo) buildIndex(gen Generation) *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     gen.IndexName(),
		Prefixes: []string{gen.Prefix()},
		Fields: []db.IndexField{
			{
				Name:            "vector",
				Type:            db.IndexFieldVector,
				VectorAlgo:      db.VectorFlat,
				VectorDim:       r.vectorDim,
				VectorDistance:  db.DistanceCosine,
				VectorBlockSize: r.flat.BlockSize,
			},
			{Name: "bm25_tokens", Type: db.IndexFieldText},
			{Name: "source", Type: db.IndexFieldTag},
		},
	}
}

// Redis key patterns: ielts:collection:{name}:gen, ielts:{name}:{gen}:idx, ielts:{name}:{gen}:{docID}

func genKey(collection string) string {
	return fmt.Sprintf("%scollection:%s:gen", domain.KeyPrefix, collection)
}
