package collection

import (
	"context"
	"errors"
	"testing"

	"github.com/kjhmoon/ielts-chat-bot/internal/db"
	"github.com/kjhmoon/ielts-chat-bot/internal/domain"
)

func TestBeginCreatesGenerationIndex(t *testing.T) {
	repo, ms := newTestRepo(t)

	var gotDef *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		gotDef = def
		return nil
	}

	gen, err := repo.Begin(context.Background(), domain.CollectionFAQ)
	if err != nil {
		t.Fatalf("Begin() unexpected error: %v", err)
	}

	if gen.Collection != domain.CollectionFAQ || gen.ID != "1700000000000" {
		t.Errorf("Begin() generation = %+v", gen)
	}
	if gotDef == nil {
		t.Fatal("Begin() did not create an index")
	}
	if gotDef.Name != "ielts:faq:1700000000000:idx" {
		t.Errorf("index name = %q", gotDef.Name)
	}
	if len(gotDef.Prefixes) != 1 || gotDef.Prefixes[0] != "ielts:faq:1700000000000:" {
		t.Errorf("index prefixes = %v", gotDef.Prefixes)
	}

	var vec *db.IndexField
	for i := range gotDef.Fields {
		if gotDef.Fields[i].Name == "vector" {
			vec = &gotDef.Fields[i]
		}
	}
	if vec == nil {
		t.Fatal("index has no vector field")
	}
	if vec.VectorDim != testVectorDim || vec.VectorAlgo != db.VectorFlat || vec.VectorDistance != db.DistanceCosine {
		t.Errorf("vector field = %+v", *vec)
	}
}

func TestBeginIndexError(t *testing.T) {
	repo, ms := newTestRepo(t)

	wantErr := errors.New("boom")
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error { return wantErr }

	if _, err := repo.Begin(context.Background(), domain.CollectionFAQ); !errors.Is(err, wantErr) {
		t.Fatalf("Begin() error = %v, want %v", err, wantErr)
	}
}

func TestPromoteSwapsAliasAndRecordsGeneration(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte("1600000000000"), nil
	}
	var gotAlias, gotIndex string
	ms.aliasUpdateFn = func(_ context.Context, alias, index string) error {
		gotAlias, gotIndex = alias, index
		return nil
	}
	var gotKey string
	var gotVal []byte
	ms.setFn = func(_ context.Context, key string, value []byte) error {
		gotKey, gotVal = key, value
		return nil
	}

	gen := Generation{Collection: domain.CollectionReview, ID: "1700000000000"}

	prev, err := repo.Promote(context.Background(), gen)
	if err != nil {
		t.Fatalf("Promote() unexpected error: %v", err)
	}

	if prev != "1600000000000" {
		t.Errorf("Promote() prev = %q, want 1600000000000", prev)
	}
	if gotAlias != "ielts:review" || gotIndex != "ielts:review:1700000000000:idx" {
		t.Errorf("alias update %q -> %q", gotAlias, gotIndex)
	}
	if gotKey != "ielts:collection:review:gen" || string(gotVal) != "1700000000000" {
		t.Errorf("generation pointer set %q = %q", gotKey, gotVal)
	}
}

func TestPromoteFirstBuild(t *testing.T) {
	repo, _ := newTestRepo(t)

	gen := Generation{Collection: domain.CollectionFAQ, ID: "1700000000000"}

	prev, err := repo.Promote(context.Background(), gen)
	if err != nil {
		t.Fatalf("Promote() unexpected error: %v", err)
	}
	if prev != "" {
		t.Errorf("Promote() prev = %q, want empty on first build", prev)
	}
}

func TestPromoteAliasFailureLeavesPointer(t *testing.T) {
	repo, ms := newTestRepo(t)

	wantErr := errors.New("alias failed")
	ms.aliasUpdateFn = func(_ context.Context, _, _ string) error { return wantErr }
	setCalled := false
	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		setCalled = true
		return nil
	}

	gen := Generation{Collection: domain.CollectionFAQ, ID: "1700000000000"}

	if _, err := repo.Promote(context.Background(), gen); !errors.Is(err, wantErr) {
		t.Fatalf("Promote() error = %v, want %v", err, wantErr)
	}
	if setCalled {
		t.Error("Promote() updated the generation pointer despite alias failure")
	}
}

func TestCurrentNotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	if _, err := repo.Current(context.Background(), domain.CollectionFAQ); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Current() error = %v, want ErrNotFound", err)
	}
}

func TestDropGeneration(t *testing.T) {
	repo, ms := newTestRepo(t)

	var droppedIndex string
	ms.dropIndexFn = func(_ context.Context, name string) error {
		droppedIndex = name
		return nil
	}
	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "ielts:faq:1600000000000:*" {
			t.Errorf("scan pattern = %q", pattern)
		}
		return []string{"ielts:faq:1600000000000:a", "ielts:faq:1600000000000:b"}, nil
	}
	var deleted []string
	ms.delMultiFn = func(_ context.Context, keys []string) error {
		deleted = keys
		return nil
	}

	if err := repo.DropGeneration(context.Background(), domain.CollectionFAQ, "1600000000000"); err != nil {
		t.Fatalf("DropGeneration() unexpected error: %v", err)
	}

	if droppedIndex != "ielts:faq:1600000000000:idx" {
		t.Errorf("dropped index = %q", droppedIndex)
	}
	if len(deleted) != 2 {
		t.Errorf("deleted keys = %v", deleted)
	}
}

func TestDropGenerationMissingIndex(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.dropIndexFn = func(_ context.Context, _ string) error { return db.ErrIndexNotFound }

	if err := repo.DropGeneration(context.Background(), domain.CollectionFAQ, "1600000000000"); err != nil {
		t.Fatalf("DropGeneration() unexpected error for missing index: %v", err)
	}
}
