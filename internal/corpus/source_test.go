package corpus

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSourceLoadStructured(t *testing.T) {
	dir := t.TempDir()
	content := `[[{"a":1}],[{"b":2},{"c":3}]]`
	if err := os.WriteFile(filepath.Join(dir, "structured_faq.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource(dir)

	records, err := src.LoadStructured("faq")
	if err != nil {
		t.Fatalf("LoadStructured() unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("LoadStructured() returned %d records, want 3", len(records))
	}
}

func TestFileSourceLoadStructuredMissing(t *testing.T) {
	src := NewFileSource(t.TempDir())

	if _, err := src.LoadStructured("faq"); err == nil {
		t.Fatal("LoadStructured() expected error for missing file")
	}
}

func TestFileSourceLoadPrecomputed(t *testing.T) {
	dir := t.TempDir()
	content := `[{"id":"faq_001_0","values":[0.1,0.2],"metadata":{"source":"faq"},"document":"Q: x\nA: y"}]`
	if err := os.WriteFile(filepath.Join(dir, "faq_db_ready.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource(dir)

	if !src.HasPrecomputed("faq") {
		t.Fatal("HasPrecomputed() = false, want true")
	}
	recs, err := src.LoadPrecomputed("faq")
	if err != nil {
		t.Fatalf("LoadPrecomputed() unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("LoadPrecomputed() returned %d records, want 1", len(recs))
	}
	if recs[0].ID != "faq_001_0" || len(recs[0].Values) != 2 {
		t.Errorf("unexpected record: %+v", recs[0])
	}
	if src.HasPrecomputed("review") {
		t.Error("HasPrecomputed(review) = true, want false")
	}
}
