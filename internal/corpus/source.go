package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Precomputed is one record from a *_db_ready.json artifact: the vector was
// already produced by an earlier pipeline run and only needs to be loaded.
type Precomputed struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata"`
	Document string         `json:"document"`
}

// FileSource reads corpus artifacts from a directory on disk.
type FileSource struct {
	dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// LoadStructured reads structured_{collection}.json and returns the flattened
// record list. Nesting the extractors produce varies between one and two
// levels, so the file is normalized through Flatten before use.
func (s *FileSource) LoadStructured(collection string) ([]json.RawMessage, error) {
	path := filepath.Join(s.dir, "structured_"+collection+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file %s: %w", path, err)
	}

	records, err := Flatten(data)
	if err != nil {
		return nil, fmt.Errorf("flatten %s: %w", path, err)
	}

	return records, nil
}

// LoadPrecomputed reads {collection}_db_ready.json, a flat list of records
// carrying their own embedding vectors.
func (s *FileSource) LoadPrecomputed(collection string) ([]Precomputed, error) {
	path := filepath.Join(s.dir, collection+"_db_ready.json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file %s: %w", path, err)
	}

	var records []Precomputed
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return records, nil
}

// HasPrecomputed reports whether a db-ready artifact exists for the
// collection, which lets the indexer prefer reuse over regeneration.
func (s *FileSource) HasPrecomputed(collection string) bool {
	_, err := os.Stat(filepath.Join(s.dir, collection+"_db_ready.json"))
	return err == nil
}
