package domain

// IndexedDocument is one searchable unit in a collection. IDs carry an
// ingestion ordinal suffix so duplicate source IDs across batches never
// collide; Metadata values are always non-null strings (see index.CleanMetadata).
type IndexedDocument struct {
	ID       string
	Vector   []float32
	Content  string
	Metadata map[string]string
}

// RetrievedDocument is one search hit: the stored content plus its display
// metadata, with storage-internal fields already stripped.
type RetrievedDocument struct {
	ID       string
	Score    float64
	Content  string
	Metadata map[string]string
}

// KeyPrefix namespaces every Redis key and index this service owns.
const KeyPrefix = "ielts:"

// Collection names, one per corpus domain.
const (
	CollectionFAQ       = "faq"
	CollectionReview    = "review"
	CollectionTimetable = "timetable"
)

// Collections lists every collection name.
func Collections() []string {
	return []string{CollectionFAQ, CollectionReview, CollectionTimetable}
}
