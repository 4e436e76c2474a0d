package corpus

import (
	"encoding/json"
	"fmt"

	"github.com/kjhmoon/ielts-chat-bot/internal/domain"
)

// Flatten normalizes extractor output into a flat list of records. Extraction
// tooling emits either a flat list of records or a list of per-source lists,
// so the accepted shapes are: a list of non-list values (returned as-is) or a
// list of lists, flattened one level at a time. Empty or non-list input
// yields an empty result. Lists mixing list and non-list siblings at the same
// level are rejected with ErrMixedNesting rather than silently mis-handled.
func Flatten(raw json.RawMessage) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		// Non-list top-level input (single object, scalar, null).
		return nil, nil
	}
	if len(items) == 0 {
		return nil, nil
	}

	if !isList(items[0]) {
		for i, it := range items {
			if isList(it) {
				return nil, fmt.Errorf("element %d is a list among non-list siblings: %w", i, domain.ErrMixedNesting)
			}
		}
		return items, nil
	}

	var flat []json.RawMessage
	for i, it := range items {
		if !isList(it) {
			return nil, fmt.Errorf("element %d is not a list among list siblings: %w", i, domain.ErrMixedNesting)
		}
		sub, err := Flatten(it)
		if err != nil {
			return nil, err
		}
		flat = append(flat, sub...)
	}
	return flat, nil
}

// isList reports whether the raw JSON value is an array, ignoring leading whitespace.
func isList(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
