package domain

import "context"

// CompletionRequest is the input for a text generation call.
type CompletionRequest struct {
	System string // optional system/persona text
	Prompt string
	JSON   bool // force a strict JSON object response
}

// Completer is the text generation contract. Callers treat the returned text
// as an opaque string; JSON-mode responses still require a guarded parse.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
