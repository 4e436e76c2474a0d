// Package router classifies one conversation turn: intent, profile slot
// extraction, and a reformulated search query, all from a single JSON-mode
// completion call.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kjhmoon/ielts-chat-bot/internal/domain"
	"github.com/kjhmoon/ielts-chat-bot/internal/domain/intent"
)

// Decision is the router's verdict for one turn.
type Decision struct {
	Intent       intent.Intent
	Slots        map[string]string
	MissingSlots []string
	SearchQuery  string
}

// Router runs the classification call and guards its output.
type Router struct {
	completer domain.Completer
	logger    *zap.Logger
}

// New creates an intent router.
func New(completer domain.Completer, logger *zap.Logger) *Router {
	return &Router{completer: completer, logger: logger}
}

// rawDecision mirrors the JSON contract with the classifier.
type rawDecision struct {
	Intent       string            `json:"intent"`
	Slots        map[string]string `json:"slots_to_update"`
	MissingSlots []string          `json:"missing_slots"`
	SearchQuery  string            `json:"search_query"`
}

// Analyze classifies the utterance against the rendered session context.
// Any classifier failure, malformed JSON included, degrades to the safe
// default: ChitChat, no slot changes, the raw utterance as query. The
// dialogue engine never sees a router error.
func (r *Router) Analyze(ctx context.Context, utterance, contextText string) Decision {
	prompt := fmt.Sprintf(routerPromptTemplate, contextText, utterance)

	text, err := r.completer.Complete(ctx, domain.CompletionRequest{
		Prompt: prompt,
		JSON:   true,
	})
	if err != nil {
		r.logger.Warn("Classifier call failed, using safe default", zap.Error(err))
		return safeDefault(utterance)
	}

	var raw rawDecision
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		r.logger.Warn("Classifier returned malformed JSON, using safe default",
			zap.String("response", truncate(text, 200)), zap.Error(err))
		return safeDefault(utterance)
	}

	return sanitize(raw, utterance)
}

// sanitize enforces the response contract on a parsed decision.
func sanitize(raw rawDecision, utterance string) Decision {
	d := Decision{
		Intent:      intent.Parse(strings.ToUpper(strings.TrimSpace(raw.Intent))),
		Slots:       map[string]string{},
		SearchQuery: strings.TrimSpace(raw.SearchQuery),
	}

	for k, v := range raw.Slots {
		if isSlotKey(k) && strings.TrimSpace(v) != "" {
			d.Slots[k] = strings.TrimSpace(v)
		}
	}

	// missing slots only matter for the timetable gate
	if d.Intent == intent.Timetable {
		for _, k := range raw.MissingSlots {
			if isSlotKey(k) {
				d.MissingSlots = append(d.MissingSlots, k)
			}
		}
	}

	if d.SearchQuery == "" {
		d.SearchQuery = utterance
	}

	return d
}

func safeDefault(utterance string) Decision {
	return Decision{
		Intent:      intent.ChitChat,
		Slots:       map[string]string{},
		SearchQuery: utterance,
	}
}

func isSlotKey(k string) bool {
	switch k {
	case "current_score", "target_score", "target_period", "preferred_time":
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
