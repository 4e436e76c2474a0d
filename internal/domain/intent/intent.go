// Package intent defines the closed set of conversation intents.
package intent

import (
	"github.com/kjhmoon/ielts-chat-bot/internal/domain"
)

// Intent is a classified user intention for one conversation turn.
type Intent string

const (
	// Timetable asks about class schedules, curriculum, or prices.
	Timetable Intent = "TIMETABLE"
	// Review asks for success stories or student testimonials.
	Review Intent = "REVIEW"
	// FAQ asks administrative questions (refund, location, parking, login).
	FAQ Intent = "FAQ"
	// ChitChat is greetings, small talk, or off-topic input.
	ChitChat Intent = "CHIT_CHAT"
)

// Parse maps a classifier label onto the closed intent set.
// Unknown labels deliberately fall back to ChitChat so a drifting classifier
// can never route a turn outside the four handled branches.
func Parse(s string) Intent {
	switch Intent(s) {
	case Timetable, Review, FAQ, ChitChat:
		return Intent(s)
	default:
		return ChitChat
	}
}

// Collection maps a retrieval intent to its collection name.
// ChitChat has no collection; callers must gate on NeedsRetrieval first.
func (i Intent) Collection() string {
	switch i {
	case Timetable:
		return domain.CollectionTimetable
	case Review:
		return domain.CollectionReview
	default:
		return domain.CollectionFAQ
	}
}

// NeedsRetrieval reports whether the intent routes to the search index.
func (i Intent) NeedsRetrieval() bool {
	return i != ChitChat
}
