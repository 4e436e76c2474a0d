// Package dialogue runs the per-turn state machine: classify, gate on
// missing profile slots, retrieve, compose. Every turn terminates with a
// reply; external failures degrade to in-band messages instead of errors.
package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kjhmoon/ielts-chat-bot/internal/chat"
	"github.com/kjhmoon/ielts-chat-bot/internal/domain"
	"github.com/kjhmoon/ielts-chat-bot/internal/domain/intent"
	"github.com/kjhmoon/ielts-chat-bot/internal/retriever"
	"github.com/kjhmoon/ielts-chat-bot/internal/router"
)

const (
	topK = 10

	// fallbackQuery re-targets the timetable collection when the original
	// constraints found nothing.
	fallbackQuery = "아이엘츠 온라인 강의 인강 추천"

	// fallbackDisclosure prefixes replies built from fallback results.
	fallbackDisclosure = "[알림: 원하시는 조건의 강의가 없어 온라인 강의 정보를 가져왔습니다.]"

	// searchErrorContext replaces the reference block when retrieval itself
	// failed; the composer tells the user to try again.
	searchErrorContext = "정보를 검색하는 중 오류가 발생했습니다."

	// composeErrorReply is the last-resort reply when generation fails.
	composeErrorReply = "죄송합니다. 일시적인 오류가 발생했습니다. 잠시 후 다시 시도해 주세요."
)

// classifier is the consumer interface for the intent router (ISP).
type classifier interface {
	Analyze(ctx context.Context, utterance, contextText string) router.Decision
}

// searcher is the consumer interface for the retriever (ISP).
type searcher interface {
	Retrieve(ctx context.Context, collection, query string, topK int) ([]domain.RetrievedDocument, error)
}

// Metrics are the dialogue counters, passed explicitly.
// TurnsTotal carries an "intent" label; FallbackTotal counts no-result
// fallback queries. Either may be nil.
type Metrics struct {
	TurnsTotal    *prometheus.CounterVec
	FallbackTotal prometheus.Counter
}

// Engine drives one conversation turn end to end.
type Engine struct {
	router    classifier
	retriever searcher
	completer domain.Completer
	sessions  *chat.Manager
	metrics   Metrics
	logger    *zap.Logger
}

// New creates a dialogue engine.
func New(
	r classifier,
	s searcher,
	completer domain.Completer,
	sessions *chat.Manager,
	metrics Metrics,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		router:    r,
		retriever: s,
		completer: completer,
		sessions:  sessions,
		metrics:   metrics,
		logger:    logger,
	}
}

// Respond handles one user message and returns the session id with the
// reply. Turns of the same session are serialized on the session lock.
func (e *Engine) Respond(ctx context.Context, sessionID, message string) (string, string) {
	s := e.sessions.Get(sessionID)
	s.Lock()
	defer s.Unlock()

	mem := s.Memory
	mem.AppendTurn(chat.RoleUser, message)
	contextText := mem.RenderContext()

	decision := e.router.Analyze(ctx, message, contextText)
	mem.Profile.Update(decision.Slots)

	e.incTurn(decision.Intent)
	e.logger.Info("Turn classified",
		zap.String("session_id", s.ID),
		zap.String("intent", string(decision.Intent)),
		zap.Int("slots_updated", len(decision.Slots)))

	var reply string
	switch {
	case decision.Intent == intent.ChitChat:
		reply = e.chitchat(ctx, message, contextText)
	case decision.Intent == intent.Timetable && !slotGatePasses(&mem.Profile):
		reply = slotGateQuestion(&mem.Profile)
	default:
		reply = e.retrieveAndCompose(ctx, message, decision, &mem.Profile)
	}

	mem.AppendTurn(chat.RoleAssistant, reply)
	return s.ID, reply
}

// slotGatePasses checks the two decision-critical slots directly on profile
// state, not on the router's missing-slot report.
func slotGatePasses(p *chat.Profile) bool {
	return p.PreferredTime != "" && p.CurrentScore != ""
}

// slotGateQuestion asks for exactly the slots still unknown.
func slotGateQuestion(p *chat.Profile) string {
	var asks []string
	if p.PreferredTime == "" {
		asks = append(asks, "선호하시는 수업 시간대(평일/주말, 오전/저녁)")
	}
	if p.CurrentScore == "" {
		asks = append(asks, "현재 아이엘츠 점수(또는 예상 점수)")
	}
	return fmt.Sprintf(
		"맞춤 수업을 추천해 드리기 위해 몇 가지만 여쭤볼게요. %s를 알려주시겠어요?",
		strings.Join(asks, "와 "))
}

func (e *Engine) retrieveAndCompose(
	ctx context.Context, message string, decision router.Decision, profile *chat.Profile,
) string {
	collection := decision.Intent.Collection()
	query := augmentQuery(decision.SearchQuery, profile)

	contextBlock := e.search(ctx, collection, query)
	if contextBlock == retriever.NoResults {
		e.incFallback()
		e.logger.Info("No hits, falling back to timetable",
			zap.String("collection", collection), zap.String("query", query))
		contextBlock = fallbackDisclosure + "\n\n" + e.search(ctx, domain.CollectionTimetable, fallbackQuery)
	}

	prompt := fmt.Sprintf(composePromptTemplate, profile.Render(), contextBlock, message)
	reply, err := e.completer.Complete(ctx, domain.CompletionRequest{
		System: personaSystem,
		Prompt: prompt,
	})
	if err != nil {
		e.logger.Error("Compose failed", zap.Error(err))
		return composeErrorReply
	}
	return reply
}

// search runs one retrieval and renders it; failures become an in-band
// diagnostic block so the turn still completes.
func (e *Engine) search(ctx context.Context, collection, query string) string {
	docs, err := e.retriever.Retrieve(ctx, collection, query, topK)
	if err != nil {
		e.logger.Error("Retrieval failed",
			zap.String("collection", collection), zap.Error(err))
		return searchErrorContext
	}
	return retriever.Format(docs)
}

// augmentQuery folds the retrieval-relevant profile slots into the query.
func augmentQuery(q string, p *chat.Profile) string {
	parts := []string{q}
	if p.PreferredTime != "" {
		parts = append(parts, p.PreferredTime)
	}
	if p.TargetScore != "" {
		parts = append(parts, "목표 "+p.TargetScore)
	}
	return strings.Join(parts, " ")
}

func (e *Engine) chitchat(ctx context.Context, message, contextText string) string {
	prompt := fmt.Sprintf(chitchatPromptTemplate, contextText, message)
	reply, err := e.completer.Complete(ctx, domain.CompletionRequest{
		System: personaSystem,
		Prompt: prompt,
	})
	if err != nil {
		e.logger.Error("Chitchat generation failed", zap.Error(err))
		return composeErrorReply
	}
	return reply
}

func (e *Engine) incTurn(i intent.Intent) {
	if e.metrics.TurnsTotal != nil {
		e.metrics.TurnsTotal.WithLabelValues(string(i)).Inc()
	}
}

func (e *Engine) incFallback() {
	if e.metrics.FallbackTotal != nil {
		e.metrics.FallbackTotal.Inc()
	}
}
