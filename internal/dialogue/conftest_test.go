package dialogue

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kjhmoon/ielts-chat-bot/internal/chat"
	"github.com/kjhmoon/ielts-chat-bot/internal/domain"
	"github.com/kjhmoon/ielts-chat-bot/internal/router"
)

type mockClassifier struct {
	decision router.Decision
}

func (m *mockClassifier) Analyze(_ context.Context, utterance, _ string) router.Decision {
	d := m.decision
	if d.Slots == nil {
		d.Slots = map[string]string{}
	}
	if d.SearchQuery == "" {
		d.SearchQuery = utterance
	}
	return d
}

type searchCall struct {
	collection string
	query      string
	topK       int
}

type mockSearcher struct {
	results map[string][]domain.RetrievedDocument
	err     error
	calls   []searchCall
}

func (m *mockSearcher) Retrieve(
	_ context.Context, collection, query string, topK int,
) ([]domain.RetrievedDocument, error) {
	m.calls = append(m.calls, searchCall{collection: collection, query: query, topK: topK})
	if m.err != nil {
		return nil, m.err
	}
	return m.results[collection], nil
}

type mockCompleter struct {
	response string
	err      error
	requests []domain.CompletionRequest
}

func (m *mockCompleter) Complete(_ context.Context, req domain.CompletionRequest) (string, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func newTestEngine(t *testing.T) (*Engine, *mockClassifier, *mockSearcher, *mockCompleter, *chat.Manager) {
	t.Helper()
	mc := &mockClassifier{}
	ms := &mockSearcher{results: map[string][]domain.RetrievedDocument{}}
	comp := &mockCompleter{response: "상담원 답변입니다."}
	sessions := chat.NewManager()
	e := New(mc, ms, comp, sessions, Metrics{}, zap.NewNop())
	return e, mc, ms, comp, sessions
}

func someDocs() []domain.RetrievedDocument {
	return []domain.RetrievedDocument{
		{Content: "IELTS 실전반 - 평일 저녁", Metadata: map[string]string{"source": "timetable"}},
	}
}
