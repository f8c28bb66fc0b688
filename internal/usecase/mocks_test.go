// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"telegram-ai-chatbot/internal/domain/model"
	"telegram-ai-chatbot/internal/domain/ports/adapter"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// fakeAI is a scriptable in-memory AI adapter used by unit tests.
type fakeAI struct {
	mu      sync.Mutex
	reply   string
	err     error
	ctErr   error
	lastMsg []adapter.Message
	calls   int
}

func (f *fakeAI) ListModels(ctx context.Context) ([]string, error) {
	return []string{"gpt-4o-mini"}, nil
}

func (f *fakeAI) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{Name: model}, nil
}

// CountTokens charges one token per content byte, which keeps budget tests
// deterministic.
func (f *fakeAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	if f.ctErr != nil {
		return 0, f.ctErr
	}
	n := 0
	for _, m := range messages {
		n += len(m.Content)
	}
	return n, nil
}

func (f *fakeAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	reply, _, err := f.ChatWithUsage(ctx, model, messages)
	return reply, err
}

func (f *fakeAI) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastMsg = append([]adapter.Message(nil), messages...)
	if f.err != nil {
		return "", adapter.Usage{}, f.err
	}
	return f.reply, adapter.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, nil
}

// fakeNews serves a fixed article set and records the last query.
type fakeNews struct {
	mu        sync.Mutex
	articles  []model.Article
	err       error
	lastQuery string
	lastLimit int
}

func (f *fakeNews) FetchEverything(ctx context.Context, query string, limit int) ([]model.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = query
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}
