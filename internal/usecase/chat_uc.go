// File: internal/usecase/chat_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-ai-chatbot/internal/domain"
	"telegram-ai-chatbot/internal/domain/model"
	"telegram-ai-chatbot/internal/domain/ports/adapter"
	"telegram-ai-chatbot/internal/infra/logging"
	"telegram-ai-chatbot/internal/infra/memory"
	"telegram-ai-chatbot/internal/infra/metrics"
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

type ChatUseCase interface {
	// SendMessage runs one exchange: prior history plus the new user turn go
	// to the provider; on success the exchange is appended to history.
	SendMessage(ctx context.Context, userID, userMessage string) (reply string, err error)
	ClearHistory(ctx context.Context, userID string) error
	ListModels(ctx context.Context) ([]string, error)
}

type chatUC struct {
	history      *memory.ConversationStore
	ai           adapter.AIServiceAdapter
	model        string
	promptBudget int
	dev          bool
	log          *zerolog.Logger
}

func NewChatUseCase(history *memory.ConversationStore, ai adapter.AIServiceAdapter, model string, promptBudget int, dev bool, logger *zerolog.Logger) *chatUC {
	return &chatUC{history: history, ai: ai, model: model, promptBudget: promptBudget, dev: dev, log: logger}
}

func (c *chatUC) SendMessage(ctx context.Context, userID, userMessage string) (string, error) {
	log := logging.With(ctx, c.log)
	defer logging.TraceDuration(log, "ChatUC.SendMessage")()

	userMessage = strings.TrimSpace(userMessage)
	if userMessage == "" {
		return "", domain.ErrEmptyMessage
	}
	log.Debug().Str("message", logging.Redact(userMessage, c.dev)).Msg("chat message")

	turns := c.history.History(userID)
	msgs := make([]adapter.Message, 0, len(turns)+1)
	for _, t := range turns {
		msgs = append(msgs, adapter.Message{Role: t.Role, Content: t.Content})
	}
	msgs = append(msgs, adapter.Message{Role: model.RoleUser, Content: userMessage})

	msgs, err := c.trimToBudget(ctx, msgs)
	if err != nil {
		return "", err
	}

	start := time.Now()
	reply, usage, err := c.ai.ChatWithUsage(ctx, c.model, msgs)
	latency := int(time.Since(start).Milliseconds())
	metrics.ObserveChatUsage(providerLabel(c.model), c.model, usage.PromptTokens, usage.CompletionTokens, latency, err == nil)
	if err != nil {
		log.Error().Err(err).Str("model", c.model).Msg("chat call failed")
		return "", err
	}

	// History is appended only after a successful generation, so a failed
	// call never leaves a user turn without its assistant turn.
	c.history.AppendExchange(userID, userMessage, reply)
	return reply, nil
}

// trimToBudget counts prompt tokens before the provider call and drops the
// oldest exchange until the prompt fits. A lone message over the budget is
// rejected. Counting failures disable the check for this call; the provider
// enforces its own hard limit anyway.
func (c *chatUC) trimToBudget(ctx context.Context, msgs []adapter.Message) ([]adapter.Message, error) {
	if c.promptBudget <= 0 {
		return msgs, nil
	}
	for {
		n, err := c.ai.CountTokens(ctx, c.model, msgs)
		if err != nil {
			c.log.Warn().Err(err).Str("model", c.model).Msg("token count unavailable, skipping budget check")
			return msgs, nil
		}
		if n <= c.promptBudget {
			return msgs, nil
		}
		if len(msgs) <= 1 {
			return nil, fmt.Errorf("message of %d tokens exceeds the %d token budget: %w", n, c.promptBudget, domain.ErrInvalidArgument)
		}
		drop := 2
		if drop > len(msgs)-1 {
			drop = len(msgs) - 1
		}
		msgs = msgs[drop:]
	}
}

func (c *chatUC) ClearHistory(ctx context.Context, userID string) error {
	c.history.Clear(userID)
	return nil
}

func (c *chatUC) ListModels(ctx context.Context) ([]string, error) {
	return c.ai.ListModels(ctx)
}

func providerLabel(model string) string {
	l := strings.ToLower(model)
	switch {
	case strings.HasPrefix(l, "gemini"):
		return "gemini"
	case strings.HasPrefix(l, "gpt"):
		return "openai"
	default:
		return "compat"
	}
}
