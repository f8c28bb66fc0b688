// File: internal/application/bot_facade.go
package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"telegram-ai-chatbot/internal/domain"
	"telegram-ai-chatbot/internal/infra/memory"
	"telegram-ai-chatbot/internal/infra/metrics"
	"telegram-ai-chatbot/internal/usecase"
)

// Keyword heuristics for interception. A message matching a news keyword is
// answered with a headline digest; an investment keyword adds the sentiment
// verdict. Matching is whole-word on the lowercased text.
var newsKeywords = []string{
	"news", "headline", "headlines", "breaking",
}

var investKeywords = []string{
	"invest", "investment", "investing", "stock", "stocks", "market",
	"markets", "crypto", "bitcoin", "shares", "portfolio", "etf",
}

// BotFacade composes usecases into high-level bot commands.
// Keep the facade methods returning strings so the Telegram adapter just
// forwards them to the chat.
type BotFacade struct {
	ChatUC  usecase.ChatUseCase
	NewsUC  usecase.NewsUseCase
	StatsUC usecase.StatsUseCase
	Limiter *memory.RateLimiter
}

func NewBotFacade(
	chatUC usecase.ChatUseCase,
	newsUC usecase.NewsUseCase,
	statsUC usecase.StatsUseCase,
	limiter *memory.RateLimiter,
) *BotFacade {
	return &BotFacade{
		ChatUC:  chatUC,
		NewsUC:  newsUC,
		StatsUC: statsUC,
		Limiter: limiter,
	}
}

// HandleStart returns the welcome text.
func (b *BotFacade) HandleStart(ctx context.Context, tgID int64, username string) (string, error) {
	name := strings.TrimSpace(username)
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("Hello %s!\nSend me any message to chat, or ask about news and markets.\nUse /help to see all commands.", name), nil
}

// HandleHelp returns the command list.
func (b *BotFacade) HandleHelp() string {
	return "Commands:\n" +
		"/start - init\n" +
		"/help - this message\n" +
		"/news [topic] - latest headlines\n" +
		"/invest [topic] - headlines + market sentiment\n" +
		"/clear - forget our conversation\n" +
		"/models - available models (admin only)\n" +
		"/stats - diagnostics (admin only)"
}

// HandleChatMessage gates the message on the rate limiter, intercepts
// news/investment questions, and otherwise forwards to the chat usecase.
func (b *BotFacade) HandleChatMessage(ctx context.Context, tgID int64, text string) (string, error) {
	userID := strconv.FormatInt(tgID, 10)
	if err := b.acquire(userID); errors.Is(err, domain.ErrRateLimited) {
		return b.throttleNotice(userID), nil
	}

	if topic, ok := matchKeyword(text, investKeywords); ok {
		return b.NewsUC.Analyze(ctx, topic)
	}
	if topic, ok := matchKeyword(text, newsKeywords); ok {
		return b.NewsUC.Digest(ctx, topic)
	}
	return b.ChatUC.SendMessage(ctx, userID, text)
}

// HandleNews serves the /news command. Unlike free-text interception the
// explicit command still consumes rate-limit quota.
func (b *BotFacade) HandleNews(ctx context.Context, tgID int64, topic string) (string, error) {
	userID := strconv.FormatInt(tgID, 10)
	if err := b.acquire(userID); errors.Is(err, domain.ErrRateLimited) {
		return b.throttleNotice(userID), nil
	}
	return b.NewsUC.Digest(ctx, topic)
}

// HandleInvest serves the /invest command.
func (b *BotFacade) HandleInvest(ctx context.Context, tgID int64, topic string) (string, error) {
	userID := strconv.FormatInt(tgID, 10)
	if err := b.acquire(userID); errors.Is(err, domain.ErrRateLimited) {
		return b.throttleNotice(userID), nil
	}
	return b.NewsUC.Analyze(ctx, topic)
}

// HandleClear wipes the user's conversation history.
func (b *BotFacade) HandleClear(ctx context.Context, tgID int64) (string, error) {
	if err := b.ChatUC.ClearHistory(ctx, strconv.FormatInt(tgID, 10)); err != nil {
		return "", fmt.Errorf("clear history: %w", err)
	}
	return "🗑 Conversation history cleared.", nil
}

// HandleModels lists the models the configured providers expose.
func (b *BotFacade) HandleModels(ctx context.Context) (string, error) {
	models, err := b.ChatUC.ListModels(ctx)
	if err != nil {
		return "", fmt.Errorf("list models: %w", err)
	}
	if len(models) == 0 {
		return "No models available.", nil
	}
	var sb strings.Builder
	sb.WriteString("🧠 Available models:\n")
	for _, m := range models {
		sb.WriteString("• " + m + "\n")
	}
	return sb.String(), nil
}

// HandleStats builds the admin-facing formatted stats string.
func (b *BotFacade) HandleStats(ctx context.Context) (string, error) {
	if b.StatsUC == nil {
		return "", fmt.Errorf("stats usecase not available")
	}
	snap, err := b.StatsUC.Totals(ctx)
	if err != nil {
		return "", fmt.Errorf("get stats: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("📊 Bot diagnostics:\n\n")
	sb.WriteString(fmt.Sprintf("⏱ Uptime: %s\n", (time.Duration(snap.UptimeSeconds) * time.Second).String()))
	sb.WriteString(fmt.Sprintf("🚦 Rate limiter: %d active users, %d tracked requests\n",
		snap.RateLimiter.ActiveUsers, snap.RateLimiter.TotalRequests))
	sb.WriteString(fmt.Sprintf("💬 Conversations: %d users, %d turns retained\n",
		snap.Conversations.ActiveUsers, snap.Conversations.TotalTurns))
	return sb.String(), nil
}

// acquire atomically checks and records one request against the user's quota.
// A deny is control flow, not a failure: it comes back as ErrRateLimited.
func (b *BotFacade) acquire(userID string) error {
	if !b.Limiter.TryAcquire(userID) {
		metrics.IncThrottled()
		return domain.ErrRateLimited
	}
	return nil
}

// throttleNotice formats the human-readable wait time, rounded up to whole
// minutes with a floor of one.
func (b *BotFacade) throttleNotice(userID string) string {
	wait := b.Limiter.TimeUntilReset(userID)
	minutes := int(math.Ceil(wait.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	return fmt.Sprintf("⏳ You're sending messages too fast. Please retry in %d %s.", minutes, unit)
}

// matchKeyword reports whether any keyword appears as a whole word in text;
// the matched topic is the full message so the news query keeps its context.
func matchKeyword(text string, keywords []string) (string, bool) {
	words := map[string]struct{}{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		words[strings.Trim(w, ".,!?;:\"'()")] = struct{}{}
	}
	for _, k := range keywords {
		if _, ok := words[k]; ok {
			return strings.TrimSpace(text), true
		}
	}
	return "", false
}
