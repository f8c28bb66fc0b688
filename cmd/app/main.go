// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"telegram-ai-chatbot/internal/application"
	"telegram-ai-chatbot/internal/config"
	"telegram-ai-chatbot/internal/domain/ports/adapter"
	aiAdapters "telegram-ai-chatbot/internal/infra/adapters/ai"
	newsAdapters "telegram-ai-chatbot/internal/infra/adapters/news"
	tele "telegram-ai-chatbot/internal/infra/adapters/telegram"
	httpapi "telegram-ai-chatbot/internal/infra/http"
	"telegram-ai-chatbot/internal/infra/logging"
	"telegram-ai-chatbot/internal/infra/memory"
	"telegram-ai-chatbot/internal/infra/metrics"
	"telegram-ai-chatbot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (echo AI fallback, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] enabled")
	}

	// ---- Metrics ----
	metrics.MustRegister()

	// ---- In-memory core ----
	limiter := memory.NewRateLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Window)
	defer limiter.Stop()
	store := memory.NewConversationStore(cfg.History.MaxExchanges)
	metrics.RegisterCoreStats(
		func() (int, int) { s := limiter.Stats(); return s.ActiveUsers, s.TotalRequests },
		func() (int, int) { s := store.Stats(); return s.ActiveUsers, s.TotalTurns },
	)

	// ---- AI adapters (OpenAI + Gemini + OpenAI-compatible, routed by model) ----
	byProvider := map[string]adapter.AIServiceAdapter{}
	defaultProvider := ""
	if cfg.AI.OpenAIKey != "" {
		oa, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel, cfg.AI.MaxTokens, cfg.AI.Temperature)
		if err != nil {
			log.Fatalf("openai adapter: %v", err)
		}
		byProvider["openai"] = oa
		defaultProvider = "openai"
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: OpenAI")
	}
	if cfg.AI.GeminiKey != "" {
		ga, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel, cfg.AI.MaxTokens)
		if err != nil {
			log.Fatalf("gemini adapter: %v", err)
		}
		byProvider["gemini"] = ga
		if defaultProvider == "" {
			defaultProvider = "gemini"
		}
		logger.Info().Str("base", cfg.AI.GeminiURL).Msg("AI adapter: Gemini")
	}
	if cfg.AI.CompatKey != "" {
		ca, err := aiAdapters.NewCompatAdapter(cfg.AI.CompatKey, cfg.AI.DefaultModel, cfg.AI.CompatBaseURL, cfg.AI.MaxTokens, cfg.AI.Temperature)
		if err != nil {
			log.Fatalf("compat adapter: %v", err)
		}
		byProvider["compat"] = ca
		if defaultProvider == "" {
			defaultProvider = "compat"
		}
		logger.Info().Str("base", cfg.AI.CompatBaseURL).Msg("AI adapter: OpenAI-compatible")
	}

	var ai adapter.AIServiceAdapter
	switch {
	case len(byProvider) > 0:
		ai = aiAdapters.NewMultiAIAdapter(defaultProvider, byProvider, nil)
	case cfg.Runtime.Dev:
		ai = aiAdapters.NewNoopAIAdapter()
		logger.Warn().Msg("no AI provider configured; using echo adapter (dev only)")
	default:
		log.Fatalf("no AI provider configured: set ai.openai_key, ai.gemini_key or ai.compat_key in %s", *cfgPath)
	}
	ai = aiAdapters.NewLimitedAI(ai, cfg.AI.ConcurrentLimit)

	// ---- News provider ----
	newsProvider, err := newsAdapters.NewNewsAPIAdapter(cfg.News.APIKey, cfg.News.BaseURL, cfg.News.CacheTTL)
	if err != nil {
		log.Fatalf("news adapter: %v", err)
	}

	// ---- Use cases ----
	chatUC := usecase.NewChatUseCase(store, ai, cfg.AI.DefaultModel, cfg.AI.PromptBudget, cfg.Runtime.Dev, logger)
	newsUC := usecase.NewNewsUseCase(newsProvider, usecase.NewSentimentAnalyzer(), cfg.News.PageSize, logger)
	statsUC := usecase.NewStatsUseCase(limiter, store, logger)

	// ---- Facade ----
	facade := application.NewBotFacade(chatUC, newsUC, statsUC, limiter)

	// ---- Telegram ----
	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, logger, cfg.Bot.Workers)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}
	if strings.ToLower(cfg.Bot.Mode) != "" && strings.ToLower(cfg.Bot.Mode) != "polling" {
		logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot mode not implemented; falling back to polling")
	}
	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Admin HTTP (health, metrics, stats) ----
	admin := httpapi.NewAdminServer(fmt.Sprintf(":%d", cfg.Admin.Port), statsUC, logger)
	go func() {
		if err := admin.Start(); err != nil {
			logger.Error().Err(err).Msg("admin server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	if err := admin.Shutdown(shCtx); err != nil {
		logger.Error().Err(err).Msg("admin shutdown")
	}
}
