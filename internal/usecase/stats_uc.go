// File: internal/usecase/stats_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-ai-chatbot/internal/infra/memory"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// Snapshot is the diagnostic view served to admins and the stats endpoint.
type Snapshot struct {
	RateLimiter   memory.RateLimiterStats  `json:"rate_limiter"`
	Conversations memory.ConversationStats `json:"conversations"`
	UptimeSeconds int64                    `json:"uptime_seconds"`
}

type StatsUseCase interface {
	Totals(ctx context.Context) (Snapshot, error)
}

type statsUC struct {
	limiter *memory.RateLimiter
	store   *memory.ConversationStore
	started time.Time

	log *zerolog.Logger
}

func NewStatsUseCase(limiter *memory.RateLimiter, store *memory.ConversationStore, logger *zerolog.Logger) *statsUC {
	return &statsUC{limiter: limiter, store: store, started: time.Now(), log: logger}
}

func (s *statsUC) Totals(ctx context.Context) (Snapshot, error) {
	return Snapshot{
		RateLimiter:   s.limiter.Stats(),
		Conversations: s.store.Stats(),
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	}, nil
}
