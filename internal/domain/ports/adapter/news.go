package adapter

import (
	"context"

	"telegram-ai-chatbot/internal/domain/model"
)

// NewsProviderAdapter is the port for the external news REST API.
type NewsProviderAdapter interface {
	// FetchEverything returns up to limit articles matching query,
	// newest first.
	FetchEverything(ctx context.Context, query string, limit int) ([]model.Article, error)
}
