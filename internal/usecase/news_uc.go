// File: internal/usecase/news_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"telegram-ai-chatbot/internal/domain/model"
	"telegram-ai-chatbot/internal/domain/ports/adapter"
	"telegram-ai-chatbot/internal/infra/logging"
)

// Compile-time check
var _ NewsUseCase = (*newsUC)(nil)

type NewsUseCase interface {
	// Digest returns a formatted headline list for the topic.
	Digest(ctx context.Context, topic string) (string, error)
	// Analyze returns the digest plus a keyword-sentiment verdict,
	// used for investment-flavored questions.
	Analyze(ctx context.Context, topic string) (string, error)
}

type newsUC struct {
	provider adapter.NewsProviderAdapter
	analyzer *SentimentAnalyzer
	pageSize int
	log      *zerolog.Logger
}

func NewNewsUseCase(provider adapter.NewsProviderAdapter, analyzer *SentimentAnalyzer, pageSize int, logger *zerolog.Logger) *newsUC {
	if pageSize <= 0 {
		pageSize = 5
	}
	return &newsUC{provider: provider, analyzer: analyzer, pageSize: pageSize, log: logger}
}

func (n *newsUC) Digest(ctx context.Context, topic string) (string, error) {
	topic = normalizeTopic(topic, "world news")
	articles, err := n.fetch(ctx, topic)
	if err != nil {
		return "", err
	}
	if len(articles) == 0 {
		return fmt.Sprintf("No recent articles found for %q.", topic), nil
	}
	return formatDigest(topic, articles), nil
}

func (n *newsUC) Analyze(ctx context.Context, topic string) (string, error) {
	topic = normalizeTopic(topic, "stock market")
	articles, err := n.fetch(ctx, topic)
	if err != nil {
		return "", err
	}
	if len(articles) == 0 {
		return fmt.Sprintf("No recent articles found for %q.", topic), nil
	}

	report := n.analyzer.Report(articles)
	var sb strings.Builder
	sb.WriteString(formatDigest(topic, articles))
	sb.WriteString("\n")
	sb.WriteString(formatVerdict(report))
	return sb.String(), nil
}

func (n *newsUC) fetch(ctx context.Context, topic string) ([]model.Article, error) {
	log := logging.With(ctx, n.log)
	defer logging.TraceDuration(log, "NewsUC.fetch")()

	articles, err := n.provider.FetchEverything(ctx, topic, n.pageSize)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("news fetch failed")
		return nil, fmt.Errorf("fetch news: %w", err)
	}
	return filterByTopic(articles, topic), nil
}

// filterByTopic keeps articles whose title or description mentions any word of
// the topic. The upstream query already narrows results; this pass drops the
// stragglers the API matched on unrelated fields.
func filterByTopic(articles []model.Article, topic string) []model.Article {
	words := tokenize(topic)
	if len(words) == 0 {
		return articles
	}
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		text := strings.ToLower(a.Title + " " + a.Description)
		for _, w := range words {
			if strings.Contains(text, w) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

func normalizeTopic(topic, fallback string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return fallback
	}
	return topic
}

func formatDigest(topic string, articles []model.Article) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📰 Latest on %s:\n", topic))
	for i, a := range articles {
		sb.WriteString(fmt.Sprintf("%d) %s", i+1, a.Title))
		if a.Source != "" {
			sb.WriteString(fmt.Sprintf(" — %s", a.Source))
		}
		sb.WriteString("\n")
		if a.URL != "" {
			sb.WriteString(a.URL + "\n")
		}
	}
	return sb.String()
}

func formatVerdict(r model.SentimentReport) string {
	icon := "➖"
	switch r.Label {
	case model.SentimentPositive:
		icon = "📈"
	case model.SentimentNegative:
		icon = "📉"
	}
	return fmt.Sprintf("%s Sentiment across %d articles: %s (%d bullish / %d bearish signals)",
		icon, r.Articles, r.Label, r.Positive, r.Negative)
}
