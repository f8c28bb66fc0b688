package model

import "time"

// Article is one news item as returned by the news provider.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Source      string    `json:"source,omitempty"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Sentiment labels produced by the keyword analyzer.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// SentimentScore is the keyword-count verdict for a single article.
type SentimentScore struct {
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
	Label    string `json:"label"`
}

// SentimentReport aggregates scores over a batch of articles.
type SentimentReport struct {
	Articles int    `json:"articles"`
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
	Label    string `json:"label"`
}
