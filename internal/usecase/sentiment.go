// File: internal/usecase/sentiment.go
package usecase

import (
	"strings"
	"unicode"

	"telegram-ai-chatbot/internal/domain/model"
)

// Keyword lists for the investment heuristic. Matching is whole-word on
// lowercased title + description; this is a dictionary count, not NLP.
var bullishWords = []string{
	"gain", "gains", "rally", "rallies", "surge", "surges", "soar", "soars",
	"rise", "rises", "record", "profit", "profits", "growth", "bullish",
	"beat", "beats", "strong", "boost", "boosts", "recovery", "rebound",
	"upgrade", "optimism", "high", "highs",
}

var bearishWords = []string{
	"loss", "losses", "drop", "drops", "fall", "falls", "plunge", "plunges",
	"decline", "declines", "crash", "crashes", "bearish", "miss", "misses",
	"weak", "cut", "cuts", "fear", "fears", "recession", "slump", "layoff",
	"layoffs", "downgrade", "inflation", "low", "lows",
}

// SentimentAnalyzer scores articles by counting bullish and bearish keywords.
type SentimentAnalyzer struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

func NewSentimentAnalyzer() *SentimentAnalyzer {
	a := &SentimentAnalyzer{
		positive: make(map[string]struct{}, len(bullishWords)),
		negative: make(map[string]struct{}, len(bearishWords)),
	}
	for _, w := range bullishWords {
		a.positive[w] = struct{}{}
	}
	for _, w := range bearishWords {
		a.negative[w] = struct{}{}
	}
	return a
}

// Score counts keyword hits in one article's title and description.
func (a *SentimentAnalyzer) Score(article model.Article) model.SentimentScore {
	s := model.SentimentScore{}
	for _, word := range tokenize(article.Title + " " + article.Description) {
		if _, ok := a.positive[word]; ok {
			s.Positive++
		}
		if _, ok := a.negative[word]; ok {
			s.Negative++
		}
	}
	s.Label = label(s.Positive, s.Negative)
	return s
}

// Report aggregates Score over a batch of articles.
func (a *SentimentAnalyzer) Report(articles []model.Article) model.SentimentReport {
	r := model.SentimentReport{Articles: len(articles)}
	for _, art := range articles {
		s := a.Score(art)
		r.Positive += s.Positive
		r.Negative += s.Negative
	}
	r.Label = label(r.Positive, r.Negative)
	return r
}

func label(pos, neg int) string {
	switch {
	case pos > neg:
		return model.SentimentPositive
	case neg > pos:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
