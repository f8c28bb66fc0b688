// File: internal/usecase/sentiment_test.go
package usecase

import (
	"testing"

	"telegram-ai-chatbot/internal/domain/model"
)

func TestScoreCountsKeywords(t *testing.T) {
	a := NewSentimentAnalyzer()

	s := a.Score(model.Article{
		Title:       "Markets rally as profits surge",
		Description: "Analysts fear a later decline",
	})
	if s.Positive != 3 {
		t.Fatalf("positive = %d, want 3 (rally, profits, surge)", s.Positive)
	}
	if s.Negative != 2 {
		t.Fatalf("negative = %d, want 2 (fear, decline)", s.Negative)
	}
	if s.Label != model.SentimentPositive {
		t.Fatalf("label = %q", s.Label)
	}
}

func TestScoreWholeWordsOnly(t *testing.T) {
	a := NewSentimentAnalyzer()

	// "gainsborough" must not count as "gains".
	s := a.Score(model.Article{Title: "Gainsborough exhibition opens"})
	if s.Positive != 0 || s.Negative != 0 {
		t.Fatalf("substring matched: %+v", s)
	}
	if s.Label != model.SentimentNeutral {
		t.Fatalf("label = %q, want neutral", s.Label)
	}
}

func TestScoreCaseAndPunctuation(t *testing.T) {
	a := NewSentimentAnalyzer()

	s := a.Score(model.Article{Title: "CRASH! Shares PLUNGE, fears grow."})
	if s.Negative != 3 {
		t.Fatalf("negative = %d, want 3 (crash, plunge, fears)", s.Negative)
	}
}

func TestReportAggregatesAndLabels(t *testing.T) {
	a := NewSentimentAnalyzer()

	articles := []model.Article{
		{Title: "Profits surge"},
		{Title: "Heavy losses ahead"},
		{Title: "Recession fears deepen"},
	}
	r := a.Report(articles)
	if r.Articles != 3 {
		t.Fatalf("articles = %d", r.Articles)
	}
	if r.Positive != 2 || r.Negative != 3 {
		t.Fatalf("counts = +%d/-%d, want +2/-3", r.Positive, r.Negative)
	}
	if r.Label != model.SentimentNegative {
		t.Fatalf("label = %q, want negative", r.Label)
	}
}

func TestReportTieIsNeutral(t *testing.T) {
	a := NewSentimentAnalyzer()

	r := a.Report([]model.Article{{Title: "Gains offset by losses"}})
	if r.Positive != 1 || r.Negative != 1 || r.Label != model.SentimentNeutral {
		t.Fatalf("tie report = %+v", r)
	}
}

func TestReportEmptyIsNeutral(t *testing.T) {
	a := NewSentimentAnalyzer()

	r := a.Report(nil)
	if r.Articles != 0 || r.Label != model.SentimentNeutral {
		t.Fatalf("empty report = %+v", r)
	}
}
