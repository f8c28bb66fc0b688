package ai

import (
	"context"
	"testing"

	"telegram-ai-chatbot/internal/domain/ports/adapter"
)

func TestEstimateTokensCountsPerMessage(t *testing.T) {
	msgs := []adapter.Message{{Role: "user", Content: "hello world, how are you today?"}}

	n, err := estimateTokens("gpt-4o-mini", msgs)
	if err != nil {
		t.Skipf("tiktoken encoding data unavailable: %v", err)
	}
	if n <= perMessageOverhead {
		t.Fatalf("tokens = %d, want more than the framing overhead alone", n)
	}

	longer, err := estimateTokens("gpt-4o-mini", append(msgs, adapter.Message{
		Role: "assistant", Content: "doing fine, thanks for asking",
	}))
	if err != nil {
		t.Fatalf("estimateTokens: %v", err)
	}
	if longer <= n {
		t.Fatalf("two messages counted %d tokens, one counted %d", longer, n)
	}
}

func TestEstimateTokensUnknownModelFallsBack(t *testing.T) {
	msgs := []adapter.Message{{Role: "user", Content: "fallback encoding check"}}

	n, err := estimateTokens("definitely-not-a-model", msgs)
	if err != nil {
		t.Skipf("tiktoken encoding data unavailable: %v", err)
	}
	if n <= perMessageOverhead {
		t.Fatalf("fallback count = %d, want content tokens on top of overhead", n)
	}
}

func TestAdapterCountTokensUsesEstimator(t *testing.T) {
	msgs := []adapter.Message{{Role: "user", Content: "count me"}}

	oa, err := NewOpenAIAdapter("test-key", "gpt-4o-mini", 256, 0.7)
	if err != nil {
		t.Fatalf("NewOpenAIAdapter: %v", err)
	}
	got, err := oa.CountTokens(context.Background(), "gpt-4o-mini", msgs)
	if err != nil {
		t.Skipf("tiktoken encoding data unavailable: %v", err)
	}
	want, err := estimateTokens("gpt-4o-mini", msgs)
	if err != nil {
		t.Fatalf("estimateTokens: %v", err)
	}
	if got != want {
		t.Fatalf("adapter counted %d, estimator %d", got, want)
	}
}
