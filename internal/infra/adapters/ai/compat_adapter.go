package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"telegram-ai-chatbot/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIServiceAdapter = (*CompatAdapter)(nil)

// CompatAdapter implements adapter.AIServiceAdapter against any
// OpenAI-compatible gateway (Metis, OpenRouter, self-hosted proxies).
// Chat completions path is the same as OpenAI: /chat/completions
// Authorization: Bearer <API_KEY>
type CompatAdapter struct {
	apiKey      string
	base        string // e.g., https://api.metisai.ir/openai/v1
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

func NewCompatAdapter(apiKey, model, base string, maxTokens int, temperature float64) (*CompatAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("compat api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if base == "" {
		return nil, errors.New("compat base url empty")
	}
	return &CompatAdapter{
		apiKey:      apiKey,
		base:        strings.TrimRight(base, "/"),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		client:      &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *CompatAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{c.model}, nil
}

func (c *CompatAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	if model == "" {
		model = c.model
	}
	return adapter.ModelInfo{
		Name:        model,
		Description: "OpenAI-compatible gateway model",
		MaxTokens:   c.maxTokens,
		Supports:    []string{"text"},
	}, nil
}

func (c *CompatAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	if model == "" {
		model = c.model
	}
	// Gateways rarely expose a counting endpoint; tiktoken is close enough.
	return estimateTokens(model, messages)
}

func (c *CompatAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	reply, _, err := c.ChatWithUsage(ctx, model, messages)
	return reply, err
}

func (c *CompatAdapter) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	if model == "" {
		model = c.model
	}

	// Build the request using the shared adapter.Message with JSON tags
	reqBody := struct {
		Model       string            `json:"model"`
		Messages    []adapter.Message `json:"messages"`
		MaxTokens   int               `json:"max_tokens,omitempty"`
		Temperature float64           `json:"temperature,omitempty"`
	}{Model: model, Messages: messages, MaxTokens: c.maxTokens, Temperature: c.temperature}

	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", adapter.Usage{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", adapter.Usage{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", adapter.Usage{}, fmt.Errorf("compat(openai) http %d", resp.StatusCode)
	}

	var payload struct {
		Choices []struct {
			Message adapter.Message `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", adapter.Usage{}, err
	}

	u := adapter.Usage{
		PromptTokens:     payload.Usage.PromptTokens,
		CompletionTokens: payload.Usage.CompletionTokens,
		TotalTokens:      payload.Usage.TotalTokens,
	}
	for _, ch := range payload.Choices {
		if ch.Message.Content != "" {
			return ch.Message.Content, u, nil
		}
	}
	return "", u, errors.New("no choice content")
}
