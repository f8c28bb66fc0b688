package ai

import (
	tiktoken "github.com/pkoukk/tiktoken-go"

	"telegram-ai-chatbot/internal/domain/ports/adapter"
)

// perMessageOverhead approximates the chat framing tokens OpenAI adds around
// each message (role, separators).
const perMessageOverhead = 4

// estimateTokens counts prompt tokens with tiktoken. Unknown models fall back
// to cl100k_base, which is close enough for budget checks.
func estimateTokens(model string, messages []adapter.Message) (int, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return 0, err
		}
	}
	total := 0
	for _, m := range messages {
		total += len(enc.Encode(m.Content, nil, nil)) + perMessageOverhead
	}
	return total, nil
}
