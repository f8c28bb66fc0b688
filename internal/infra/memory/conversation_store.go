// File: internal/infra/memory/conversation_store.go
package memory

import (
	"sync"

	"telegram-ai-chatbot/internal/domain/model"
)

// ConversationStore keeps a bounded per-user exchange history used to build
// prompt context. One exchange is a user turn plus an assistant turn, so a
// user's history never exceeds 2*maxExchanges entries; the oldest exchange is
// dropped first. Entries never expire on their own — only Clear removes them.
type ConversationStore struct {
	mu           sync.RWMutex
	maxExchanges int
	histories    map[string][]model.Turn
}

// ConversationStats is a diagnostic snapshot.
type ConversationStats struct {
	ActiveUsers int `json:"active_users"`
	TotalTurns  int `json:"total_turns"`
}

func NewConversationStore(maxExchanges int) *ConversationStore {
	return &ConversationStore{
		maxExchanges: maxExchanges,
		histories:    make(map[string][]model.Turn),
	}
}

// History returns the user's turns oldest first. The slice is a copy; callers
// may not mutate stored state through it.
func (s *ConversationStore) History(userID string) []model.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.histories[userID]
	if len(history) == 0 {
		return nil
	}
	clone := make([]model.Turn, len(history))
	copy(clone, history)
	return clone
}

// AppendExchange records one completed exchange and trims from the front when
// the bound is exceeded.
func (s *ConversationStore) AppendExchange(userID, userText, assistantText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.histories[userID],
		model.Turn{Role: model.RoleUser, Content: userText},
		model.Turn{Role: model.RoleAssistant, Content: assistantText},
	)
	if max := 2 * s.maxExchanges; len(history) > max {
		history = history[len(history)-max:]
	}
	s.histories[userID] = history
}

// Clear deletes the user's history entirely.
func (s *ConversationStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.histories, userID)
}

// Stats sums turn counts across all users.
func (s *ConversationStore) Stats() ConversationStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := ConversationStats{ActiveUsers: len(s.histories)}
	for _, h := range s.histories {
		st.TotalTurns += len(h)
	}
	return st
}
