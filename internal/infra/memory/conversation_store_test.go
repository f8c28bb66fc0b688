package memory

import (
	"testing"

	"telegram-ai-chatbot/internal/domain/model"
)

func TestHistoryBoundDropsOldestFirst(t *testing.T) {
	s := NewConversationStore(2)

	s.AppendExchange("u1", "one", "reply one")
	s.AppendExchange("u1", "two", "reply two")
	s.AppendExchange("u1", "three", "reply three")

	h := s.History("u1")
	if len(h) != 4 {
		t.Fatalf("history length = %d, want 4", len(h))
	}
	if h[0].Content != "two" || h[1].Content != "reply two" {
		t.Fatalf("oldest retained exchange = %q/%q, want two/reply two", h[0].Content, h[1].Content)
	}
	if h[2].Content != "three" || h[3].Content != "reply three" {
		t.Fatalf("newest exchange = %q/%q, want three/reply three", h[2].Content, h[3].Content)
	}
}

func TestSingleExchangeBound(t *testing.T) {
	s := NewConversationStore(1)

	s.AppendExchange("u1", "hi", "hello")
	s.AppendExchange("u1", "bye", "goodbye")

	h := s.History("u1")
	want := []model.Turn{
		{Role: model.RoleUser, Content: "bye"},
		{Role: model.RoleAssistant, Content: "goodbye"},
	}
	if len(h) != len(want) {
		t.Fatalf("history length = %d, want %d", len(h), len(want))
	}
	for i := range want {
		if h[i] != want[i] {
			t.Fatalf("turn %d = %+v, want %+v", i, h[i], want[i])
		}
	}
}

func TestRolesAlternate(t *testing.T) {
	s := NewConversationStore(3)
	s.AppendExchange("u1", "q1", "a1")
	s.AppendExchange("u1", "q2", "a2")

	for i, turn := range s.History("u1") {
		want := model.RoleUser
		if i%2 == 1 {
			want = model.RoleAssistant
		}
		if turn.Role != want {
			t.Fatalf("turn %d role = %q, want %q", i, turn.Role, want)
		}
	}
}

func TestClearRemovesUser(t *testing.T) {
	s := NewConversationStore(2)
	s.AppendExchange("u1", "hi", "hello")
	s.Clear("u1")

	if h := s.History("u1"); len(h) != 0 {
		t.Fatalf("history after clear = %d turns, want 0", len(h))
	}
	if got := s.Stats().ActiveUsers; got != 0 {
		t.Fatalf("active users after clear = %d, want 0", got)
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	s := NewConversationStore(2)
	s.AppendExchange("u1", "hi", "hello")

	h := s.History("u1")
	h[0].Content = "mutated"

	if got := s.History("u1")[0].Content; got != "hi" {
		t.Fatalf("stored turn = %q, caller mutation leaked", got)
	}
}

func TestStatsAcrossUsers(t *testing.T) {
	s := NewConversationStore(5)
	s.AppendExchange("u1", "a", "b")
	s.AppendExchange("u1", "c", "d")
	s.AppendExchange("u2", "e", "f")

	st := s.Stats()
	if st.ActiveUsers != 2 {
		t.Fatalf("active users = %d, want 2", st.ActiveUsers)
	}
	if st.TotalTurns != 6 {
		t.Fatalf("total turns = %d, want 6", st.TotalTurns)
	}
}
