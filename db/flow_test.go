package db

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"pm-cockpit/agents"
	"pm-cockpit/llm"
)

// sendOnce runs one full send cycle the way the presentation layer does:
// append the user turn, dispatch the whole history, append the reply on
// success and leave the conversation untouched on failure.
func sendOnce(t *testing.T, database *DB, d *llm.Dispatcher, key string, agentID agents.ID, input string) error {
	t.Helper()

	userMsg := llm.NewUserMessage(input)
	if err := database.AppendMessage(key, userMsg); err != nil {
		t.Fatalf("append user message: %v", err)
	}

	history, err := database.ListMessages(key)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	settings, err := database.AgentSettings(agentID)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}

	reply, err := d.Send(context.Background(), agentID, history, settings)
	if err != nil {
		return err
	}
	if err := database.AppendMessage(key, *reply); err != nil {
		t.Fatalf("append assistant message: %v", err)
	}
	return nil
}

func TestSendFlowAlternation(t *testing.T) {
	var replies atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := replies.Add(1)
		fmt.Fprintf(w, `{"content":[{"type":"text","text":"resposta %d"}]}`, n)
	}))
	defer ts.Close()

	database := openTestDB(t)
	if err := database.UpdateAgentSettings(agents.RiskDecisionAnalyst, llm.Settings{
		Provider: llm.ProviderAnthropic,
		Model:    "claude-3-5-sonnet-20241022",
		APIKey:   "k",
		BaseURL:  ts.URL,
	}); err != nil {
		t.Fatal(err)
	}

	d := llm.NewDispatcher("")
	key := ChatKey("p1", agents.RiskDecisionAnalyst)

	for i := 1; i <= 3; i++ {
		if err := sendOnce(t, database, d, key, agents.RiskDecisionAnalyst, fmt.Sprintf("pergunta %d", i)); err != nil {
			t.Fatalf("send %d failed: %v", i, err)
		}
	}

	messages, err := database.ListMessages(key)
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 6 {
		t.Fatalf("expected 6 messages after 3 sends, got %d", len(messages))
	}
	// Strict user/assistant alternation, no gaps, no reordering.
	for i, msg := range messages {
		want := llm.RoleUser
		if i%2 == 1 {
			want = llm.RoleAssistant
		}
		if msg.Role != want {
			t.Errorf("message %d role = %s, want %s", i, msg.Role, want)
		}
	}
	if messages[4].Content != "pergunta 3" || messages[5].Content != "resposta 3" {
		t.Errorf("tail of conversation out of order: %q / %q", messages[4].Content, messages[5].Content)
	}
}

func TestFailedSendLeavesNoPartialState(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"You exceeded your current quota"}}`, http.StatusTooManyRequests)
	}))
	defer ts.Close()

	database := openTestDB(t)
	if err := database.UpdateAgentSettings(agents.PMAIPartner, llm.Settings{
		Provider: llm.ProviderAnthropic,
		APIKey:   "k",
		BaseURL:  ts.URL,
	}); err != nil {
		t.Fatal(err)
	}

	d := llm.NewDispatcher("")
	key := ChatKey("", agents.PMAIPartner)

	err := sendOnce(t, database, d, key, agents.PMAIPartner, "pergunta")
	if llm.KindOf(err) != llm.ErrQuotaExceeded {
		t.Fatalf("expected quota error, got %v", err)
	}

	messages, listErr := database.ListMessages(key)
	if listErr != nil {
		t.Fatal(listErr)
	}
	// The user turn that triggered the call stays; no orphaned assistant
	// message is appended.
	if len(messages) != 1 || messages[0].Role != llm.RoleUser {
		t.Errorf("conversation after failure = %+v", messages)
	}
}
