package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"pm-cockpit/agents"
)

func anthropicOK(text string) string {
	return `{"content":[{"type":"text","text":"` + text + `"}]}`
}

// countingServer records every request it receives.
func countingServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var count atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts, &count
}

func TestSendCredentialMissing(t *testing.T) {
	ts, count := countingServer(t, http.StatusOK, anthropicOK("hi"))

	d := NewDispatcher("") // no global fallback
	settings := Settings{Provider: ProviderAnthropic, Model: "claude-3-5-sonnet-20241022", BaseURL: ts.URL}

	_, err := d.Send(context.Background(), agents.RiskDecisionAnalyst, []ChatMessage{NewUserMessage("oi")}, settings)
	if KindOf(err) != ErrCredentialMissing {
		t.Fatalf("expected ErrCredentialMissing, got %v", err)
	}
	if count.Load() != 0 {
		t.Errorf("no network call may happen without a credential, saw %d", count.Load())
	}
}

func TestSendProviderUnsupported(t *testing.T) {
	d := NewDispatcher("global-key")
	settings := Settings{Provider: "banana-ai", Model: "m"}

	_, err := d.Send(context.Background(), agents.PMAIPartner, []ChatMessage{NewUserMessage("oi")}, settings)
	if KindOf(err) != ErrProviderUnsupported {
		t.Fatalf("expected ErrProviderUnsupported, got %v", err)
	}
}

func TestCredentialPrecedence(t *testing.T) {
	var lastKey atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastKey.Store(r.Header.Get("x-api-key"))
		w.Write([]byte(anthropicOK("ok")))
	}))
	defer ts.Close()

	d := NewDispatcher("global-key")
	history := []ChatMessage{NewUserMessage("oi")}

	// Agent-specific key wins.
	settings := Settings{Provider: ProviderAnthropic, APIKey: "agent-key", BaseURL: ts.URL}
	if _, err := d.Send(context.Background(), agents.PMAIPartner, history, settings); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if got := lastKey.Load(); got != "agent-key" {
		t.Errorf("agent key should take precedence, request carried %q", got)
	}

	// Removing it falls back to the global key within the same process run.
	settings.APIKey = ""
	if _, err := d.Send(context.Background(), agents.PMAIPartner, history, settings); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if got := lastKey.Load(); got != "global-key" {
		t.Errorf("expected fallback to global key, request carried %q", got)
	}
}

func TestAnthropicRequestShape(t *testing.T) {
	var captured anthropicRequest
	var version string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		version = r.Header.Get("anthropic-version")
		json.NewDecoder(r.Body).Decode(&captured)
		w.Write([]byte(anthropicOK("resposta")))
	}))
	defer ts.Close()

	d := NewDispatcher("")
	history := []ChatMessage{
		NewUserMessage("primeira pergunta"),
		{ID: "a1", Role: RoleAssistant, Content: "primeira resposta", Timestamp: 1},
		NewUserMessage("segunda pergunta"),
	}
	settings := Settings{Provider: ProviderAnthropic, APIKey: "k", Model: "claude-3-5-sonnet-20241022", Temperature: 0.2, BaseURL: ts.URL}

	reply, err := d.Send(context.Background(), agents.RiskDecisionAnalyst, history, settings)
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if version != anthropicVersion {
		t.Errorf("anthropic-version header = %q", version)
	}
	// The entire message list rides in the conversation array, last turn included.
	if len(captured.Messages) != 3 {
		t.Fatalf("expected 3 messages on the wire, got %d", len(captured.Messages))
	}
	if captured.Messages[2].Role != RoleUser || captured.Messages[2].Content != "segunda pergunta" {
		t.Errorf("last wire message = %+v", captured.Messages[2])
	}
	agent, _ := agents.Lookup(agents.RiskDecisionAnalyst)
	if captured.System != agent.SystemPrompt {
		t.Error("persona text must ride in the top-level system field")
	}
	if captured.MaxTokens != defaultAnthropicTokens {
		t.Errorf("max_tokens = %d, want the explicit %d default", captured.MaxTokens, defaultAnthropicTokens)
	}
	if captured.Temperature != 0.2 {
		t.Errorf("temperature = %v, want 0.2 passed through unclamped", captured.Temperature)
	}

	if reply.Role != RoleAssistant || reply.Content != "resposta" || reply.ID == "" {
		t.Errorf("unexpected reply %+v", reply)
	}
	if reply.Timestamp < history[2].Timestamp {
		t.Error("assistant timestamp must not precede the user message")
	}
}

func TestAnthropicEmbeddedErrorPayload(t *testing.T) {
	// Several vendors embed an error object in a transport-level success.
	ts, _ := countingServer(t, http.StatusOK, `{"error":{"type":"rate_limit_error","message":"You exceeded your current quota"}}`)

	d := NewDispatcher("")
	settings := Settings{Provider: ProviderAnthropic, APIKey: "k", BaseURL: ts.URL}

	_, err := d.Send(context.Background(), agents.PMAIPartner, []ChatMessage{NewUserMessage("oi")}, settings)
	if KindOf(err) != ErrQuotaExceeded {
		t.Fatalf("embedded error payload should classify as quota, got %v", err)
	}
}

func TestAnthropicHTTPErrorClassified(t *testing.T) {
	ts, _ := countingServer(t, http.StatusServiceUnavailable, `{"error":{"message":"overloaded"}}`)

	d := NewDispatcher("")
	settings := Settings{Provider: ProviderAnthropic, APIKey: "k", BaseURL: ts.URL}

	_, err := d.Send(context.Background(), agents.PMAIPartner, []ChatMessage{NewUserMessage("oi")}, settings)
	if KindOf(err) != ErrProviderUnavailable {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestOpenAICompatibleRequestShape(t *testing.T) {
	type wireMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	var captured struct {
		Model       string        `json:"model"`
		Messages    []wireMessage `json:"messages"`
		Temperature float64       `json:"temperature"`
	}
	var auth, path string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"pronto"}}]}`))
	}))
	defer ts.Close()

	d := NewDispatcher("")
	history := []ChatMessage{
		NewUserMessage("oi"),
		{ID: "a1", Role: RoleAssistant, Content: "olá", Timestamp: 1},
		NewUserMessage("liste 3 riscos"),
	}
	settings := Settings{Provider: ProviderGroq, APIKey: "gsk-test", Model: "llama-3.3-70b", BaseURL: ts.URL}

	reply, err := d.Send(context.Background(), agents.MeetingDocsCopilot, history, settings)
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if auth != "Bearer gsk-test" {
		t.Errorf("Authorization = %q", auth)
	}
	if path != "/chat/completions" {
		t.Errorf("path = %q, want /chat/completions", path)
	}
	// System prompt injected as the leading pseudo-message, then the full
	// conversation 1:1.
	if len(captured.Messages) != 4 {
		t.Fatalf("expected 4 wire messages, got %d", len(captured.Messages))
	}
	agent, _ := agents.Lookup(agents.MeetingDocsCopilot)
	if captured.Messages[0].Role != RoleSystem || captured.Messages[0].Content != agent.SystemPrompt {
		t.Error("first wire message must be the persona as role system")
	}
	if captured.Messages[3].Content != "liste 3 riscos" {
		t.Errorf("last wire message = %+v", captured.Messages[3])
	}
	if captured.Temperature != defaultTemperature {
		t.Errorf("temperature = %v, want the 0.7 default", captured.Temperature)
	}
	if reply.Content != "pronto" {
		t.Errorf("reply = %q", reply.Content)
	}
}

func TestOpenAIEmbeddedErrorPayload(t *testing.T) {
	// The compatible vendors embed error objects in 200 payloads too.
	ts, _ := countingServer(t, http.StatusOK, `{"error":{"message":"You exceeded your current quota"}}`)

	d := NewDispatcher("")
	settings := Settings{Provider: ProviderOpenAI, APIKey: "k", BaseURL: ts.URL}

	_, err := d.Send(context.Background(), agents.PMAIPartner, []ChatMessage{NewUserMessage("oi")}, settings)
	if KindOf(err) != ErrQuotaExceeded {
		t.Fatalf("embedded error payload should classify as quota, got %v", err)
	}
	if !strings.Contains(err.Error(), "You exceeded your current quota") {
		t.Errorf("vendor message must be preserved, got %q", err.Error())
	}
}

func TestProviderIsolation(t *testing.T) {
	// Switching one agent's provider changes only that agent's endpoint.
	tsA, countA := countingServer(t, http.StatusOK, anthropicOK("a"))
	tsB, countB := countingServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"b"}}]}`)

	d := NewDispatcher("")
	history := []ChatMessage{NewUserMessage("oi")}

	settingsA := Settings{Provider: ProviderAnthropic, APIKey: "k", BaseURL: tsA.URL}
	settingsB := Settings{Provider: ProviderOpenAI, APIKey: "k", BaseURL: tsB.URL}

	if _, err := d.Send(context.Background(), agents.PMAIPartner, history, settingsA); err != nil {
		t.Fatalf("send A failed: %v", err)
	}
	if _, err := d.Send(context.Background(), agents.UIScreensDesigner, history, settingsB); err != nil {
		t.Fatalf("send B failed: %v", err)
	}

	if countA.Load() != 1 || countB.Load() != 1 {
		t.Errorf("each agent must hit only its own endpoint: A=%d B=%d", countA.Load(), countB.Load())
	}
}

func TestGoogleRequestShapeAndFallback(t *testing.T) {
	type wirePart struct {
		Text string `json:"text"`
	}
	type wireContent struct {
		Role  string     `json:"role"`
		Parts []wirePart `json:"parts"`
	}
	var captured struct {
		Contents          []wireContent `json:"contents"`
		SystemInstruction *wireContent  `json:"systemInstruction"`
		GenerationConfig  *struct {
			Temperature float64 `json:"temperature"`
		} `json:"generationConfig"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		// Successful completion with no text at all.
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[]}}]}`))
	}))
	defer ts.Close()

	d := NewDispatcher("")
	history := []ChatMessage{
		NewUserMessage("contexto"),
		{ID: "a1", Role: RoleAssistant, Content: "entendido", Timestamp: 1},
		NewUserMessage("liste 3 riscos de uma migração para nuvem"),
	}
	settings := Settings{Provider: ProviderGoogle, APIKey: "g-key", Model: "gemini-3-pro-preview", Temperature: 0.2, BaseURL: ts.URL}

	reply, err := d.Send(context.Background(), agents.RiskDecisionAnalyst, history, settings)
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	// History rides as prior turns plus the last message as the current
	// user turn, with assistant turns mapped to the model role.
	if len(captured.Contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(captured.Contents))
	}
	if captured.Contents[1].Role != "model" {
		t.Errorf("assistant turn must map to role model, got %q", captured.Contents[1].Role)
	}
	last := captured.Contents[2]
	if last.Role != "user" || len(last.Parts) == 0 || last.Parts[0].Text != "liste 3 riscos de uma migração para nuvem" {
		t.Errorf("last content = %+v", last)
	}
	agent, _ := agents.Lookup(agents.RiskDecisionAnalyst)
	if captured.SystemInstruction == nil || len(captured.SystemInstruction.Parts) == 0 ||
		captured.SystemInstruction.Parts[0].Text != agent.SystemPrompt {
		t.Error("persona text must ride out-of-band as systemInstruction")
	}
	if captured.GenerationConfig == nil || captured.GenerationConfig.Temperature < 0.19 || captured.GenerationConfig.Temperature > 0.21 {
		t.Errorf("generationConfig = %+v, want temperature 0.2", captured.GenerationConfig)
	}

	// Empty-but-successful completion is not a failure.
	if reply.Content != googleEmptyReply {
		t.Errorf("empty completion should substitute the fixed fallback, got %q", reply.Content)
	}
}
