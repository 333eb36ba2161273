package llm

import (
	"time"

	"github.com/google/uuid"
)

// Message roles. A conversation only ever holds user and assistant turns;
// the persona text travels out-of-band (or as a synthetic system entry,
// depending on the provider).
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage is a single turn of an agent conversation. Immutable once
// appended to a conversation.
type ChatMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"` // "user" or "assistant"
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // wall clock, milliseconds
}

// NewUserMessage builds a user turn stamped with the current time.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}
}

func newAssistantMessage(content string) *ChatMessage {
	return &ChatMessage{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Settings is the per-agent dispatch configuration. One record exists per
// agent id; it is read fresh from the settings store before every dispatch.
type Settings struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	APIKey      string  `json:"api_key,omitempty"`
	BaseURL     string  `json:"api_base_url,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// Provider selectors. Everything past the two native adapters speaks the
// OpenAI chat-completions wire format against a vendor-specific base URL.
const (
	ProviderGoogle     = "google-ai-studio"
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderXAI        = "xai"
	ProviderPerplexity = "perplexity"
	ProviderGroq       = "groq"
	ProviderDeepSeek   = "deepseek"
	ProviderOllama     = "ollama"
)

// Default model per adapter family, used when the agent's settings record
// carries no model id.
const (
	defaultGoogleModel     = "gemini-3-pro-preview"
	defaultAnthropicModel  = "claude-3-5-sonnet-20241022"
	defaultOpenAIModel     = "gpt-4-turbo-preview"
	defaultTemperature     = 0.7
	defaultAnthropicTokens = 4096
)

// DefaultSettings returns the settings record seeded for every agent at
// store initialization.
func DefaultSettings() Settings {
	return Settings{
		Provider:    ProviderGoogle,
		Model:       defaultGoogleModel,
		Temperature: defaultTemperature,
	}
}
