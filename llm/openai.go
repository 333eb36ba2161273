package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// openAIBaseURLs maps each OpenAI-compatible provider selector to its
// endpoint. All of them speak the same chat-completions schema; only the
// base URL differs.
var openAIBaseURLs = map[string]string{
	ProviderOpenAI:     "https://api.openai.com/v1",
	ProviderXAI:        "https://api.x.ai/v1",
	ProviderPerplexity: "https://api.perplexity.ai",
	ProviderGroq:       "https://api.groq.com/openai/v1",
	ProviderDeepSeek:   "https://api.deepseek.com",
	ProviderOllama:     "http://localhost:11434/v1",
}

// openAIErrorEnvelope mirrors the error object some vendors embed in a
// transport-level success.
type openAIErrorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// embeddedErrorTransport surfaces error objects that arrive inside a 200
// response. go-openai decodes such a body into an empty choice list, which
// would drop the vendor's message before classification.
type embeddedErrorTransport struct {
	base http.RoundTripper
}

func (t *embeddedErrorTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		return resp, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	var envelope openAIErrorEnvelope
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
		return nil, errors.New(envelope.Error.Message)
	}
	return resp, nil
}

// openAIGenerate posts the conversation to an OpenAI-compatible
// chat-completions endpoint. The persona text is injected as a leading
// role-system message; the rest of the conversation maps 1:1.
func (d *Dispatcher) openAIGenerate(ctx context.Context, apiKey, baseURL, systemPrompt string, messages []ChatMessage, settings Settings, temperature float64) (string, error) {
	clientConfig := openai.DefaultConfig(apiKey)
	if settings.BaseURL != "" {
		clientConfig.BaseURL = settings.BaseURL
	} else {
		clientConfig.BaseURL = baseURL
	}

	baseClient := d.httpClient()
	transport := baseClient.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	clientConfig.HTTPClient = &http.Client{
		Transport: &embeddedErrorTransport{base: transport},
		Timeout:   baseClient.Timeout,
	}
	client := openai.NewClientWithConfig(clientConfig)

	model := settings.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	chatMessages = append(chatMessages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, msg := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    chatMessages,
		Temperature: float32(temperature),
	}
	if settings.MaxTokens > 0 {
		req.MaxTokens = settings.MaxTokens
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
