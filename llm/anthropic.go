package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion        = "2023-06-01"
)

// anthropicMessage is one entry of the conversation array.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicRequest is the /messages request body. The system instruction is
// a dedicated top-level field and max_tokens is mandatory (the API has no
// server-side default).
type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	// Some failures arrive as an error object inside a 200 payload.
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// anthropicGenerate posts the whole conversation (including the last turn)
// to an Anthropic-style /messages endpoint.
func (d *Dispatcher) anthropicGenerate(ctx context.Context, apiKey, systemPrompt string, messages []ChatMessage, settings Settings, temperature float64) (string, error) {
	model := settings.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	maxTokens := settings.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultAnthropicTokens
	}
	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = anthropicDefaultBaseURL
	}

	req := anthropicRequest{
		Model:       model,
		System:      systemPrompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	for _, msg := range messages {
		req.Messages = append(req.Messages, anthropicMessage{Role: msg.Role, Content: msg.Content})
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/messages", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := d.httpClient().Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Error != nil {
		return "", errors.New(apiResp.Error.Message)
	}
	if len(apiResp.Content) == 0 {
		return "", errors.New("no content in response")
	}

	return apiResp.Content[0].Text, nil
}
