package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// googleEmptyReply is returned when Google answers successfully but with no
// text. An empty-but-successful completion is not a failure.
const googleEmptyReply = "Sem resposta do modelo."

// googleGenerate talks to Google AI Studio through the vendor SDK. The
// persona text travels as the systemInstruction, every turn except the last
// becomes history and the last user turn is the current message.
func (d *Dispatcher) googleGenerate(ctx context.Context, apiKey, systemPrompt string, messages []ChatMessage, settings Settings, temperature float64) (string, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: d.HTTPClient,
	}
	if settings.BaseURL != "" {
		cfg.HTTPOptions.BaseURL = settings.BaseURL
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to create genai client: %w", err)
	}

	model := settings.Model
	if model == "" {
		model = defaultGoogleModel
	}

	// Gemini splits the current turn from prior history; both ride in
	// contents, with assistant turns mapped to the "model" role.
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages[:len(messages)-1] {
		role := genai.RoleUser
		if msg.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: messages[len(messages)-1].Content}},
	})

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		Temperature:       genai.Ptr(float32(temperature)),
	}
	if settings.MaxTokens > 0 {
		config.MaxOutputTokens = int32(settings.MaxTokens)
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		text = googleEmptyReply
	}
	return text, nil
}
