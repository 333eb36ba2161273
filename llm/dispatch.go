package llm

import (
	"context"
	"fmt"
	"net/http"

	"pm-cockpit/agents"
)

// Dispatcher routes one conversation snapshot to the provider configured for
// an agent and normalizes the reply. It holds no per-conversation state and
// never touches the stores: the caller reads the current settings record
// immediately before calling Send and appends both the outgoing user message
// and the returned assistant message itself.
type Dispatcher struct {
	// GlobalAPIKey is the process-wide fallback credential. An agent's own
	// key, when set, always takes precedence.
	GlobalAPIKey string

	// HTTPClient is used for all provider calls. Defaults to
	// http.DefaultClient; provider stack timeouts are inherited from it.
	HTTPClient *http.Client
}

// NewDispatcher creates a dispatcher with the given global fallback
// credential.
func NewDispatcher(globalAPIKey string) *Dispatcher {
	return &Dispatcher{
		GlobalAPIKey: globalAPIKey,
		HTTPClient:   http.DefaultClient,
	}
}

func (d *Dispatcher) httpClient() *http.Client {
	if d.HTTPClient != nil {
		return d.HTTPClient
	}
	return http.DefaultClient
}

// Send dispatches the full ordered message history of one conversation to
// the agent's configured provider and returns the assistant reply as a new
// message. messages must end with the user turn being answered. Every
// failure comes back as a *DispatchError carrying one taxonomy tag.
//
// Credential and model resolution happens here on every call, never cached:
// settings can change between sends.
func (d *Dispatcher) Send(ctx context.Context, agentID agents.ID, messages []ChatMessage, settings Settings) (*ChatMessage, error) {
	agent, ok := agents.Lookup(agentID)
	if !ok {
		return nil, &DispatchError{Kind: ErrUnknown, Message: fmt.Sprintf("agente desconhecido: %s", agentID)}
	}
	if len(messages) == 0 {
		return nil, &DispatchError{Kind: ErrUnknown, Message: "histórico de mensagens vazio"}
	}

	// Agent key wins over the global fallback.
	apiKey := settings.APIKey
	if apiKey == "" {
		apiKey = d.GlobalAPIKey
	}
	if apiKey == "" {
		return nil, &DispatchError{Kind: ErrCredentialMissing, Message: "nenhuma chave de API configurada"}
	}

	temperature := settings.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}

	var (
		text string
		err  error
	)
	switch settings.Provider {
	case ProviderGoogle:
		text, err = d.googleGenerate(ctx, apiKey, agent.SystemPrompt, messages, settings, temperature)
	case ProviderAnthropic:
		text, err = d.anthropicGenerate(ctx, apiKey, agent.SystemPrompt, messages, settings, temperature)
	default:
		baseURL, known := openAIBaseURLs[settings.Provider]
		if !known {
			return nil, &DispatchError{
				Kind:    ErrProviderUnsupported,
				Message: fmt.Sprintf("provedor não suportado: %s", settings.Provider),
			}
		}
		text, err = d.openAIGenerate(ctx, apiKey, baseURL, agent.SystemPrompt, messages, settings, temperature)
	}
	if err != nil {
		return nil, classify(err)
	}

	return newAssistantMessage(text), nil
}
