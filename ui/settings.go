package ui

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"pm-cockpit/agents"
	"pm-cockpit/llm"
)

var providerOptions = []string{
	llm.ProviderGoogle,
	llm.ProviderAnthropic,
	llm.ProviderOpenAI,
	llm.ProviderXAI,
	llm.ProviderPerplexity,
	llm.ProviderGroq,
	llm.ProviderDeepSeek,
	llm.ProviderOllama,
}

// SettingsView edits the global API key and the per-agent provider
// settings.
type SettingsView struct {
	app *App

	globalKeyEntry *widget.Entry

	agentSelect      *widget.Select
	currentAgent     agents.ID
	providerSelect   *widget.Select
	modelEntry       *widget.Entry
	apiKeyEntry      *widget.Entry
	baseURLEntry     *widget.Entry
	temperatureEntry *widget.Entry
	maxTokensEntry   *widget.Entry

	root fyne.CanvasObject
}

// NewSettingsView builds the settings panel.
func NewSettingsView(a *App) *SettingsView {
	v := &SettingsView{app: a}

	v.globalKeyEntry = widget.NewPasswordEntry()
	v.globalKeyEntry.SetPlaceHolder("Chave de API global (fallback)")
	saveGlobalButton := widget.NewButton("Salvar Chave Global", v.saveGlobalKey)

	agentNames := make([]string, len(agents.Definitions))
	for i, def := range agents.Definitions {
		agentNames[i] = def.DisplayName
	}
	v.agentSelect = widget.NewSelect(agentNames, v.onAgentSelected)

	v.providerSelect = widget.NewSelect(providerOptions, nil)
	v.modelEntry = widget.NewEntry()
	v.apiKeyEntry = widget.NewPasswordEntry()
	v.apiKeyEntry.SetPlaceHolder("Vazio usa a chave global")
	v.baseURLEntry = widget.NewEntry()
	v.baseURLEntry.SetPlaceHolder("Opcional, endpoint customizado")
	v.temperatureEntry = widget.NewEntry()
	v.maxTokensEntry = widget.NewEntry()
	v.maxTokensEntry.SetPlaceHolder("0 usa o padrão do provedor")

	saveAgentButton := widget.NewButton("Salvar Configurações do Agente", v.saveAgentSettings)
	saveAgentButton.Importance = widget.HighImportance

	agentForm := widget.NewForm(
		widget.NewFormItem("Provedor", v.providerSelect),
		widget.NewFormItem("Modelo", v.modelEntry),
		widget.NewFormItem("Chave de API", v.apiKeyEntry),
		widget.NewFormItem("URL Base", v.baseURLEntry),
		widget.NewFormItem("Temperatura", v.temperatureEntry),
		widget.NewFormItem("Max Tokens", v.maxTokensEntry),
	)

	globalTitle := widget.NewLabel("Credencial Global")
	globalTitle.TextStyle = fyne.TextStyle{Bold: true}
	agentTitle := widget.NewLabel("Configuração por Agente")
	agentTitle.TextStyle = fyne.TextStyle{Bold: true}

	v.root = container.NewScroll(container.NewVBox(
		globalTitle,
		v.globalKeyEntry,
		saveGlobalButton,
		widget.NewSeparator(),
		agentTitle,
		v.agentSelect,
		agentForm,
		saveAgentButton,
	))

	return v
}

// Container returns the root canvas object of the settings panel.
func (v *SettingsView) Container() fyne.CanvasObject {
	return v.root
}

// Reload re-reads the stored values so the panel always shows current
// state when opened.
func (v *SettingsView) Reload() {
	key, err := v.app.db.GlobalAPIKey()
	if err != nil {
		v.app.logger.Error("Failed to load global API key: %v", err)
	}
	v.globalKeyEntry.SetText(key)

	if v.agentSelect.Selected == "" {
		v.agentSelect.SetSelected(agents.Definitions[0].DisplayName)
	} else {
		v.onAgentSelected(v.agentSelect.Selected)
	}
}

func (v *SettingsView) onAgentSelected(name string) {
	for _, def := range agents.Definitions {
		if def.DisplayName == name {
			v.currentAgent = def.ID
			break
		}
	}

	settings, err := v.app.db.AgentSettings(v.currentAgent)
	if err != nil {
		v.app.logger.Error("Failed to load settings for %s: %v", v.currentAgent, err)
		settings = llm.DefaultSettings()
	}

	v.providerSelect.SetSelected(settings.Provider)
	v.modelEntry.SetText(settings.Model)
	v.apiKeyEntry.SetText(settings.APIKey)
	v.baseURLEntry.SetText(settings.BaseURL)
	v.temperatureEntry.SetText(strconv.FormatFloat(settings.Temperature, 'f', -1, 64))
	v.maxTokensEntry.SetText(strconv.Itoa(settings.MaxTokens))
}

func (v *SettingsView) saveGlobalKey() {
	key := v.globalKeyEntry.Text
	if err := v.app.db.SetGlobalAPIKey(key); err != nil {
		v.app.logger.Error("Failed to save global API key: %v", err)
		v.app.showError("Falha ao salvar a chave global: " + err.Error())
		return
	}
	v.app.dispatcher.GlobalAPIKey = key
	v.app.logger.Info("Global API key updated")
}

func (v *SettingsView) saveAgentSettings() {
	if v.currentAgent == "" {
		return
	}

	temperature, err := strconv.ParseFloat(v.temperatureEntry.Text, 64)
	if err != nil {
		v.app.showError("Temperatura inválida: " + v.temperatureEntry.Text)
		return
	}
	maxTokens := 0
	if v.maxTokensEntry.Text != "" {
		maxTokens, err = strconv.Atoi(v.maxTokensEntry.Text)
		if err != nil {
			v.app.showError("Max tokens inválido: " + v.maxTokensEntry.Text)
			return
		}
	}

	settings := llm.Settings{
		Provider:    v.providerSelect.Selected,
		Model:       v.modelEntry.Text,
		APIKey:      v.apiKeyEntry.Text,
		BaseURL:     v.baseURLEntry.Text,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	if err := v.app.db.UpdateAgentSettings(v.currentAgent, settings); err != nil {
		v.app.logger.Error("Failed to save settings for %s: %v", v.currentAgent, err)
		v.app.showError("Falha ao salvar as configurações: " + err.Error())
		return
	}
	v.app.logger.Info("Settings updated for agent %s", v.currentAgent)
}
