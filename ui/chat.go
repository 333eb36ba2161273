package ui

import (
	"context"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"pm-cockpit/agents"
	"pm-cockpit/db"
	"pm-cockpit/llm"
	"pm-cockpit/utils"
)

// ChatView renders one (project, agent) conversation: history, input and
// the classified-error banner with its remediation actions.
type ChatView struct {
	app     *App
	agent   *agents.Definition
	chatKey string

	// sending enforces at most one in-flight dispatch per conversation. A
	// send attempted while one is pending is ignored, never queued. Only
	// ever touched from the UI thread.
	sending bool

	messagesBox *fyne.Container
	scroll      *container.Scroll
	errorBox    *fyne.Container
	inputEntry  *widget.Entry
	sendButton  *widget.Button
	root        fyne.CanvasObject
}

// NewChatView builds the chat panel for one conversation and loads its
// persisted history.
func NewChatView(a *App, projectID string, agentID agents.ID) (*ChatView, error) {
	agent, ok := agents.Lookup(agentID)
	if !ok {
		return nil, errMessage("agente desconhecido: " + string(agentID))
	}

	cv := &ChatView{
		app:     a,
		agent:   agent,
		chatKey: db.ChatKey(projectID, agentID),
	}

	cv.messagesBox = container.NewVBox()
	cv.scroll = container.NewScroll(cv.messagesBox)
	cv.errorBox = container.NewVBox()

	cv.inputEntry = widget.NewMultiLineEntry()
	cv.inputEntry.SetPlaceHolder("Envie uma mensagem para " + agent.DisplayName + "...")
	cv.inputEntry.Wrapping = fyne.TextWrapWord

	cv.sendButton = widget.NewButton("Enviar", cv.sendMessage)
	cv.sendButton.Importance = widget.HighImportance
	clearButton := widget.NewButton("Limpar Conversa", cv.clearConversation)

	title := widget.NewLabel(agent.DisplayName)
	title.TextStyle = fyne.TextStyle{Bold: true}
	subtitle := widget.NewLabel(agent.ShortDescription)
	subtitle.Wrapping = fyne.TextWrapWord
	header := container.NewVBox(title, subtitle, widget.NewSeparator())

	inputBar := container.NewBorder(nil, nil, nil, container.NewVBox(cv.sendButton, clearButton), cv.inputEntry)
	cv.root = container.NewBorder(header, container.NewVBox(cv.errorBox, inputBar), nil, nil, cv.scroll)

	if err := cv.loadMessages(); err != nil {
		return nil, err
	}
	return cv, nil
}

// Container returns the root canvas object of the chat panel.
func (cv *ChatView) Container() fyne.CanvasObject {
	return cv.root
}

func (cv *ChatView) loadMessages() error {
	messages, err := cv.app.db.ListMessages(cv.chatKey)
	if err != nil {
		return err
	}

	cv.messagesBox.Objects = nil
	if len(messages) == 0 {
		cv.showUsageTips()
	}
	for _, msg := range messages {
		cv.messagesBox.Add(cv.renderMessage(msg))
	}
	cv.messagesBox.Refresh()
	return nil
}

// showUsageTips fills an empty conversation with the agent's usage tips.
func (cv *ChatView) showUsageTips() {
	tips := widget.NewRichText()
	md := "### Como usar este agente\n"
	for _, tip := range cv.agent.UsageTips {
		md += "- " + tip + "\n"
	}
	tips.ParseMarkdown(md)
	cv.messagesBox.Add(tips)
}

func (cv *ChatView) renderMessage(msg llm.ChatMessage) fyne.CanvasObject {
	roleLabel := widget.NewLabel("👤 Você")
	if msg.Role == llm.RoleAssistant {
		roleLabel = widget.NewLabel("🤖 " + cv.agent.DisplayName)
	}
	roleLabel.TextStyle = fyne.TextStyle{Bold: true}

	body := widget.NewRichText()
	body.Wrapping = fyne.TextWrapWord
	body.ParseMarkdown(msg.Content)

	return container.NewVBox(roleLabel, container.NewPadded(body), widget.NewSeparator())
}

// sendMessage runs one dispatch cycle: append the user turn, call the
// provider off the UI thread, then append the reply or surface the
// classified error for this invocation only.
func (cv *ChatView) sendMessage() {
	content := strings.TrimSpace(cv.inputEntry.Text)
	if content == "" || cv.sending {
		return
	}

	cv.sending = true
	cv.sendButton.Disable()
	cv.clearErrorBanner()

	userMsg := llm.NewUserMessage(content)
	if err := cv.app.db.AppendMessage(cv.chatKey, userMsg); err != nil {
		cv.app.logger.Error("Failed to save user message: %v", err)
		cv.app.showError("Falha ao salvar a mensagem: " + err.Error())
		cv.sending = false
		cv.sendButton.Enable()
		return
	}
	cv.messagesBox.Objects = filterTips(cv.messagesBox.Objects)
	cv.messagesBox.Add(cv.renderMessage(userMsg))
	cv.messagesBox.Refresh()
	cv.scroll.ScrollToBottom()
	cv.inputEntry.SetText("")

	// Snapshot history and settings now; resolution happens fresh on every
	// send so settings edits take effect immediately.
	history, err := cv.app.db.ListMessages(cv.chatKey)
	if err != nil {
		cv.app.logger.Error("Failed to load history: %v", err)
		cv.sending = false
		cv.sendButton.Enable()
		return
	}
	settings, err := cv.app.db.AgentSettings(cv.agent.ID)
	if err != nil {
		cv.app.logger.Error("Failed to load settings: %v", err)
		cv.sending = false
		cv.sendButton.Enable()
		return
	}

	utils.SafeGo(cv.app.logger, "dispatch "+cv.chatKey, func() {
		reply, err := cv.app.dispatcher.Send(context.Background(), cv.agent.ID, history, settings)

		// The store mutation happens even if the view went away; only the
		// rendering is tied to this panel.
		if err == nil {
			if dbErr := cv.app.db.AppendMessage(cv.chatKey, *reply); dbErr != nil {
				cv.app.logger.Error("Failed to save assistant message: %v", dbErr)
			}
		}

		fyne.Do(func() {
			cv.sending = false
			cv.sendButton.Enable()

			if err != nil {
				cv.app.logger.Error("Dispatch failed for %s: %v", cv.chatKey, err)
				cv.showDispatchError(err)
				return
			}
			cv.messagesBox.Add(cv.renderMessage(*reply))
			cv.messagesBox.Refresh()
			cv.scroll.ScrollToBottom()
		})
	})
}

// filterTips drops the usage-tips placeholder once real messages exist.
func filterTips(objects []fyne.CanvasObject) []fyne.CanvasObject {
	if len(objects) == 1 {
		if _, isTips := objects[0].(*widget.RichText); isTips {
			return nil
		}
	}
	return objects
}

// showDispatchError renders the classified error with its remediation
// action. The error lives in the banner only; it is never written to the
// conversation.
func (cv *ChatView) showDispatchError(err error) {
	title := widget.NewLabel("Erro no Processamento")
	title.TextStyle = fyne.TextStyle{Bold: true}

	var detail string
	var action *widget.Button
	switch llm.KindOf(err) {
	case llm.ErrCredentialMissing:
		detail = "Nenhuma chave de API configurada para este agente."
		action = widget.NewButton("Ajustar Credenciais", cv.app.OpenSettings)
	case llm.ErrInvalidCredential:
		detail = "A chave de API foi recusada pelo provedor."
		action = widget.NewButton("Ajustar Credenciais", cv.app.OpenSettings)
	case llm.ErrQuotaExceeded:
		detail = "Cota do provedor excedida. Limpar a conversa reduz o tamanho das próximas requisições."
		action = widget.NewButton("Limpar Conversa", cv.clearConversation)
	case llm.ErrProviderUnavailable:
		detail = "O provedor está sobrecarregado. Tente novamente em instantes."
	case llm.ErrProviderUnsupported:
		detail = "Provedor não suportado. Selecione outro nas configurações."
		action = widget.NewButton("Ajustar Credenciais", cv.app.OpenSettings)
	default:
		detail = err.Error()
	}

	detailLabel := widget.NewLabel(detail)
	detailLabel.Wrapping = fyne.TextWrapWord

	banner := container.NewVBox(widget.NewSeparator(), title, detailLabel)
	if action != nil {
		banner.Add(action)
	}

	cv.errorBox.Objects = []fyne.CanvasObject{banner}
	cv.errorBox.Refresh()
}

func (cv *ChatView) clearErrorBanner() {
	cv.errorBox.Objects = nil
	cv.errorBox.Refresh()
}

// clearConversation wipes the history. Clearing an already empty
// conversation is a no-op.
func (cv *ChatView) clearConversation() {
	if err := cv.app.db.ClearChat(cv.chatKey); err != nil {
		cv.app.logger.Error("Failed to clear chat %s: %v", cv.chatKey, err)
		cv.app.showError("Falha ao limpar a conversa: " + err.Error())
		return
	}
	cv.clearErrorBanner()
	if err := cv.loadMessages(); err != nil {
		cv.app.logger.Error("Failed to reload chat %s: %v", cv.chatKey, err)
	}
}
