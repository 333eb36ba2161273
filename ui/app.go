package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"

	"pm-cockpit/agents"
	"pm-cockpit/db"
	"pm-cockpit/llm"
	"pm-cockpit/utils"
)

// App represents the main application
type App struct {
	fyneApp    fyne.App
	window     fyne.Window
	config     *utils.Config
	configPath string
	db         *db.DB
	logger     *utils.Logger
	dispatcher *llm.Dispatcher

	sidebar      *Sidebar
	settingsView *SettingsView
	content      *fyne.Container

	// One ChatView per conversation key, kept alive so its in-flight state
	// survives navigation.
	chatViews map[string]*ChatView

	// currentProject scopes agent chats; empty means standalone chats.
	currentProject string
}

// NewApp creates a new application instance
func NewApp(config *utils.Config, configPath string, database *db.DB, logger *utils.Logger, dispatcher *llm.Dispatcher) *App {
	fyneApp := app.NewWithID("pm-cockpit")
	window := fyneApp.NewWindow("PM Command Center")

	window.Resize(fyne.NewSize(
		float32(config.UI.WindowWidth),
		float32(config.UI.WindowHeight),
	))

	application := &App{
		fyneApp:    fyneApp,
		window:     window,
		config:     config,
		configPath: configPath,
		db:         database,
		logger:     logger,
		dispatcher: dispatcher,
		chatViews:  make(map[string]*ChatView),
	}

	// Save window size when closing.
	window.SetOnClosed(func() {
		size := window.Canvas().Size()
		application.config.UI.WindowWidth = int(size.Width)
		application.config.UI.WindowHeight = int(size.Height)
		if err := utils.SaveConfig(application.configPath, application.config); err != nil {
			application.logger.Error("Failed to save window size: %v", err)
		}
	})

	fyneApp.Settings().SetTheme(newCockpitTheme(config.UI.Theme != "light"))

	application.buildUI()

	return application
}

func (a *App) buildUI() {
	a.sidebar = NewSidebar(a)
	a.settingsView = NewSettingsView(a)
	a.content = container.NewStack()

	split := container.NewHSplit(a.sidebar.Container(), a.content)
	split.Offset = 0.22
	a.window.SetContent(split)

	// Land on the first agent's standalone chat.
	a.OpenChat("", agents.Definitions[0].ID)
}

// OpenChat switches the content area to the conversation for one
// (project, agent) pair, creating its view on first visit.
func (a *App) OpenChat(projectID string, agentID agents.ID) {
	a.currentProject = projectID
	key := db.ChatKey(projectID, agentID)

	view, ok := a.chatViews[key]
	if !ok {
		var err error
		view, err = NewChatView(a, projectID, agentID)
		if err != nil {
			a.logger.Error("Failed to open chat %s: %v", key, err)
			a.showError("Não foi possível abrir a conversa: " + err.Error())
			return
		}
		a.chatViews[key] = view
	}

	a.content.Objects = []fyne.CanvasObject{view.Container()}
	a.content.Refresh()
}

// OpenSettings switches the content area to the settings panel.
func (a *App) OpenSettings() {
	a.settingsView.Reload()
	a.content.Objects = []fyne.CanvasObject{a.settingsView.Container()}
	a.content.Refresh()
}

func (a *App) showError(msg string) {
	dialog.ShowError(errMessage(msg), a.window)
}

// Run starts the application
func (a *App) Run() {
	a.window.ShowAndRun()
}

// Cleanup releases application resources
func (a *App) Cleanup() {
}

type errMessage string

func (e errMessage) Error() string { return string(e) }
