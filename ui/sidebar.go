package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"pm-cockpit/agents"
	"pm-cockpit/db"
)

const standaloneLabel = "Agentes Autônomos"

// Sidebar holds the project selector and the agent roster.
type Sidebar struct {
	app *App

	projectSelect *widget.Select
	projects      []*db.Project
	agentList     *widget.List
	root          fyne.CanvasObject
}

// NewSidebar builds the navigation panel.
func NewSidebar(a *App) *Sidebar {
	s := &Sidebar{app: a}

	s.projectSelect = widget.NewSelect(nil, s.onProjectSelected)
	s.projectSelect.PlaceHolder = "Selecione um projeto"

	s.agentList = widget.NewList(
		func() int { return len(agents.Definitions) },
		func() fyne.CanvasObject {
			name := widget.NewLabel("agent")
			name.TextStyle = fyne.TextStyle{Bold: true}
			category := widget.NewLabel("category")
			return container.NewVBox(name, category)
		},
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			box := obj.(*fyne.Container)
			def := agents.Definitions[i]
			name := def.Icon + " " + def.DisplayName
			// Badge conversations that already hold messages in this scope.
			if n, err := s.app.db.CountMessages(db.ChatKey(s.app.currentProject, def.ID)); err == nil && n > 0 {
				name = fmt.Sprintf("%s (%d)", name, n)
			}
			box.Objects[0].(*widget.Label).SetText(name)
			box.Objects[1].(*widget.Label).SetText(def.Category)
		},
	)
	s.agentList.OnSelected = func(i widget.ListItemID) {
		a.OpenChat(a.currentProject, agents.Definitions[i].ID)
	}

	settingsButton := widget.NewButton("⚙ Configurações", a.OpenSettings)

	title := widget.NewLabel("PM Command Center")
	title.TextStyle = fyne.TextStyle{Bold: true}

	s.root = container.NewBorder(
		container.NewVBox(title, s.projectSelect, widget.NewSeparator()),
		container.NewVBox(widget.NewSeparator(), settingsButton),
		nil, nil,
		s.agentList,
	)

	s.RefreshProjects()
	return s
}

// Container returns the root canvas object of the sidebar.
func (s *Sidebar) Container() fyne.CanvasObject {
	return s.root
}

// RefreshProjects reloads the project selector from the store. The
// standalone entry always comes first.
func (s *Sidebar) RefreshProjects() {
	projects, err := s.app.db.ListProjects()
	if err != nil {
		s.app.logger.Error("Failed to list projects: %v", err)
		projects = nil
	}
	s.projects = projects

	options := make([]string, 0, len(projects)+1)
	options = append(options, standaloneLabel)
	for _, p := range projects {
		options = append(options, p.Name)
	}
	s.projectSelect.Options = options
	if s.projectSelect.Selected == "" {
		s.projectSelect.SetSelected(standaloneLabel)
	}
	s.projectSelect.Refresh()
}

func (s *Sidebar) onProjectSelected(name string) {
	projectID := ""
	for _, p := range s.projects {
		if p.Name == name {
			projectID = p.ID
			break
		}
	}
	if projectID == s.app.currentProject {
		return
	}
	s.app.currentProject = projectID

	// Reopen the highlighted agent's chat in the new project scope and
	// re-render the roster so the badges reflect it.
	s.agentList.Refresh()
	s.agentList.UnselectAll()
	s.app.OpenChat(projectID, agents.Definitions[0].ID)
	s.agentList.Select(0)
}
