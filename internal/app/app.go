// Package app contains the root application model.
package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/forma-dev/forma/internal/ui/editor"
)

// Model adapts the editor to the Bubble Tea program interface and is the
// seam where further top-level modes would be dispatched.
type Model struct {
	editor editor.Model
}

// New creates the root application model.
func New(services editor.Services) Model {
	return Model{editor: editor.New(services)}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return m.editor.Init()
}

// Update handles messages and delegates to the editor.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// View renders the application.
func (m Model) View() string {
	return m.editor.View()
}
