// Package editor implements the interactive component tree editor.
package editor

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/forma-dev/forma/internal/codegen"
	"github.com/forma-dev/forma/internal/config"
	"github.com/forma-dev/forma/internal/infrastructure/sqlite"
	"github.com/forma-dev/forma/internal/keys"
	"github.com/forma-dev/forma/internal/log"
	"github.com/forma-dev/forma/internal/manifest"
	"github.com/forma-dev/forma/internal/manifeststore"
	"github.com/forma-dev/forma/internal/pubsub"
	"github.com/forma-dev/forma/internal/templates"
	"github.com/forma-dev/forma/internal/ui/markdown"
	"github.com/forma-dev/forma/internal/ui/tree"
	"github.com/forma-dev/forma/internal/watcher"
)

// ViewMode determines which view is active within the editor.
type ViewMode int

const (
	ViewTree ViewMode = iota
	ViewHelp
	ViewPrompt
	ViewMoveTarget
	ViewPresetPicker
	ViewDeleteConfirm
)

// promptKind identifies what the text prompt is collecting.
type promptKind int

const (
	promptAdd promptKind = iota
	promptAddChild
	promptRename
)

// Services bundles the dependencies the editor operates on. States and
// Generations may be nil when the workspace database is unavailable.
type Services struct {
	Store       *manifest.Store
	Files       *manifeststore.FileStore
	Generator   *codegen.Generator
	Presets     *templates.Library
	States      *sqlite.WorkspaceStateRepository
	Generations *sqlite.GenerationRepository
	Config      *config.Config
	Watcher     *watcher.Watcher
}

// moveTarget is one candidate parent in move mode.
type moveTarget struct {
	id    string // "" means make the component a root
	label string
}

// Model is the editor state.
type Model struct {
	services Services
	keys     keys.KeyMap

	tree     *tree.Model
	input    textinput.Model
	renderer *markdown.Renderer

	view   ViewMode
	width  int
	height int

	// Prompt state
	prompt       promptKind
	promptTarget string // Component id the prompt acts on

	// Move mode state
	moveID      string
	moveTargets []moveTarget
	moveIndex   int

	// Preset picker state
	presetNames []string
	presetIndex int

	// Delete confirmation state
	deleteID string

	// Preview pane
	preview    string
	previewErr error

	// Status line
	statusMsg string
	dirty     bool

	showStatusBar bool
	showPreview   bool

	// Manifest file watcher (auto-reload)
	watcherListener *pubsub.ContinuousListener[watcher.ChangeEvent]
	watcherCtx      context.Context
	watcherCancel   context.CancelFunc
}

// New creates the editor model. Saved workspace state is restored when a
// state repository is available.
func New(services Services) Model {
	input := textinput.New()
	input.CharLimit = 120
	input.Width = 48

	m := Model{
		services:      services,
		keys:          keys.DefaultKeyMap(),
		tree:          tree.New(services.Store),
		input:         input,
		view:          ViewTree,
		showStatusBar: services.Config.UI.ShowStatusBar,
		showPreview:   services.Config.UI.ShowPreview,
	}

	m.restoreWorkspaceState()

	if services.Watcher != nil && services.Config.AutoReload {
		m.watcherCtx, m.watcherCancel = context.WithCancel(context.Background())
		m.watcherListener = pubsub.NewContinuousListener(m.watcherCtx, services.Watcher.Broker())
	}

	m.refreshPreview()
	return m
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	if m.watcherListener != nil {
		return m.watcherListener.Listen()
	}
	return nil
}

// restoreWorkspaceState reloads selection and expansion from the workspace
// database so the tree opens the way it was left.
func (m *Model) restoreWorkspaceState() {
	if m.services.States == nil {
		return
	}
	state, err := m.services.States.Load(m.services.Config.ProjectName)
	if err != nil {
		return
	}
	m.services.Store.Session().Restore(state, func(id string) bool {
		_, ok := m.services.Store.Component(id)
		return ok
	})
	m.tree.Refresh()
	if state.SelectedID != "" {
		m.tree.SelectByID(state.SelectedID)
	}
}

// persistWorkspaceState snapshots selection and expansion for the next run.
func (m *Model) persistWorkspaceState() {
	if m.services.States == nil {
		return
	}
	snapshot := m.services.Store.Session().Snapshot()
	if err := m.services.States.Save(m.services.Config.ProjectName, snapshot); err != nil {
		log.ErrorErr(log.CatStore, "Failed to persist workspace state", err)
	}
}

// reloadedMsg reports the outcome of a manifest reload from disk.
type reloadedMsg struct {
	m   *manifest.Manifest
	err error
}

// generatedMsg reports the outcome of a generation run.
type generatedMsg struct {
	result *codegen.Result
	err    error
}

// savedMsg reports the outcome of saving the manifest.
type savedMsg struct {
	err error
}

// reloadCmd loads the manifest from disk.
func (m Model) reloadCmd() tea.Cmd {
	files := m.services.Files
	return func() tea.Msg {
		loaded, err := files.Load(context.Background())
		return reloadedMsg{m: loaded, err: err}
	}
}

// saveCmd writes the manifest to disk.
func (m Model) saveCmd() tea.Cmd {
	files := m.services.Files
	manifestSnapshot := m.services.Store.Manifest()
	return func() tea.Msg {
		if manifestSnapshot == nil {
			return savedMsg{err: fmt.Errorf("nothing to save")}
		}
		return savedMsg{err: files.Save(context.Background(), manifestSnapshot)}
	}
}

// generateCmd runs code generation and records the run in the workspace
// database.
func (m Model) generateCmd() tea.Cmd {
	gen := m.services.Generator
	generations := m.services.Generations
	cfg := m.services.Config
	manifestSnapshot := m.services.Store.Manifest()
	return func() tea.Msg {
		result, err := gen.Generate(context.Background(), manifestSnapshot)
		if err != nil {
			return generatedMsg{err: err}
		}
		if generations != nil {
			record := &sqlite.Generation{
				Project:        cfg.ProjectName,
				ComponentCount: result.ComponentCount,
				FileCount:      len(result.Files),
				OutputDir:      cfg.Generator.OutputDir,
				Duration:       result.Duration,
			}
			if recErr := generations.Record(record); recErr != nil {
				log.ErrorErr(log.CatStore, "Failed to record generation", recErr)
			}
		}
		return generatedMsg{result: result}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tree.SetSize(m.treePaneWidth()-4, m.height-4)
		m.renderer = nil // Rebuilt lazily at the new width
		m.refreshPreview()
		return m, nil

	case pubsub.Event[watcher.ChangeEvent]:
		var cmd tea.Cmd
		if m.watcherListener != nil {
			cmd = m.watcherListener.Listen()
		}
		log.Debug(log.CatWatcher, "Manifest changed on disk, reloading", "path", msg.Payload.Path)
		return m, tea.Batch(cmd, m.reloadCmd())

	case reloadedMsg:
		if msg.err != nil {
			m.statusMsg = "reload failed: " + msg.err.Error()
			return m, nil
		}
		if err := m.services.Store.Load(msg.m); err != nil {
			m.statusMsg = "reload rejected: " + err.Error()
			return m, nil
		}
		m.tree.Refresh()
		m.dirty = false
		m.statusMsg = "manifest reloaded"
		m.refreshPreview()
		return m, nil

	case generatedMsg:
		if msg.err != nil {
			m.statusMsg = "generate failed: " + msg.err.Error()
			return m, nil
		}
		changed := 0
		for _, f := range msg.result.Files {
			if f.Change != codegen.ChangeUnchanged {
				changed++
			}
		}
		m.statusMsg = fmt.Sprintf("generated %d file(s), %d changed, %d stale removed",
			len(msg.result.Files), changed, len(msg.result.Removed))
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.statusMsg = "save failed: " + msg.err.Error()
			return m, nil
		}
		m.dirty = false
		m.statusMsg = "manifest saved"
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Forward everything else to the active text input
	if m.view == ViewPrompt {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// refreshPreview regenerates the preview pane source for the selected
// component's root.
func (m *Model) refreshPreview() {
	if !m.showPreview {
		return
	}
	m.preview = ""
	m.previewErr = nil

	rootID := m.cursorRootID()
	if rootID == "" {
		return
	}

	src, err := m.services.Generator.Preview(context.Background(), m.services.Store.Manifest(), rootID)
	if err != nil {
		m.previewErr = err
		return
	}

	lang := "jsx"
	if m.services.Config.Generator.TypeScript {
		lang = "tsx"
	}
	rendered, err := m.renderMarkdownCode(src, lang)
	if err != nil {
		// Fall back to the raw source when the renderer fails
		m.preview = src
		return
	}
	m.preview = rendered
}

func (m *Model) renderMarkdownCode(src, lang string) (string, error) {
	width := m.previewPaneWidth() - 4
	if width < 20 {
		width = 20
	}
	if m.renderer == nil || m.renderer.Width() != width {
		r, err := markdown.New(width)
		if err != nil {
			return "", err
		}
		m.renderer = r
	}
	return m.renderer.RenderCode(src, lang)
}

// cursorRootID returns the root ancestor id of the component under the
// cursor, or "" when the tree is empty.
func (m *Model) cursorRootID() string {
	id := m.tree.CursorID()
	if id == "" {
		return ""
	}
	for {
		parentID, ok := m.services.Store.ParentOf(id)
		if !ok {
			return id
		}
		id = parentID
	}
}

// syncSelection mirrors the tree cursor into the session selection.
func (m *Model) syncSelection() {
	id := m.tree.CursorID()
	if id == "" {
		return
	}
	if err := m.services.Store.SelectComponent(id); err != nil {
		return
	}
	if m.services.Config.UI.ExpandOnSelect {
		if c, ok := m.services.Store.Component(id); ok && len(c.Children) > 0 {
			if !m.services.Store.Session().IsExpanded(id) {
				_ = m.services.Store.ToggleExpanded(id)
				m.tree.Refresh()
			}
		}
	}
}

// treePaneWidth returns the width reserved for the tree pane.
func (m *Model) treePaneWidth() int {
	if !m.showPreview {
		return m.width
	}
	return m.width / 2
}

// previewPaneWidth returns the width reserved for the preview pane.
func (m *Model) previewPaneWidth() int {
	if !m.showPreview {
		return 0
	}
	return m.width - m.treePaneWidth()
}

// quit persists state and tears down the watcher subscription.
func (m Model) quit() (Model, tea.Cmd) {
	m.persistWorkspaceState()
	if m.watcherCancel != nil {
		m.watcherCancel()
	}
	return m, tea.Quit
}

// statusError formats an error into the status line.
func (m *Model) statusError(action string, err error) {
	m.statusMsg = action + ": " + err.Error()
	log.ErrorErr(log.CatUI, action, err)
}
