package editor

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/forma-dev/forma/internal/codegen"
	"github.com/forma-dev/forma/internal/config"
	"github.com/forma-dev/forma/internal/manifest"
	"github.com/forma-dev/forma/internal/manifeststore"
	"github.com/forma-dev/forma/internal/templates"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestModel(t *testing.T) (Model, *manifest.Store) {
	t.Helper()
	dir := t.TempDir()
	tracer := noop.NewTracerProvider().Tracer("test")

	store := manifest.NewStore("demo", "react", &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)})
	library, err := templates.NewLibrary()
	require.NoError(t, err)

	cfg := config.Defaults()
	cfg.ProjectName = "demo"
	cfg.Generator.OutputDir = filepath.Join(dir, "out")

	m := New(Services{
		Store:     store,
		Files:     manifeststore.NewFileStore(filepath.Join(dir, "manifest.json"), tracer),
		Generator: codegen.New(codegen.Config{OutputDir: cfg.Generator.OutputDir, TypeScript: false}, tracer),
		Presets:   library,
		Config:    &cfg,
	})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, store
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEscape}
		case "ctrl+s":
			msg = tea.KeyMsg{Type: tea.KeyCtrlS}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestAddComponent_ViaPrompt(t *testing.T) {
	m, store := newTestModel(t)

	m = press(m, "a")
	require.Equal(t, ViewPrompt, m.view)

	m = typeText(m, "Card:section")
	m = press(m, "enter")

	require.Equal(t, ViewTree, m.view)
	require.True(t, m.dirty)
	require.NotNil(t, store.Manifest())
	require.Len(t, store.Manifest().Components, 1)
	for _, c := range store.Manifest().Components {
		require.Equal(t, "Card", c.DisplayName)
		require.Equal(t, "section", c.Type)
	}
}

func TestAddComponent_DefaultType(t *testing.T) {
	m, store := newTestModel(t)

	m = press(m, "a")
	m = typeText(m, "Card")
	m = press(m, "enter")

	for _, c := range store.Manifest().Components {
		require.Equal(t, "div", c.Type)
	}
}

func TestPrompt_EscCancels(t *testing.T) {
	m, store := newTestModel(t)

	m = press(m, "a")
	m = typeText(m, "Card")
	m = press(m, "esc")

	require.Equal(t, ViewTree, m.view)
	require.Nil(t, store.Manifest())
}

func TestAddChild_SelectsAndExpands(t *testing.T) {
	m, store := newTestModel(t)
	m = press(m, "a")
	m = typeText(m, "Page")
	m = press(m, "enter")

	m = press(m, "A")
	require.Equal(t, ViewPrompt, m.view)
	m = typeText(m, "Header:header")
	m = press(m, "enter")

	require.Len(t, store.Manifest().Components, 2)
	require.Equal(t, 2, m.tree.Len(), "new child should be visible")
}

func TestAddChild_RequiresSelection(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(m, "A")
	require.Equal(t, ViewTree, m.view)
	require.Contains(t, m.statusMsg, "select a component")
}

func TestAddChild_DepthBound(t *testing.T) {
	m, store := newTestModel(t)

	// Build a chain at the maximum depth
	parentID := ""
	for i := 0; i <= manifest.MaxDepth; i++ {
		id, err := store.AddComponent(manifest.AddInput{DisplayName: "N", Type: "div", ParentID: parentID})
		require.NoError(t, err)
		parentID = id
	}
	store.ExpandAll()
	m.tree.Refresh()
	require.True(t, m.tree.SelectByID(parentID))

	m = press(m, "A")
	require.Equal(t, ViewTree, m.view)
	require.Contains(t, m.statusMsg, "cannot nest")
}

func TestRename(t *testing.T) {
	m, store := newTestModel(t)
	m = press(m, "a")
	m = typeText(m, "Card")
	m = press(m, "enter")

	m = press(m, "r")
	require.Equal(t, ViewPrompt, m.view)
	require.Equal(t, "Card", m.input.Value(), "prompt should start from the current name")

	m.input.SetValue("")
	m = typeText(m, "ProductCard")
	m = press(m, "enter")

	for _, c := range store.Manifest().Components {
		require.Equal(t, "ProductCard", c.DisplayName)
	}
}

func TestDelete_ConfirmAndCancel(t *testing.T) {
	m, store := newTestModel(t)
	m = press(m, "a")
	m = typeText(m, "Card")
	m = press(m, "enter")

	m = press(m, "d")
	require.Equal(t, ViewDeleteConfirm, m.view)
	m = press(m, "n")
	require.Equal(t, ViewTree, m.view)
	require.Len(t, store.Manifest().Components, 1)

	m = press(m, "d", "y")
	require.Empty(t, store.Manifest().Components)
	require.Equal(t, 0, m.tree.Len())
}

func TestDuplicate(t *testing.T) {
	m, store := newTestModel(t)
	m = press(m, "a")
	m = typeText(m, "Card")
	m = press(m, "enter")

	m = press(m, "y")
	require.Len(t, store.Manifest().Components, 2)
	require.Contains(t, m.statusMsg, "duplicated")
}

func TestMove_MakesChildARoot(t *testing.T) {
	m, store := newTestModel(t)

	pageID, err := store.AddComponent(manifest.AddInput{DisplayName: "Page", Type: "div"})
	require.NoError(t, err)
	childID, err := store.AddComponent(manifest.AddInput{DisplayName: "Header", Type: "header", ParentID: pageID})
	require.NoError(t, err)
	store.ExpandAll()
	m.tree.Refresh()
	require.True(t, m.tree.SelectByID(childID))

	m = press(m, "m")
	require.Equal(t, ViewMoveTarget, m.view)
	require.Equal(t, "(make root)", m.moveTargets[0].label)

	m = press(m, "enter")
	require.Equal(t, ViewTree, m.view)
	_, hasParent := store.ParentOf(childID)
	require.False(t, hasParent)
}

func TestMove_CycleRejected(t *testing.T) {
	m, store := newTestModel(t)

	pageID, err := store.AddComponent(manifest.AddInput{DisplayName: "Page", Type: "div"})
	require.NoError(t, err)
	childID, err := store.AddComponent(manifest.AddInput{DisplayName: "Header", Type: "header", ParentID: pageID})
	require.NoError(t, err)
	store.ExpandAll()
	m.tree.Refresh()
	require.True(t, m.tree.SelectByID(pageID))

	m = press(m, "m")
	// Select the page's own child as the target
	for i, target := range m.moveTargets {
		if target.id == childID {
			m.moveIndex = i
		}
	}
	m = press(m, "enter")

	require.Contains(t, m.statusMsg, "move")
	parentID, hasParent := store.ParentOf(childID)
	require.True(t, hasParent)
	require.Equal(t, pageID, parentID)
}

func TestPresetPicker_Insert(t *testing.T) {
	m, store := newTestModel(t)

	m = press(m, "p")
	require.Equal(t, ViewPresetPicker, m.view)
	require.NotEmpty(t, m.presetNames)

	m = press(m, "enter")
	require.Equal(t, ViewTree, m.view)
	require.NotEmpty(t, store.Manifest().Components)
	require.Contains(t, m.statusMsg, "inserted")
}

func TestValidate_StatusMessage(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, "a")
	m = typeText(m, "Card")
	m = press(m, "enter")

	m = press(m, "v")
	require.Contains(t, m.statusMsg, "valid")
}

func TestSave_RoundTrip(t *testing.T) {
	m, store := newTestModel(t)
	m = press(m, "a")
	m = typeText(m, "Card")
	m = press(m, "enter")
	require.True(t, m.dirty)

	var cmd tea.Cmd
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	require.False(t, m.dirty)
	require.Contains(t, m.statusMsg, "saved")

	loaded, err := m.services.Files.Load(t.Context())
	require.NoError(t, err)
	require.Len(t, loaded.Components, len(store.Manifest().Components))
}

func TestGenerate_StatusMessage(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, "a")
	m = typeText(m, "Card")
	m = press(m, "enter")

	var cmd tea.Cmd
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	require.Contains(t, m.statusMsg, "generated 1 file(s)")
}

func TestGenerate_NothingToGenerate(t *testing.T) {
	m, _ := newTestModel(t)

	var cmd tea.Cmd
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	require.Nil(t, cmd)
	require.Contains(t, m.statusMsg, "nothing to generate")
}

func TestHelpView_Toggle(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(m, "?")
	require.Equal(t, ViewHelp, m.view)
	require.Contains(t, m.View(), "keybindings")

	m = press(m, "esc")
	require.Equal(t, ViewTree, m.view)
}

func TestTogglePreviewPane(t *testing.T) {
	m, _ := newTestModel(t)
	require.True(t, m.showPreview)

	m = press(m, "tab")
	require.False(t, m.showPreview)
}

func TestView_ShowsStatusBar(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, "a")
	m = typeText(m, "Card")
	m = press(m, "enter")

	view := m.View()
	require.Contains(t, view, "1 component(s)")
	require.Contains(t, view, "level 1")
}

func TestExpandCollapse_Keys(t *testing.T) {
	m, store := newTestModel(t)

	pageID, err := store.AddComponent(manifest.AddInput{DisplayName: "Page", Type: "div"})
	require.NoError(t, err)
	_, err = store.AddComponent(manifest.AddInput{DisplayName: "Header", Type: "header", ParentID: pageID})
	require.NoError(t, err)
	m.tree.Refresh()
	require.Equal(t, 1, m.tree.Len(), "collapsed by default")

	m = press(m, "E")
	require.Equal(t, 2, m.tree.Len())

	m = press(m, "C")
	require.Equal(t, 1, m.tree.Len())

	m = press(m, "l")
	require.Equal(t, 2, m.tree.Len(), "right expands the branch")

	m = press(m, "h")
	require.Equal(t, 1, m.tree.Len(), "left collapses the branch")
}
