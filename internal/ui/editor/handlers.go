package editor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/forma-dev/forma/internal/manifest"
)

// handleKey dispatches key messages to the active view.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.view {
	case ViewHelp:
		return m.handleHelpKeys(msg)
	case ViewPrompt:
		return m.handlePromptKeys(msg)
	case ViewMoveTarget:
		return m.handleMoveKeys(msg)
	case ViewPresetPicker:
		return m.handlePresetKeys(msg)
	case ViewDeleteConfirm:
		return m.handleDeleteConfirmKeys(msg)
	default:
		return m.handleTreeKeys(msg)
	}
}

func (m Model) handleTreeKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := m.keys

	switch {
	case key.Matches(msg, k.Quit):
		return m.quit()

	case key.Matches(msg, k.Help):
		m.view = ViewHelp
		return m, nil

	case key.Matches(msg, k.ToggleStatus):
		m.showStatusBar = !m.showStatusBar
		return m, nil

	case key.Matches(msg, k.Preview):
		m.showPreview = !m.showPreview
		m.tree.SetSize(m.treePaneWidth()-4, m.height-4)
		m.renderer = nil
		m.refreshPreview()
		return m, nil

	case key.Matches(msg, k.Up):
		m.tree.MoveCursor(-1)
		m.syncSelection()
		m.refreshPreview()
		return m, nil

	case key.Matches(msg, k.Down):
		m.tree.MoveCursor(1)
		m.syncSelection()
		m.refreshPreview()
		return m, nil

	case key.Matches(msg, k.Left):
		return m.collapseOrAscend(), nil

	case key.Matches(msg, k.Right):
		id := m.tree.CursorID()
		if c, ok := m.services.Store.Component(id); ok && len(c.Children) > 0 {
			if !m.services.Store.Session().IsExpanded(id) {
				_ = m.services.Store.ToggleExpanded(id)
				m.tree.Refresh()
			}
		}
		return m, nil

	case key.Matches(msg, k.Toggle):
		if id := m.tree.CursorID(); id != "" {
			_ = m.services.Store.ToggleExpanded(id)
			m.tree.Refresh()
		}
		return m, nil

	case key.Matches(msg, k.ExpandAll):
		m.services.Store.ExpandAll()
		m.tree.Refresh()
		return m, nil

	case key.Matches(msg, k.CollapseAll):
		m.services.Store.CollapseAll()
		m.tree.Refresh()
		return m, nil

	case key.Matches(msg, k.Add):
		return m.openPrompt(promptAdd, ""), textinput.Blink

	case key.Matches(msg, k.AddChild):
		id := m.tree.CursorID()
		if id == "" {
			m.statusMsg = "select a component first"
			return m, nil
		}
		if !m.services.Store.CanAddChild(id) {
			m.statusMsg = "cannot nest any deeper here"
			return m, nil
		}
		return m.openPrompt(promptAddChild, id), textinput.Blink

	case key.Matches(msg, k.Rename):
		id := m.tree.CursorID()
		if id == "" {
			m.statusMsg = "select a component first"
			return m, nil
		}
		return m.openPrompt(promptRename, id), textinput.Blink

	case key.Matches(msg, k.Delete):
		id := m.tree.CursorID()
		if id == "" {
			m.statusMsg = "select a component first"
			return m, nil
		}
		m.deleteID = id
		m.view = ViewDeleteConfirm
		return m, nil

	case key.Matches(msg, k.Duplicate):
		return m.duplicateSelected(), nil

	case key.Matches(msg, k.Move):
		return m.enterMoveMode(), nil

	case key.Matches(msg, k.Preset):
		names := m.services.Presets.Names()
		if len(names) == 0 {
			m.statusMsg = "no presets available"
			return m, nil
		}
		m.presetNames = names
		m.presetIndex = 0
		m.view = ViewPresetPicker
		return m, nil

	case key.Matches(msg, k.Validate):
		report := m.services.Store.Validate()
		if report.Valid {
			m.statusMsg = "manifest is valid"
		} else {
			m.statusMsg = fmt.Sprintf("%d validation issue(s), first: %s",
				len(report.Issues), report.Issues[0].Message)
		}
		return m, nil

	case key.Matches(msg, k.Generate):
		if m.services.Store.Manifest() == nil {
			m.statusMsg = "nothing to generate"
			return m, nil
		}
		m.statusMsg = "generating..."
		return m, m.generateCmd()

	case key.Matches(msg, k.Save):
		return m, m.saveCmd()
	}

	return m, nil
}

// collapseOrAscend collapses the branch under the cursor, or moves to the
// parent when the branch is already collapsed.
func (m Model) collapseOrAscend() Model {
	id := m.tree.CursorID()
	if id == "" {
		return m
	}
	c, ok := m.services.Store.Component(id)
	if ok && len(c.Children) > 0 && m.services.Store.Session().IsExpanded(id) {
		_ = m.services.Store.ToggleExpanded(id)
		m.tree.Refresh()
		return m
	}
	if parentID, ok := m.services.Store.ParentOf(id); ok {
		m.tree.SelectByID(parentID)
		m.syncSelection()
		m.refreshPreview()
	}
	return m
}

func (m Model) duplicateSelected() Model {
	id := m.tree.CursorID()
	if id == "" {
		m.statusMsg = "select a component first"
		return m
	}
	cloneID, err := m.services.Store.DuplicateComponent(id)
	if err != nil {
		m.statusError("duplicate", err)
		return m
	}
	m.dirty = true
	m.tree.Refresh()
	m.tree.SelectByID(cloneID)
	m.syncSelection()
	m.refreshPreview()
	m.statusMsg = "component duplicated"
	return m
}

func (m Model) handleHelpKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Escape):
		m.view = ViewTree
	}
	return m, nil
}

// openPrompt prepares the text input for add, add-child, or rename.
func (m Model) openPrompt(kind promptKind, targetID string) Model {
	m.prompt = kind
	m.promptTarget = targetID
	m.input.Reset()
	switch kind {
	case promptRename:
		if c, ok := m.services.Store.Component(targetID); ok {
			m.input.SetValue(c.DisplayName)
		}
		m.input.Placeholder = "new display name"
	default:
		m.input.Placeholder = "Name or Name:type (default type div)"
	}
	m.input.Focus()
	m.view = ViewPrompt
	return m
}

func (m Model) handlePromptKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.input.Blur()
		m.view = ViewTree
		return m, nil

	case msg.Type == tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		m.view = ViewTree
		if value == "" {
			return m, nil
		}
		return m.commitPrompt(value), nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// commitPrompt applies the collected prompt value through the store.
func (m Model) commitPrompt(value string) Model {
	switch m.prompt {
	case promptRename:
		name := value
		err := m.services.Store.UpdateComponent(m.promptTarget, manifest.UpdateInput{DisplayName: &name})
		if err != nil {
			m.statusError("rename", err)
			return m
		}
		m.statusMsg = "component renamed"

	default:
		name, elemType := parseNameAndType(value)
		parentID := ""
		if m.prompt == promptAddChild {
			parentID = m.promptTarget
		}
		id, err := m.services.Store.AddComponent(manifest.AddInput{
			DisplayName: name,
			Type:        elemType,
			ParentID:    parentID,
		})
		if err != nil {
			m.statusError("add component", err)
			return m
		}
		if parentID != "" && !m.services.Store.Session().IsExpanded(parentID) {
			_ = m.services.Store.ToggleExpanded(parentID)
		}
		m.tree.Refresh()
		m.tree.SelectByID(id)
		m.syncSelection()
		m.statusMsg = "component added"
	}

	m.dirty = true
	m.tree.Refresh()
	m.refreshPreview()
	return m
}

// parseNameAndType splits "Name:type" prompt input. The type defaults to
// div when omitted.
func parseNameAndType(value string) (string, string) {
	name, elemType, found := strings.Cut(value, ":")
	name = strings.TrimSpace(name)
	elemType = strings.TrimSpace(elemType)
	if !found || elemType == "" {
		elemType = "div"
	}
	if name == "" {
		name = elemType
	}
	return name, elemType
}

// enterMoveMode collects the candidate parents for the component under the
// cursor. The component's own subtree is excluded, as is its current
// parent.
func (m Model) enterMoveMode() Model {
	id := m.tree.CursorID()
	if id == "" {
		m.statusMsg = "select a component first"
		return m
	}

	currentParent, _ := m.services.Store.ParentOf(id)

	targets := []moveTarget{}
	if currentParent != "" {
		targets = append(targets, moveTarget{id: "", label: "(make root)"})
	}

	active := m.services.Store.Manifest()
	if active != nil {
		ids := make([]string, 0, len(active.Components))
		for candidateID := range active.Components {
			ids = append(ids, candidateID)
		}
		sort.Strings(ids)
		for _, candidateID := range ids {
			if candidateID == id || candidateID == currentParent {
				continue
			}
			c := active.Components[candidateID]
			name := c.DisplayName
			if name == "" {
				name = "(unnamed)"
			}
			targets = append(targets, moveTarget{
				id:    candidateID,
				label: fmt.Sprintf("%s <%s>", name, c.Type),
			})
		}
	}

	if len(targets) == 0 {
		m.statusMsg = "nowhere to move this component"
		return m
	}

	m.moveID = id
	m.moveTargets = targets
	m.moveIndex = 0
	m.view = ViewMoveTarget
	return m
}

func (m Model) handleMoveKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.view = ViewTree
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.moveIndex > 0 {
			m.moveIndex--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.moveIndex < len(m.moveTargets)-1 {
			m.moveIndex++
		}
		return m, nil

	case msg.Type == tea.KeyEnter:
		target := m.moveTargets[m.moveIndex]
		m.view = ViewTree
		if err := m.services.Store.MoveComponent(m.moveID, target.id); err != nil {
			m.statusError("move", err)
			return m, nil
		}
		m.dirty = true
		m.tree.Refresh()
		m.tree.SelectByID(m.moveID)
		m.syncSelection()
		m.refreshPreview()
		m.statusMsg = "component moved"
		return m, nil
	}
	return m, nil
}

func (m Model) handlePresetKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.view = ViewTree
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.presetIndex > 0 {
			m.presetIndex--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.presetIndex < len(m.presetNames)-1 {
			m.presetIndex++
		}
		return m, nil

	case msg.Type == tea.KeyEnter:
		name := m.presetNames[m.presetIndex]
		m.view = ViewTree

		// Instantiate under the cursor when nesting is possible there,
		// otherwise at the root level.
		parentID := ""
		if id := m.tree.CursorID(); id != "" && m.services.Store.CanAddChild(id) {
			parentID = id
		}

		topIDs, err := m.services.Presets.Instantiate(m.services.Store, name, parentID)
		if err != nil {
			m.statusError("insert preset", err)
			return m, nil
		}
		if parentID != "" && !m.services.Store.Session().IsExpanded(parentID) {
			_ = m.services.Store.ToggleExpanded(parentID)
		}
		m.dirty = true
		m.tree.Refresh()
		if len(topIDs) > 0 {
			m.tree.SelectByID(topIDs[0])
			m.syncSelection()
		}
		m.refreshPreview()
		m.statusMsg = fmt.Sprintf("preset %q inserted", name)
		return m, nil
	}
	return m, nil
}

func (m Model) handleDeleteConfirmKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), msg.String() == "n":
		m.view = ViewTree
		m.deleteID = ""
		return m, nil

	case msg.String() == "y", msg.Type == tea.KeyEnter:
		m.view = ViewTree
		if err := m.services.Store.DeleteComponent(m.deleteID); err != nil {
			m.statusError("delete", err)
			m.deleteID = ""
			return m, nil
		}
		m.deleteID = ""
		m.dirty = true
		m.tree.Refresh()
		m.syncSelection()
		m.refreshPreview()
		m.statusMsg = "component deleted"
		return m, nil
	}
	return m, nil
}
