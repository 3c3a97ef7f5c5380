package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/forma-dev/forma/internal/manifest"
	"github.com/forma-dev/forma/internal/ui/styles"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.TextPrimaryColor).
			Padding(0, 1)

	dirtyStyle = lipgloss.NewStyle().
			Foreground(styles.StatusWarningColor).
			Bold(true)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(styles.TextPrimaryColor).
				MarginTop(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Width(10)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(styles.TextDescriptionColor)

	pickerItemStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimaryColor).
			PaddingLeft(2)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(styles.BorderFocusColor).
				Bold(true)
)

// View renders the editor.
func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	switch m.view {
	case ViewHelp:
		return m.helpView()
	case ViewPrompt:
		return m.overlayOnTree(m.promptView())
	case ViewMoveTarget:
		return m.overlayOnTree(m.moveView())
	case ViewPresetPicker:
		return m.overlayOnTree(m.presetView())
	case ViewDeleteConfirm:
		return m.overlayOnTree(m.deleteConfirmView())
	}

	return m.treeView()
}

// treeView is the main screen: title, panes, status bar.
func (m Model) treeView() string {
	var sections []string

	sections = append(sections, m.titleBar())

	paneHeight := m.height - 2
	if m.showStatusBar {
		paneHeight--
	}

	treePane := styles.FocusedPaneStyle.
		Width(m.treePaneWidth() - 2).
		Height(paneHeight).
		Render(m.tree.View())

	if m.showPreview {
		previewPane := styles.PaneStyle.
			Width(m.previewPaneWidth() - 2).
			Height(paneHeight).
			Render(m.previewContent(m.previewPaneWidth()-4, paneHeight))
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, treePane, previewPane))
	} else {
		sections = append(sections, treePane)
	}

	if m.showStatusBar {
		sections = append(sections, m.statusBar())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) titleBar() string {
	title := "forma"
	if m.services.Config.ProjectName != "" {
		title += " · " + m.services.Config.ProjectName
	}
	if m.dirty {
		title += " " + dirtyStyle.Render("*")
	}
	return titleStyle.Render(title)
}

func (m Model) previewContent(width, height int) string {
	if m.previewErr != nil {
		return styles.ErrorStyle.Render("preview failed: " + m.previewErr.Error())
	}
	if m.preview == "" {
		empty := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
		return empty.Render("Nothing to preview.")
	}
	// Clip to the pane; the preview shows the top of the generated file.
	// Truncation is ANSI-aware so highlighted source keeps its styling.
	lines := strings.Split(m.preview, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		if width > 0 && ansi.StringWidth(line) > width {
			lines[i] = ansi.Truncate(line, width, "…")
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) statusBar() string {
	parts := []string{}

	count := 0
	level := 1
	if active := m.services.Store.Manifest(); active != nil {
		count = len(active.Components)
		level = active.Level
	}
	parts = append(parts, fmt.Sprintf("%d component(s)", count))
	parts = append(parts, fmt.Sprintf("level %d", level))

	if m.statusMsg != "" {
		parts = append(parts, m.statusMsg)
	}
	parts = append(parts, "? help")

	return styles.StatusBarStyle.Width(m.width).Render(strings.Join(parts, " · "))
}

// overlayOnTree renders a centered box over a dimmed tree screen. The
// underlying screen is replaced rather than composited; terminals handle
// the full redraw.
func (m Model) overlayOnTree(box string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) promptView() string {
	var label string
	switch m.prompt {
	case promptAdd:
		label = "Add component"
	case promptAddChild:
		label = "Add child component"
	case promptRename:
		label = "Rename component"
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.PromptLabelStyle.Render(label),
		"",
		m.input.View(),
		"",
		lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("enter confirm · esc cancel"),
	)
	return styles.FocusedPaneStyle.Padding(1, 2).Render(content)
}

func (m Model) moveView() string {
	var sb strings.Builder
	sb.WriteString(styles.PromptLabelStyle.Render("Move to new parent"))
	sb.WriteString("\n\n")
	sb.WriteString(m.pickerList(targetLabels(m.moveTargets), m.moveIndex))
	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("enter confirm · esc cancel"))
	return styles.FocusedPaneStyle.Padding(1, 2).Render(sb.String())
}

func (m Model) presetView() string {
	var sb strings.Builder
	sb.WriteString(styles.PromptLabelStyle.Render("Insert preset"))
	sb.WriteString("\n\n")
	sb.WriteString(m.pickerList(m.presetNames, m.presetIndex))
	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("enter confirm · esc cancel"))
	return styles.FocusedPaneStyle.Padding(1, 2).Render(sb.String())
}

func (m Model) deleteConfirmView() string {
	name := m.deleteID
	descendants := 0
	if c, ok := m.services.Store.Component(m.deleteID); ok {
		if c.DisplayName != "" {
			name = c.DisplayName
		}
		descendants = subtreeSize(m.services.Store, m.deleteID) - 1
	}

	msg := fmt.Sprintf("Delete %q?", name)
	if descendants > 0 {
		msg = fmt.Sprintf("Delete %q and %d descendant(s)?", name, descendants)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ErrorStyle.Padding(0).Render(msg),
		"",
		lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("y confirm · n cancel"),
	)
	return styles.FocusedPaneStyle.Padding(1, 2).Render(content)
}

func (m Model) pickerList(items []string, selected int) string {
	// Window the list so long pickers stay on screen
	const maxVisible = 12
	start := 0
	if selected >= maxVisible {
		start = selected - maxVisible + 1
	}
	end := min(start+maxVisible, len(items))

	var sb strings.Builder
	for i := start; i < end; i++ {
		if i == selected {
			sb.WriteString(pickerSelectedStyle.Render("> " + items[i]))
		} else {
			sb.WriteString(pickerItemStyle.Render(items[i]))
		}
		sb.WriteString("\n")
	}
	if end < len(items) {
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).
			Render(fmt.Sprintf("  … %d more", len(items)-end)))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// helpView renders the full keybinding reference.
func (m Model) helpView() string {
	sections := []string{"Navigation", "Components", "Project", "General"}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("forma · keybindings"))
	sb.WriteString("\n")

	for i, group := range m.keys.FullHelp() {
		if i < len(sections) {
			sb.WriteString(helpSectionStyle.Render(sections[i]))
			sb.WriteString("\n")
		}
		for _, binding := range group {
			h := binding.Help()
			sb.WriteString("  ")
			sb.WriteString(helpKeyStyle.Render(h.Key))
			sb.WriteString(helpDescStyle.Render(h.Desc))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("? or esc to close"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		styles.PaneStyle.Padding(1, 3).Render(sb.String()))
}

func targetLabels(targets []moveTarget) []string {
	labels := make([]string, len(targets))
	for i, t := range targets {
		labels[i] = t.label
	}
	return labels
}

// subtreeSize counts a component and all its descendants.
func subtreeSize(store *manifest.Store, id string) int {
	c, ok := store.Component(id)
	if !ok {
		return 0
	}
	size := 1
	for _, childID := range c.Children {
		size += subtreeSize(store, childID)
	}
	return size
}
