// Package tree renders the component hierarchy as a navigable outline.
// It projects the store's visible tree (collapsed branches hidden) and
// draws branch guides in the usual ├─/└─ style.
package tree

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/forma-dev/forma/internal/manifest"
	"github.com/forma-dev/forma/internal/ui/styles"
)

// Model holds the tree view state.
type Model struct {
	store     *manifest.Store
	nodes     []manifest.TreeNode // Flattened visible nodes for navigation
	cursor    int                 // Index into nodes slice
	width     int
	height    int
	scrollTop int // First visible line index (for viewport scrolling)
}

// New creates a tree model over the given store.
func New(store *manifest.Store) *Model {
	m := &Model{store: store}
	m.Refresh()
	return m
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Refresh re-projects the visible tree after store mutations. The cursor
// stays on the same component when it is still visible, otherwise it is
// clamped.
func (m *Model) Refresh() {
	var cursorID string
	if node, ok := m.CursorNode(); ok {
		cursorID = node.ID
	}

	m.nodes = m.store.VisibleTree()

	if cursorID != "" {
		if m.SelectByID(cursorID) {
			m.ensureCursorVisible()
			return
		}
	}
	if m.cursor >= len(m.nodes) {
		m.cursor = len(m.nodes) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureCursorVisible()
}

// MoveCursor moves the cursor by delta, respecting bounds.
func (m *Model) MoveCursor(delta int) {
	newPos := m.cursor + delta
	newPos = max(newPos, 0)
	newPos = min(newPos, len(m.nodes)-1)
	newPos = max(newPos, 0) // Handle empty nodes case
	m.cursor = newPos
	m.ensureCursorVisible()
}

// CursorNode returns the node under the cursor.
func (m *Model) CursorNode() (manifest.TreeNode, bool) {
	if m.cursor >= 0 && m.cursor < len(m.nodes) {
		return m.nodes[m.cursor], true
	}
	return manifest.TreeNode{}, false
}

// CursorID returns the id of the component under the cursor, or "".
func (m *Model) CursorID() string {
	if node, ok := m.CursorNode(); ok {
		return node.ID
	}
	return ""
}

// SelectByID moves the cursor to the node with the given component id.
// Returns true if the component is currently visible.
func (m *Model) SelectByID(id string) bool {
	for i, node := range m.nodes {
		if node.ID == id {
			m.cursor = i
			return true
		}
	}
	return false
}

// Len returns the number of visible nodes.
func (m *Model) Len() int {
	return len(m.nodes)
}

// ensureCursorVisible adjusts scrollTop to keep cursor in view.
func (m *Model) ensureCursorVisible() {
	viewportHeight := m.viewportHeight()
	if viewportHeight <= 0 {
		return
	}

	if m.cursor >= m.scrollTop+viewportHeight {
		m.scrollTop = m.cursor - viewportHeight + 1
	}
	if m.cursor < m.scrollTop {
		m.scrollTop = m.cursor
	}

	maxScroll := max(len(m.nodes)-viewportHeight, 0)
	m.scrollTop = min(m.scrollTop, maxScroll)
	m.scrollTop = max(m.scrollTop, 0)
}

// viewportHeight returns the number of visible node rows.
func (m *Model) viewportHeight() int {
	reserved := 1
	if m.height > reserved {
		return m.height - reserved
	}
	return 1
}

// View renders the tree.
func (m *Model) View() string {
	if len(m.nodes) == 0 {
		mutedStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
		return mutedStyle.Render("No components yet. Press 'a' to add one.")
	}

	var sb strings.Builder

	viewportHeight := m.viewportHeight()
	endIdx := min(m.scrollTop+viewportHeight, len(m.nodes))

	if m.scrollTop > 0 {
		scrollStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
		sb.WriteString(scrollStyle.Render(fmt.Sprintf("  ↑ %d more above", m.scrollTop)))
		sb.WriteString("\n")
	}

	for i := m.scrollTop; i < endIdx; i++ {
		sb.WriteString(m.renderNode(i))
		sb.WriteString("\n")
	}

	remaining := len(m.nodes) - endIdx
	if remaining > 0 {
		scrollStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
		sb.WriteString(scrollStyle.Render(fmt.Sprintf("  ↓ %d more below", remaining)))
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderNode renders a single tree row.
func (m *Model) renderNode(i int) string {
	node := m.nodes[i]
	c, ok := m.store.Component(node.ID)
	if !ok {
		return ""
	}

	var sb strings.Builder

	// Cursor indicator
	if i == m.cursor {
		sb.WriteString(styles.SelectionIndicatorStyle.Render(">"))
	} else {
		sb.WriteString(" ")
	}
	sb.WriteString(" ")

	sb.WriteString(m.buildPrefix(i))

	// Expansion indicator
	switch {
	case len(c.Children) == 0:
		sb.WriteString("  ")
	case m.store.Session().IsExpanded(node.ID):
		sb.WriteString("▾ ")
	default:
		sb.WriteString("▸ ")
	}

	// Category badge
	badge := styles.CategoryStyle(string(c.Category)).Render("[" + categoryInitial(c.Category) + "]")
	sb.WriteString(badge)
	sb.WriteString(" ")

	// Display name and element type
	name := c.DisplayName
	if name == "" {
		name = "(unnamed)"
	}
	typeStyle := lipgloss.NewStyle().Foreground(styles.TextSecondaryColor)
	suffix := " " + typeStyle.Render("<"+c.Type+">")

	// Collapsed child count
	var countSuffix string
	if len(c.Children) > 0 && !m.store.Session().IsExpanded(node.ID) {
		countStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
		countSuffix = " " + countStyle.Render(styles.FormatChildCount(len(c.Children)))
	}

	// Truncate the name to the remaining width
	if m.width > 0 {
		used := lipgloss.Width(sb.String()) + lipgloss.Width(suffix) + lipgloss.Width(countSuffix)
		available := m.width - used
		if available > 0 && lipgloss.Width(name) > available {
			name = styles.TruncateString(name, available)
		}
	}

	sb.WriteString(name)
	sb.WriteString(suffix)
	sb.WriteString(countSuffix)

	return sb.String()
}

// buildPrefix builds the tree branch prefix for the node at index i.
// Ancestor levels contribute a continuation bar when the ancestor has a
// later sibling; the node itself gets ├─ or └─.
func (m *Model) buildPrefix(i int) string {
	depth := m.nodes[i].Depth
	if depth == 0 {
		return ""
	}

	var parts []string
	for level := 1; level < depth; level++ {
		if ai, ok := m.ancestorIndex(i, level); ok && !m.isLastSibling(ai) {
			parts = append(parts, "│   ")
		} else {
			parts = append(parts, "    ")
		}
	}

	if m.isLastSibling(i) {
		parts = append(parts, "└─")
	} else {
		parts = append(parts, "├─")
	}

	return strings.Join(parts, "")
}

// ancestorIndex finds the nearest preceding node at the given depth.
func (m *Model) ancestorIndex(i, depth int) (int, bool) {
	for j := i - 1; j >= 0; j-- {
		if m.nodes[j].Depth == depth {
			return j, true
		}
		if m.nodes[j].Depth < depth {
			return 0, false
		}
	}
	return 0, false
}

// isLastSibling reports whether the node at index i has no later sibling
// at the same depth within its parent's subtree.
func (m *Model) isLastSibling(i int) bool {
	depth := m.nodes[i].Depth
	for j := i + 1; j < len(m.nodes); j++ {
		if m.nodes[j].Depth == depth {
			return false
		}
		if m.nodes[j].Depth < depth {
			return true
		}
	}
	return true
}

func categoryInitial(category manifest.Category) string {
	if category == "" {
		return "?"
	}
	return strings.ToUpper(string(category[0:1]))
}
