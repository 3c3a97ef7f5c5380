package manifest

import "sort"

// TreeNode is one row of the projected tree: a component id at a depth.
type TreeNode struct {
	ID    string
	Depth int
}

// Depth returns the number of ancestor hops from the nearest root (root =
// 0). The second return is false when the id is unknown.
func (s *Store) Depth(id string) (int, bool) {
	if _, ok := s.Component(id); !ok {
		return 0, false
	}
	depth := 0
	cur := id
	for {
		parentID, ok := s.parents[cur]
		if !ok {
			return depth, true
		}
		depth++
		cur = parentID
	}
}

// CanAddChild reports whether a child added under id would still fit the
// depth bound.
func (s *Store) CanAddChild(id string) bool {
	depth, ok := s.Depth(id)
	return ok && depth < MaxDepth
}

// isDescendant reports whether id sits somewhere below ancestorID.
func (s *Store) isDescendant(ancestorID, id string) bool {
	cur := id
	for {
		parentID, ok := s.parents[cur]
		if !ok {
			return false
		}
		if parentID == ancestorID {
			return true
		}
		cur = parentID
	}
}

// subtreeHeight returns the longest downward path from id (leaf = 0).
func (s *Store) subtreeHeight(id string) int {
	c, ok := s.Component(id)
	if !ok {
		return 0
	}
	height := 0
	for _, childID := range c.Children {
		if h := s.subtreeHeight(childID) + 1; h > height {
			height = h
		}
	}
	return height
}

// Roots returns the root component ids in projection order.
func (s *Store) Roots() []string {
	return append([]string{}, s.rootIDs...)
}

// VisibleTree projects the manifest into the depth-first row list the UI
// renders. Roots are always visible; a child is visible only when its
// parent is visible and expanded, so collapsed branches disappear along
// with all their descendants.
func (s *Store) VisibleTree() []TreeNode {
	if s.manifest == nil {
		return nil
	}
	var nodes []TreeNode
	var visit func(id string, depth int)
	visit = func(id string, depth int) {
		c, ok := s.manifest.Components[id]
		if !ok {
			return
		}
		nodes = append(nodes, TreeNode{ID: id, Depth: depth})
		if !s.session.isExpanded(id) {
			return
		}
		for _, childID := range c.Children {
			visit(childID, depth+1)
		}
	}
	for _, rootID := range s.rootIDs {
		visit(rootID, 0)
	}
	return nodes
}

// sortRoots orders root ids by creation time, then id, so projection of a
// freshly loaded manifest is stable across runs.
func sortRoots(ids []string, components map[string]*Component) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := components[ids[i]], components[ids[j]]
		if !a.Metadata.CreatedAt.Equal(b.Metadata.CreatedAt) {
			return a.Metadata.CreatedAt.Before(b.Metadata.CreatedAt)
		}
		return ids[i] < ids[j]
	})
}
