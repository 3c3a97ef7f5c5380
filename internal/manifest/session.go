package manifest

import "sort"

// Session holds the UI state scoped to one open project: the single
// selected component and the set of expanded branches. It lives and dies
// with the project session and is never serialized into the manifest.
// Mutations that change the registry keep it consistent through the store.
type Session struct {
	selected string
	expanded map[string]struct{}
}

// NewSession creates empty session state.
func NewSession() *Session {
	return &Session{expanded: make(map[string]struct{})}
}

// SelectedID returns the selected component id, or "" when nothing is
// selected.
func (s *Session) SelectedID() string {
	return s.selected
}

// IsExpanded reports whether a component's branch is expanded.
func (s *Session) IsExpanded(id string) bool {
	return s.isExpanded(id)
}

// ExpandedIDs returns the expanded set as a sorted slice.
func (s *Session) ExpandedIDs() []string {
	ids := make([]string, 0, len(s.expanded))
	for id := range s.expanded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// State is the serializable snapshot of session state, persisted per
// project so selection and expansion survive restarts.
type State struct {
	SelectedID  string   `json:"selectedId,omitempty"`
	ExpandedIDs []string `json:"expandedIds,omitempty"`
}

// Snapshot captures the current session state.
func (s *Session) Snapshot() State {
	return State{SelectedID: s.selected, ExpandedIDs: s.ExpandedIDs()}
}

// Restore replaces the session state from a snapshot, keeping only ids for
// which exists returns true.
func (s *Session) Restore(state State, exists func(string) bool) {
	s.selected = ""
	if state.SelectedID != "" && exists(state.SelectedID) {
		s.selected = state.SelectedID
	}
	s.expanded = make(map[string]struct{}, len(state.ExpandedIDs))
	for _, id := range state.ExpandedIDs {
		if exists(id) {
			s.expanded[id] = struct{}{}
		}
	}
}

func (s *Session) setSelected(id string) {
	s.selected = id
}

func (s *Session) isExpanded(id string) bool {
	_, ok := s.expanded[id]
	return ok
}

func (s *Session) toggle(id string) {
	if s.isExpanded(id) {
		delete(s.expanded, id)
	} else {
		s.expanded[id] = struct{}{}
	}
}

func (s *Session) expand(id string) {
	s.expanded[id] = struct{}{}
}

func (s *Session) collapseAll() {
	s.expanded = make(map[string]struct{})
}

// forget removes a deleted component from session state, clearing the
// selection if it pointed at the removed id.
func (s *Session) forget(id string) {
	delete(s.expanded, id)
	if s.selected == id {
		s.selected = ""
	}
}

// prune drops session entries whose component no longer exists.
func (s *Session) prune(exists func(string) bool) {
	if s.selected != "" && !exists(s.selected) {
		s.selected = ""
	}
	for id := range s.expanded {
		if !exists(id) {
			delete(s.expanded, id)
		}
	}
}
