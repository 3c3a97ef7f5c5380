package manifest

import (
	"fmt"
	"sort"
)

// Store owns the active manifest and is the only writer to it. It keeps a
// reverse parent index (child id -> parent id) and an ordered root list so
// ancestor and depth checks cost O(depth) instead of a full-tree scan, both
// updated inside every mutation.
//
// The store is single-writer and fully synchronous: one session, one logical
// writer (the interactive user or an automated collaborator driving the same
// API), no locking. Mutators validate completely before touching any state,
// so a failed call leaves the registry exactly as it was.
type Store struct {
	manifest *Manifest
	parents  map[string]string // child id -> parent id
	rootIDs  []string          // roots in creation order
	session  *Session

	projectName string
	framework   string
	clock       Clock
}

// NewStore creates a store with no manifest yet. The manifest itself is
// created lazily by the first AddComponent call.
func NewStore(projectName, framework string, clock Clock) *Store {
	if clock == nil {
		clock = SystemClock()
	}
	return &Store{
		parents:     make(map[string]string),
		session:     NewSession(),
		projectName: projectName,
		framework:   framework,
		clock:       clock,
	}
}

// Manifest returns the active manifest, or nil before the first add.
// Collaborators must treat the returned value as a read-only snapshot.
func (s *Store) Manifest() *Manifest {
	return s.manifest
}

// Session returns the UI selection/expansion state for this store.
func (s *Store) Session() *Session {
	return s.session
}

// ParentOf returns the parent id of a component. The second return is
// false for roots and unknown ids.
func (s *Store) ParentOf(id string) (string, bool) {
	return s.parentOf(id)
}

// Component returns the component with the given id.
func (s *Store) Component(id string) (*Component, bool) {
	if s.manifest == nil {
		return nil, false
	}
	c, ok := s.manifest.Components[id]
	return c, ok
}

// Load replaces the active manifest with one produced elsewhere (storage, or
// an external collaborator). The manifest is validated first: manifests that
// did not pass through the guarded API cannot be trusted for rendering or
// code generation. Session state is pruned to ids that still exist.
func (s *Store) Load(m *Manifest) error {
	if m == nil {
		return fmt.Errorf("load manifest: manifest is nil")
	}
	if report := ValidateManifest(m); !report.Valid {
		return fmt.Errorf("load manifest: %s", report.Issues[0].Message)
	}
	if m.Components == nil {
		m.Components = make(map[string]*Component)
	}
	s.manifest = m
	s.reindex()
	s.session.prune(func(id string) bool {
		_, ok := m.Components[id]
		return ok
	})
	return nil
}

// reindex rebuilds the parent index and root list from the manifest.
// Roots are ordered by creation time, then id, so projection stays stable
// across loads.
func (s *Store) reindex() {
	s.parents = make(map[string]string)
	for id, c := range s.manifest.Components {
		for _, childID := range c.Children {
			s.parents[childID] = id
		}
	}
	s.rootIDs = s.rootIDs[:0]
	for id := range s.manifest.Components {
		if _, hasParent := s.parents[id]; !hasParent {
			s.rootIDs = append(s.rootIDs, id)
		}
	}
	sortRoots(s.rootIDs, s.manifest.Components)
}

// AddInput carries the caller-supplied fields for a new component.
type AddInput struct {
	DisplayName string
	Type        string
	Category    Category
	Properties  map[string]PropertyValue
	Styling     *Styling
	ParentID    string
}

// AddComponent creates a component and returns its id. With no ParentID the
// component becomes a root; otherwise it is appended to the parent's
// children. Creates the manifest on first use.
func (s *Store) AddComponent(in AddInput) (string, error) {
	level := DefaultLevel
	if s.manifest != nil {
		level = s.manifest.Level
	}
	if err := checkProperties(level, in.Properties); err != nil {
		return "", err
	}

	if in.ParentID != "" {
		parent, ok := s.Component(in.ParentID)
		if !ok {
			return "", fmt.Errorf("add component: parent %s: %w", in.ParentID, ErrComponentNotFound)
		}
		depth, _ := s.Depth(parent.ID)
		if depth+1 > MaxDepth {
			return "", fmt.Errorf("add component under %s: depth %d: %w", in.ParentID, depth+1, ErrDepthExceeded)
		}
	}

	now := s.clock.Now()
	if s.manifest == nil {
		s.manifest = NewManifest(s.projectName, s.framework, now)
	}

	id := s.freshID()
	category := in.Category
	if category == "" {
		category = CategoryCustom
	}
	styling := Styling{BaseClasses: []string{}}
	if in.Styling != nil {
		styling = copyStyling(*in.Styling)
	}
	s.manifest.Components[id] = &Component{
		ID:          id,
		DisplayName: in.DisplayName,
		Type:        in.Type,
		Category:    category,
		Properties:  copyProperties(in.Properties),
		Styling:     styling,
		Children:    []string{},
		Metadata: ComponentMetadata{
			CreatedAt: now,
			UpdatedAt: now,
			Author:    DefaultAuthor,
			Version:   DefaultVersion,
		},
	}

	if in.ParentID != "" {
		parent := s.manifest.Components[in.ParentID]
		parent.Children = append(parent.Children, id)
		s.parents[id] = in.ParentID
	} else {
		s.rootIDs = append(s.rootIDs, id)
	}

	s.manifest.Metadata.UpdatedAt = now
	return id, nil
}

// UpdateInput carries a partial component update. Nil fields are left
// untouched; supplied fields replace the old value wholesale.
type UpdateInput struct {
	DisplayName *string
	Type        *string
	Category    *Category
	Properties  map[string]PropertyValue
	Styling     *Styling
}

// UpdateComponent merges the supplied fields into an existing component.
// Children and creation metadata are never touched here; UpdatedAt is
// refreshed on both the component and the manifest.
func (s *Store) UpdateComponent(id string, in UpdateInput) error {
	c, ok := s.Component(id)
	if !ok {
		return fmt.Errorf("update component %s: %w", id, ErrComponentNotFound)
	}
	if in.Properties != nil {
		if err := checkProperties(s.manifest.Level, in.Properties); err != nil {
			return err
		}
	}

	if in.DisplayName != nil {
		c.DisplayName = *in.DisplayName
	}
	if in.Type != nil {
		c.Type = *in.Type
	}
	if in.Category != nil {
		c.Category = *in.Category
	}
	if in.Properties != nil {
		c.Properties = copyProperties(in.Properties)
	}
	if in.Styling != nil {
		c.Styling = copyStyling(*in.Styling)
	}

	now := s.clock.Now()
	c.Metadata.UpdatedAt = now
	s.manifest.Metadata.UpdatedAt = now
	return nil
}

// DeleteComponent removes a component and its entire subtree, post-order.
// Session state is kept consistent: removed ids leave the expanded set, and
// selection is cleared when it pointed inside the deleted subtree.
func (s *Store) DeleteComponent(id string) error {
	if _, ok := s.Component(id); !ok {
		return fmt.Errorf("delete component %s: %w", id, ErrComponentNotFound)
	}

	parentID, hadParent := s.parentOf(id)

	removed := s.collectSubtree(id)
	for _, rid := range removed {
		delete(s.manifest.Components, rid)
		delete(s.parents, rid)
		s.session.forget(rid)
	}

	if hadParent {
		parent := s.manifest.Components[parentID]
		parent.Children = removeID(parent.Children, id)
	} else {
		s.rootIDs = removeID(s.rootIDs, id)
	}

	s.manifest.Metadata.UpdatedAt = s.clock.Now()
	return nil
}

// DuplicateComponent shallow-clones a component: fresh id and timestamps,
// display name suffixed with " (Copy)", properties and styling deep-copied,
// children left empty (descendants are never cloned). The clone is attached
// under the original's parent, appended last; duplicating a root yields a
// new root.
func (s *Store) DuplicateComponent(id string) (string, error) {
	orig, ok := s.Component(id)
	if !ok {
		return "", fmt.Errorf("duplicate component %s: %w", id, ErrComponentNotFound)
	}

	now := s.clock.Now()
	cloneID := s.freshID()
	s.manifest.Components[cloneID] = &Component{
		ID:          cloneID,
		DisplayName: orig.DisplayName + " (Copy)",
		Type:        orig.Type,
		Category:    orig.Category,
		Properties:  copyProperties(orig.Properties),
		Styling:     copyStyling(orig.Styling),
		Children:    []string{},
		Metadata: ComponentMetadata{
			CreatedAt: now,
			UpdatedAt: now,
			Author:    DefaultAuthor,
			Version:   DefaultVersion,
		},
	}

	if parentID, ok := s.parentOf(id); ok {
		parent := s.manifest.Components[parentID]
		parent.Children = append(parent.Children, cloneID)
		s.parents[cloneID] = parentID
	} else {
		s.rootIDs = append(s.rootIDs, cloneID)
	}

	s.manifest.Metadata.UpdatedAt = now
	return cloneID, nil
}

// MoveComponent re-parents a component. An empty newParentID makes it a
// root. Moving a node into itself or into its own descendant fails with
// ErrCircularReference. The moved subtree is re-validated against MaxDepth:
// the destination depth plus the subtree's height must still fit.
func (s *Store) MoveComponent(id, newParentID string) error {
	if _, ok := s.Component(id); !ok {
		return fmt.Errorf("move component %s: %w", id, ErrComponentNotFound)
	}

	if newParentID != "" {
		if _, ok := s.Component(newParentID); !ok {
			return fmt.Errorf("move component %s: new parent %s: %w", id, newParentID, ErrComponentNotFound)
		}
		if newParentID == id {
			return fmt.Errorf("move component %s into itself: %w", id, ErrCircularReference)
		}
		if s.isDescendant(id, newParentID) {
			return fmt.Errorf("move component %s into its descendant %s: %w", id, newParentID, ErrCircularReference)
		}
		parentDepth, _ := s.Depth(newParentID)
		if parentDepth+1+s.subtreeHeight(id) > MaxDepth {
			return fmt.Errorf("move component %s under %s: %w", id, newParentID, ErrDepthExceeded)
		}
	}

	// Validation done; commit.
	if oldParentID, ok := s.parentOf(id); ok {
		parent := s.manifest.Components[oldParentID]
		parent.Children = removeID(parent.Children, id)
		delete(s.parents, id)
	} else {
		s.rootIDs = removeID(s.rootIDs, id)
	}

	if newParentID == "" {
		s.rootIDs = append(s.rootIDs, id)
	} else {
		parent := s.manifest.Components[newParentID]
		parent.Children = append(parent.Children, id)
		s.parents[id] = newParentID
	}

	s.manifest.Metadata.UpdatedAt = s.clock.Now()
	return nil
}

// SelectComponent sets the single selection. An empty id clears it.
func (s *Store) SelectComponent(id string) error {
	if id != "" {
		if _, ok := s.Component(id); !ok {
			return fmt.Errorf("select component %s: %w", id, ErrComponentNotFound)
		}
	}
	s.session.setSelected(id)
	return nil
}

// ToggleExpanded flips the expansion state of a component.
func (s *Store) ToggleExpanded(id string) error {
	if _, ok := s.Component(id); !ok {
		return fmt.Errorf("toggle expanded %s: %w", id, ErrComponentNotFound)
	}
	s.session.toggle(id)
	return nil
}

// ExpandAll marks every current component as expanded.
func (s *Store) ExpandAll() {
	if s.manifest == nil {
		return
	}
	for id := range s.manifest.Components {
		s.session.expand(id)
	}
}

// CollapseAll empties the expanded set.
func (s *Store) CollapseAll() {
	s.session.collapseAll()
}

// Validate runs the full non-throwing consistency pass over the manifest.
func (s *Store) Validate() Report {
	return ValidateManifest(s.manifest)
}

// Level returns the active schema level.
func (s *Store) Level() int {
	if s.manifest == nil {
		return DefaultLevel
	}
	return s.manifest.Level
}

// SetLevel changes the schema level. Raising it always succeeds; lowering
// it is rejected while any existing property uses a kind the new level
// forbids. Creates the manifest on first use.
func (s *Store) SetLevel(level int) error {
	if level < 1 || level > 3 {
		return fmt.Errorf("set level %d: level must be between 1 and 3", level)
	}
	now := s.clock.Now()
	if s.manifest == nil {
		s.manifest = NewManifest(s.projectName, s.framework, now)
	}
	if level < s.manifest.Level {
		ids := make([]string, 0, len(s.manifest.Components))
		for id := range s.manifest.Components {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if err := checkProperties(level, s.manifest.Components[id].Properties); err != nil {
				return fmt.Errorf("set level %d: component %s: %w", level, id, err)
			}
		}
	}
	s.manifest.Level = level
	s.manifest.Metadata.UpdatedAt = now
	return nil
}

// freshID allocates an id not present in the registry.
func (s *Store) freshID() string {
	for {
		id := newComponentID()
		if s.manifest == nil {
			return id
		}
		if _, taken := s.manifest.Components[id]; !taken {
			return id
		}
	}
}

// parentOf resolves the parent of a component via the reverse index.
func (s *Store) parentOf(id string) (string, bool) {
	parentID, ok := s.parents[id]
	return parentID, ok
}

// collectSubtree returns id and every descendant, children before parents.
func (s *Store) collectSubtree(id string) []string {
	var ids []string
	var visit func(string)
	visit = func(cur string) {
		c, ok := s.manifest.Components[cur]
		if !ok {
			return
		}
		for _, childID := range c.Children {
			visit(childID)
		}
		ids = append(ids, cur)
	}
	visit(id)
	return ids
}

// checkProperties validates property kinds against the schema level.
func checkProperties(level int, props map[string]PropertyValue) error {
	for name, value := range props {
		if !KindAllowed(level, value.Kind) {
			return fmt.Errorf("property %q kind %q at level %d: %w", name, value.Kind, level, ErrPropertyNotAllowed)
		}
	}
	return nil
}

// removeID drops the first occurrence of id from ids, preserving order.
func removeID(ids []string, id string) []string {
	for i, cur := range ids {
		if cur == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
