package manifest

import (
	"fmt"
	"sort"
)

// IssueCode identifies a class of structural violation.
type IssueCode string

const (
	IssueDanglingChild   IssueCode = "dangling-child"
	IssueMultipleParents IssueCode = "multiple-parents"
	IssueCycle           IssueCode = "cycle"
	IssueDepthExceeded   IssueCode = "depth-exceeded"
	IssueIDMismatch      IssueCode = "id-mismatch"
	IssueInvalidProperty IssueCode = "invalid-property"
)

// Issue is one violation found by validation. Reported, never thrown.
type Issue struct {
	Code        IssueCode
	ComponentID string
	Message     string
}

// Report is the outcome of a validation pass.
type Report struct {
	Valid  bool
	Issues []Issue
}

// ValidateManifest checks the whole manifest for structural violations:
// dangling child references, ids claimed by more than one parent, cycles,
// depth-bound violations, key/id mismatches, and property kinds beyond the
// schema level. It exists independently of the mutators' inline guards
// because manifests can arrive from storage or from an external
// collaborator without ever passing through the guarded API.
//
// The pass never mutates and never fails: a nil or empty manifest is valid.
func ValidateManifest(m *Manifest) Report {
	if m == nil || len(m.Components) == 0 {
		return Report{Valid: true}
	}

	var issues []Issue
	report := func(code IssueCode, id, format string, args ...any) {
		issues = append(issues, Issue{
			Code:        code,
			ComponentID: id,
			Message:     fmt.Sprintf(format, args...),
		})
	}

	ids := make([]string, 0, len(m.Components))
	for id := range m.Components {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Referential checks: every child id must exist, and no id may be
	// claimed by more than one parent.
	parentCount := make(map[string]int)
	for _, id := range ids {
		c := m.Components[id]
		if c.ID != id {
			report(IssueIDMismatch, id, "component keyed %s carries id %q", id, c.ID)
		}
		for _, childID := range c.Children {
			if _, ok := m.Components[childID]; !ok {
				report(IssueDanglingChild, id, "component %s references missing child %s", id, childID)
				continue
			}
			parentCount[childID]++
		}
		for name, value := range c.Properties {
			if !KindAllowed(m.Level, value.Kind) {
				report(IssueInvalidProperty, id, "component %s property %q uses kind %q beyond level %d", id, name, value.Kind, m.Level)
			}
		}
	}
	for _, id := range ids {
		if parentCount[id] > 1 {
			report(IssueMultipleParents, id, "component %s appears in %d children lists", id, parentCount[id])
		}
	}

	// Cycle detection: DFS over child edges with a recursion stack.
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true
		for _, childID := range m.Components[id].Children {
			if _, ok := m.Components[childID]; !ok {
				continue
			}
			if onStack[childID] {
				report(IssueCycle, id, "cycle detected: %s -> %s", id, childID)
				onStack[id] = false
				return true
			}
			if !visited[childID] {
				if dfs(childID) {
					onStack[id] = false
					return true
				}
			}
		}
		onStack[id] = false
		return false
	}
	cyclic := false
	for _, id := range ids {
		if !visited[id] {
			if dfs(id) {
				cyclic = true
			}
		}
	}

	// Depth bound: walk down from every root. Skipped when a cycle was
	// found, since depth is not well defined then.
	if !cyclic {
		referenced := make(map[string]bool)
		for _, c := range m.Components {
			for _, childID := range c.Children {
				referenced[childID] = true
			}
		}
		var walk func(id string, depth int)
		walk = func(id string, depth int) {
			if depth > MaxDepth {
				report(IssueDepthExceeded, id, "component %s sits at depth %d, limit is %d", id, depth, MaxDepth)
			}
			for _, childID := range m.Components[id].Children {
				if _, ok := m.Components[childID]; ok {
					walk(childID, depth+1)
				}
			}
		}
		for _, id := range ids {
			if !referenced[id] {
				walk(id, 0)
			}
		}
	}

	return Report{Valid: len(issues) == 0, Issues: issues}
}
