package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDepth_UnknownID(t *testing.T) {
	s := newTestStore()
	_, ok := s.Depth("cmp-missing")
	require.False(t, ok)
}

func TestCanAddChild(t *testing.T) {
	s := newTestStore()
	ids := addChain(t, s, MaxDepth+1)

	require.True(t, s.CanAddChild(ids[0]))
	require.True(t, s.CanAddChild(ids[MaxDepth-1]))
	require.False(t, s.CanAddChild(ids[MaxDepth]), "a component at MaxDepth cannot take children")
	require.False(t, s.CanAddChild("cmp-missing"))
}

func TestVisibleTree_CollapsedBranchOmitted(t *testing.T) {
	s := newTestStore()
	parentID, err := s.AddComponent(AddInput{DisplayName: "Parent", Type: "div"})
	require.NoError(t, err)
	childID, err := s.AddComponent(AddInput{DisplayName: "Child", Type: "span", ParentID: parentID})
	require.NoError(t, err)

	require.Equal(t, []TreeNode{{ID: parentID, Depth: 0}}, s.VisibleTree())

	require.NoError(t, s.ToggleExpanded(parentID))
	require.Equal(t, []TreeNode{
		{ID: parentID, Depth: 0},
		{ID: childID, Depth: 1},
	}, s.VisibleTree())

	require.NoError(t, s.ToggleExpanded(parentID))
	require.Equal(t, []TreeNode{{ID: parentID, Depth: 0}}, s.VisibleTree())
}

func TestVisibleTree_DescendantsOfCollapsedStayHidden(t *testing.T) {
	s := newTestStore()
	ids := addChain(t, s, 3)

	// Expanding only the middle node changes nothing while its parent is
	// collapsed.
	require.NoError(t, s.ToggleExpanded(ids[1]))
	require.Equal(t, []TreeNode{{ID: ids[0], Depth: 0}}, s.VisibleTree())

	require.NoError(t, s.ToggleExpanded(ids[0]))
	require.Equal(t, []TreeNode{
		{ID: ids[0], Depth: 0},
		{ID: ids[1], Depth: 1},
		{ID: ids[2], Depth: 2},
	}, s.VisibleTree())
}

func TestVisibleTree_ChildrenOrderPreserved(t *testing.T) {
	s := newTestStore()
	parentID, err := s.AddComponent(AddInput{DisplayName: "Parent", Type: "div"})
	require.NoError(t, err)
	var childIDs []string
	for _, name := range []string{"One", "Two", "Three"} {
		id, err := s.AddComponent(AddInput{DisplayName: name, Type: "span", ParentID: parentID})
		require.NoError(t, err)
		childIDs = append(childIDs, id)
	}
	s.ExpandAll()

	nodes := s.VisibleTree()
	require.Len(t, nodes, 4)
	for i, childID := range childIDs {
		require.Equal(t, TreeNode{ID: childID, Depth: 1}, nodes[i+1])
	}
}

func TestVisibleTree_MultipleRoots(t *testing.T) {
	s := newTestStore()
	firstID, err := s.AddComponent(AddInput{DisplayName: "First", Type: "div"})
	require.NoError(t, err)
	secondID, err := s.AddComponent(AddInput{DisplayName: "Second", Type: "div"})
	require.NoError(t, err)

	require.Equal(t, []TreeNode{
		{ID: firstID, Depth: 0},
		{ID: secondID, Depth: 0},
	}, s.VisibleTree())
}

func TestVisibleTree_EmptyStore(t *testing.T) {
	s := newTestStore()
	require.Empty(t, s.VisibleTree())
}

func TestExpandAllCollapseAll(t *testing.T) {
	s := newTestStore()
	ids := addChain(t, s, 3)

	s.ExpandAll()
	require.Len(t, s.VisibleTree(), 3)
	require.Len(t, s.Session().ExpandedIDs(), 3)

	s.CollapseAll()
	require.Equal(t, []TreeNode{{ID: ids[0], Depth: 0}}, s.VisibleTree())
	require.Empty(t, s.Session().ExpandedIDs())
}
