package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSession_ToggleExpanded(t *testing.T) {
	sess := NewSession()
	require.False(t, sess.IsExpanded("cmp-a"))

	sess.toggle("cmp-a")
	require.True(t, sess.IsExpanded("cmp-a"))

	sess.toggle("cmp-a")
	require.False(t, sess.IsExpanded("cmp-a"))
}

func TestSession_SelectionReplaces(t *testing.T) {
	sess := NewSession()
	sess.setSelected("cmp-a")
	sess.setSelected("cmp-b")
	require.Equal(t, "cmp-b", sess.SelectedID())
}

func TestSession_SnapshotRestore(t *testing.T) {
	sess := NewSession()
	sess.setSelected("cmp-a")
	sess.expand("cmp-a")
	sess.expand("cmp-b")

	snap := sess.Snapshot()
	require.Equal(t, "cmp-a", snap.SelectedID)
	require.Equal(t, []string{"cmp-a", "cmp-b"}, snap.ExpandedIDs)

	restored := NewSession()
	restored.Restore(snap, func(id string) bool { return id != "cmp-b" })
	require.Equal(t, "cmp-a", restored.SelectedID())
	require.True(t, restored.IsExpanded("cmp-a"))
	require.False(t, restored.IsExpanded("cmp-b"), "ids that no longer exist are dropped on restore")
}

func TestSession_RestoreDropsStaleSelection(t *testing.T) {
	restored := NewSession()
	restored.Restore(State{SelectedID: "cmp-gone"}, func(string) bool { return false })
	require.Empty(t, restored.SelectedID())
}

func TestSession_Prune(t *testing.T) {
	sess := NewSession()
	sess.setSelected("cmp-a")
	sess.expand("cmp-a")
	sess.expand("cmp-b")

	sess.prune(func(id string) bool { return id == "cmp-b" })
	require.Empty(t, sess.SelectedID())
	require.Equal(t, []string{"cmp-b"}, sess.ExpandedIDs())
}
