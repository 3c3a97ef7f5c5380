package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Assignments(t *testing.T) {
	k := DefaultKeyMap()

	tests := []struct {
		name     string
		binding  key.Binding
		expected []string
	}{
		{"Up uses k and up", k.Up, []string{"k", "up"}},
		{"Down uses j and down", k.Down, []string{"j", "down"}},
		{"Toggle uses enter and space", k.Toggle, []string{"enter", " "}},
		{"Add uses a", k.Add, []string{"a"}},
		{"AddChild uses A", k.AddChild, []string{"A"}},
		{"Delete uses d", k.Delete, []string{"d"}},
		{"Duplicate uses y", k.Duplicate, []string{"y"}},
		{"Move uses m", k.Move, []string{"m"}},
		{"Generate uses g", k.Generate, []string{"g"}},
		{"Save uses ctrl+s", k.Save, []string{"ctrl+s"}},
		{"Quit uses q and ctrl+c", k.Quit, []string{"q", "ctrl+c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.binding.Keys())
		})
	}
}

func TestDefaultKeyMap_HelpText(t *testing.T) {
	k := DefaultKeyMap()

	for name, binding := range map[string]key.Binding{
		"Add":      k.Add,
		"Delete":   k.Delete,
		"Generate": k.Generate,
		"Help":     k.Help,
	} {
		help := binding.Help()
		require.NotEmpty(t, help.Key, "%s key help should not be empty", name)
		require.NotEmpty(t, help.Desc, "%s description should not be empty", name)
	}
}

func TestFullHelp_CoversAllGroups(t *testing.T) {
	k := DefaultKeyMap()
	groups := k.FullHelp()
	require.Len(t, groups, 4, "navigation, components, project, general")
	for i, group := range groups {
		require.NotEmpty(t, group, "help group %d should not be empty", i)
	}
}
