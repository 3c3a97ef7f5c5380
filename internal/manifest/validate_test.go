package manifest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var validateNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// buildManifest assembles a manifest directly, bypassing the store, the way
// an external collaborator might hand one over.
func buildManifest(components map[string]*Component) *Manifest {
	m := NewManifest("demo", "react", validateNow)
	for id, c := range components {
		if c.Metadata.CreatedAt.IsZero() {
			c.Metadata = ComponentMetadata{CreatedAt: validateNow, UpdatedAt: validateNow}
		}
		m.Components[id] = c
	}
	return m
}

func issueCodes(r Report) []IssueCode {
	codes := make([]IssueCode, 0, len(r.Issues))
	for _, issue := range r.Issues {
		codes = append(codes, issue.Code)
	}
	return codes
}

func TestValidateManifest_Nil(t *testing.T) {
	require.True(t, ValidateManifest(nil).Valid)
}

func TestValidateManifest_Empty(t *testing.T) {
	m := NewManifest("demo", "react", validateNow)
	require.True(t, ValidateManifest(m).Valid)
}

func TestValidateManifest_WellFormed(t *testing.T) {
	m := buildManifest(map[string]*Component{
		"cmp-a": {ID: "cmp-a", Type: "div", Children: []string{"cmp-b"}},
		"cmp-b": {ID: "cmp-b", Type: "span"},
	})
	report := ValidateManifest(m)
	require.True(t, report.Valid)
	require.Empty(t, report.Issues)
}

func TestValidateManifest_DanglingChild(t *testing.T) {
	m := buildManifest(map[string]*Component{
		"cmp-a": {ID: "cmp-a", Type: "div", Children: []string{"cmp-gone"}},
	})
	report := ValidateManifest(m)
	require.False(t, report.Valid)
	require.Contains(t, issueCodes(report), IssueDanglingChild)
}

func TestValidateManifest_MultipleParents(t *testing.T) {
	m := buildManifest(map[string]*Component{
		"cmp-a": {ID: "cmp-a", Type: "div", Children: []string{"cmp-c"}},
		"cmp-b": {ID: "cmp-b", Type: "div", Children: []string{"cmp-c"}},
		"cmp-c": {ID: "cmp-c", Type: "span"},
	})
	report := ValidateManifest(m)
	require.False(t, report.Valid)
	require.Contains(t, issueCodes(report), IssueMultipleParents)
}

func TestValidateManifest_Cycle(t *testing.T) {
	m := buildManifest(map[string]*Component{
		"cmp-a": {ID: "cmp-a", Type: "div", Children: []string{"cmp-b"}},
		"cmp-b": {ID: "cmp-b", Type: "div", Children: []string{"cmp-c"}},
		"cmp-c": {ID: "cmp-c", Type: "div", Children: []string{"cmp-a"}},
	})
	report := ValidateManifest(m)
	require.False(t, report.Valid)
	require.Contains(t, issueCodes(report), IssueCycle)
}

func TestValidateManifest_SelfCycle(t *testing.T) {
	m := buildManifest(map[string]*Component{
		"cmp-a": {ID: "cmp-a", Type: "div", Children: []string{"cmp-a"}},
	})
	report := ValidateManifest(m)
	require.False(t, report.Valid)
	require.Contains(t, issueCodes(report), IssueCycle)
}

func TestValidateManifest_DepthExceeded(t *testing.T) {
	components := make(map[string]*Component)
	ids := []string{"cmp-0", "cmp-1", "cmp-2", "cmp-3", "cmp-4", "cmp-5"}
	for i, id := range ids {
		c := &Component{ID: id, Type: "div"}
		if i+1 < len(ids) {
			c.Children = []string{ids[i+1]}
		}
		components[id] = c
	}
	report := ValidateManifest(buildManifest(components))
	require.False(t, report.Valid)
	require.Contains(t, issueCodes(report), IssueDepthExceeded)

	// One level shallower is fine.
	delete(components, "cmp-5")
	components["cmp-4"].Children = nil
	require.True(t, ValidateManifest(buildManifest(components)).Valid)
}

func TestValidateManifest_IDMismatch(t *testing.T) {
	m := buildManifest(map[string]*Component{
		"cmp-a": {ID: "cmp-other", Type: "div"},
	})
	report := ValidateManifest(m)
	require.False(t, report.Valid)
	require.Contains(t, issueCodes(report), IssueIDMismatch)
}

func TestValidateManifest_PropertyBeyondLevel(t *testing.T) {
	m := buildManifest(map[string]*Component{
		"cmp-a": {
			ID:   "cmp-a",
			Type: "div",
			Properties: map[string]PropertyValue{
				"visible": {Kind: PropertyExpression, Expression: "count > 0"},
			},
		},
	})
	report := ValidateManifest(m)
	require.False(t, report.Valid)
	require.Contains(t, issueCodes(report), IssueInvalidProperty)

	// The same manifest is valid at level 2.
	m.Level = 2
	require.True(t, ValidateManifest(m).Valid)
}

func TestValidateManifest_ReportsEveryViolation(t *testing.T) {
	m := buildManifest(map[string]*Component{
		"cmp-a": {ID: "cmp-a", Type: "div", Children: []string{"cmp-gone", "cmp-c"}},
		"cmp-b": {ID: "cmp-b", Type: "div", Children: []string{"cmp-c"}},
		"cmp-c": {ID: "cmp-c", Type: "span"},
	})
	report := ValidateManifest(m)
	require.False(t, report.Valid)
	codes := issueCodes(report)
	require.Contains(t, codes, IssueDanglingChild)
	require.Contains(t, codes, IssueMultipleParents)
}
