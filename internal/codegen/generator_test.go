package codegen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/forma-dev/forma/internal/manifest"
)

func newTestGenerator(t *testing.T) (*Generator, string) {
	t.Helper()
	outDir := filepath.Join(t.TempDir(), "src", "components")
	g := New(Config{OutputDir: outDir}, noop.NewTracerProvider().Tracer("test"))
	return g, outDir
}

func TestGenerate_EmptyManifest(t *testing.T) {
	g, outDir := newTestGenerator(t)

	result, err := g.Generate(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, result.Files)

	_, statErr := os.Stat(outDir)
	require.True(t, os.IsNotExist(statErr), "empty manifest should not create the output dir")
}

func TestGenerate_WritesOneFilePerRoot(t *testing.T) {
	g, outDir := newTestGenerator(t)

	s := manifest.NewStore("demo", "react", newTestClock())
	_, err := s.AddComponent(manifest.AddInput{DisplayName: "page header", Type: "header"})
	require.NoError(t, err)
	rootID, err := s.AddComponent(manifest.AddInput{DisplayName: "footer", Type: "footer"})
	require.NoError(t, err)
	_, err = s.AddComponent(manifest.AddInput{DisplayName: "copyright", Type: "small", ParentID: rootID})
	require.NoError(t, err)

	result, err := g.Generate(context.Background(), s.Manifest())
	require.NoError(t, err)
	require.Len(t, result.Files, 2, "two roots, two files; children render inline")
	require.Equal(t, 3, result.ComponentCount)
	require.Equal(t, "PageHeader.jsx", result.Files[0].Name, "oldest root first")
	require.Equal(t, "Footer.jsx", result.Files[1].Name)

	for _, f := range result.Files {
		require.Equal(t, ChangeAdded, f.Change)
		content, err := os.ReadFile(filepath.Join(outDir, f.Name))
		require.NoError(t, err)
		require.Equal(t, f.Source, string(content))
	}
}

func TestGenerate_SecondRunUnchanged(t *testing.T) {
	g, _ := newTestGenerator(t)

	s := manifest.NewStore("demo", "react", newTestClock())
	_, err := s.AddComponent(manifest.AddInput{DisplayName: "card", Type: "div"})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), s.Manifest())
	require.NoError(t, err)

	result, err := g.Generate(context.Background(), s.Manifest())
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	require.Equal(t, ChangeUnchanged, result.Files[0].Change)
}

func TestGenerate_ModifiedComponentReported(t *testing.T) {
	g, _ := newTestGenerator(t)

	s := manifest.NewStore("demo", "react", newTestClock())
	id, err := s.AddComponent(manifest.AddInput{DisplayName: "card", Type: "div"})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), s.Manifest())
	require.NoError(t, err)

	newType := "section"
	require.NoError(t, s.UpdateComponent(id, manifest.UpdateInput{Type: &newType}))

	result, err := g.Generate(context.Background(), s.Manifest())
	require.NoError(t, err)
	require.Equal(t, ChangeModified, result.Files[0].Change)
	require.Greater(t, result.Files[0].AddedLines, 0)
	require.Greater(t, result.Files[0].RemovedLines, 0)
	require.Contains(t, result.Files[0].Source, "<section />")
}

func TestGenerate_RemovesStaleOutputs(t *testing.T) {
	g, outDir := newTestGenerator(t)

	s := manifest.NewStore("demo", "react", newTestClock())
	keepID, err := s.AddComponent(manifest.AddInput{DisplayName: "keep me", Type: "div"})
	require.NoError(t, err)
	dropID, err := s.AddComponent(manifest.AddInput{DisplayName: "drop me", Type: "div"})
	require.NoError(t, err)
	_ = keepID

	_, err = g.Generate(context.Background(), s.Manifest())
	require.NoError(t, err)

	require.NoError(t, s.DeleteComponent(dropID))

	result, err := g.Generate(context.Background(), s.Manifest())
	require.NoError(t, err)
	require.Equal(t, []string{"DropMe.jsx"}, result.Removed)

	_, statErr := os.Stat(filepath.Join(outDir, "DropMe.jsx"))
	require.True(t, os.IsNotExist(statErr))
}

func TestGenerate_LeavesForeignFilesAlone(t *testing.T) {
	g, outDir := newTestGenerator(t)

	s := manifest.NewStore("demo", "react", newTestClock())
	_, err := s.AddComponent(manifest.AddInput{DisplayName: "card", Type: "div"})
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(outDir, 0o755))
	handWritten := filepath.Join(outDir, "Custom.jsx")
	require.NoError(t, os.WriteFile(handWritten, []byte("// hand written\n"), 0o644))

	result, err := g.Generate(context.Background(), s.Manifest())
	require.NoError(t, err)
	require.Empty(t, result.Removed, "files without our header must not be deleted")

	_, statErr := os.Stat(handWritten)
	require.NoError(t, statErr)
}

func TestGenerate_DuplicateRootNamesDisambiguated(t *testing.T) {
	g, _ := newTestGenerator(t)

	s := manifest.NewStore("demo", "react", newTestClock())
	_, err := s.AddComponent(manifest.AddInput{DisplayName: "card", Type: "div"})
	require.NoError(t, err)
	_, err = s.AddComponent(manifest.AddInput{DisplayName: "card", Type: "div"})
	require.NoError(t, err)

	result, err := g.Generate(context.Background(), s.Manifest())
	require.NoError(t, err)
	require.Equal(t, "Card.jsx", result.Files[0].Name)
	require.Equal(t, "Card2.jsx", result.Files[1].Name)
}

func TestGenerate_RejectsInvalidManifest(t *testing.T) {
	g, _ := newTestGenerator(t)

	s := manifest.NewStore("demo", "react", newTestClock())
	id, err := s.AddComponent(manifest.AddInput{DisplayName: "card", Type: "div"})
	require.NoError(t, err)

	m := s.Manifest()
	m.Components[id].Children = append(m.Components[id].Children, "cmp-missing")

	_, err = g.Generate(context.Background(), m)
	require.Error(t, err)
}

func TestGenerate_TypeScriptExtension(t *testing.T) {
	outDir := t.TempDir()
	g := New(Config{OutputDir: outDir, TypeScript: true}, noop.NewTracerProvider().Tracer("test"))

	s := manifest.NewStore("demo", "react", newTestClock())
	_, err := s.AddComponent(manifest.AddInput{DisplayName: "card", Type: "div"})
	require.NoError(t, err)

	result, err := g.Generate(context.Background(), s.Manifest())
	require.NoError(t, err)
	require.Equal(t, "Card.tsx", result.Files[0].Name)
}

func TestPreview_RendersSubtreeWithoutWriting(t *testing.T) {
	g, outDir := newTestGenerator(t)

	s := manifest.NewStore("demo", "react", newTestClock())
	rootID, err := s.AddComponent(manifest.AddInput{DisplayName: "sidebar", Type: "aside"})
	require.NoError(t, err)
	childID, err := s.AddComponent(manifest.AddInput{DisplayName: "nav link", Type: "a", ParentID: rootID})
	require.NoError(t, err)

	source, err := g.Preview(context.Background(), s.Manifest(), childID)
	require.NoError(t, err)
	require.Contains(t, source, "export function NavLink()")

	_, statErr := os.Stat(outDir)
	require.True(t, os.IsNotExist(statErr), "preview must not touch disk")
}

func TestPreview_UnknownComponent(t *testing.T) {
	g, _ := newTestGenerator(t)

	s := manifest.NewStore("demo", "react", newTestClock())
	_, err := s.AddComponent(manifest.AddInput{DisplayName: "card", Type: "div"})
	require.NoError(t, err)

	_, err = g.Preview(context.Background(), s.Manifest(), "cmp-missing")
	require.ErrorIs(t, err, manifest.ErrComponentNotFound)
}
