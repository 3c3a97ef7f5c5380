package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/forma-dev/forma/internal/config"
	"github.com/forma-dev/forma/internal/manifest"
	"github.com/forma-dev/forma/internal/manifeststore"
)

// runCommand executes a subcommand against a temp project directory and
// captures its output.
func runCommand(t *testing.T, project string, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	viper.Set("path", project)
	cfg = config.Defaults()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	rootCmd.SetArgs(nil)
	return out.String(), err
}

func writeManifest(t *testing.T, project string, build func(*manifest.Store)) {
	t.Helper()
	store := manifest.NewStore("demo", "react", nil)
	build(store)
	files := manifeststore.NewFileStore(config.ManifestPath(project), noop.NewTracerProvider().Tracer("test"))
	require.NoError(t, files.Save(context.Background(), store.Manifest()))
}

func TestInit_CreatesProjectFiles(t *testing.T) {
	project := t.TempDir()

	out, err := runCommand(t, project, "init", "shop")
	require.NoError(t, err)
	require.Contains(t, out, `Initialized forma project "shop"`)

	_, err = os.Stat(filepath.Join(project, ".forma", "config.yaml"))
	require.NoError(t, err)
	_, err = os.Stat(config.ManifestPath(project))
	require.NoError(t, err)
}

func TestInit_FailsWhenAlreadyInitialized(t *testing.T) {
	project := t.TempDir()

	_, err := runCommand(t, project, "init")
	require.NoError(t, err)

	_, err = runCommand(t, project, "init")
	require.ErrorContains(t, err, "already initialized")
}

func TestValidate_ValidManifest(t *testing.T) {
	project := t.TempDir()
	writeManifest(t, project, func(s *manifest.Store) {
		_, err := s.AddComponent(manifest.AddInput{DisplayName: "Card", Type: "div"})
		require.NoError(t, err)
	})

	out, err := runCommand(t, project, "validate")
	require.NoError(t, err)
	require.Contains(t, out, "manifest is valid")
}

func TestValidate_MissingManifest(t *testing.T) {
	project := t.TempDir()

	_, err := runCommand(t, project, "validate")
	require.Error(t, err)
}

func TestValidate_JSONOutput(t *testing.T) {
	project := t.TempDir()
	writeManifest(t, project, func(s *manifest.Store) {
		_, err := s.AddComponent(manifest.AddInput{DisplayName: "Card", Type: "div"})
		require.NoError(t, err)
	})

	out, err := runCommand(t, project, "validate", "--json")
	require.NoError(t, err)
	require.Contains(t, out, `"valid": true`)
}

func TestGenerate_WritesFiles(t *testing.T) {
	project := t.TempDir()
	writeManifest(t, project, func(s *manifest.Store) {
		_, err := s.AddComponent(manifest.AddInput{DisplayName: "Card", Type: "div"})
		require.NoError(t, err)
	})

	out, err := runCommand(t, project, "generate")
	require.NoError(t, err)
	require.Contains(t, out, "generated 1 file(s)")

	_, err = os.Stat(filepath.Join(project, "src", "components", "Card.tsx"))
	require.NoError(t, err)
}

func TestGenerate_DryRunWritesNothing(t *testing.T) {
	project := t.TempDir()
	writeManifest(t, project, func(s *manifest.Store) {
		_, err := s.AddComponent(manifest.AddInput{DisplayName: "Card", Type: "div"})
		require.NoError(t, err)
	})

	out, err := runCommand(t, project, "generate", "--dry-run")
	require.NoError(t, err)
	require.Contains(t, out, "would generate 1 file(s)")

	_, err = os.Stat(filepath.Join(project, "src", "components", "Card.tsx"))
	require.True(t, os.IsNotExist(err))
}

func TestPresets_ListsBuiltins(t *testing.T) {
	project := t.TempDir()

	out, err := runCommand(t, project, "presets")
	require.NoError(t, err)
	require.Contains(t, out, "Hero Section")
	require.Contains(t, out, "Login Form")
	require.Contains(t, out, "Navbar")
}

func TestPresets_JSONOutput(t *testing.T) {
	project := t.TempDir()

	out, err := runCommand(t, project, "presets", "--json")
	require.NoError(t, err)
	require.Contains(t, out, `"name": "Navbar"`)
	require.Contains(t, out, `"component_count"`)
}
