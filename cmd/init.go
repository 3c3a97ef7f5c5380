package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/forma-dev/forma/internal/config"
	"github.com/forma-dev/forma/internal/manifest"
	"github.com/forma-dev/forma/internal/manifeststore"
)

var initCmd = &cobra.Command{
	Use:   "init [project-name]",
	Short: "Initialize a forma project in the current directory",
	Long: `Initialize a forma project: creates the .forma directory with a
default config file and an empty manifest.

The project name defaults to the directory name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	project, err := projectPath()
	if err != nil {
		return err
	}

	name := filepath.Base(project)
	if len(args) > 0 {
		name = args[0]
	}

	configPath := filepath.Join(project, config.ProjectDir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", configPath)
	}
	if err := config.WriteDefaultConfig(configPath); err != nil {
		return err
	}

	manifestPath := config.ManifestPath(project)
	files := manifeststore.NewFileStore(manifestPath, noop.NewTracerProvider().Tracer("forma"))
	empty := manifest.NewManifest(name, cfg.Framework, time.Now().UTC())
	if err := files.Save(context.Background(), empty); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized forma project %q\n", name)
	fmt.Fprintf(cmd.OutOrStdout(), "  config:   %s\n", configPath)
	fmt.Fprintf(cmd.OutOrStdout(), "  manifest: %s\n", manifestPath)
	return nil
}
