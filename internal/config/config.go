// Package config provides configuration types, defaults, and persistence
// for forma.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/forma-dev/forma/internal/log"
	"github.com/forma-dev/forma/internal/paths"
	"github.com/forma-dev/forma/internal/tracing"
)

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowStatusBar  bool   `mapstructure:"show_status_bar"`
	ShowPreview    bool   `mapstructure:"show_preview"`
	MarkdownStyle  string `mapstructure:"markdown_style"`  // "dark" (default) or "light"
	ExpandOnSelect bool   `mapstructure:"expand_on_select"` // expand a branch when it is selected
}

// GeneratorConfig controls code generation output.
type GeneratorConfig struct {
	OutputDir  string `mapstructure:"output_dir"`
	TypeScript bool   `mapstructure:"typescript"`
}

// Config holds all configuration options for forma.
type Config struct {
	ProjectName string          `mapstructure:"project_name"`
	Framework   string          `mapstructure:"framework"`
	AutoReload  bool            `mapstructure:"auto_reload"` // reload when the manifest changes on disk
	UI          UIConfig        `mapstructure:"ui"`
	Generator   GeneratorConfig `mapstructure:"generator"`
	Tracing     tracing.Config  `mapstructure:"tracing"`
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		Framework:  "react",
		AutoReload: true,
		UI: UIConfig{
			ShowStatusBar:  true,
			ShowPreview:    true,
			MarkdownStyle:  "dark",
			ExpandOnSelect: false,
		},
		Generator: GeneratorConfig{
			OutputDir:  "src/components",
			TypeScript: true,
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// ProjectDir is the per-project state directory holding the manifest, the
// workspace database, and the project-local config file.
const ProjectDir = ".forma"

// ManifestPath returns the manifest location for a project, following any
// worktree redirect.
func ManifestPath(projectPath string) string {
	return filepath.Join(paths.ResolveProjectDir(projectPath), "manifest.json")
}

// WorkspaceDBPath returns the workspace database location for a project,
// following any worktree redirect.
func WorkspaceDBPath(projectPath string) string {
	return filepath.Join(paths.ResolveProjectDir(projectPath), "workspace.db")
}

// DefaultConfigTemplate is written on first run so users have a documented
// starting point.
func DefaultConfigTemplate() string {
	return `# forma configuration
#
# project_name: shown in the editor title and stamped into the manifest.
# framework: target framework tag for generated source (default: react).
project_name: ""
framework: react

# Reload the manifest automatically when it changes on disk (for example
# when an external tool writes a new one).
auto_reload: true

ui:
  show_status_bar: true
  show_preview: true
  # markdown_style: "dark" or "light"
  markdown_style: dark
  expand_on_select: false

generator:
  output_dir: src/components
  typescript: true

# Tracing is off by default. Exporters: "stdout", "otlp", "file".
tracing:
  enabled: false
  exporter: file
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
`
}

// WriteDefaultConfig writes the default config template to the given path,
// creating parent directories as needed.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
