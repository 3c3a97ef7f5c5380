package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"

	"github.com/forma-dev/forma/internal/app"
	"github.com/forma-dev/forma/internal/codegen"
	"github.com/forma-dev/forma/internal/config"
	"github.com/forma-dev/forma/internal/infrastructure/sqlite"
	"github.com/forma-dev/forma/internal/log"
	"github.com/forma-dev/forma/internal/manifest"
	"github.com/forma-dev/forma/internal/manifeststore"
	"github.com/forma-dev/forma/internal/templates"
	"github.com/forma-dev/forma/internal/tracing"
	"github.com/forma-dev/forma/internal/ui/editor"
	"github.com/forma-dev/forma/internal/watcher"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	debugMode bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:     "forma",
	Short:   "A terminal ui for building component trees",
	Long:    `A terminal user interface for composing UI component trees, validating their structure, and generating framework source from them.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .forma/config.yaml, then ~/.config/forma/config.yaml)")
	rootCmd.PersistentFlags().StringP("path", "p", "",
		"project directory (default: current directory)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false,
		"write debug logs to .forma/debug.log")
	rootCmd.Flags().Bool("no-auto-reload", false,
		"disable reloading when the manifest changes on disk")

	_ = viper.BindPFlag("path", rootCmd.PersistentFlags().Lookup("path"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("framework", defaults.Framework)
	viper.SetDefault("auto_reload", defaults.AutoReload)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)
	viper.SetDefault("ui.show_preview", defaults.UI.ShowPreview)
	viper.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	viper.SetDefault("ui.expand_on_select", defaults.UI.ExpandOnSelect)
	viper.SetDefault("generator.output_dir", defaults.Generator.OutputDir)
	viper.SetDefault("generator.typescript", defaults.Generator.TypeScript)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .forma/config.yaml (current directory)
		// 2. ~/.config/forma/config.yaml (user config)
		if _, err := os.Stat(filepath.Join(config.ProjectDir, "config.yaml")); err == nil {
			viper.SetConfigFile(filepath.Join(config.ProjectDir, "config.yaml"))
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "forma"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	// Continue with defaults when no config file exists; `forma init`
	// writes one.
	_ = viper.ReadInConfig()

	_ = viper.Unmarshal(&cfg)
}

// projectPath resolves the project directory from the --path flag, falling
// back to the working directory.
func projectPath() (string, error) {
	if p := viper.GetString("path"); p != "" {
		return p, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return dir, nil
}

func runApp(cmd *cobra.Command, args []string) error {
	project, err := projectPath()
	if err != nil {
		return err
	}

	debug := os.Getenv("FORMA_DEBUG") != "" || debugMode
	if debug {
		cleanup, logErr := log.InitWithTeaLog(filepath.Join(project, config.ProjectDir, "debug.log"), "forma")
		if logErr == nil {
			defer cleanup()
		}
	}

	if noReload, _ := cmd.Flags().GetBool("no-auto-reload"); noReload {
		cfg.AutoReload = false
	}
	if cfg.ProjectName == "" {
		cfg.ProjectName = filepath.Base(project)
	}

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() { _ = provider.Shutdown(context.Background()) }()
	tracer := provider.Tracer()

	store := manifest.NewStore(cfg.ProjectName, cfg.Framework, nil)
	files := manifeststore.NewFileStore(config.ManifestPath(project), tracer)

	loaded, err := files.Load(context.Background())
	switch {
	case err == nil:
		if loadErr := store.Load(loaded); loadErr != nil {
			return fmt.Errorf("loading manifest: %w", loadErr)
		}
	case errors.Is(err, manifeststore.ErrNotFound):
		// First run for this project; the manifest is created on the
		// first mutation.
	default:
		return fmt.Errorf("loading manifest: %w", err)
	}

	services := editor.Services{
		Store:     store,
		Files:     files,
		Config:    &cfg,
		Generator: newGenerator(project, tracer),
	}

	library, err := templates.NewLibrary()
	if err != nil {
		return fmt.Errorf("loading presets: %w", err)
	}
	if err := library.LoadDir(filepath.Join(project, config.ProjectDir, "presets")); err != nil {
		return fmt.Errorf("loading project presets: %w", err)
	}
	services.Presets = library

	// The workspace database persists selection state and generation
	// history. The editor works without it.
	db, err := sqlite.NewDB(config.WorkspaceDBPath(project))
	if err != nil {
		log.ErrorErr(log.CatDB, "Workspace database unavailable", err)
	} else {
		defer func() { _ = db.Close() }()
		services.States = db.WorkspaceStateRepository()
		services.Generations = db.GenerationRepository()
	}

	var w *watcher.Watcher
	if cfg.AutoReload {
		w, err = watcher.New(watcher.DefaultConfig(files.Path()))
		if err == nil {
			if startErr := w.Start(); startErr == nil {
				services.Watcher = w
			} else {
				_ = w.Stop()
				w = nil
			}
		}
		// The editor works without auto-reload; ignore watcher failures
	}

	model := app.New(services)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()

	if w != nil && services.Watcher != nil {
		_ = w.Stop()
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// newGenerator builds the code generator with the output directory anchored
// at the project root.
func newGenerator(project string, tracer trace.Tracer) *codegen.Generator {
	outputDir := cfg.Generator.OutputDir
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(project, outputDir)
	}
	return codegen.New(codegen.Config{
		OutputDir:  outputDir,
		TypeScript: cfg.Generator.TypeScript,
	}, tracer)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
