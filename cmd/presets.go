package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forma-dev/forma/internal/config"
	"github.com/forma-dev/forma/internal/presentation"
	"github.com/forma-dev/forma/internal/templates"
)

var presetsJSON bool

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the available component presets",
	Long: `List the available component presets: the built-in library plus any
project presets found under .forma/presets/.

Examples:
  forma presets
  forma presets --json | jq '.[].name'`,
	RunE: runPresets,
}

func init() {
	presetsCmd.Flags().BoolVar(&presetsJSON, "json", false, "emit the list as JSON")
	rootCmd.AddCommand(presetsCmd)
}

func runPresets(cmd *cobra.Command, args []string) error {
	project, err := projectPath()
	if err != nil {
		return err
	}

	library, err := templates.NewLibrary()
	if err != nil {
		return fmt.Errorf("loading presets: %w", err)
	}
	if err := library.LoadDir(filepath.Join(project, config.ProjectDir, "presets")); err != nil {
		return fmt.Errorf("loading project presets: %w", err)
	}

	names := library.Names()
	dtos := make([]presentation.PresetDTO, 0, len(names))
	for _, name := range names {
		preset, ok := library.Get(name)
		if !ok {
			continue
		}
		dtos = append(dtos, presentation.FromPreset(preset))
	}

	if presetsJSON {
		return presentation.NewFormatter(cmd.OutOrStdout()).FormatPresets(dtos)
	}

	out := cmd.OutOrStdout()
	for _, dto := range dtos {
		fmt.Fprintf(out, "%-20s %d component(s), depth %d", dto.Name, dto.ComponentCount, dto.Depth)
		if dto.Category != "" {
			fmt.Fprintf(out, "  [%s]", dto.Category)
		}
		fmt.Fprintln(out)
	}
	return nil
}
