package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/forma-dev/forma/internal/codegen"
	"github.com/forma-dev/forma/internal/config"
	"github.com/forma-dev/forma/internal/manifeststore"
	"github.com/forma-dev/forma/internal/presentation"
	"github.com/forma-dev/forma/internal/tracing"
)

var (
	generateJSON    bool
	generateDiff    bool
	generatePreview bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate component source from the manifest",
	Long: `Generate framework source files from the project manifest without
opening the editor. One file is written per root component; files from
earlier runs whose root no longer exists are removed.

With --dry-run nothing is written and the files that would change are
listed. With --diff a line diff is printed for each changed file.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "emit the result as JSON")
	generateCmd.Flags().BoolVar(&generateDiff, "diff", false, "print a line diff for changed files")
	generateCmd.Flags().BoolVar(&generatePreview, "dry-run", false, "report changes without writing files")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	project, err := projectPath()
	if err != nil {
		return err
	}

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() { _ = provider.Shutdown(context.Background()) }()
	tracer := provider.Tracer()

	files := manifeststore.NewFileStore(config.ManifestPath(project), tracer)
	loaded, err := files.Load(context.Background())
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}

	generator := newGenerator(project, tracer)

	var result *codegen.Result
	if generatePreview {
		result, err = generator.Plan(context.Background(), loaded)
	} else {
		result, err = generator.Generate(context.Background(), loaded)
	}
	if err != nil {
		return fmt.Errorf("generating: %w", err)
	}

	if generateJSON {
		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		return formatter.FormatGeneration(presentation.FromResult(result))
	}

	out := cmd.OutOrStdout()
	verb := "generated"
	if generatePreview {
		verb = "would generate"
	}
	fmt.Fprintf(out, "%s %d file(s) from %d component(s) in %s\n",
		verb, len(result.Files), result.ComponentCount, result.Duration.Round(time.Millisecond))
	for _, f := range result.Files {
		switch f.Change {
		case codegen.ChangeAdded:
			fmt.Fprintf(out, "  A %s (+%d lines)\n", f.Path, f.AddedLines)
		case codegen.ChangeModified:
			fmt.Fprintf(out, "  M %s (+%d -%d lines)\n", f.Path, f.AddedLines, f.RemovedLines)
		default:
			fmt.Fprintf(out, "    %s (unchanged)\n", f.Path)
		}
		if generateDiff && f.Change == codegen.ChangeModified {
			fmt.Fprintln(out, f.Diff)
		}
	}
	for _, removed := range result.Removed {
		fmt.Fprintf(out, "  D %s\n", removed)
	}
	return nil
}
