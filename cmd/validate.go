package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/forma-dev/forma/internal/config"
	"github.com/forma-dev/forma/internal/manifest"
	"github.com/forma-dev/forma/internal/manifeststore"
	"github.com/forma-dev/forma/internal/presentation"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the project manifest",
	Long: `Validate the project manifest without opening the editor.

Checks for dangling child references, components claimed by more than one
parent, reference cycles, nesting beyond the depth bound, and property
kinds not allowed at the manifest's schema level. Exits non-zero when the
manifest is invalid.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "emit the report as JSON")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	project, err := projectPath()
	if err != nil {
		return err
	}

	files := manifeststore.NewFileStore(config.ManifestPath(project), noop.NewTracerProvider().Tracer("forma"))
	loaded, err := files.Load(context.Background())
	if err != nil && !errors.Is(err, manifeststore.ErrInvalid) {
		return fmt.Errorf("loading manifest: %w", err)
	}
	// An invalid manifest is exactly what this command reports on, so a
	// validation failure during load is not an error here.
	if loaded == nil {
		return fmt.Errorf("no manifest at %s", files.Path())
	}

	report := manifest.ValidateManifest(loaded)

	if validateJSON {
		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if err := formatter.FormatReport(presentation.FromReport(report)); err != nil {
			return err
		}
	} else {
		if report.Valid {
			fmt.Fprintf(cmd.OutOrStdout(), "manifest is valid (%d component(s))\n", len(loaded.Components))
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "manifest has %d issue(s):\n", len(report.Issues))
			for _, issue := range report.Issues {
				fmt.Fprintf(cmd.OutOrStdout(), "  [%s] %s\n", issue.Code, issue.Message)
			}
		}
	}

	if !report.Valid {
		return fmt.Errorf("manifest is invalid")
	}
	return nil
}
