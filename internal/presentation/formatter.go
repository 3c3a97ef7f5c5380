package presentation

import (
	"encoding/json"
	"io"
)

// Formatter handles JSON output formatting for the CLI.
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter.
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{writer: writer}
}

// FormatPresets formats a list of presets as JSON.
func (f *Formatter) FormatPresets(presets []PresetDTO) error {
	return f.encode(presets)
}

// FormatReport formats a validation report as JSON.
func (f *Formatter) FormatReport(report ReportDTO) error {
	return f.encode(report)
}

// FormatGeneration formats a generation result as JSON.
func (f *Formatter) FormatGeneration(result GenerationDTO) error {
	return f.encode(result)
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
