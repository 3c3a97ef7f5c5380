// Package presentation contains the JSON output shapes for the CLI
// subcommands, kept separate from the domain types so wire output stays
// stable as internals change.
package presentation

import (
	"github.com/forma-dev/forma/internal/codegen"
	"github.com/forma-dev/forma/internal/manifest"
	"github.com/forma-dev/forma/internal/templates"
)

// PresetDTO describes one preset for `forma presets`.
type PresetDTO struct {
	Name           string `json:"name"`
	Category       string `json:"category,omitempty"`
	ComponentCount int    `json:"component_count"`
	Depth          int    `json:"depth"`
}

// FromPreset converts a preset to its DTO.
func FromPreset(p templates.Preset) PresetDTO {
	count, depth := 0, 0
	var walk func(nodes []templates.Node, level int)
	walk = func(nodes []templates.Node, level int) {
		for _, n := range nodes {
			count++
			if level > depth {
				depth = level
			}
			walk(n.Children, level+1)
		}
	}
	walk(p.Components, 1)

	return PresetDTO{
		Name:           p.Name,
		Category:       p.Category,
		ComponentCount: count,
		Depth:          depth,
	}
}

// IssueDTO is one validation issue for `forma validate`.
type IssueDTO struct {
	Code        string `json:"code"`
	ComponentID string `json:"component_id,omitempty"`
	Message     string `json:"message"`
}

// ReportDTO is the validation outcome for `forma validate`.
type ReportDTO struct {
	Valid  bool       `json:"valid"`
	Issues []IssueDTO `json:"issues"`
}

// FromReport converts a validation report to its DTO.
func FromReport(r manifest.Report) ReportDTO {
	issues := make([]IssueDTO, 0, len(r.Issues))
	for _, issue := range r.Issues {
		issues = append(issues, IssueDTO{
			Code:        string(issue.Code),
			ComponentID: issue.ComponentID,
			Message:     issue.Message,
		})
	}
	return ReportDTO{Valid: r.Valid, Issues: issues}
}

// FileDTO is one generated file for `forma generate`.
type FileDTO struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	Change       string `json:"change"`
	AddedLines   int    `json:"added_lines,omitempty"`
	RemovedLines int    `json:"removed_lines,omitempty"`
}

// GenerationDTO is the generation outcome for `forma generate`.
type GenerationDTO struct {
	Files          []FileDTO `json:"files"`
	Removed        []string  `json:"removed"`
	ComponentCount int       `json:"component_count"`
	DurationMillis int64     `json:"duration_ms"`
}

// FromResult converts a generation result to its DTO.
func FromResult(r *codegen.Result) GenerationDTO {
	files := make([]FileDTO, 0, len(r.Files))
	for _, f := range r.Files {
		files = append(files, FileDTO{
			Name:         f.Name,
			Path:         f.Path,
			Change:       string(f.Change),
			AddedLines:   f.AddedLines,
			RemovedLines: f.RemovedLines,
		})
	}
	removed := r.Removed
	if removed == nil {
		removed = []string{}
	}
	return GenerationDTO{
		Files:          files,
		Removed:        removed,
		ComponentCount: r.ComponentCount,
		DurationMillis: r.Duration.Milliseconds(),
	}
}
