// Package codegen turns a validated manifest into framework source files.
// Each root component becomes one file; renders are memoised so repeated
// generation and previews only re-render components that changed.
package codegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/forma-dev/forma/internal/cachemanager"
	"github.com/forma-dev/forma/internal/log"
	"github.com/forma-dev/forma/internal/manifest"
)

const renderTTL = 30 * time.Minute

// Config controls generator output.
type Config struct {
	OutputDir    string
	TypeScript   bool
	DisableCache bool
}

// GeneratedFile describes one output file of a generation run. Diff is
// only populated for modified files.
type GeneratedFile struct {
	Name         string
	Path         string
	Source       string
	Change       ChangeKind
	AddedLines   int
	RemovedLines int
	Diff         string
}

// Result summarises a generation run.
type Result struct {
	Files          []GeneratedFile
	Removed        []string
	ComponentCount int
	Duration       time.Duration
}

// Generator renders manifests to disk.
type Generator struct {
	cfg     Config
	tracer  trace.Tracer
	renders *cachemanager.ReadThroughCache[string, string, renderJob]
}

// New creates a generator. The tracer must not be nil; pass a noop tracer
// when tracing is disabled.
func New(cfg Config, tracer trace.Tracer) *Generator {
	manager := cachemanager.NewInMemoryCacheManager[string, string](
		"component-renders", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
	return &Generator{
		cfg:    cfg,
		tracer: tracer,
		renders: cachemanager.NewReadThroughCache[string, string, renderJob](
			manager,
			func(_ context.Context, job renderJob) (string, error) {
				return renderRoot(job)
			},
			cfg.DisableCache,
		),
	}
}

// Generate renders every root component to the output directory and reports
// what changed against the previous run's files.
func (g *Generator) Generate(ctx context.Context, m *manifest.Manifest) (*Result, error) {
	return g.run(ctx, m, true)
}

// Plan reports what Generate would do without writing or removing anything.
func (g *Generator) Plan(ctx context.Context, m *manifest.Manifest) (*Result, error) {
	return g.run(ctx, m, false)
}

func (g *Generator) run(ctx context.Context, m *manifest.Manifest, write bool) (*Result, error) {
	spanName := "codegen.generate"
	if !write {
		spanName = "codegen.plan"
	}
	ctx, span := g.tracer.Start(ctx, spanName)
	defer span.End()
	start := time.Now()

	if m == nil || len(m.Components) == 0 {
		return &Result{Duration: time.Since(start)}, nil
	}
	if report := manifest.ValidateManifest(m); !report.Valid {
		return nil, fmt.Errorf("refusing to generate from invalid manifest: %s", report.Issues[0].Message)
	}

	if write {
		if err := os.MkdirAll(g.cfg.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}

	roots := rootComponents(m)
	span.SetAttributes(
		attribute.Int("components", len(m.Components)),
		attribute.Int("roots", len(roots)),
	)

	result := &Result{ComponentCount: len(m.Components)}
	names := map[string]int{}
	written := map[string]bool{}

	for _, root := range roots {
		name := uniqueName(componentName(root.DisplayName), names)
		source, err := g.renders.Get(ctx, renderKey(m, root, name), renderJob{
			manifest:   m,
			root:       root,
			name:       name,
			typescript: g.cfg.TypeScript,
		}, renderTTL)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", root.DisplayName, err)
		}

		fileName := name + g.ext()
		path := filepath.Join(g.cfg.OutputDir, fileName)
		file := GeneratedFile{Name: fileName, Path: path, Source: source}

		prev, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			file.Change = ChangeAdded
			file.AddedLines, _ = diffStats("", source)
		case err != nil:
			return nil, fmt.Errorf("reading previous output %s: %w", path, err)
		case string(prev) == source:
			file.Change = ChangeUnchanged
		default:
			file.Change = ChangeModified
			file.AddedLines, file.RemovedLines = diffStats(string(prev), source)
			file.Diff = PrettyDiff(string(prev), source)
		}

		if write && file.Change != ChangeUnchanged {
			if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
				return nil, fmt.Errorf("writing %s: %w", path, err)
			}
		}
		written[fileName] = true
		result.Files = append(result.Files, file)
	}

	removed, err := g.removeStale(written, write)
	if err != nil {
		return nil, err
	}
	result.Removed = removed
	result.Duration = time.Since(start)

	if write {
		log.Info(log.CatCodegen, "Generation complete",
			"files", len(result.Files), "removed", len(result.Removed),
			"duration", result.Duration.String())
	}
	return result, nil
}

// Preview renders the subtree rooted at id without touching disk. Used by
// the editor's preview pane.
func (g *Generator) Preview(ctx context.Context, m *manifest.Manifest, id string) (string, error) {
	ctx, span := g.tracer.Start(ctx, "codegen.preview",
		trace.WithAttributes(attribute.String("component.id", id)))
	defer span.End()

	root, ok := m.Components[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", manifest.ErrComponentNotFound, id)
	}
	name := componentName(root.DisplayName)
	return g.renders.Get(ctx, renderKey(m, root, name), renderJob{
		manifest:   m,
		root:       root,
		name:       name,
		typescript: g.cfg.TypeScript,
	}, renderTTL)
}

// InvalidateAll drops every memoised render. Called when the manifest is
// replaced wholesale, such as after an external file change.
func (g *Generator) InvalidateAll(ctx context.Context) {
	_ = g.renders.Flush(ctx)
}

func (g *Generator) ext() string {
	if g.cfg.TypeScript {
		return ".tsx"
	}
	return ".jsx"
}

// removeStale deletes previously generated files that no longer correspond
// to a root component. Only files carrying our header are touched. With
// write false the candidates are reported but left in place.
func (g *Generator) removeStale(written map[string]bool, write bool) ([]string, error) {
	entries, err := os.ReadDir(g.cfg.OutputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing output directory: %w", err)
	}

	var removed []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || written[name] {
			continue
		}
		if ext := filepath.Ext(name); ext != ".jsx" && ext != ".tsx" {
			continue
		}
		path := filepath.Join(g.cfg.OutputDir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if !strings.HasPrefix(string(content), Header) {
			continue
		}
		if write {
			if err := os.Remove(path); err != nil {
				return nil, fmt.Errorf("removing stale output %s: %w", path, err)
			}
			log.Debug(log.CatCodegen, "Removed stale output", "file", name)
		}
		removed = append(removed, name)
	}
	sort.Strings(removed)
	return removed, nil
}

// renderKey keys the render cache by root identity, assigned name, and the
// newest UpdatedAt in the subtree, so editing any descendant misses the
// cache while untouched trees hit it.
func renderKey(m *manifest.Manifest, c *manifest.Component, name string) string {
	latest := c.Metadata.UpdatedAt
	var walk func(*manifest.Component)
	walk = func(n *manifest.Component) {
		if n.Metadata.UpdatedAt.After(latest) {
			latest = n.Metadata.UpdatedAt
		}
		for _, childID := range n.Children {
			if child, ok := m.Components[childID]; ok {
				walk(child)
			}
		}
	}
	walk(c)
	return c.ID + "/" + name + "@" + latest.UTC().Format(time.RFC3339Nano)
}

// rootComponents returns components with no parent, oldest first.
func rootComponents(m *manifest.Manifest) []*manifest.Component {
	hasParent := map[string]bool{}
	for _, c := range m.Components {
		for _, childID := range c.Children {
			hasParent[childID] = true
		}
	}

	var roots []*manifest.Component
	for id, c := range m.Components {
		if !hasParent[id] {
			roots = append(roots, c)
		}
	}
	sort.Slice(roots, func(i, j int) bool {
		if !roots[i].Metadata.CreatedAt.Equal(roots[j].Metadata.CreatedAt) {
			return roots[i].Metadata.CreatedAt.Before(roots[j].Metadata.CreatedAt)
		}
		return roots[i].ID < roots[j].ID
	})
	return roots
}

// uniqueName disambiguates duplicate component names with a numeric suffix.
func uniqueName(name string, seen map[string]int) string {
	seen[name]++
	if seen[name] == 1 {
		return name
	}
	return fmt.Sprintf("%s%d", name, seen[name])
}
