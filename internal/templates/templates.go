// Package templates provides the preset library: reusable component
// subtrees described in YAML that can be stamped into a manifest. A small
// set of presets ships embedded; projects can add their own under
// .forma/presets.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forma-dev/forma/internal/log"
	"github.com/forma-dev/forma/internal/manifest"
)

//go:embed presets/*.yaml
var builtinFS embed.FS

// Node is one component in a preset subtree.
type Node struct {
	DisplayName string                  `yaml:"displayName"`
	Type        string                  `yaml:"type"`
	Category    string                  `yaml:"category"`
	Properties  map[string]PropertySpec `yaml:"properties"`
	Styling     StylingSpec             `yaml:"styling"`
	Children    []Node                  `yaml:"children"`
}

// PropertySpec mirrors manifest.PropertyValue in YAML form.
type PropertySpec struct {
	Kind       string `yaml:"kind"`
	Value      any    `yaml:"value"`
	Name       string `yaml:"name"`
	Default    any    `yaml:"default"`
	Expression string `yaml:"expression"`
}

// StylingSpec mirrors manifest.Styling in YAML form.
type StylingSpec struct {
	BaseClasses []string               `yaml:"baseClasses"`
	Conditional []ConditionalStyleSpec `yaml:"conditional"`
	Custom      map[string]string      `yaml:"custom"`
}

type ConditionalStyleSpec struct {
	Condition string   `yaml:"condition"`
	Classes   []string `yaml:"classes"`
}

// Preset is a named, instantiable component subtree.
type Preset struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Components  []Node `yaml:"components"`
}

// Library holds the available presets keyed by name.
type Library struct {
	presets map[string]Preset
}

// NewLibrary loads the embedded presets.
func NewLibrary() (*Library, error) {
	lib := &Library{presets: make(map[string]Preset)}
	if err := lib.loadFS(builtinFS, "presets"); err != nil {
		return nil, err
	}
	return lib, nil
}

// LoadDir adds presets from a directory, overriding embedded ones with the
// same name. A missing directory is not an error.
func (l *Library) LoadDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	return l.loadFS(os.DirFS(dir), ".")
}

func (l *Library) loadFS(fsys fs.FS, root string) error {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return fmt.Errorf("reading presets: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		data, err := fs.ReadFile(fsys, filepath.Join(root, name))
		if err != nil {
			return fmt.Errorf("reading preset %s: %w", name, err)
		}
		var p Preset
		if err := yaml.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("parsing preset %s: %w", name, err)
		}
		if p.Name == "" {
			return fmt.Errorf("preset %s: name is required", name)
		}
		if len(p.Components) == 0 {
			return fmt.Errorf("preset %s: components are required", name)
		}
		l.presets[p.Name] = p
		log.Debug(log.CatEngine, "Loaded preset", "name", p.Name, "file", name)
	}
	return nil
}

// Names returns the preset names in sorted order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.presets))
	for name := range l.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a preset by name.
func (l *Library) Get(name string) (Preset, bool) {
	p, ok := l.presets[name]
	return p, ok
}

// Instantiate stamps a preset into the store under parentID (empty for
// root). Every component goes through Store.AddComponent, so depth and
// property rules apply. If any add fails, previously added top-level nodes
// are deleted again so a failed instantiation leaves no partial subtree.
func (l *Library) Instantiate(s *manifest.Store, name, parentID string) ([]string, error) {
	preset, ok := l.presets[name]
	if !ok {
		return nil, fmt.Errorf("preset %q not found", name)
	}

	var topIDs []string
	for _, node := range preset.Components {
		id, err := addNode(s, node, parentID)
		if err != nil {
			for _, added := range topIDs {
				_ = s.DeleteComponent(added)
			}
			return nil, fmt.Errorf("instantiating preset %q: %w", name, err)
		}
		topIDs = append(topIDs, id)
	}

	log.Info(log.CatEngine, "Instantiated preset", "name", name, "roots", len(topIDs))
	return topIDs, nil
}

func addNode(s *manifest.Store, node Node, parentID string) (string, error) {
	props, err := toProperties(node.Properties)
	if err != nil {
		return "", err
	}
	id, err := s.AddComponent(manifest.AddInput{
		DisplayName: node.DisplayName,
		Type:        node.Type,
		Category:    manifest.Category(node.Category),
		Properties:  props,
		Styling:     toStyling(node.Styling),
		ParentID:    parentID,
	})
	if err != nil {
		return "", err
	}
	for _, child := range node.Children {
		if _, err := addNode(s, child, id); err != nil {
			// Drop the partially built subtree so a failed preset leaves
			// nothing behind.
			_ = s.DeleteComponent(id)
			return "", err
		}
	}
	return id, nil
}

func toProperties(specs map[string]PropertySpec) (map[string]manifest.PropertyValue, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	props := make(map[string]manifest.PropertyValue, len(specs))
	for key, spec := range specs {
		kind := manifest.PropertyKind(spec.Kind)
		switch kind {
		case manifest.PropertyStatic, manifest.PropertyProp,
			manifest.PropertyExpression, manifest.PropertyState:
		default:
			return nil, fmt.Errorf("property %q: unknown kind %q", key, spec.Kind)
		}
		props[key] = manifest.PropertyValue{
			Kind:       kind,
			Value:      spec.Value,
			Name:       spec.Name,
			Default:    spec.Default,
			Expression: spec.Expression,
		}
	}
	return props, nil
}

func toStyling(spec StylingSpec) *manifest.Styling {
	styling := &manifest.Styling{BaseClasses: spec.BaseClasses}
	if styling.BaseClasses == nil {
		styling.BaseClasses = []string{}
	}
	for _, cond := range spec.Conditional {
		styling.Conditional = append(styling.Conditional, manifest.ConditionalStyle{
			Condition: cond.Condition,
			Classes:   cond.Classes,
		})
	}
	if len(spec.Custom) > 0 {
		styling.Custom = spec.Custom
	}
	return styling
}
