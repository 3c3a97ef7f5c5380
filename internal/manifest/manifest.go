package manifest

import "time"

const (
	// SchemaVersion is the manifest schema emitted by this build.
	SchemaVersion = "1.0"

	// MaxDepth is the deepest permitted nesting level. Depth counts
	// ancestor hops from the nearest root, so five levels (0-4) fit.
	MaxDepth = 4

	// DefaultLevel is the schema capability tier for new manifests.
	// Level 1 permits static and prop property values.
	DefaultLevel = 1

	// DefaultAuthor is stamped on components created interactively.
	DefaultAuthor = "user"

	// DefaultVersion is the initial per-component version string.
	DefaultVersion = "1.0.0"
)

// Metadata holds project-level manifest metadata.
type Metadata struct {
	ProjectName string    `json:"projectName"`
	Framework   string    `json:"framework"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BuildConfig controls how generated source is emitted.
type BuildConfig struct {
	OutputDir  string `json:"outputDir"`
	TypeScript bool   `json:"typescript"`
	Formatter  string `json:"formatter,omitempty"`
}

// PluginsConfig enables optional generator plugins.
type PluginsConfig struct {
	Tailwind     bool   `json:"tailwind"`
	Router       bool   `json:"router"`
	StateManager string `json:"stateManager,omitempty"`
}

// Manifest is the serializable document holding all components plus
// project-level metadata and build configuration. The Components map is
// keyed by component id; insertion order carries no meaning.
type Manifest struct {
	SchemaVersion string                `json:"schemaVersion"`
	Level         int                   `json:"level"`
	Metadata      Metadata              `json:"metadata"`
	BuildConfig   BuildConfig           `json:"buildConfig"`
	Plugins       PluginsConfig         `json:"plugins"`
	Components    map[string]*Component `json:"components"`
}

// NewManifest creates an empty manifest for a project.
func NewManifest(projectName, framework string, now time.Time) *Manifest {
	return &Manifest{
		SchemaVersion: SchemaVersion,
		Level:         DefaultLevel,
		Metadata: Metadata{
			ProjectName: projectName,
			Framework:   framework,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		BuildConfig: BuildConfig{
			OutputDir:  "src/components",
			TypeScript: true,
		},
		Plugins:    PluginsConfig{Tailwind: true},
		Components: make(map[string]*Component),
	}
}
