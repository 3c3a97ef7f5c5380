// Package manifeststore persists the component manifest as JSON on disk.
// The JSON field shapes are the wire contract shared with the editor and
// the code generator; manifests loaded from disk are validated before the
// engine will accept them.
package manifeststore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/forma-dev/forma/internal/log"
	"github.com/forma-dev/forma/internal/manifest"
)

// ErrNotFound is returned by Load when no manifest file exists yet.
var ErrNotFound = errors.New("manifest file not found")

// ErrInvalid is returned by Load when the file parses but fails validation.
var ErrInvalid = errors.New("manifest failed validation")

// FileStore reads and writes a manifest file.
type FileStore struct {
	path   string
	tracer trace.Tracer
}

// NewFileStore creates a store for the manifest at path.
func NewFileStore(path string, tracer trace.Tracer) *FileStore {
	return &FileStore{path: path, tracer: tracer}
}

// Path returns the manifest file location.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads and validates the manifest. Manifests may have been written by
// an external collaborator that never went through the guarded mutation
// API, so an invalid file is rejected here rather than trusted downstream.
// On ErrInvalid the parsed manifest is still returned so callers can
// report its issues.
func (f *FileStore) Load(ctx context.Context) (*manifest.Manifest, error) {
	_, span := f.tracer.Start(ctx, "manifest.load",
		trace.WithAttributes(attribute.String("path", f.path)))
	defer span.End()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, f.path)
		}
		log.ErrorErr(log.CatStore, "Failed to read manifest", err, "path", f.path)
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m manifest.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		log.ErrorErr(log.CatStore, "Failed to parse manifest", err, "path", f.path)
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	if report := manifest.ValidateManifest(&m); !report.Valid {
		for _, issue := range report.Issues {
			log.Warn(log.CatStore, "Manifest validation issue",
				"code", string(issue.Code), "component", issue.ComponentID, "message", issue.Message)
		}
		return &m, fmt.Errorf("%w: %d issue(s), first: %s", ErrInvalid, len(report.Issues), report.Issues[0].Message)
	}

	log.Info(log.CatStore, "Loaded manifest", "path", f.path, "components", len(m.Components))
	return &m, nil
}

// Save writes the manifest atomically: marshal to a temp file in the same
// directory, then rename over the target so readers never see a torn file.
func (f *FileStore) Save(ctx context.Context, m *manifest.Manifest) error {
	_, span := f.tracer.Start(ctx, "manifest.save",
		trace.WithAttributes(attribute.String("path", f.path)))
	defer span.End()

	if m == nil {
		return fmt.Errorf("save manifest: manifest is nil")
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, ".manifest-*.json")
	if err != nil {
		return fmt.Errorf("creating temp manifest: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp manifest: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing manifest: %w", err)
	}

	log.Info(log.CatStore, "Saved manifest", "path", f.path, "components", len(m.Components))
	return nil
}
