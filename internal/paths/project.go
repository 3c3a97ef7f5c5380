// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveProjectDir resolves the .forma state directory from user input.
// It normalizes the input (accepting either the project dir or the .forma
// dir itself) and follows redirect files for git worktrees.
//
// Input normalization:
//   - "/path/to/project" -> "/path/to/project/.forma"
//   - "/path/to/project/.forma" -> "/path/to/project/.forma"
//   - "" -> "./.forma"
//
// Redirect handling:
//   - If .forma/redirect exists, follows it to the actual .forma location
//   - This supports git worktrees where .forma contains a redirect to the
//     main worktree so every checkout edits the same manifest
func ResolveProjectDir(path string) string {
	if path == "" {
		path = "."
	}
	path = filepath.Clean(path)

	if filepath.Base(path) == ".forma" {
		return followRedirect(path)
	}

	return followRedirect(filepath.Join(path, ".forma"))
}

// followRedirect checks for a redirect file and follows it if present.
func followRedirect(stateDir string) string {
	content, err := os.ReadFile(filepath.Join(stateDir, "redirect"))
	if err != nil {
		return stateDir
	}

	target := strings.TrimSpace(string(content))
	if target == "" {
		return stateDir
	}

	return filepath.Clean(filepath.Join(stateDir, target))
}
