package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/forma-dev/forma/internal/manifest"
)

// ErrStateNotFound is returned when no state has been saved for a project.
var ErrStateNotFound = errors.New("no saved workspace state for project")

// WorkspaceStateRepository persists editor session state per project.
type WorkspaceStateRepository struct {
	db *sql.DB
}

func newWorkspaceStateRepository(db *sql.DB) *WorkspaceStateRepository {
	return &WorkspaceStateRepository{db: db}
}

// Save upserts the session state for a project.
func (r *WorkspaceStateRepository) Save(project string, state manifest.State) error {
	var selected *string
	if state.SelectedID != "" {
		selected = &state.SelectedID
	}

	var expanded *string
	if len(state.ExpandedIDs) > 0 {
		data, err := json.Marshal(state.ExpandedIDs)
		if err != nil {
			return fmt.Errorf("encoding expanded ids: %w", err)
		}
		s := string(data)
		expanded = &s
	}

	_, err := r.db.Exec(
		`INSERT INTO workspace_state (project, selected_id, expanded_ids, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(project) DO UPDATE SET
		   selected_id = excluded.selected_id,
		   expanded_ids = excluded.expanded_ids,
		   updated_at = excluded.updated_at`,
		project, selected, expanded, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving workspace state: %w", err)
	}
	return nil
}

// Load returns the saved session state for a project.
// Returns ErrStateNotFound when nothing has been saved yet.
func (r *WorkspaceStateRepository) Load(project string) (manifest.State, error) {
	var (
		selected *string
		expanded *string
	)
	err := r.db.QueryRow(
		`SELECT selected_id, expanded_ids FROM workspace_state WHERE project = ?`,
		project,
	).Scan(&selected, &expanded)
	if errors.Is(err, sql.ErrNoRows) {
		return manifest.State{}, fmt.Errorf("%w: %s", ErrStateNotFound, project)
	}
	if err != nil {
		return manifest.State{}, fmt.Errorf("loading workspace state: %w", err)
	}

	var state manifest.State
	if selected != nil {
		state.SelectedID = *selected
	}
	if expanded != nil {
		if err := json.Unmarshal([]byte(*expanded), &state.ExpandedIDs); err != nil {
			return manifest.State{}, fmt.Errorf("decoding expanded ids: %w", err)
		}
	}
	return state, nil
}

// Delete removes the saved state for a project.
func (r *WorkspaceStateRepository) Delete(project string) error {
	_, err := r.db.Exec(`DELETE FROM workspace_state WHERE project = ?`, project)
	if err != nil {
		return fmt.Errorf("deleting workspace state: %w", err)
	}
	return nil
}
