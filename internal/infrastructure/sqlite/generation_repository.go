package sqlite

import (
	"database/sql"
	"fmt"
	"time"
)

// Generation records one code generation run.
type Generation struct {
	ID             int64
	Project        string
	ComponentCount int
	FileCount      int
	OutputDir      string
	Duration       time.Duration
	CreatedAt      time.Time
}

// GenerationRepository persists the history of generation runs.
type GenerationRepository struct {
	db *sql.DB
}

func newGenerationRepository(db *sql.DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

// Record inserts a generation run and sets its ID.
func (r *GenerationRepository) Record(g *Generation) error {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	var outputDir *string
	if g.OutputDir != "" {
		outputDir = &g.OutputDir
	}

	result, err := r.db.Exec(
		`INSERT INTO generations (project, component_count, file_count, output_dir, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		g.Project, g.ComponentCount, g.FileCount, outputDir,
		g.Duration.Milliseconds(), g.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("recording generation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading generation id: %w", err)
	}
	g.ID = id
	return nil
}

// Recent returns up to limit generation runs for a project, newest first.
func (r *GenerationRepository) Recent(project string, limit int) ([]Generation, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(
		`SELECT id, project, component_count, file_count, output_dir, duration_ms, created_at
		 FROM generations WHERE project = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		project, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing generations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var gens []Generation
	for rows.Next() {
		var (
			g          Generation
			outputDir  *string
			durationMS int64
			createdAt  int64
		)
		if err := rows.Scan(&g.ID, &g.Project, &g.ComponentCount, &g.FileCount,
			&outputDir, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning generation row: %w", err)
		}
		if outputDir != nil {
			g.OutputDir = *outputDir
		}
		g.Duration = time.Duration(durationMS) * time.Millisecond
		g.CreatedAt = time.Unix(createdAt, 0).UTC()
		gens = append(gens, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating generation rows: %w", err)
	}
	return gens, nil
}
