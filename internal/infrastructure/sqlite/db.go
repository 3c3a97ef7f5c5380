// Package sqlite provides the workspace database: editor state that should
// survive restarts (selection, expansion) and a log of code generation runs.
// The database lives alongside the manifest in the project's .forma
// directory.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/forma-dev/forma/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the workspace database connection and its repositories.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens (creating if necessary) the workspace database at path,
// applies pragmas, and runs any pending migrations. An existing database
// file is copied to <path>.bak before migrations touch it.
func NewDB(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	if err := backupIfExists(path); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}

	if err := runMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Info(log.CatDB, "Workspace database ready", "path", path)
	return &DB{conn: conn, path: path}, nil
}

// runMigrations applies embedded migrations against the open connection.
func runMigrations(conn *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// backupIfExists copies an existing database file to <path>.bak so a bad
// migration never destroys the only copy of the workspace state.
func backupIfExists(path string) error {
	src, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening database for backup: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(path+".bak", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating backup file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}

// WorkspaceStateRepository returns the repository for editor state.
func (d *DB) WorkspaceStateRepository() *WorkspaceStateRepository {
	return newWorkspaceStateRepository(d.conn)
}

// GenerationRepository returns the repository for generation history.
func (d *DB) GenerationRepository() *GenerationRepository {
	return newGenerationRepository(d.conn)
}

// Connection exposes the underlying connection for ad hoc queries.
func (d *DB) Connection() *sql.DB {
	return d.conn
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.conn.Close()
}
