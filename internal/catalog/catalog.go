// Package catalog is the local SQLite journal of project operations and
// recently opened archives. It is bookkeeping around the persistence core,
// never a source of project state itself.
package catalog

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Operation is one journal row for a CLI command that touched a project
// archive.
type Operation struct {
	ID          int64
	Operation   string
	ArchivePath string
	StartedAt   time.Time
	FinishedAt  sql.NullTime
	Status      string // "success" or "error"
}

// RecentProject is one row of the recently opened archive list.
type RecentProject struct {
	Path         string
	Name         string
	Format       string
	LastOpenedAt time.Time
}

// Catalog provides journal storage over SQLite.
type Catalog struct {
	db *sql.DB
}

// New wraps an existing database connection. The caller is responsible for
// having applied migrations.
func New(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

// Open opens and configures a catalog database at the given path
// (":memory:" for tests).
func Open(path string) (*Catalog, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &Catalog{db: db}, nil
}

// OpenConnection opens a SQLite connection with the PRAGMAs the catalog
// expects. Exported for tools and tests.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	// SQLite ships with foreign keys off for backward compatibility.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// DB exposes the underlying connection for migrations.
func (c *Catalog) DB() *sql.DB {
	return c.db
}

// CreateOperation journals the start of an operation and returns its id.
func (c *Catalog) CreateOperation(operation, archivePath string, startedAt time.Time) (int64, error) {
	res, err := c.db.Exec(
		`INSERT INTO operations (operation, archive_path, started_at) VALUES (?, ?, ?)`,
		operation, archivePath, startedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("creating operation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading operation id: %w", err)
	}
	return id, nil
}

// FinishOperation records an operation's outcome.
func (c *Catalog) FinishOperation(id int64, status string, finishedAt time.Time) error {
	_, err := c.db.Exec(
		`UPDATE operations SET finished_at = ?, status = ? WHERE id = ?`,
		finishedAt.UTC(), status, id,
	)
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

// ListOperations returns the most recent operations, newest first.
func (c *Catalog) ListOperations(limit int) ([]*Operation, error) {
	rows, err := c.db.Query(
		`SELECT id, operation, archive_path, started_at, finished_at, status
		 FROM operations ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var ops []*Operation
	for rows.Next() {
		op := &Operation{}
		if err := rows.Scan(&op.ID, &op.Operation, &op.ArchivePath, &op.StartedAt, &op.FinishedAt, &op.Status); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading operations: %w", err)
	}
	return ops, nil
}

// TouchRecentProject upserts an archive into the recent list.
func (c *Catalog) TouchRecentProject(path, name, format string, openedAt time.Time) error {
	_, err := c.db.Exec(
		`INSERT INTO recent_projects (path, name, format, last_opened_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET name = excluded.name, format = excluded.format,
		 last_opened_at = excluded.last_opened_at`,
		path, name, format, openedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording recent project: %w", err)
	}
	return nil
}

// ListRecentProjects returns recently opened archives, most recent first.
func (c *Catalog) ListRecentProjects(limit int) ([]*RecentProject, error) {
	rows, err := c.db.Query(
		`SELECT path, name, format, last_opened_at
		 FROM recent_projects ORDER BY last_opened_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing recent projects: %w", err)
	}
	defer rows.Close()

	var projects []*RecentProject
	for rows.Next() {
		p := &RecentProject{}
		if err := rows.Scan(&p.Path, &p.Name, &p.Format, &p.LastOpenedAt); err != nil {
			return nil, fmt.Errorf("scanning recent project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading recent projects: %w", err)
	}
	return projects, nil
}

// Close closes the catalog connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}
