package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claude/nutrical/internal/catalog"
	"github.com/claude/nutrical/internal/models"

	_ "modernc.org/sqlite"
)

// SQLiteCatalog serves the exercise catalog from a local SQLite file.
type SQLiteCatalog struct {
	db *sql.DB
}

// Compile-time check: *SQLiteCatalog satisfies catalog.Catalog.
var _ catalog.Catalog = (*SQLiteCatalog)(nil)

// OpenSQLite opens (or creates) the catalog database at dir/catalog.db and
// seeds it with the built-in exercises. Rows already present are kept, so
// local edits survive restarts.
func OpenSQLite(ctx context.Context, dir string) (*SQLiteCatalog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "catalog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening catalog db: %w", err)
	}

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS exercises (
		id                  TEXT PRIMARY KEY,
		position            INTEGER NOT NULL,
		name                TEXT NOT NULL,
		description         TEXT NOT NULL DEFAULT '',
		icon                TEXT NOT NULL DEFAULT '',
		target_muscles      TEXT NOT NULL DEFAULT '[]',
		difficulty          TEXT NOT NULL,
		calories_per_minute REAL NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating exercises table: %w", err)
	}

	c := &SQLiteCatalog{db: db}
	if err := c.seed(ctx, catalog.Exercises()); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *SQLiteCatalog) seed(ctx context.Context, exercises []models.Exercise) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed: %w", err)
	}
	defer tx.Rollback()

	for i, e := range exercises {
		if err := insertExercise(ctx, tx, i+1, e, false); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}
	return nil
}

// Upsert inserts or replaces one exercise at the given display position.
func (c *SQLiteCatalog) Upsert(ctx context.Context, position int, e models.Exercise) error {
	if !e.Difficulty.Valid() {
		return fmt.Errorf("exercise %s: invalid difficulty %q", e.ID, e.Difficulty)
	}
	return insertExercise(ctx, c.db, position, e, true)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertExercise(ctx context.Context, db execer, position int, e models.Exercise, replace bool) error {
	muscles, err := models.MarshalMuscles(e.TargetMuscles)
	if err != nil {
		return fmt.Errorf("encoding muscles for %s: %w", e.ID, err)
	}
	verb := "INSERT OR IGNORE"
	if replace {
		verb = "INSERT OR REPLACE"
	}
	_, err = db.ExecContext(ctx,
		verb+` INTO exercises (id, position, name, description, icon, target_muscles, difficulty, calories_per_minute)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, position, e.Name, e.Description, e.Icon, muscles, string(e.Difficulty), e.CaloriesPerMinute,
	)
	if err != nil {
		return fmt.Errorf("inserting exercise %s: %w", e.ID, err)
	}
	return nil
}

// ListExercises returns the catalog in display order.
func (c *SQLiteCatalog) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+exerciseColumns+` FROM exercises ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var out []models.Exercise
	for rows.Next() {
		e, err := scanSQLiteExercise(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating exercises: %w", err)
	}
	return out, nil
}

// GetExercise returns one exercise or catalog.ErrNotFound.
func (c *SQLiteCatalog) GetExercise(ctx context.Context, id string) (models.Exercise, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = ?`, id)
	e, err := scanSQLiteExercise(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Exercise{}, catalog.ErrNotFound
	}
	return e, err
}

// Close closes the catalog database.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteExercise(row scanner) (models.Exercise, error) {
	var (
		e                   models.Exercise
		muscles, difficulty string
	)
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Icon, &muscles, &difficulty, &e.CaloriesPerMinute)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scanning exercise: %w", err)
	}
	if e.TargetMuscles, err = models.UnmarshalMuscles(muscles); err != nil {
		return e, fmt.Errorf("exercise %s: %w", e.ID, err)
	}
	if e.Difficulty, err = models.ParseDifficulty(difficulty); err != nil {
		return e, fmt.Errorf("exercise %s: %w", e.ID, err)
	}
	return e, nil
}
