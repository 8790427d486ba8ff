package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/nutrical/internal/catalog"
	"github.com/claude/nutrical/internal/models"
	"github.com/jackc/pgx/v5"
)

// Compile-time check: *DB satisfies catalog.Catalog.
var _ catalog.Catalog = (*DB)(nil)

const exerciseColumns = `id, name, description, icon, target_muscles, difficulty, calories_per_minute`

// ListExercises returns the catalog in display order.
func (db *DB) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseColumns+` FROM exercises ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var out []models.Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
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
func (db *DB) GetExercise(ctx context.Context, id string) (models.Exercise, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = $1`, id)
	e, err := scanExercise(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Exercise{}, catalog.ErrNotFound
	}
	return e, err
}

func scanExercise(row pgx.Row) (models.Exercise, error) {
	var (
		e          models.Exercise
		difficulty string
	)
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Icon, &e.TargetMuscles, &difficulty, &e.CaloriesPerMinute)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scanning exercise: %w", err)
	}
	if e.Difficulty, err = models.ParseDifficulty(difficulty); err != nil {
		return e, fmt.Errorf("exercise %s: %w", e.ID, err)
	}
	return e, nil
}
