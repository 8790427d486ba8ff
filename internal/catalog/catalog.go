// Package catalog holds the fixed set of exercises a user can pick from.
package catalog

import (
	"context"
	"errors"

	"github.com/claude/nutrical/internal/models"
)

// ErrNotFound is returned when an exercise ID is not in the catalog.
var ErrNotFound = errors.New("exercise not found")

// Catalog looks up exercises. The built-in catalog, *storage.DB and
// *storage.SQLiteCatalog all satisfy it.
type Catalog interface {
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	GetExercise(ctx context.Context, id string) (models.Exercise, error)
}

var builtin = []models.Exercise{
	{
		ID:                "squats",
		Name:              "Squats",
		Description:       "Build leg strength and improve lower body power",
		Icon:              "🏋️",
		TargetMuscles:     []string{"Quadriceps", "Glutes", "Hamstrings"},
		Difficulty:        models.Beginner,
		CaloriesPerMinute: 8,
	},
	{
		ID:                "pushups",
		Name:              "Push-ups",
		Description:       "Strengthen your chest, shoulders, and triceps",
		Icon:              "💪",
		TargetMuscles:     []string{"Chest", "Shoulders", "Triceps"},
		Difficulty:        models.Intermediate,
		CaloriesPerMinute: 6,
	},
	{
		ID:                "lunges",
		Name:              "Lunges",
		Description:       "Improve balance and unilateral leg strength",
		Icon:              "🦵",
		TargetMuscles:     []string{"Quadriceps", "Glutes", "Calves"},
		Difficulty:        models.Beginner,
		CaloriesPerMinute: 7,
	},
	{
		ID:                "jumping-jacks",
		Name:              "Jumping Jacks",
		Description:       "Full-body cardio exercise for endurance",
		Icon:              "🤸",
		TargetMuscles:     []string{"Full Body", "Cardio"},
		Difficulty:        models.Beginner,
		CaloriesPerMinute: 10,
	},
}

// Exercises returns a copy of the built-in exercise list in display order.
func Exercises() []models.Exercise {
	out := make([]models.Exercise, len(builtin))
	for i, e := range builtin {
		out[i] = e.Clone()
	}
	return out
}

// Static is an in-memory Catalog.
type Static struct {
	exercises []models.Exercise
}

// Builtin returns a Catalog over the built-in exercises.
func Builtin() *Static {
	return &Static{exercises: Exercises()}
}

// NewStatic returns a Catalog over the given exercises.
func NewStatic(exercises []models.Exercise) *Static {
	return &Static{exercises: exercises}
}

// ListExercises implements Catalog.
func (s *Static) ListExercises(_ context.Context) ([]models.Exercise, error) {
	out := make([]models.Exercise, len(s.exercises))
	for i, e := range s.exercises {
		out[i] = e.Clone()
	}
	return out, nil
}

// GetExercise implements Catalog.
func (s *Static) GetExercise(_ context.Context, id string) (models.Exercise, error) {
	for _, e := range s.exercises {
		if e.ID == id {
			return e.Clone(), nil
		}
	}
	return models.Exercise{}, ErrNotFound
}
