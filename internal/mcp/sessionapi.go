package mcp

import (
	"context"

	"github.com/claude/nutrical/internal/models"
	"github.com/claude/nutrical/internal/workout"
)

// SessionAPI abstracts the workout surface for MCP tools. Local (in-process)
// and HTTPClient (remote via REST API) both satisfy this interface.
type SessionAPI interface {
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	GetSession(ctx context.Context) (workout.View, error)
	SelectExercise(ctx context.Context, id string) (workout.View, error)
	StartWorkout(ctx context.Context) (workout.View, error)
	PauseWorkout(ctx context.Context) (workout.View, error)
	ResetWorkout(ctx context.Context) (workout.View, error)
	BackToSelection(ctx context.Context) (workout.View, error)
}

// Local serves SessionAPI from a Workout in the same process.
type Local struct {
	w *workout.Workout
}

// Compile-time check: Local satisfies SessionAPI.
var _ SessionAPI = (*Local)(nil)

func NewLocal(w *workout.Workout) *Local {
	return &Local{w: w}
}

func (l *Local) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	return l.w.Exercises(ctx)
}

func (l *Local) GetSession(context.Context) (workout.View, error) {
	return l.w.View(), nil
}

func (l *Local) SelectExercise(ctx context.Context, id string) (workout.View, error) {
	return l.w.Select(ctx, id)
}

func (l *Local) StartWorkout(context.Context) (workout.View, error) {
	return l.w.Start()
}

func (l *Local) PauseWorkout(context.Context) (workout.View, error) {
	return l.w.Pause(), nil
}

func (l *Local) ResetWorkout(context.Context) (workout.View, error) {
	return l.w.Reset(), nil
}

func (l *Local) BackToSelection(context.Context) (workout.View, error) {
	return l.w.Clear(), nil
}
