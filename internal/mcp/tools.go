package mcp

import (
	"context"
	"errors"

	"github.com/claude/nutrical/internal/catalog"
	"github.com/claude/nutrical/internal/workout"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercises that can be selected, in display order."),
)

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Get the current workout session: exercise, active flag, reps, elapsed seconds, stats (mm:ss time, calories, average reps per minute) and camera status."),
)

var toolSelectExercise = mcp.NewTool("select_exercise",
	mcp.WithDescription("Select an exercise. Starts a fresh, paused session and discards any running one."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise ID (e.g. squats, pushups, lunges, jumping-jacks)")),
)

var toolStartWorkout = mcp.NewTool("start_workout",
	mcp.WithDescription("Start or resume the workout. Requires a selected exercise and a ready camera."),
)

var toolPauseWorkout = mcp.NewTool("pause_workout",
	mcp.WithDescription("Pause the workout. Reps and elapsed time are kept."),
)

var toolResetWorkout = mcp.NewTool("reset_workout",
	mcp.WithDescription("Stop the workout and zero reps and elapsed time. The exercise stays selected."),
)

var toolBackToSelection = mcp.NewTool("back_to_selection",
	mcp.WithDescription("Leave the current exercise and return to exercise selection."),
)

// --- Tool handlers ---

func (h *handlers) listExercises(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises, err := h.api.ListExercises(ctx)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(exercises)
}

func (h *handlers) getSession(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, err := h.api.GetSession(ctx)
	if err != nil {
		h.log.Error("mcp get_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(v)
}

func (h *handlers) selectExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	v, err := h.api.SelectExercise(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return mcp.NewToolResultError("unknown exercise: " + id), nil
	}
	if err != nil {
		h.log.Error("mcp select_exercise", "error", err)
		return mcp.NewToolResultError("select failed: " + err.Error()), nil
	}
	return jsonResult(v)
}

func (h *handlers) startWorkout(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, err := h.api.StartWorkout(ctx)
	switch {
	case errors.Is(err, workout.ErrNoExercise):
		return mcp.NewToolResultError("select an exercise first"), nil
	case errors.Is(err, workout.ErrCameraUnavailable):
		return mcp.NewToolResultError("camera is not ready; the workout cannot start"), nil
	case err != nil:
		h.log.Error("mcp start_workout", "error", err)
		return mcp.NewToolResultError("start failed: " + err.Error()), nil
	}
	return jsonResult(v)
}

func (h *handlers) pauseWorkout(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.control(ctx, "pause_workout", h.api.PauseWorkout)
}

func (h *handlers) resetWorkout(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.control(ctx, "reset_workout", h.api.ResetWorkout)
}

func (h *handlers) backToSelection(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.control(ctx, "back_to_selection", h.api.BackToSelection)
}

func (h *handlers) control(ctx context.Context, tool string, op func(context.Context) (workout.View, error)) (*mcp.CallToolResult, error) {
	v, err := op(ctx)
	if err != nil {
		h.log.Error("mcp "+tool, "error", err)
		return mcp.NewToolResultError(tool + " failed: " + err.Error()), nil
	}
	return jsonResult(v)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
