package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(api SessionAPI, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Nutrical", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Nutrical workout session server. List exercises, select one, then start, pause, reset or leave the workout. Starting requires the camera to be ready."),
	)

	h := &handlers{api: api, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetSession, Handler: h.getSession},
		server.ServerTool{Tool: toolSelectExercise, Handler: h.selectExercise},
		server.ServerTool{Tool: toolStartWorkout, Handler: h.startWorkout},
		server.ServerTool{Tool: toolPauseWorkout, Handler: h.pauseWorkout},
		server.ServerTool{Tool: toolResetWorkout, Handler: h.resetWorkout},
		server.ServerTool{Tool: toolBackToSelection, Handler: h.backToSelection},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resSession, Handler: h.sessionResource},
		server.ServerResource{Resource: resExercises, Handler: h.exercisesResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	api SessionAPI
	log *slog.Logger
}

// --- Resource definitions ---

var resSession = mcp.NewResource(
	"nutrical://session",
	"Current Session",
	mcp.WithResourceDescription("Selected exercise, reps, elapsed time, stats and camera state"),
	mcp.WithMIMEType("application/json"),
)

var resExercises = mcp.NewResource(
	"nutrical://exercises",
	"Exercise Catalog",
	mcp.WithResourceDescription("All exercises with target muscles, difficulty and calories per minute"),
	mcp.WithMIMEType("application/json"),
)
