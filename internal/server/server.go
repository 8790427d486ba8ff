package server

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/claude/nutrical/internal/config"
	"github.com/claude/nutrical/internal/metrics"
	"github.com/claude/nutrical/internal/workout"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	workout *workout.Workout
	links   config.LinksConfig
	metrics *metrics.Manager
	log     *slog.Logger
	apiKey  string
	whois   WhoIser
	router  chi.Router
}

// New creates a new Server with all routes configured. An empty apiKey
// leaves the session control endpoints open.
func New(w *workout.Workout, links config.LinksConfig, m *metrics.Manager, apiKey string, log *slog.Logger) *Server {
	if m == nil {
		m = metrics.NewDiscardManager()
	}
	s := &Server{
		workout: w,
		links:   links,
		metrics: m,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(RequestMetrics(s.metrics))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Get("/api/v1/exercises", s.handleListExercises)
	s.router.Get("/api/v1/exercises/{id}", s.handleGetExercise)
	s.router.Get("/api/v1/camera", s.handleCamera)
	s.router.Get("/api/v1/links", s.handleLinks)
	s.router.Get("/go/{target}", s.handleRedirect)

	s.router.Route("/api/v1/session", func(r chi.Router) {
		r.Get("/", s.handleSession)
		r.Get("/events", s.handleSessionEvents)

		// Control endpoints (API key required when configured)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/select", s.handleSelect)
			r.Post("/start", s.handleStart)
			r.Post("/pause", s.handlePause)
			r.Post("/reset", s.handleReset)
			r.Post("/clear", s.handleClear)
		})
	})
}

// SetMetricsHandler exposes the registry at /metrics.
func (s *Server) SetMetricsHandler(g prometheus.Gatherer) {
	s.router.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

// SetMCP mounts the MCP streamable HTTP endpoint at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Handle("/mcp", h)
	})
}

// SetTailscale enables tailnet identity lookups for incoming requests.
func (s *Server) SetTailscale(w WhoIser) {
	s.whois = w
}

// SetFrontend mounts the SPA filesystem.
// Unmatched routes serve index.html for client-side routing.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		// Try to serve the exact file first
		f, err := webFS.Open(r.URL.Path[1:]) // strip leading /
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		// Fallback to index.html for SPA routing
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
