package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/nutrical/internal/capture"
	"github.com/claude/nutrical/internal/catalog"
	"github.com/claude/nutrical/internal/config"
	nmcp "github.com/claude/nutrical/internal/mcp"
	"github.com/claude/nutrical/internal/metrics"
	"github.com/claude/nutrical/internal/server"
	"github.com/claude/nutrical/internal/storage"
	"github.com/claude/nutrical/internal/workout"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrationsPath := flag.String("migrations", "migrations", "path to the postgres catalog migrations")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	os.Exit(run(*configPath, *migrationsPath, *migrateOnly))
}

// run returns the process exit code so deferred cleanup, including the
// camera release, happens on every path.
func run(configPath, migrationsPath string, migrateOnly bool) int {

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("Nutrical starting", "version", Version)

	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open exercise catalog
	cat, closeCatalog, err := openCatalog(ctx, cfg.Catalog, migrationsPath, log)
	if err != nil {
		log.Error("failed to open catalog", "driver", cfg.Catalog.Driver, "error", err)
		return 1
	}
	defer closeCatalog()

	if migrateOnly {
		log.Info("migrate-only: exiting")
		return 0
	}

	// Camera and workout
	provider, err := capture.NewProvider(cfg.Camera.Provider, cfg.Camera.Device)
	if err != nil {
		log.Error("invalid camera provider", "error", err)
		return 1
	}
	constraints := capture.Constraints{
		Width:      cfg.Camera.Width,
		Height:     cfg.Camera.Height,
		FacingMode: capture.FacingMode(cfg.Camera.FacingMode),
	}

	reg := metrics.SetupPrometheus()
	m := metrics.NewManager("nutrical", "session", reg)

	wk := workout.New(cat, provider, constraints, workout.Options{
		TickInterval:    cfg.Session.TickInterval,
		DetectInterval:  cfg.Session.DetectInterval,
		DetectThreshold: cfg.Session.DetectThreshold,
		Metrics:         m,
	}, log)
	wk.Mount(ctx)
	defer wk.Close()

	// Create server
	srv := server.New(wk, cfg.Links, m, cfg.Auth.APIKey, log)
	srv.SetMetricsHandler(reg)
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(nmcp.New(nmcp.NewLocal(wk), Version, log)))
	if cfg.Server.WebDir != "" {
		srv.SetFrontend(os.DirFS(cfg.Server.WebDir))
		log.Info("serving frontend", "dir", cfg.Server.WebDir)
	}

	// Listen on the tailnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			return 1
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			return 1
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			return 1
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			return 1
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams end with the signal instead of holding Shutdown open.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		// Graceful shutdown
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		return 1
	}
	log.Info("server stopped")
	return 0
}

// openCatalog selects the exercise catalog backend. The returned close func
// is never nil.
func openCatalog(ctx context.Context, cfg config.CatalogConfig, migrationsPath string, log *slog.Logger) (catalog.Catalog, func(), error) {
	switch cfg.Driver {
	case "postgres":
		db, version, err := storage.Open(ctx, cfg.Database.DSN(), migrationsPath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("catalog database connected", "schema_version", version)
		return db, db.Close, nil
	case "sqlite":
		c, err := storage.OpenSQLite(ctx, cfg.SQLiteDir)
		if err != nil {
			return nil, nil, err
		}
		log.Info("sqlite catalog opened", "dir", cfg.SQLiteDir)
		return c, func() { c.Close() }, nil
	default:
		return catalog.Builtin(), func() {}, nil
	}
}
