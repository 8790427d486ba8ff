package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	nmcp "github.com/claude/nutrical/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "Nutrical server URL (e.g. https://nutrical.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("NUTRICAL_AUTH_API_KEY"), "API key for session control")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("nutrical-mcp", Version)
		return
	}

	// stdout carries the MCP protocol
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: nutrical-mcp -server <URL> [-api-key KEY]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	s := nmcp.New(nmcp.NewHTTPClient(*serverURL, *apiKey), Version, log)
	log.Info("nutrical-mcp serving stdio", "server", *serverURL)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("stdio server failed", "error", err)
		os.Exit(1)
	}
}
