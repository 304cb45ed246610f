// devorch: Development Orchestrator MCP Server
//
// An MCP server that tracks projects, journeys and proposals for AI
// coding assistants, keeping the planning state out of the chat
// transcript and in a durable store.
//
// Usage:
//
//	devorch serve    # Start MCP server (stdio transport)
//	devorch update   # Update to the latest version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/devorch/devorch/internal/config"
	devorch "github.com/devorch/devorch/internal/server"
	"github.com/devorch/devorch/internal/updater"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "update":
		runUpdate()
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("devorch v%s\n", devorch.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	s, recorder, cleanup, err := devorch.New(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Background version check — prints to stderr so it doesn't
	// interfere with MCP's stdio transport on stdout.
	go checkForUpdates()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	// Optional Prometheus listener; a failure here must not take the
	// stdio server down.
	if cfg.MetricsAddr != "" {
		go func() {
			if err := recorder.Serve(ctx, cfg.MetricsAddr); err != nil {
				fmt.Fprintf(os.Stderr, "metrics listener: %v\n", err)
			}
		}()
	}

	return server.ServeStdio(s)
}

// checkForUpdates runs a best-effort version check and prints a notice
// to stderr if a newer release exists. Network failures are ignored.
func checkForUpdates() {
	result := updater.NewClient().Check(devorch.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  📦 Update available: v%s → v%s\n"+
				"     Run: devorch update\n"+
				"     Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate replaces the running binary with the latest release.
func runUpdate() {
	fmt.Fprintf(os.Stderr, "🔍 Checking for updates...\n")

	client := updater.NewClient()
	result := client.Check(devorch.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "✅ Already at the latest version (v%s)\n", result.CurrentVersion)
		return
	}

	fmt.Fprintf(os.Stderr, "📦 New version available: v%s → v%s\n", result.CurrentVersion, result.LatestVersion)
	fmt.Fprintf(os.Stderr, "⬇️  Downloading...\n")

	if err := client.SelfUpdate(devorch.Version); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Update failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "\n   You can download manually from:\n   %s\n", result.ReleaseURL)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "✅ Updated to v%s!\n", result.LatestVersion)
	fmt.Fprintf(os.Stderr, "   Restart devorch to use the new version.\n")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `devorch v%s — Development Orchestrator MCP Server

Usage:
  devorch serve    Start the MCP server (stdio transport)
  devorch update   Update to the latest version

Configuration:
  Settings live in ~/.devorch/config.yaml (created on demand).
  Set ANTHROPIC_API_KEY to enable the AI generation tools.

  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "devorch": {
        "command": "devorch",
        "args": ["serve"]
      }
    }
  }

Learn more: https://github.com/devorch/devorch
`, devorch.Version)
}
