// Command sysmonitor-mcp serves the monitoring session over MCP on stdio.
// It accepts the same flags and configuration as sysmonitor; the mode is
// always mcp.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"sysmonitor/internal/app"
	"sysmonitor/internal/config"
)

const version = "1.0.0"

func main() {
	fs := config.NewFlagSet("sysmonitor-mcp")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := fs.Set("mode", config.ModeMCP); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	cfg, err := config.FromFlags(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	serveErr := a.ServeMCP(ctx, version)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Shutdown: %v\n", err)
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", serveErr)
		os.Exit(1)
	}
}
