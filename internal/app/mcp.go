package app

import (
	"context"

	"sysmonitor/internal/logger"
	"sysmonitor/internal/mcpserver"
)

// ServeMCP exposes the session over MCP on stdio until the client
// disconnects or ctx is cancelled.
func (a *App) ServeMCP(ctx context.Context, version string) error {
	srv := mcpserver.NewServer(ctx, mcpserver.Config{
		ServerName:    "sysmonitor",
		ServerVersion: version,
	}, a.Controller, a.Hub, a.Collector, logger.Component("mcp"))
	defer srv.Close()
	return srv.Start(ctx)
}
