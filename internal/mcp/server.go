// Package mcp exposes read-only viewer state as MCP tools.
package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/tracespace/internal/domain/refresh"
	"github.com/rpggio/tracespace/internal/viewer"
)

// StateSource returns the last published viewer state.
type StateSource interface {
	Load() *viewer.State
}

// JournalService lists refresh journal entries.
type JournalService interface {
	Recent(ctx context.Context, opts refresh.ListOptions) ([]refresh.Entry, error)
}

// Config contains server configuration.
type Config struct {
	State    StateSource
	Journal  JournalService
	Endpoint string
	Version  string
	Logger   *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "tracespace",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg)

	return server
}
