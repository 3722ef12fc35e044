// Package mcp exposes trustwatch scoring and warning records as MCP tools
// over stdio.
package mcp

import (
	"context"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/trustwatch/internal/scoring"
	"github.com/ppiankov/trustwatch/internal/warnings"
)

// Config holds MCP server dependencies.
type Config struct {
	Scorer  *scoring.Scorer
	Store   warnings.Store
	Version string
	Now     func() time.Time // defaults to time.Now
}

// Server wraps the MCP SDK server with read-only trustwatch tools.
type Server struct {
	mcpServer *mcpsdk.Server
	scorer    *scoring.Scorer
	store     warnings.Store
	now       func() time.Time
}

// New creates an MCP server and registers its tools.
func New(cfg Config) (*Server, error) {
	if cfg.Scorer == nil {
		return nil, fmt.Errorf("mcp: scorer is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("mcp: warning store is required")
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Server{
		scorer: cfg.Scorer,
		store:  cfg.Store,
		now:    cfg.Now,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "trustwatch",
			Version: cfg.Version,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "trustwatch_score",
		Description: "Score a set of signals (face count, message bodies, time, identities) with the configured policy without recording anything.",
	}, s.handleScore)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "trustwatch_warnings",
		Description: "Show the stored warning count and escalation state for one employee, or for every employee when none is given.",
	}, s.handleWarnings)
}
