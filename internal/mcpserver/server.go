// Package mcpserver exposes the stun calculator as MCP tools so an assistant
// can analyze hits against character and monster data.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/udisondev/stunsim/internal/stun"
)

const (
	serverName    = "stunsim"
	serverVersion = "0.1.0"
)

// Server wires the stun tools to one session-scoped calculator: meters
// accumulate across calls for as long as the server runs.
type Server struct {
	calc *stun.Calculator
	mcp  *mcp.Server
}

// New creates a server over calc and registers every tool.
func New(calc *stun.Calculator) *Server {
	s := &Server{
		calc: calc,
		mcp:  mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil),
	}

	mcp.AddTool(s.mcp, AnalyzeStunTool(), AnalyzeStunHandler(calc))
	mcp.AddTool(s.mcp, PlanStunTool(), PlanStunHandler(calc))
	mcp.AddTool(s.mcp, QuickStunTool(), QuickStunHandler())
	mcp.AddTool(s.mcp, StunMeterTool(), StunMeterHandler(calc))
	mcp.AddTool(s.mcp, DecayStunTool(), DecayStunHandler(calc))

	return s
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.serve(ctx, &mcp.StdioTransport{})
}

func (s *Server) serve(ctx context.Context, transport mcp.Transport) error {
	slog.Info("mcp server starting", "name", serverName, "version", serverVersion)
	if err := s.mcp.Run(ctx, transport); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serving mcp: %w", err)
	}
	slog.Info("mcp server stopped")
	return nil
}
