// Package mcpserver exposes the unit catalog, the conversion engine, the
// selection reconciler and the insight collaborators as MCP tools.
//
// This is a composition root: it only wires tools to their dependencies.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/bqhou/unitai"
	"github.com/bqhou/unitai/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Options configure the server.
type Options struct {
	// Insights backs unit_insights and smart_lookup. When nil those tools
	// report a missing credential.
	Insights unitai.Insights
	Logger   logging.Logger
}

// New creates the MCP server with every tool registered.
func New(optFns ...func(o *Options)) *server.MCPServer {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := logging.OrNoOp(opts.Logger)

	s := server.NewMCPServer(
		"unitai",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions),
	)

	for _, t := range tools(opts.Insights, logger) {
		s.AddTool(t.Definition(), t.Handle)
	}
	return s
}

// Serve runs the server over stdio until stdin closes.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

const serverInstructions = `UnitAI converts between US customary and metric units.
Use list_units to discover unit ids, convert_units for numbers,
reconcile_selection to keep a category/direction/unit selection valid,
unit_insights for real-world comparisons and smart_lookup to turn a
free-text question into a conversion.`
