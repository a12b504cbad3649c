// Package mcpserver exposes the analysis engine over the Model Context
// Protocol, so agents can query project structure, dependencies,
// complexity, and smells without shelling out to the CLI.
package mcpserver

import (
	"context"

	"github.com/loupe-dev/loupe/pkg/config"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with all loupe analysis tools registered.
type Server struct {
	server *mcp.Server
	cfg    *config.Config
}

// NewServer creates an MCP server. The config supplies thresholds and
// exclusion rules; per-call inputs may narrow the analysis further.
func NewServer(version string, cfg *config.Config) *Server {
	if version == "" {
		version = "dev"
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "loupe",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, cfg: cfg}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run serves MCP over stdio until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_project",
		Description: describeProject(),
	}, s.handleAnalyzeProject)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_structure",
		Description: describeStructure(),
	}, s.handleAnalyzeStructure)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_dependencies",
		Description: describeDependencies(),
	}, s.handleAnalyzeDependencies)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_complexity",
		Description: describeComplexity(),
	}, s.handleAnalyzeComplexity)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_smells",
		Description: describeSmells(),
	}, s.handleAnalyzeSmells)
}
