package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/loupe-dev/loupe/internal/engine"
	"github.com/loupe-dev/loupe/pkg/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	toon "github.com/toon-format/toon-go"
)

// AnalyzeInput is the shared input for all analyze tools.
type AnalyzeInput struct {
	Path   string `json:"path,omitempty" jsonschema:"Project root to analyze. Defaults to the current directory."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default) or json."`
}

func (in AnalyzeInput) root() string {
	if in.Path == "" {
		return "."
	}
	return in.Path
}

// run executes the engine for one tool call with the given subset.
func (s *Server) run(ctx context.Context, in AnalyzeInput, subset engine.Subset) (*models.Report, error) {
	eng, err := engine.New(s.cfg)
	if err != nil {
		return nil, err
	}
	return eng.Run(ctx, in.root(), subset, nil)
}

// encode renders tool output. TOON is the default because it reads well
// in agent context windows; json is available for strict consumers.
func encode(data any, format string) (string, error) {
	if format == "json" {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func toolResult(data any, format string) (*mcp.CallToolResult, any, error) {
	text, err := encode(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) handleAnalyzeProject(ctx context.Context, req *mcp.CallToolRequest, in AnalyzeInput) (*mcp.CallToolResult, any, error) {
	report, err := s.run(ctx, in, engine.Full())
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(report, in.Format)
}

func (s *Server) handleAnalyzeStructure(ctx context.Context, req *mcp.CallToolRequest, in AnalyzeInput) (*mcp.CallToolResult, any, error) {
	report, err := s.run(ctx, in, engine.Subset{Structure: true})
	if err != nil {
		return toolError(err.Error())
	}
	out := struct {
		Root        string                    `json:"root" toon:"root"`
		TotalFiles  int                       `json:"total_files" toon:"total_files"`
		TotalLines  int                       `json:"total_lines" toon:"total_lines"`
		Languages   []models.LanguageStat     `json:"languages" toon:"languages"`
		Directories []models.DirectorySummary `json:"directories" toon:"directories"`
		Warnings    []models.Warning          `json:"warnings,omitempty" toon:"warnings,omitempty"`
	}{report.Root, report.TotalFiles, report.TotalLines, report.Languages, report.Directories, report.Warnings}
	return toolResult(out, in.Format)
}

func (s *Server) handleAnalyzeDependencies(ctx context.Context, req *mcp.CallToolRequest, in AnalyzeInput) (*mcp.CallToolResult, any, error) {
	report, err := s.run(ctx, in, engine.Subset{Dependencies: true})
	if err != nil {
		return toolError(err.Error())
	}
	out := struct {
		Root         string                    `json:"root" toon:"root"`
		Dependencies []models.DependencyRecord `json:"dependencies" toon:"dependencies"`
		Warnings     []models.Warning          `json:"warnings,omitempty" toon:"warnings,omitempty"`
	}{report.Root, report.Dependencies, report.Warnings}
	return toolResult(out, in.Format)
}

func (s *Server) handleAnalyzeComplexity(ctx context.Context, req *mcp.CallToolRequest, in AnalyzeInput) (*mcp.CallToolResult, any, error) {
	report, err := s.run(ctx, in, engine.Subset{Complexity: true})
	if err != nil {
		return toolError(err.Error())
	}
	out := struct {
		Root    string                   `json:"root" toon:"root"`
		Summary models.ComplexitySummary `json:"summary" toon:"summary"`
		Files   []models.ComplexityScore `json:"files" toon:"files"`
	}{report.Root, report.ComplexitySummary, report.Complexity}
	return toolResult(out, in.Format)
}

func (s *Server) handleAnalyzeSmells(ctx context.Context, req *mcp.CallToolRequest, in AnalyzeInput) (*mcp.CallToolResult, any, error) {
	report, err := s.run(ctx, in, engine.Subset{Smells: true})
	if err != nil {
		return toolError(err.Error())
	}
	out := struct {
		Root   string         `json:"root" toon:"root"`
		Smells []models.Smell `json:"smells" toon:"smells"`
	}{report.Root, report.Smells}
	return toolResult(out, in.Format)
}
