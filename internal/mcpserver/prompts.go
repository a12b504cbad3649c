package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

type promptFrontmatter struct {
	Description string `yaml:"description"`
}

// registerPrompts registers every embedded prompt file. The file name
// (minus extension) becomes the prompt name; a YAML frontmatter block
// supplies the description.
func (s *Server) registerPrompts() {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		content, err := promptFiles.ReadFile("prompts/" + entry.Name())
		if err != nil {
			continue
		}
		description, body := splitFrontmatter(content)

		s.server.AddPrompt(&mcp.Prompt{
			Name:        strings.TrimSuffix(entry.Name(), ".md"),
			Description: description,
		}, promptHandler(description, body))
	}
}

func splitFrontmatter(content []byte) (description, body string) {
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return "", string(content)
	}
	rest := content[4:]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end < 0 {
		return "", string(content)
	}

	var fm promptFrontmatter
	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return "", string(content)
	}
	return fm.Description, strings.TrimPrefix(string(rest[end+5:]), "\n")
}

func promptHandler(description, body string) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return &mcp.GetPromptResult{
			Description: description,
			Messages: []*mcp.PromptMessage{
				{
					Role:    "user",
					Content: &mcp.TextContent{Text: body},
				},
			},
		}, nil
	}
}
