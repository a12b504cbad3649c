package mcpserver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeInputRoot(t *testing.T) {
	assert.Equal(t, ".", AnalyzeInput{}.root())
	assert.Equal(t, "/srv/app", AnalyzeInput{Path: "/srv/app"}.root())
}

func TestEncodeJSON(t *testing.T) {
	out, err := encode(map[string]int{"files": 3}, "json")
	require.NoError(t, err)

	var decoded map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 3, decoded["files"])
}

func TestEncodeDefaultsToTOON(t *testing.T) {
	out, err := encode(map[string]int{"files": 3}, "")
	require.NoError(t, err)
	assert.Contains(t, out, "files")
	assert.NotContains(t, out, "{", "toon output is not JSON")
}

func TestSplitFrontmatter(t *testing.T) {
	doc := "---\ndescription: Walk a project\n---\n\nDo the thing.\n"
	description, body := splitFrontmatter([]byte(doc))
	assert.Equal(t, "Walk a project", description)
	assert.Equal(t, "Do the thing.\n", body)
}

func TestSplitFrontmatterAbsent(t *testing.T) {
	description, body := splitFrontmatter([]byte("Just a prompt.\n"))
	assert.Empty(t, description)
	assert.Equal(t, "Just a prompt.\n", body)
}

func TestSplitFrontmatterUnterminated(t *testing.T) {
	doc := "---\ndescription: never closed\n"
	description, body := splitFrontmatter([]byte(doc))
	assert.Empty(t, description)
	assert.Equal(t, doc, body)
}

func TestToolError(t *testing.T) {
	result, _, err := toolError("no such path")
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
