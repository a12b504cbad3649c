package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/loupe-dev/loupe/pkg/models"
)

// goModParser reads require directives from a go.mod. Indirect requires
// are tagged optional so callers can filter them out.
type goModParser struct{}

func (goModParser) Ecosystem() models.Ecosystem { return models.EcosystemGo }

func (p goModParser) Parse(rel string, data []byte) ([]models.DependencyRecord, []models.Warning) {
	var records []models.DependencyRecord
	var warnings []models.Warning

	scanner := bufio.NewScanner(bytes.NewReader(data))
	inBlock := false
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "" || strings.HasPrefix(line, "//"):
			continue
		case inBlock && line == ")":
			inBlock = false
			continue
		case strings.HasPrefix(line, "require ("):
			inBlock = true
			continue
		case strings.HasPrefix(line, "require "):
			line = strings.TrimSpace(strings.TrimPrefix(line, "require "))
		case !inBlock:
			continue
		}

		scope := models.ScopeRuntime
		if i := strings.Index(line, "//"); i >= 0 {
			if strings.Contains(line[i:], "indirect") {
				scope = models.ScopeOptional
			}
			line = strings.TrimSpace(line[:i])
		}

		fields := strings.Fields(line)
		if len(fields) != 2 || !strings.HasPrefix(fields[1], "v") {
			warnings = append(warnings, parseWarning(rel,
				fmt.Sprintf("malformed require on line %d skipped", lineNo)))
			continue
		}

		records = append(records, models.DependencyRecord{
			Manifest:  rel,
			Ecosystem: models.EcosystemGo,
			Name:      fields[0],
			Version:   fields[1],
			Scope:     scope,
		})
	}

	return records, warnings
}
