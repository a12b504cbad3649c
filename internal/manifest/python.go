package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/loupe-dev/loupe/pkg/models"
	"github.com/pelletier/go-toml"
)

// requirementsParser reads one requirement specifier per line from a
// requirements.txt. Option lines (-r, --hash, ...) are skipped.
type requirementsParser struct{}

func (requirementsParser) Ecosystem() models.Ecosystem { return models.EcosystemPyPI }

func (p requirementsParser) Parse(rel string, data []byte) ([]models.DependencyRecord, []models.Warning) {
	var records []models.DependencyRecord
	var warnings []models.Warning

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		// Environment markers and trailing comments are not part of
		// the constraint.
		if i := strings.IndexAny(line, ";#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}

		name, version, ok := splitRequirement(line)
		if !ok {
			warnings = append(warnings, parseWarning(rel,
				fmt.Sprintf("malformed entry on line %d skipped", lineNo)))
			continue
		}
		records = append(records, models.DependencyRecord{
			Manifest:  rel,
			Ecosystem: models.EcosystemPyPI,
			Name:      name,
			Version:   version,
			Scope:     models.ScopeRuntime,
		})
	}

	return records, warnings
}

// pyprojectParser reads [project].dependencies and
// [project.optional-dependencies] from a pyproject.toml, plus Poetry's
// [tool.poetry.dependencies] table when present.
type pyprojectParser struct{}

func (pyprojectParser) Ecosystem() models.Ecosystem { return models.EcosystemPyPI }

func (p pyprojectParser) Parse(rel string, data []byte) ([]models.DependencyRecord, []models.Warning) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return nil, []models.Warning{parseWarning(rel, fmt.Sprintf("manifest parse error: %v", err))}
	}

	var records []models.DependencyRecord
	var warnings []models.Warning

	appendSpecs := func(specs []any, section string, scope models.DependencyScope) {
		for _, raw := range specs {
			spec, ok := raw.(string)
			if !ok {
				warnings = append(warnings, parseWarning(rel,
					fmt.Sprintf("malformed entry in %s skipped", section)))
				continue
			}
			name, version, ok := splitRequirement(strings.TrimSpace(spec))
			if !ok {
				warnings = append(warnings, parseWarning(rel,
					fmt.Sprintf("malformed entry %q in %s skipped", spec, section)))
				continue
			}
			records = append(records, models.DependencyRecord{
				Manifest:  rel,
				Ecosystem: models.EcosystemPyPI,
				Name:      name,
				Version:   version,
				Scope:     scope,
			})
		}
	}

	if specs, ok := tree.GetPath([]string{"project", "dependencies"}).([]any); ok {
		appendSpecs(specs, "project.dependencies", models.ScopeRuntime)
	}

	if groups, ok := tree.GetPath([]string{"project", "optional-dependencies"}).(*toml.Tree); ok {
		keys := groups.Keys()
		sort.Strings(keys)
		for _, group := range keys {
			if specs, ok := groups.Get(group).([]any); ok {
				appendSpecs(specs, "project.optional-dependencies."+group, models.ScopeOptional)
			}
		}
	}

	if poetry, ok := tree.GetPath([]string{"tool", "poetry", "dependencies"}).(*toml.Tree); ok {
		keys := poetry.Keys()
		sort.Strings(keys)
		for _, name := range keys {
			version, ok := cargoVersion(poetry.Get(name))
			if !ok {
				warnings = append(warnings, parseWarning(rel,
					fmt.Sprintf("malformed entry %q in tool.poetry.dependencies skipped", name)))
				continue
			}
			records = append(records, models.DependencyRecord{
				Manifest:  rel,
				Ecosystem: models.EcosystemPyPI,
				Name:      name,
				Version:   version,
				Scope:     models.ScopeRuntime,
			})
		}
	}

	return records, warnings
}

// splitRequirement splits "name[extras]>=1.0,<2.0" into name and raw
// constraint. The constraint keeps its operators unparsed.
func splitRequirement(spec string) (name, version string, ok bool) {
	i := 0
	for i < len(spec) {
		c := spec[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
			c == '-' || c == '_' || c == '.' {
			i++
			continue
		}
		break
	}
	if i == 0 {
		return "", "", false
	}
	name = spec[:i]
	rest := strings.TrimSpace(spec[i:])

	// Drop extras: requests[socks]>=2.0
	if strings.HasPrefix(rest, "[") {
		if j := strings.Index(rest, "]"); j >= 0 {
			rest = strings.TrimSpace(rest[j+1:])
		} else {
			return "", "", false
		}
	}
	return name, rest, true
}
