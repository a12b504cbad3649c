package manifest

import (
	"fmt"
	"sort"

	"github.com/knadh/koanf/parsers/json"
	"github.com/loupe-dev/loupe/pkg/models"
)

// packageJSONParser reads dependencies, devDependencies, and
// optionalDependencies from a package.json.
type packageJSONParser struct{}

func (packageJSONParser) Ecosystem() models.Ecosystem { return models.EcosystemNPM }

func (p packageJSONParser) Parse(rel string, data []byte) ([]models.DependencyRecord, []models.Warning) {
	doc, err := json.Parser().Unmarshal(data)
	if err != nil {
		return nil, []models.Warning{parseWarning(rel, fmt.Sprintf("manifest parse error: %v", err))}
	}

	var records []models.DependencyRecord
	var warnings []models.Warning

	sections := []struct {
		key   string
		scope models.DependencyScope
	}{
		{"dependencies", models.ScopeRuntime},
		{"devDependencies", models.ScopeDev},
		{"optionalDependencies", models.ScopeOptional},
	}

	for _, section := range sections {
		obj, ok := doc[section.key].(map[string]any)
		if !ok {
			continue
		}
		names := make([]string, 0, len(obj))
		for name := range obj {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			version, ok := obj[name].(string)
			if !ok {
				warnings = append(warnings, parseWarning(rel,
					fmt.Sprintf("malformed entry %q in %s skipped", name, section.key)))
				continue
			}
			records = append(records, models.DependencyRecord{
				Manifest:  rel,
				Ecosystem: models.EcosystemNPM,
				Name:      name,
				Version:   version,
				Scope:     section.scope,
			})
		}
	}

	return records, warnings
}
