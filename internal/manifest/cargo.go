package manifest

import (
	"fmt"
	"sort"

	"github.com/loupe-dev/loupe/pkg/models"
	"github.com/pelletier/go-toml"
)

// cargoParser reads [dependencies], [dev-dependencies], and
// [build-dependencies] sections of a Cargo.toml.
type cargoParser struct{}

func (cargoParser) Ecosystem() models.Ecosystem { return models.EcosystemCargo }

func (p cargoParser) Parse(rel string, data []byte) ([]models.DependencyRecord, []models.Warning) {
	tree, err := toml.LoadBytes(data)
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
		{"dev-dependencies", models.ScopeDev},
		{"build-dependencies", models.ScopeDev},
	}

	for _, section := range sections {
		sub, ok := tree.Get(section.key).(*toml.Tree)
		if !ok {
			continue
		}
		keys := sub.Keys()
		sort.Strings(keys)
		for _, name := range keys {
			version, ok := cargoVersion(sub.Get(name))
			if !ok {
				warnings = append(warnings, parseWarning(rel,
					fmt.Sprintf("malformed entry %q in [%s] skipped", name, section.key)))
				continue
			}
			records = append(records, models.DependencyRecord{
				Manifest:  rel,
				Ecosystem: models.EcosystemCargo,
				Name:      name,
				Version:   version,
				Scope:     section.scope,
			})
		}
	}

	return records, warnings
}

// cargoVersion extracts the raw version constraint from a dependency
// value: either a bare string or a table with a "version" key. Git and
// path dependencies carry no version and yield an empty constraint.
func cargoVersion(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case *toml.Tree:
		if s, ok := val.Get("version").(string); ok {
			return s, true
		}
		if val.Has("git") || val.Has("path") || val.Has("workspace") {
			return "", true
		}
		return "", false
	default:
		return "", false
	}
}
