// Package manifest extracts declared dependencies from packaging
// manifests. Each ecosystem gets its own parser strategy; dispatch is by
// exact filename. A malformed entry is skipped with a warning rather
// than aborting the manifest, and a manifest that fails to parse at all
// yields a single warning and no records.
package manifest

import (
	"github.com/loupe-dev/loupe/pkg/models"
)

// Parser extracts dependency records from one manifest format.
type Parser interface {
	Ecosystem() models.Ecosystem
	Parse(rel string, data []byte) ([]models.DependencyRecord, []models.Warning)
}

// parsers is the closed strategy set, keyed by exact filename.
var parsers = map[string]Parser{
	"Cargo.toml":       cargoParser{},
	"package.json":     packageJSONParser{},
	"pyproject.toml":   pyprojectParser{},
	"requirements.txt": requirementsParser{},
	"go.mod":           goModParser{},
}

// Lookup returns the parser for a manifest base name.
func Lookup(base string) (Parser, bool) {
	p, ok := parsers[base]
	return p, ok
}

// IsManifest reports whether base is a recognized manifest filename.
func IsManifest(base string) bool {
	_, ok := parsers[base]
	return ok
}

func parseWarning(rel, msg string) models.Warning {
	return models.Warning{Path: rel, Message: msg}
}
