// Package config holds the explicit configuration value passed into the
// analysis engine. Nothing in the engine reads ambient global state, so
// concurrent runs with different settings never interfere.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaJSON []byte

// Config holds all engine options.
type Config struct {
	// Analysis selects which subsystems run.
	Analysis AnalysisConfig `koanf:"analysis"`

	// Thresholds for complexity scoring and smell detection.
	Thresholds ThresholdConfig `koanf:"thresholds"`

	// File exclusion rules.
	Exclude ExcludeConfig `koanf:"exclude"`

	// Workers bounds the analysis pool. 0 means 2x NumCPU.
	Workers int `koanf:"workers"`

	// MaxFileSize skips files larger than this many bytes. 0 = no limit.
	MaxFileSize int64 `koanf:"max_file_size"`

	// Cache settings for the optional per-file result cache.
	Cache CacheConfig `koanf:"cache"`

	// Output settings.
	Output OutputConfig `koanf:"output"`
}

// AnalysisConfig selects analysis subsystems.
type AnalysisConfig struct {
	Structure    bool `koanf:"structure"`
	Dependencies bool `koanf:"dependencies"`
	Complexity   bool `koanf:"complexity"`
	Smells       bool `koanf:"smells"`
}

// ThresholdConfig defines scoring and smell thresholds.
type ThresholdConfig struct {
	FunctionLength    int   `koanf:"function_length"`
	NestingDepth      int   `koanf:"nesting_depth"`
	DuplicateMinLines int   `koanf:"duplicate_min_lines"`
	ParameterCount    int   `koanf:"parameter_count"`
	MagicAllowlist    []int `koanf:"magic_allowlist"`
}

// ExcludeConfig defines file exclusion rules.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns"`
	Dirs      []string `koanf:"dirs"`
	Gitignore bool     `koanf:"gitignore"`
}

// CacheConfig controls the content-addressed result cache. Disabled by
// default: a report is produced fresh per invocation unless asked.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
	TTL     int    `koanf:"ttl"` // hours
}

// OutputConfig controls output rendering.
type OutputConfig struct {
	Format string `koanf:"format"` // text, json, yaml, toon
	Color  bool   `koanf:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Structure:    true,
			Dependencies: true,
			Complexity:   true,
			Smells:       true,
		},
		Thresholds: ThresholdConfig{
			FunctionLength:    50,
			NestingDepth:      5,
			DuplicateMinLines: 6,
			ParameterCount:    5,
			MagicAllowlist:    []int{-1, 0, 1, 2, 10, 100},
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.min.css",
			},
			Dirs: []string{
				"target",
				"node_modules",
				".git",
				"dist",
				"build",
				"vendor",
				"__pycache__",
				".loupe",
			},
			Gitignore: true,
		},
		Workers:     0,
		MaxFileSize: 0,
		Cache: CacheConfig{
			Enabled: false,
			Dir:     ".loupe/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a TOML, YAML, or JSON file. The loaded
// document is validated against the embedded schema before unmarshaling.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = koanfjson.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := validate(k.Raw()); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// validate checks a raw config document against the embedded JSON schema.
// The document is round-tripped through JSON so TOML/YAML scalar types
// normalize to what the validator expects.
func validate(raw map[string]any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return err
	}

	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(schemaJSON)))
	if err != nil {
		return err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("loupe-config.json", schemaDoc); err != nil {
		return err
	}
	schema, err := compiler.Compile("loupe-config.json")
	if err != nil {
		return err
	}

	return schema.Validate(doc)
}

// LoadOrDefault tries standard config locations, falling back to defaults.
func LoadOrDefault() *Config {
	names := []string{
		"loupe.toml",
		"loupe.yaml",
		"loupe.yml",
		"loupe.json",
		".loupe.toml",
		".loupe.yaml",
		".loupe.yml",
		".loupe.json",
	}

	for _, dir := range []string{".", ".loupe"} {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				if cfg, err := Load(path); err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}

// AllowsMagic reports whether n is on the magic-number allow-list.
func (t ThresholdConfig) AllowsMagic(n int) bool {
	for _, a := range t.MagicAllowlist {
		if a == n {
			return true
		}
	}
	return false
}
