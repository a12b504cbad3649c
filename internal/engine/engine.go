// Package engine orchestrates one analysis run: walk, per-file
// analysis on a worker pool, then aggregation into a report.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/loupe-dev/loupe/internal/aggregate"
	"github.com/loupe-dev/loupe/internal/analyzer"
	"github.com/loupe-dev/loupe/internal/cache"
	"github.com/loupe-dev/loupe/internal/fileproc"
	"github.com/loupe-dev/loupe/internal/manifest"
	"github.com/loupe-dev/loupe/internal/walker"
	"github.com/loupe-dev/loupe/pkg/config"
	"github.com/loupe-dev/loupe/pkg/lang"
	"github.com/loupe-dev/loupe/pkg/models"
)

// Subset selects which analysis subsystems a run executes. Structure
// (the walk itself) always happens; the flags control which report
// sections get populated.
type Subset struct {
	Structure    bool
	Dependencies bool
	Complexity   bool
	Smells       bool
}

// SubsetFromConfig derives the default subset from config.
func SubsetFromConfig(cfg *config.Config) Subset {
	return Subset{
		Structure:    cfg.Analysis.Structure,
		Dependencies: cfg.Analysis.Dependencies,
		Complexity:   cfg.Analysis.Complexity,
		Smells:       cfg.Analysis.Smells,
	}
}

// Full selects every subsystem.
func Full() Subset {
	return Subset{Structure: true, Dependencies: true, Complexity: true, Smells: true}
}

// Engine runs analyses. It is safe for concurrent use; each Run is
// independent and reads only its explicit inputs.
type Engine struct {
	cfg   *config.Config
	cache *cache.Cache
}

// New creates an engine. The result cache is opened according to
// config; disabled caching yields a no-op cache.
func New(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	c, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled)
	if err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, cache: c}, nil
}

// outcome is the per-file analysis result merged after the pool joins.
type outcome struct {
	record   models.FileRecord
	deps     []models.DependencyRecord
	score    *models.ComplexityScore
	smells   []models.Smell
	warnings []models.Warning
}

// ProgressFactory builds a per-file progress callback once the file
// count is known. Either the factory or its result may be nil.
type ProgressFactory func(total int) fileproc.ProgressFunc

// Run analyzes the tree at root and returns the report.
func (e *Engine) Run(ctx context.Context, root string, subset Subset, progressFor ProgressFactory) (*models.Report, error) {
	w := walker.New(e.cfg)
	walked, err := w.Walk(root)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]walker.Entry, len(walked.Files))
	paths := make([]string, 0, len(walked.Files))
	for _, entry := range walked.Files {
		entries[entry.Path] = entry
		paths = append(paths, entry.Path)
	}

	var onProgress fileproc.ProgressFunc
	if progressFor != nil {
		onProgress = progressFor(len(paths))
	}

	fingerprint := fmt.Sprintf("%+v", e.cfg.Thresholds)

	var warnMu sync.Mutex
	poolWarnings := append([]models.Warning(nil), walked.Warnings...)

	outcomes := fileproc.Map(ctx, paths, e.cfg.Workers,
		func(path string) (outcome, error) {
			return e.analyzeFile(entries[path], subset, fingerprint), nil
		},
		onProgress,
		func(path string, err error) {
			warnMu.Lock()
			poolWarnings = append(poolWarnings, models.Warning{
				Path:    entries[path].Rel,
				Message: fmt.Sprintf("analysis failed: %v", err),
			})
			warnMu.Unlock()
		})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in := aggregate.Input{Root: displayRoot(root), Warnings: poolWarnings}
	for _, o := range outcomes {
		in.Files = append(in.Files, o.record)
		in.Dependencies = append(in.Dependencies, o.deps...)
		if o.score != nil {
			in.Scores = append(in.Scores, *o.score)
		}
		in.Smells = append(in.Smells, o.smells...)
		in.Warnings = append(in.Warnings, o.warnings...)
	}

	report := aggregate.Build(in)
	if !subset.Structure {
		report.Languages = nil
		report.Directories = nil
		report.Files = nil
	}
	return report, nil
}

// analyzeFile produces the outcome for one walked entry. Read errors
// degrade to a warning; the file still counts toward totals with an
// extension-guessed language and zero lines.
func (e *Engine) analyzeFile(entry walker.Entry, subset Subset, fingerprint string) outcome {
	o := outcome{record: models.FileRecord{
		Path:    entry.Rel,
		Size:    entry.Size,
		Symlink: entry.Symlink,
	}}

	if entry.Symlink {
		o.record.Language = lang.Unknown
		return o
	}

	content, err := os.ReadFile(entry.Path)
	if err != nil {
		o.record.Language = lang.DetectByExtension(entry.Rel)
		o.warnings = append(o.warnings, models.Warning{
			Path:    entry.Rel,
			Message: fmt.Sprintf("cannot read file: %v", err),
		})
		return o
	}

	if walker.IsBinary(content) {
		o.record.Binary = true
		o.record.Language = lang.DetectByExtension(entry.Rel)
		return o
	}

	o.record.Language = lang.Detect(entry.Rel, content)
	o.record.Lines = lang.CountLines(content)

	if subset.Dependencies {
		if parser, ok := manifest.Lookup(filepath.Base(entry.Rel)); ok {
			deps, warnings := parser.Parse(entry.Rel, content)
			o.deps = deps
			o.warnings = append(o.warnings, warnings...)
		}
	}

	if !subset.Complexity && !subset.Smells {
		return o
	}

	key := cache.Key(entry.Rel, content, fingerprint)
	if cached, ok := e.cache.Get(key); ok {
		if subset.Complexity {
			o.score = cached.Score
		}
		if subset.Smells {
			o.smells = cached.Smells
		}
		return o
	}

	profile := analyzer.Profile(content, o.record.Language)
	if profile == nil {
		return o
	}

	score := analyzer.ScoreFile(entry.Rel, profile, e.cfg.Thresholds.FunctionLength)
	smells := analyzer.DetectSmells(entry.Rel, o.record.Language, profile, e.cfg.Thresholds)

	if err := e.cache.Put(key, cache.FileResult{Score: &score, Smells: smells}); err != nil {
		o.warnings = append(o.warnings, models.Warning{
			Path:    entry.Rel,
			Message: fmt.Sprintf("cache write failed: %v", err),
		})
	}

	if subset.Complexity {
		o.score = &score
	}
	if subset.Smells {
		o.smells = smells
	}
	return o
}

// displayRoot normalizes the report's root path to slashes without
// resolving it, so the same invocation always prints the same root.
func displayRoot(root string) string {
	return filepath.ToSlash(filepath.Clean(root))
}
