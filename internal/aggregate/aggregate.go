// Package aggregate folds per-file analysis results into a report.
// Build is a pure function: given the same input it produces the same
// report, independent of worker count or arrival order.
package aggregate

import (
	"path"
	"sort"
	"strings"

	"github.com/loupe-dev/loupe/pkg/lang"
	"github.com/loupe-dev/loupe/pkg/models"
	"gonum.org/v1/gonum/stat"
)

// Input carries the unordered per-file results of one run.
type Input struct {
	Root         string
	Files        []models.FileRecord
	Dependencies []models.DependencyRecord
	Scores       []models.ComplexityScore
	Smells       []models.Smell
	Warnings     []models.Warning
}

// Build assembles the final report. Every slice in the result is sorted
// by a total order so serialization is byte-stable.
func Build(in Input) *models.Report {
	report := &models.Report{
		Root:       in.Root,
		TotalFiles: len(in.Files),
	}

	files := append([]models.FileRecord(nil), in.Files...)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	report.Files = files

	for _, f := range files {
		report.TotalLines += f.Lines
	}

	report.Languages = languageStats(files, report.TotalLines)
	report.Dependencies = dedupeDependencies(in.Dependencies)
	report.Complexity, report.ComplexitySummary = complexityStats(in.Scores)
	report.Smells = sortSmells(in.Smells)
	report.Directories = directorySummaries(files)

	warnings := append([]models.Warning(nil), in.Warnings...)
	sort.Slice(warnings, func(i, j int) bool {
		if warnings[i].Path != warnings[j].Path {
			return warnings[i].Path < warnings[j].Path
		}
		return warnings[i].Message < warnings[j].Message
	})
	report.Warnings = warnings

	return report
}

// languageStats groups files by language. Unknown-language files count
// toward the report totals but carry no language stat.
func languageStats(files []models.FileRecord, totalLines int) []models.LanguageStat {
	byLang := make(map[string]*models.LanguageStat)
	for _, f := range files {
		if f.Language == lang.Unknown {
			continue
		}
		key := string(f.Language)
		s, ok := byLang[key]
		if !ok {
			s = &models.LanguageStat{Language: f.Language}
			byLang[key] = s
		}
		s.Files++
		s.Lines += f.Lines
	}

	stats := make([]models.LanguageStat, 0, len(byLang))
	for _, s := range byLang {
		if totalLines > 0 {
			s.Percent = float64(s.Lines) / float64(totalLines) * 100
		}
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Lines != stats[j].Lines {
			return stats[i].Lines > stats[j].Lines
		}
		return stats[i].Language < stats[j].Language
	})
	return stats
}

// dedupeDependencies collapses duplicate (ecosystem, name) declarations.
// Manifests are processed in lexicographic path order and the last one
// wins, so nested manifests override their ancestors deterministically.
func dedupeDependencies(deps []models.DependencyRecord) []models.DependencyRecord {
	ordered := append([]models.DependencyRecord(nil), deps...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Manifest < ordered[j].Manifest
	})

	type key struct {
		eco  models.Ecosystem
		name string
	}
	winner := make(map[key]models.DependencyRecord)
	for _, d := range ordered {
		winner[key{d.Ecosystem, d.Name}] = d
	}

	result := make([]models.DependencyRecord, 0, len(winner))
	for _, d := range winner {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Ecosystem != result[j].Ecosystem {
			return result[i].Ecosystem < result[j].Ecosystem
		}
		return result[i].Name < result[j].Name
	})
	return result
}

// complexityStats sorts scores and computes the distribution summary.
func complexityStats(scores []models.ComplexityScore) ([]models.ComplexityScore, models.ComplexitySummary) {
	sorted := append([]models.ComplexityScore(nil), scores...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Path < sorted[j].Path
	})

	summary := models.ComplexitySummary{Files: len(sorted)}
	if len(sorted) == 0 {
		return sorted, summary
	}

	xs := make([]float64, len(sorted))
	for i, s := range sorted {
		xs[i] = float64(s.Score)
		if s.Score > summary.Max {
			summary.Max = s.Score
		}
	}
	sort.Float64s(xs)
	summary.Mean = stat.Mean(xs, nil)
	summary.P50 = stat.Quantile(0.5, stat.Empirical, xs, nil)
	summary.P90 = stat.Quantile(0.9, stat.Empirical, xs, nil)
	return sorted, summary
}

// sortSmells orders findings by severity (high first), then path, then
// start line, then kind for full determinism.
func sortSmells(smells []models.Smell) []models.Smell {
	sorted := append([]models.Smell(nil), smells...)
	sort.Slice(sorted, func(i, j int) bool {
		if w1, w2 := sorted[i].Severity.Weight(), sorted[j].Severity.Weight(); w1 != w2 {
			return w1 > w2
		}
		if sorted[i].Path != sorted[j].Path {
			return sorted[i].Path < sorted[j].Path
		}
		if sorted[i].StartLine != sorted[j].StartLine {
			return sorted[i].StartLine < sorted[j].StartLine
		}
		return sorted[i].Kind < sorted[j].Kind
	})
	return sorted
}

// purposeNames maps conventional top-level directory names to a short
// purpose description.
var purposeNames = map[string]string{
	"src":          "source code",
	"lib":          "source code",
	"app":          "application code",
	"cmd":          "entry points",
	"internal":     "internal packages",
	"pkg":          "library packages",
	"test":         "tests",
	"tests":        "tests",
	"spec":         "tests",
	"docs":         "documentation",
	"doc":          "documentation",
	"examples":     "examples",
	"example":      "examples",
	"scripts":      "scripts",
	"tools":        "tooling",
	"assets":       "static assets",
	"static":       "static assets",
	"public":       "static assets",
	"config":       "configuration",
	"configs":      "configuration",
	"migrations":   "database migrations",
	"benches":      "benchmarks",
	"benchmarks":   "benchmarks",
	"ci":           "continuous integration",
	".github":      "continuous integration",
	"include":      "headers",
	"third_party":  "vendored code",
	"third-party":  "vendored code",
	"fixtures":     "test fixtures",
	"testdata":     "test fixtures",
	"translations": "localization",
	"locales":      "localization",
}

// directorySummaries counts files per top-level directory. Files at the
// root itself group under ".".
func directorySummaries(files []models.FileRecord) []models.DirectorySummary {
	counts := make(map[string]int)
	for _, f := range files {
		top := "."
		if i := strings.IndexByte(f.Path, '/'); i >= 0 {
			top = f.Path[:i]
		}
		counts[top]++
	}

	summaries := make([]models.DirectorySummary, 0, len(counts))
	for dir, n := range counts {
		summaries = append(summaries, models.DirectorySummary{
			Path:    dir,
			Files:   n,
			Purpose: guessPurpose(dir),
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Path < summaries[j].Path })
	return summaries
}

func guessPurpose(dir string) string {
	if dir == "." {
		return "project root"
	}
	if p, ok := purposeNames[strings.ToLower(path.Base(dir))]; ok {
		return p
	}
	return ""
}
