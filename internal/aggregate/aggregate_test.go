package aggregate

import (
	"testing"

	"github.com/loupe-dev/loupe/pkg/lang"
	"github.com/loupe-dev/loupe/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEmpty(t *testing.T) {
	report := Build(Input{Root: "empty"})

	assert.Equal(t, "empty", report.Root)
	assert.Zero(t, report.TotalFiles)
	assert.Zero(t, report.TotalLines)
	assert.Empty(t, report.Languages)
	assert.Empty(t, report.Dependencies)
	assert.Zero(t, report.ComplexitySummary.Files)
}

func TestBuildTotalsAndLanguages(t *testing.T) {
	report := Build(Input{
		Root: "proj",
		Files: []models.FileRecord{
			{Path: "a.go", Language: lang.Go, Lines: 300},
			{Path: "b.go", Language: lang.Go, Lines: 100},
			{Path: "c.py", Language: lang.Python, Lines: 400},
			{Path: "d.rs", Language: lang.Rust, Lines: 200},
			{Path: "img.png", Language: lang.Unknown, Binary: true},
		},
	})

	assert.Equal(t, 5, report.TotalFiles)
	assert.Equal(t, 1000, report.TotalLines)

	// Sorted by lines descending; Unknown carries no stat.
	require.Len(t, report.Languages, 3)
	assert.Equal(t, lang.Python, report.Languages[0].Language)
	assert.Equal(t, lang.Go, report.Languages[1].Language)
	assert.Equal(t, 2, report.Languages[1].Files)
	assert.Equal(t, 400, report.Languages[1].Lines)
	assert.Equal(t, lang.Rust, report.Languages[2].Language)

	assert.InDelta(t, 40.0, report.Languages[0].Percent, 0.001)
	assert.InDelta(t, 40.0, report.Languages[1].Percent, 0.001)
	assert.InDelta(t, 20.0, report.Languages[2].Percent, 0.001)
}

func TestBuildLanguageTieBreaksByName(t *testing.T) {
	report := Build(Input{
		Files: []models.FileRecord{
			{Path: "a.rs", Language: lang.Rust, Lines: 100},
			{Path: "b.go", Language: lang.Go, Lines: 100},
		},
	})

	require.Len(t, report.Languages, 2)
	assert.Equal(t, lang.Go, report.Languages[0].Language)
	assert.Equal(t, lang.Rust, report.Languages[1].Language)
}

func TestBuildDependencyLastManifestWins(t *testing.T) {
	report := Build(Input{
		Dependencies: []models.DependencyRecord{
			{Manifest: "sub/package.json", Ecosystem: models.EcosystemNPM, Name: "react", Version: "^18.0.0", Scope: models.ScopeRuntime},
			{Manifest: "package.json", Ecosystem: models.EcosystemNPM, Name: "react", Version: "^17.0.0", Scope: models.ScopeRuntime},
			{Manifest: "package.json", Ecosystem: models.EcosystemNPM, Name: "lodash", Version: "4.17.21", Scope: models.ScopeRuntime},
		},
	})

	require.Len(t, report.Dependencies, 2)
	react := report.Dependencies[1]
	assert.Equal(t, "react", react.Name)
	assert.Equal(t, "^18.0.0", react.Version, "lexicographically later manifest wins")
	assert.Equal(t, "sub/package.json", react.Manifest)
}

func TestBuildDependencyOrdering(t *testing.T) {
	report := Build(Input{
		Dependencies: []models.DependencyRecord{
			{Manifest: "go.mod", Ecosystem: models.EcosystemGo, Name: "z/dep"},
			{Manifest: "Cargo.toml", Ecosystem: models.EcosystemCargo, Name: "serde"},
			{Manifest: "go.mod", Ecosystem: models.EcosystemGo, Name: "a/dep"},
			{Manifest: "Cargo.toml", Ecosystem: models.EcosystemCargo, Name: "anyhow"},
		},
	})

	require.Len(t, report.Dependencies, 4)
	var got []string
	for _, d := range report.Dependencies {
		got = append(got, string(d.Ecosystem)+"/"+d.Name)
	}
	assert.Equal(t, []string{"cargo/anyhow", "cargo/serde", "gomod/a/dep", "gomod/z/dep"}, got)
}

func TestBuildComplexitySummary(t *testing.T) {
	report := Build(Input{
		Scores: []models.ComplexityScore{
			{Path: "a.go", Score: 10},
			{Path: "b.go", Score: 20},
			{Path: "c.go", Score: 30},
			{Path: "d.go", Score: 40},
		},
	})

	summary := report.ComplexitySummary
	assert.Equal(t, 4, summary.Files)
	assert.InDelta(t, 25.0, summary.Mean, 0.001)
	assert.Equal(t, 40, summary.Max)
	assert.GreaterOrEqual(t, summary.P90, summary.P50)

	// Scores sorted descending, path ascending on ties.
	assert.Equal(t, "d.go", report.Complexity[0].Path)
	assert.Equal(t, "a.go", report.Complexity[3].Path)
}

func TestBuildComplexityTieBreaksByPath(t *testing.T) {
	report := Build(Input{
		Scores: []models.ComplexityScore{
			{Path: "z.go", Score: 10},
			{Path: "a.go", Score: 10},
		},
	})

	assert.Equal(t, "a.go", report.Complexity[0].Path)
	assert.Equal(t, "z.go", report.Complexity[1].Path)
}

func TestBuildSmellOrdering(t *testing.T) {
	report := Build(Input{
		Smells: []models.Smell{
			{Kind: models.SmellMagicNumber, Path: "a.go", StartLine: 5, Severity: models.SeverityLow},
			{Kind: models.SmellLongFunction, Path: "b.go", StartLine: 1, Severity: models.SeverityHigh},
			{Kind: models.SmellDeepNesting, Path: "a.go", StartLine: 9, Severity: models.SeverityMedium},
			{Kind: models.SmellLongFunction, Path: "a.go", StartLine: 2, Severity: models.SeverityMedium},
		},
	})

	require.Len(t, report.Smells, 4)
	assert.Equal(t, models.SeverityHigh, report.Smells[0].Severity)
	assert.Equal(t, "a.go", report.Smells[1].Path)
	assert.Equal(t, 2, report.Smells[1].StartLine)
	assert.Equal(t, 9, report.Smells[2].StartLine)
	assert.Equal(t, models.SeverityLow, report.Smells[3].Severity)
}

func TestBuildDirectories(t *testing.T) {
	report := Build(Input{
		Files: []models.FileRecord{
			{Path: "src/main.rs", Language: lang.Rust, Lines: 10},
			{Path: "src/lib.rs", Language: lang.Rust, Lines: 10},
			{Path: "tests/basic.rs", Language: lang.Rust, Lines: 10},
			{Path: "Cargo.toml", Language: lang.Unknown, Lines: 10},
		},
	})

	require.Len(t, report.Directories, 3)
	assert.Equal(t, ".", report.Directories[0].Path)
	assert.Equal(t, "project root", report.Directories[0].Purpose)
	assert.Equal(t, "src", report.Directories[1].Path)
	assert.Equal(t, 2, report.Directories[1].Files)
	assert.Equal(t, "source code", report.Directories[1].Purpose)
	assert.Equal(t, "tests", report.Directories[2].Path)
	assert.Equal(t, "tests", report.Directories[2].Purpose)
}

func TestBuildWarningsSorted(t *testing.T) {
	report := Build(Input{
		Warnings: []models.Warning{
			{Path: "b.go", Message: "two"},
			{Path: "a.go", Message: "zzz"},
			{Path: "a.go", Message: "aaa"},
		},
	})

	require.Len(t, report.Warnings, 3)
	assert.Equal(t, models.Warning{Path: "a.go", Message: "aaa"}, report.Warnings[0])
	assert.Equal(t, models.Warning{Path: "a.go", Message: "zzz"}, report.Warnings[1])
	assert.Equal(t, models.Warning{Path: "b.go", Message: "two"}, report.Warnings[2])
}

func TestBuildDeterministic(t *testing.T) {
	in := Input{
		Root: "p",
		Files: []models.FileRecord{
			{Path: "z.go", Language: lang.Go, Lines: 5},
			{Path: "a.py", Language: lang.Python, Lines: 7},
		},
		Dependencies: []models.DependencyRecord{
			{Manifest: "go.mod", Ecosystem: models.EcosystemGo, Name: "x"},
		},
		Scores: []models.ComplexityScore{{Path: "z.go", Score: 3}},
	}

	reversed := Input{
		Root:         in.Root,
		Files:        []models.FileRecord{in.Files[1], in.Files[0]},
		Dependencies: in.Dependencies,
		Scores:       in.Scores,
	}

	assert.Equal(t, Build(in), Build(reversed), "input order must not affect the report")
}
