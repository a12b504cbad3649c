// Package models defines the immutable value types that make up an
// analysis report. A report is produced fresh per run and never mutated
// after construction; it deliberately carries no timestamps so that two
// runs over an unchanged tree serialize byte-identically.
package models

import "github.com/loupe-dev/loupe/pkg/lang"

// FileRecord describes one walked file.
type FileRecord struct {
	Path     string        `json:"path" yaml:"path"` // slash-separated, relative to root
	Language lang.Language `json:"language" yaml:"language"`
	Lines    int           `json:"lines" yaml:"lines"`
	Size     int64         `json:"size" yaml:"size"`
	Binary   bool          `json:"binary" yaml:"binary"`
	Symlink  bool          `json:"symlink,omitempty" yaml:"symlink,omitempty"`
}

// LanguageStat aggregates size statistics for one language.
type LanguageStat struct {
	Language lang.Language `json:"language" yaml:"language"`
	Files    int           `json:"files" yaml:"files"`
	Lines    int           `json:"lines" yaml:"lines"`
	Percent  float64       `json:"percent" yaml:"percent"`
}

// Ecosystem tags the packaging ecosystem a dependency was declared in.
type Ecosystem string

const (
	EcosystemCargo Ecosystem = "cargo"
	EcosystemNPM   Ecosystem = "npm"
	EcosystemPyPI  Ecosystem = "pypi"
	EcosystemGo    Ecosystem = "gomod"
)

// DependencyScope distinguishes runtime from dev/optional declarations.
type DependencyScope string

const (
	ScopeRuntime  DependencyScope = "runtime"
	ScopeDev      DependencyScope = "dev"
	ScopeOptional DependencyScope = "optional"
)

// DependencyRecord is one declared dependency. Uniqueness key is
// (Ecosystem, Name); the last manifest in path order wins on duplicates.
type DependencyRecord struct {
	Manifest  string          `json:"manifest" yaml:"manifest"`
	Ecosystem Ecosystem       `json:"ecosystem" yaml:"ecosystem"`
	Name      string          `json:"name" yaml:"name"`
	Version   string          `json:"version" yaml:"version"` // raw constraint, unparsed
	Scope     DependencyScope `json:"scope" yaml:"scope"`
}

// ComplexityScore is the lexical complexity of one source file.
// Score = branches + 2*max nesting + max(0, longest function - threshold);
// it is a pure function of file content and language.
type ComplexityScore struct {
	Path            string `json:"path" yaml:"path"`
	Score           int    `json:"score" yaml:"score"`
	Branches        int    `json:"branches" yaml:"branches"`
	MaxNesting      int    `json:"max_nesting" yaml:"max_nesting"`
	LongestFunction int    `json:"longest_function" yaml:"longest_function"` // line span
}

// ComplexitySummary carries project-wide distribution figures.
type ComplexitySummary struct {
	Files int     `json:"files" yaml:"files"`
	Mean  float64 `json:"mean" yaml:"mean"`
	P50   float64 `json:"p50" yaml:"p50"`
	P90   float64 `json:"p90" yaml:"p90"`
	Max   int     `json:"max" yaml:"max"`
}

// SmellKind enumerates the heuristic smell rules.
type SmellKind string

const (
	SmellLongFunction      SmellKind = "long_function"
	SmellDeepNesting       SmellKind = "deep_nesting"
	SmellDuplicateCode     SmellKind = "duplicate_code"
	SmellMagicNumber       SmellKind = "magic_number"
	SmellLongParameterList SmellKind = "long_parameter_list"
)

// Severity grades a smell finding.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Weight returns a numeric weight for sorting (higher = more severe).
func (s Severity) Weight() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Smell is one heuristic finding. Several smells may reference one file.
type Smell struct {
	Kind      SmellKind `json:"kind" yaml:"kind"`
	Path      string    `json:"path" yaml:"path"`
	StartLine int       `json:"start_line" yaml:"start_line"`
	EndLine   int       `json:"end_line" yaml:"end_line"`
	Severity  Severity  `json:"severity" yaml:"severity"`
	Message   string    `json:"message" yaml:"message"`
}

// DirectorySummary describes one top-level directory of the project.
type DirectorySummary struct {
	Path    string `json:"path" yaml:"path"`
	Files   int    `json:"files" yaml:"files"`
	Purpose string `json:"purpose" yaml:"purpose"`
}

// Warning records a non-fatal condition encountered during a run.
type Warning struct {
	Path    string `json:"path" yaml:"path"`
	Message string `json:"message" yaml:"message"`
}

// Report is the single externally visible artifact of an analysis run.
type Report struct {
	Root              string             `json:"root" yaml:"root"`
	TotalFiles        int                `json:"total_files" yaml:"total_files"`
	TotalLines        int                `json:"total_lines" yaml:"total_lines"`
	Languages         []LanguageStat     `json:"languages" yaml:"languages"`
	Dependencies      []DependencyRecord `json:"dependencies" yaml:"dependencies"`
	Complexity        []ComplexityScore  `json:"complexity" yaml:"complexity"`
	ComplexitySummary ComplexitySummary  `json:"complexity_summary" yaml:"complexity_summary"`
	Smells            []Smell            `json:"smells" yaml:"smells"`
	Directories       []DirectorySummary `json:"directories" yaml:"directories"`
	Files             []FileRecord       `json:"files" yaml:"files"`
	Warnings          []Warning          `json:"warnings" yaml:"warnings"`
}
