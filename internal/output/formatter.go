// Package output renders analysis reports as human-readable text or as
// machine formats (JSON, YAML, TOON). The machine formats serialize the
// report verbatim, so identical reports produce identical bytes.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/loupe-dev/loupe/pkg/models"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/toon-format/toon-go"
	"gopkg.in/yaml.v3"
)

// Format represents an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOON Format = "toon"
)

// ParseFormat converts a string to Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	case "toon":
		return FormatTOON
	default:
		return FormatText
	}
}

// hotspotLimit bounds the complexity table in text output; the machine
// formats always carry the full list.
const hotspotLimit = 10

// Formatter writes reports to stdout or a file.
type Formatter struct {
	format  Format
	writer  io.Writer
	file    *os.File
	colored bool
}

// NewFormatter creates a formatter. A non-empty output path redirects
// to that file and disables color.
func NewFormatter(format Format, output string, colored bool) (*Formatter, error) {
	var writer io.Writer = os.Stdout
	var file *os.File

	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return nil, err
		}
		writer = f
		file = f
		colored = false
	}

	return &Formatter{
		format:  format,
		writer:  writer,
		file:    file,
		colored: colored,
	}, nil
}

// Close closes the formatter's writer if it's a file.
func (f *Formatter) Close() error {
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}

// Writer returns the underlying writer.
func (f *Formatter) Writer() io.Writer {
	return f.writer
}

// Render writes the report in the configured format.
func (f *Formatter) Render(report *models.Report) error {
	switch f.format {
	case FormatJSON:
		enc := json.NewEncoder(f.writer)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatYAML:
		data, err := yaml.Marshal(report)
		if err != nil {
			return err
		}
		_, err = f.writer.Write(data)
		return err
	case FormatTOON:
		data, err := toon.Marshal(report, toon.WithIndent(2))
		if err != nil {
			return err
		}
		if _, err := f.writer.Write([]byte(data)); err != nil {
			return err
		}
		_, err = fmt.Fprintln(f.writer)
		return err
	default:
		return f.renderText(report)
	}
}

func (f *Formatter) renderText(report *models.Report) error {
	f.title(fmt.Sprintf("Project Analysis: %s", report.Root))
	fmt.Fprintf(f.writer, "%d files, %d lines\n\n", report.TotalFiles, report.TotalLines)

	if len(report.Languages) > 0 {
		rows := make([][]string, 0, len(report.Languages))
		for _, s := range report.Languages {
			rows = append(rows, []string{
				s.Language.Display(),
				fmt.Sprintf("%d", s.Files),
				fmt.Sprintf("%d", s.Lines),
				fmt.Sprintf("%.1f%%", s.Percent),
			})
		}
		f.table("Languages", []string{"Language", "Files", "Lines", "Share"}, rows)
	}

	if len(report.Directories) > 0 {
		rows := make([][]string, 0, len(report.Directories))
		for _, d := range report.Directories {
			rows = append(rows, []string{d.Path, fmt.Sprintf("%d", d.Files), d.Purpose})
		}
		f.table("Directories", []string{"Path", "Files", "Purpose"}, rows)
	}

	if len(report.Dependencies) > 0 {
		rows := make([][]string, 0, len(report.Dependencies))
		for _, d := range report.Dependencies {
			rows = append(rows, []string{
				string(d.Ecosystem), d.Name, d.Version, string(d.Scope), d.Manifest,
			})
		}
		f.table(fmt.Sprintf("Dependencies (%d)", len(report.Dependencies)),
			[]string{"Ecosystem", "Name", "Version", "Scope", "Manifest"}, rows)
	}

	if report.ComplexitySummary.Files > 0 {
		f.heading("Complexity")
		s := report.ComplexitySummary
		fmt.Fprintf(f.writer, "%d scored files  mean %.1f  p50 %.1f  p90 %.1f  max %d\n\n",
			s.Files, s.Mean, s.P50, s.P90, s.Max)

		limit := len(report.Complexity)
		if limit > hotspotLimit {
			limit = hotspotLimit
		}
		rows := make([][]string, 0, limit)
		for _, c := range report.Complexity[:limit] {
			rows = append(rows, []string{
				c.Path,
				fmt.Sprintf("%d", c.Score),
				fmt.Sprintf("%d", c.Branches),
				fmt.Sprintf("%d", c.MaxNesting),
				fmt.Sprintf("%d", c.LongestFunction),
			})
		}
		f.table("Hotspots", []string{"Path", "Score", "Branches", "Nesting", "Longest Fn"}, rows)
	}

	if len(report.Smells) > 0 {
		rows := make([][]string, 0, len(report.Smells))
		for _, s := range report.Smells {
			rows = append(rows, []string{
				f.severity(s.Severity),
				string(s.Kind),
				fmt.Sprintf("%s:%d-%d", s.Path, s.StartLine, s.EndLine),
				s.Message,
			})
		}
		f.table(fmt.Sprintf("Smells (%d)", len(report.Smells)),
			[]string{"Severity", "Kind", "Location", "Message"}, rows)
	}

	if len(report.Warnings) > 0 {
		f.heading(fmt.Sprintf("Warnings (%d)", len(report.Warnings)))
		for _, w := range report.Warnings {
			if w.Path != "" {
				fmt.Fprintf(f.writer, "  %s: %s\n", w.Path, w.Message)
			} else {
				fmt.Fprintf(f.writer, "  %s\n", w.Message)
			}
		}
		fmt.Fprintln(f.writer)
	}

	return nil
}

func (f *Formatter) title(s string) {
	if f.colored {
		color.New(color.Bold, color.FgCyan).Fprintln(f.writer, s)
	} else {
		fmt.Fprintln(f.writer, s)
	}
	fmt.Fprintln(f.writer, strings.Repeat("=", len(s)))
}

func (f *Formatter) heading(s string) {
	if f.colored {
		color.New(color.Bold).Fprintln(f.writer, s)
	} else {
		fmt.Fprintln(f.writer, s)
	}
	fmt.Fprintln(f.writer, strings.Repeat("-", len(s)))
}

func (f *Formatter) severity(s models.Severity) string {
	if !f.colored {
		return string(s)
	}
	switch s {
	case models.SeverityHigh:
		return color.RedString(string(s))
	case models.SeverityMedium:
		return color.YellowString(string(s))
	default:
		return color.GreenString(string(s))
	}
}

func (f *Formatter) table(title string, headers []string, rows [][]string) {
	f.heading(title)

	table := tablewriter.NewTable(f.writer,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Right:  tw.Off,
				Top:    tw.Off,
				Bottom: tw.Off,
			},
			Settings: tw.Settings{
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		}),
	)

	table.Header(headers)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
	fmt.Fprintln(f.writer)
}
