package analyzer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"
	"github.com/loupe-dev/loupe/pkg/config"
	"github.com/loupe-dev/loupe/pkg/lang"
	"github.com/loupe-dev/loupe/pkg/models"
)

var intLiteralRe = regexp.MustCompile(`-?\b\d+\b`)

// DetectSmells runs every smell rule against a profiled file. Findings
// come back unordered; the aggregator owns the report-level sort.
func DetectSmells(path string, language lang.Language, p *FileProfile, th config.ThresholdConfig) []models.Smell {
	if p == nil {
		return nil
	}

	var smells []models.Smell
	smells = append(smells, longFunctions(path, p, th.FunctionLength)...)
	smells = append(smells, deepNesting(path, p, th.NestingDepth)...)
	smells = append(smells, duplicateCode(path, p, th.DuplicateMinLines)...)
	smells = append(smells, magicNumbers(path, language, p, th)...)
	smells = append(smells, longParameterLists(path, p, th.ParameterCount)...)
	return smells
}

// longFunctions flags functions whose line span exceeds the threshold.
// Severity scales with how far past the limit the function runs.
func longFunctions(path string, p *FileProfile, threshold int) []models.Smell {
	var smells []models.Smell
	for _, fn := range p.Functions {
		excess := fn.Lines() - threshold
		if excess <= 0 {
			continue
		}
		severity := models.SeverityHigh
		switch {
		case excess <= 25:
			severity = models.SeverityLow
		case excess <= 100:
			severity = models.SeverityMedium
		}
		smells = append(smells, models.Smell{
			Kind:      models.SmellLongFunction,
			Path:      path,
			StartLine: fn.StartLine,
			EndLine:   fn.EndLine,
			Severity:  severity,
			Message: fmt.Sprintf("function %s spans %d lines (threshold %d)",
				fn.Name, fn.Lines(), threshold),
		})
	}
	return smells
}

// deepNesting flags the file once, at the line where the deepest
// nesting level was first reached.
func deepNesting(path string, p *FileProfile, threshold int) []models.Smell {
	if p.MaxNesting <= threshold {
		return nil
	}
	severity := models.SeverityMedium
	if p.MaxNesting > 8 {
		severity = models.SeverityHigh
	}
	return []models.Smell{{
		Kind:      models.SmellDeepNesting,
		Path:      path,
		StartLine: p.MaxNestingLine,
		EndLine:   p.MaxNestingLine,
		Severity:  severity,
		Message: fmt.Sprintf("nesting depth %d exceeds threshold %d",
			p.MaxNesting, threshold),
	}}
}

// duplicateCode hashes sliding windows of consecutive non-blank code
// lines and reports repeats. A claimed-lines bitmap keeps overlapping
// windows of the same duplicated block from producing a finding per
// offset.
func duplicateCode(path string, p *FileProfile, window int) []models.Smell {
	if window <= 0 {
		return nil
	}

	type codeLine struct {
		text   string
		lineNo int
	}
	var lines []codeLine
	for i, code := range p.CodeLines {
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		lines = append(lines, codeLine{text: trimmed, lineNo: i + 1})
	}
	if len(lines) < 2*window {
		return nil
	}

	firstSeen := make(map[uint64]int) // hash -> window start index
	claimed := roaring.New()
	var smells []models.Smell

	for i := 0; i+window <= len(lines); i++ {
		var h xxhash.Digest
		for j := i; j < i+window; j++ {
			h.WriteString(lines[j].text)
			h.Write([]byte{'\n'})
		}
		sum := h.Sum64()

		orig, seen := firstSeen[sum]
		if !seen {
			firstSeen[sum] = i
			continue
		}

		start := lines[i].lineNo
		end := lines[i+window-1].lineNo
		if claimed.Contains(uint32(start)) {
			continue
		}
		for n := start; n <= end; n++ {
			claimed.Add(uint32(n))
		}
		smells = append(smells, models.Smell{
			Kind:      models.SmellDuplicateCode,
			Path:      path,
			StartLine: start,
			EndLine:   end,
			Severity:  models.SeverityMedium,
			Message: fmt.Sprintf("lines %d-%d duplicate lines %d-%d",
				start, end, lines[orig].lineNo, lines[orig+window-1].lineNo),
		})
	}
	return smells
}

// magicNumbers flags integer literals in branch conditions that are not
// on the allow-list. Only lines carrying a branch keyword are checked,
// so ordinary assignments and constant tables stay quiet.
func magicNumbers(path string, language lang.Language, p *FileProfile, th config.ThresholdConfig) []models.Smell {
	sty, ok := styleFor(language)
	if !ok {
		return nil
	}

	var smells []models.Smell
	for i, code := range p.CodeLines {
		if !hasBranchWord(code, sty) {
			continue
		}
		for _, lit := range intLiteralRe.FindAllString(code, -1) {
			n, err := strconv.Atoi(lit)
			if err != nil || th.AllowsMagic(n) {
				continue
			}
			smells = append(smells, models.Smell{
				Kind:      models.SmellMagicNumber,
				Path:      path,
				StartLine: i + 1,
				EndLine:   i + 1,
				Severity:  models.SeverityLow,
				Message:   fmt.Sprintf("magic number %d in condition", n),
			})
			break // one finding per line is enough
		}
	}
	return smells
}

func hasBranchWord(code string, sty style) bool {
	for _, w := range wordRe.FindAllString(code, -1) {
		if sty.branchWords[w] {
			return true
		}
	}
	return false
}

// longParameterLists flags functions declaring more parameters than the
// threshold.
func longParameterLists(path string, p *FileProfile, threshold int) []models.Smell {
	var smells []models.Smell
	for _, fn := range p.Functions {
		if fn.Params <= threshold {
			continue
		}
		smells = append(smells, models.Smell{
			Kind:      models.SmellLongParameterList,
			Path:      path,
			StartLine: fn.StartLine,
			EndLine:   fn.EndLine,
			Severity:  models.SeverityMedium,
			Message: fmt.Sprintf("function %s takes %d parameters (threshold %d)",
				fn.Name, fn.Params, threshold),
		})
	}
	return smells
}
