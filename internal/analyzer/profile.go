// Package analyzer computes lexical complexity scores and heuristic
// code smells. Everything here works on token and line heuristics;
// there is deliberately no AST. Profiles are pure functions of file
// content and language, so results are stable across runs and worker
// schedules.
package analyzer

import (
	"regexp"
	"strings"

	"github.com/loupe-dev/loupe/pkg/lang"
)

// FunctionSpan approximates one function found by lexical scanning.
type FunctionSpan struct {
	Name      string
	StartLine int // 1-based, inclusive
	EndLine   int // 1-based, inclusive
	Params    int
}

// Lines returns the line span of the function.
func (f FunctionSpan) Lines() int {
	return f.EndLine - f.StartLine + 1
}

// FileProfile holds the lexical signals extracted from one file.
type FileProfile struct {
	Branches       int
	MaxNesting     int
	MaxNestingLine int // 1-based line where max nesting was first reached
	Functions      []FunctionSpan
	CodeLines      []string // comment- and string-stripped, parallel to raw lines
}

// LongestFunction returns the largest function line span, or 0.
func (p *FileProfile) LongestFunction() int {
	longest := 0
	for _, fn := range p.Functions {
		if fn.Lines() > longest {
			longest = fn.Lines()
		}
	}
	return longest
}

// style describes how a language is scanned lexically.
type style struct {
	indentBlocks bool // python/ruby: nesting from indentation
	lineComment  string
	hashComment  bool // '#' starts a comment
	blockOpen    string
	blockClose   string
	branchWords  map[string]bool
	wordOps      bool // count "and"/"or" alongside &&/||
	tickLifetime bool // rust: a lone ' is a lifetime, not a string opener
	funcRe       *regexp.Regexp
	arrowRe      *regexp.Regexp // js/ts arrow assignments, may be nil
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

var (
	goFuncRe     = regexp.MustCompile(`^func(?:\s*\([^)]*\))?\s+[\w]+(?:\[[^\]]*\])?`)
	rustFuncRe   = regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?(?:unsafe\s+)?fn\s+\w+(?:<[^>]*>)?`)
	pythonFuncRe = regexp.MustCompile(`^\s*(?:async\s+)?def\s+\w+`)
	jsFuncRe     = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*\w*`)
	jsArrowRe    = regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+(\w+)\s*(?::[^=]+)?=\s*(?:async\s*)?`)
	cFuncRe      = regexp.MustCompile(`^[A-Za-z_][\w\s\*&<>:,~\[\]]*?[\w~]+\s*$`)
	javaFuncRe   = regexp.MustCompile(`^\s*(?:(?:public|private|protected|static|final|abstract|synchronized|override|internal|virtual|sealed|async)\s+)+[\w<>\[\],\s]*?\w+\s*$`)
	rubyFuncRe   = regexp.MustCompile(`^\s*def\s+[\w.?!]+`)
	bashFuncRe   = regexp.MustCompile(`^\s*(?:function\s+)?\w+\s*$`)
	phpFuncRe    = regexp.MustCompile(`^\s*(?:(?:public|private|protected|static|abstract|final)\s+)*function\s+&?\w+`)
	nameRe       = regexp.MustCompile(`[\w.?!~]+$`)
	wordRe       = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
)

var cBranches = wordSet("if", "for", "while", "switch", "case", "catch")

func styleFor(language lang.Language) (style, bool) {
	switch language {
	case lang.Go:
		return style{
			lineComment: "//", blockOpen: "/*", blockClose: "*/",
			branchWords: wordSet("if", "for", "switch", "case", "select"),
			funcRe:      goFuncRe,
		}, true
	case lang.Rust:
		return style{
			lineComment: "//", blockOpen: "/*", blockClose: "*/",
			branchWords:  wordSet("if", "for", "while", "match", "loop"),
			tickLifetime: true,
			funcRe:       rustFuncRe,
		}, true
	case lang.Python:
		return style{
			indentBlocks: true, hashComment: true,
			branchWords: wordSet("if", "elif", "for", "while", "except", "case"),
			wordOps:     true,
			funcRe:      pythonFuncRe,
		}, true
	case lang.TypeScript, lang.TSX, lang.JavaScript:
		return style{
			lineComment: "//", blockOpen: "/*", blockClose: "*/",
			branchWords: wordSet("if", "for", "while", "switch", "case", "catch"),
			funcRe:      jsFuncRe,
			arrowRe:     jsArrowRe,
		}, true
	case lang.Java, lang.CSharp:
		return style{
			lineComment: "//", blockOpen: "/*", blockClose: "*/",
			branchWords: cBranches,
			funcRe:      javaFuncRe,
		}, true
	case lang.C, lang.CPP:
		return style{
			lineComment: "//", blockOpen: "/*", blockClose: "*/",
			branchWords: cBranches,
			funcRe:      cFuncRe,
		}, true
	case lang.Ruby:
		return style{
			indentBlocks: true, hashComment: true,
			branchWords: wordSet("if", "elsif", "unless", "while", "until", "for", "case", "when", "rescue"),
			wordOps:     true,
			funcRe:      rubyFuncRe,
		}, true
	case lang.PHP:
		return style{
			lineComment: "//", hashComment: true, blockOpen: "/*", blockClose: "*/",
			branchWords: wordSet("if", "elseif", "for", "foreach", "while", "switch", "case", "catch"),
			funcRe:      phpFuncRe,
		}, true
	case lang.Bash:
		return style{
			hashComment: true,
			branchWords: wordSet("if", "elif", "for", "while", "until", "case"),
			funcRe:      bashFuncRe,
		}, true
	default:
		return style{}, false
	}
}

// stripState carries multi-line comment state between lines.
type stripState struct {
	inBlock bool
}

// stripLine removes string literals and comments from one line, leaving
// code text only. Strings are assumed to close on the same line; an
// unterminated literal drops the rest of the line.
func stripLine(line string, sty style, st *stripState) string {
	var b strings.Builder
	i := 0
	for i < len(line) {
		if st.inBlock {
			if j := strings.Index(line[i:], sty.blockClose); j >= 0 {
				i += j + len(sty.blockClose)
				st.inBlock = false
				continue
			}
			return b.String()
		}

		c := line[i]

		if sty.lineComment != "" && strings.HasPrefix(line[i:], sty.lineComment) {
			return b.String()
		}
		if sty.hashComment && c == '#' {
			return b.String()
		}
		if sty.blockOpen != "" && strings.HasPrefix(line[i:], sty.blockOpen) {
			st.inBlock = true
			i += len(sty.blockOpen)
			continue
		}

		if c == '\'' && sty.tickLifetime {
			switch {
			case i+1 < len(line) && line[i+1] == '\\':
				// Escaped char literal, generic quote handling applies.
			case i+2 < len(line) && line[i+2] == '\'':
				// Char literal like 'x'.
				b.WriteByte(' ')
				i += 3
				continue
			default:
				// Lifetime tick: drop the quote, keep the name.
				i++
				continue
			}
		}

		if c == '"' || c == '\'' || c == '`' {
			quote := c
			i++
			for i < len(line) {
				if line[i] == '\\' {
					i += 2
					continue
				}
				if line[i] == quote {
					i++
					break
				}
				i++
			}
			b.WriteByte(' ')
			continue
		}

		b.WriteByte(c)
		i++
	}
	return b.String()
}

// Profile extracts lexical signals from file content. Unsupported
// languages return nil.
func Profile(content []byte, language lang.Language) *FileProfile {
	sty, ok := styleFor(language)
	if !ok {
		return nil
	}

	rawLines := strings.Split(string(content), "\n")
	p := &FileProfile{CodeLines: make([]string, len(rawLines))}

	var st stripState
	for i, raw := range rawLines {
		p.CodeLines[i] = stripLine(raw, sty, &st)
	}

	countBranches(p, sty)
	if sty.indentBlocks {
		profileIndent(p, sty)
	} else {
		profileBraces(p, sty)
	}
	return p
}

// countBranches counts branching keywords and logical operators.
func countBranches(p *FileProfile, sty style) {
	for _, code := range p.CodeLines {
		for _, w := range wordRe.FindAllString(code, -1) {
			if sty.branchWords[w] {
				p.Branches++
			} else if sty.wordOps && (w == "and" || w == "or") {
				p.Branches++
			}
		}
		p.Branches += strings.Count(code, "&&")
		p.Branches += strings.Count(code, "||")
	}
}

// openFunc tracks a function whose closing brace has not been seen yet.
type openFunc struct {
	span      FunctionSpan
	baseDepth int
	opened    bool
}

// pendingSig accumulates a parameter list that spans multiple lines.
type pendingSig struct {
	active bool
	fnIdx  int
	depth  int
	angle  int // generic angle-bracket nesting, shields commas only
	params int
	seg    bool // current segment has non-space content
}

// profileBraces walks brace-delimited code tracking nesting depth and
// function spans.
func profileBraces(p *FileProfile, sty style) {
	depth := 0
	var stack []openFunc
	var sig pendingSig

	for i, code := range p.CodeLines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(code)

		if !sig.active && trimmed != "" {
			if name, parenIdx, ok := matchFuncStart(code, sty, depth); ok {
				stack = append(stack, openFunc{
					span:      FunctionSpan{Name: name, StartLine: lineNo},
					baseDepth: depth,
				})
				sig = pendingSig{active: true, fnIdx: len(stack) - 1}
				consumeSignature(&sig, code[parenIdx:], &stack[len(stack)-1].span)
			}
		} else if sig.active {
			if sig.fnIdx < len(stack) {
				consumeSignature(&sig, code, &stack[sig.fnIdx].span)
			} else {
				sig = pendingSig{}
			}
		}

		for _, c := range code {
			switch c {
			case '{':
				depth++
				if depth > p.MaxNesting {
					p.MaxNesting = depth
					p.MaxNestingLine = lineNo
				}
				if len(stack) > 0 && !stack[len(stack)-1].opened {
					stack[len(stack)-1].opened = true
				}
			case '}':
				if depth > 0 {
					depth--
				}
				for len(stack) > 0 {
					top := &stack[len(stack)-1]
					if top.opened && depth <= top.baseDepth {
						top.span.EndLine = lineNo
						p.Functions = append(p.Functions, top.span)
						stack = stack[:len(stack)-1]
						continue
					}
					break
				}
				// A signature left open by unbalanced tokens dies with
				// its function.
				if sig.active && sig.fnIdx >= len(stack) {
					sig = pendingSig{}
				}
			}
		}
	}

	// Unterminated functions run to EOF.
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		top.span.EndLine = len(p.CodeLines)
		p.Functions = append(p.Functions, top.span)
		stack = stack[:len(stack)-1]
	}
}

// profileIndent walks indentation-delimited code (python, ruby).
func profileIndent(p *FileProfile, sty style) {
	type indentFunc struct {
		span   FunctionSpan
		indent int
	}

	var indents []int // indentation stack
	var funcs []indentFunc
	var sig pendingSig
	lastCodeLine := 0

	for i, code := range p.CodeLines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		indent := indentWidth(code)

		// Maintain the indentation stack for nesting depth.
		for len(indents) > 0 && indent < indents[len(indents)-1] {
			indents = indents[:len(indents)-1]
		}
		if len(indents) == 0 || indent > indents[len(indents)-1] {
			indents = append(indents, indent)
		}
		depth := len(indents) - 1
		if depth > p.MaxNesting {
			p.MaxNesting = depth
			p.MaxNestingLine = lineNo
		}

		// Close functions whose body has ended.
		for len(funcs) > 0 && indent <= funcs[len(funcs)-1].indent && lineNo > funcs[len(funcs)-1].span.StartLine {
			top := funcs[len(funcs)-1]
			top.span.EndLine = lastCodeLine
			p.Functions = append(p.Functions, top.span)
			funcs = funcs[:len(funcs)-1]
		}
		if sig.active && sig.fnIdx >= len(funcs) {
			sig = pendingSig{}
		}

		if sig.active {
			consumeSignature(&sig, code, &funcs[sig.fnIdx].span)
		} else if name, parenIdx, ok := matchFuncStart(code, sty, depth); ok {
			funcs = append(funcs, indentFunc{
				span:   FunctionSpan{Name: name, StartLine: lineNo},
				indent: indent,
			})
			sig = pendingSig{active: true, fnIdx: len(funcs) - 1}
			if parenIdx >= 0 && parenIdx < len(code) {
				consumeSignature(&sig, code[parenIdx:], &funcs[len(funcs)-1].span)
			} else {
				// Parameterless ruby def with no parens.
				sig = pendingSig{}
			}
		}

		lastCodeLine = lineNo
	}

	for len(funcs) > 0 {
		top := funcs[len(funcs)-1]
		top.span.EndLine = lastCodeLine
		p.Functions = append(p.Functions, top.span)
		funcs = funcs[:len(funcs)-1]
	}
}

// indentWidth measures leading whitespace, counting tabs as 4 columns.
func indentWidth(line string) int {
	w := 0
	for _, c := range line {
		switch c {
		case ' ':
			w++
		case '\t':
			w += 4
		default:
			return w
		}
	}
	return w
}

// matchFuncStart reports whether a stripped code line begins a function
// and where its parameter list opens. Returns parenIdx -1 when the
// language has optional parameter parens (ruby).
func matchFuncStart(code string, sty style, depth int) (name string, parenIdx int, ok bool) {
	paren := strings.IndexByte(code, '(')

	if sty.funcRe == goFuncRe || sty.funcRe == rustFuncRe || sty.funcRe == pythonFuncRe ||
		sty.funcRe == jsFuncRe || sty.funcRe == phpFuncRe {
		if loc := sty.funcRe.FindStringIndex(code); loc != nil {
			head := code[loc[0]:loc[1]]
			p := strings.IndexByte(code[loc[1]:], '(')
			if p < 0 {
				return "", -1, false
			}
			return lastWord(head), loc[1] + p, true
		}
		if sty.arrowRe != nil {
			if loc := sty.arrowRe.FindStringSubmatchIndex(code); loc != nil {
				if loc[1] < len(code) && code[loc[1]] == '(' && strings.Contains(code, "=>") {
					return code[loc[2]:loc[3]], loc[1], true
				}
			}
		}
		return "", -1, false
	}

	if sty.funcRe == rubyFuncRe {
		if loc := sty.funcRe.FindStringIndex(code); loc != nil {
			return lastWord(code[loc[0]:loc[1]]), paren, true
		}
		return "", -1, false
	}

	// Heuristic C-family/bash matching: a signature line is "head(args..."
	// where the head matches the language pattern and the line does not
	// end in a statement terminator.
	if paren <= 0 || depth > 1 || strings.HasSuffix(strings.TrimSpace(code), ";") {
		return "", -1, false
	}
	head := code[:paren]
	if !sty.funcRe.MatchString(head) {
		return "", -1, false
	}
	if w := lastWord(head); w != "" && !cBranches[w] && w != "return" {
		return w, paren, true
	}
	return "", -1, false
}

func lastWord(s string) string {
	return nameRe.FindString(strings.TrimSpace(s))
}

// consumeSignature counts comma-separated segments of a parameter list
// that may span several lines. Segments are only counted when they hold
// content, so trailing commas in multi-line signatures don't inflate
// the count. When the closing paren is found, the parameter count is
// written to the span and the pending state cleared.
//
// Angle brackets shield generic-argument commas but never contribute to
// paren depth: tokens like `chan<-` and `->` are unbalanced and would
// otherwise keep the signature open past its closing paren.
func consumeSignature(sig *pendingSig, code string, span *FunctionSpan) {
	for i := 0; i < len(code); i++ {
		switch c := code[i]; c {
		case '(', '[':
			sig.depth++
		case ')':
			sig.depth--
			if sig.depth <= 0 {
				if sig.seg {
					sig.params++
				}
				span.Params = sig.params
				*sig = pendingSig{}
				return
			}
		case ']':
			sig.depth--
			if sig.depth <= 0 {
				*sig = pendingSig{}
				return
			}
		case '<':
			if i+1 < len(code) && code[i+1] == '-' {
				continue // chan<- send direction, not a generic open
			}
			sig.angle++
		case '>':
			if sig.angle > 0 {
				sig.angle--
			}
		case ',':
			if sig.depth == 1 && sig.angle == 0 {
				if sig.seg {
					sig.params++
				}
				sig.seg = false
			}
		case ' ', '\t':
		default:
			if sig.depth >= 1 {
				sig.seg = true
			}
		}
	}
}
