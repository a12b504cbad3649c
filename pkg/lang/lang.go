// Package lang maps files to language identities and counts lines.
package lang

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Language identifies a supported programming language.
type Language string

const (
	Go         Language = "go"
	Rust       Language = "rust"
	Python     Language = "python"
	TypeScript Language = "typescript"
	TSX        Language = "tsx"
	JavaScript Language = "javascript"
	Java       Language = "java"
	C          Language = "c"
	CPP        Language = "cpp"
	CSharp     Language = "csharp"
	Ruby       Language = "ruby"
	PHP        Language = "php"
	Bash       Language = "bash"
	Unknown    Language = "unknown"
)

// String implements fmt.Stringer, which toon serialization requires on
// custom string types.
func (l Language) String() string { return string(l) }

// Display returns the human-facing language name.
func (l Language) Display() string {
	switch l {
	case Go:
		return "Go"
	case Rust:
		return "Rust"
	case Python:
		return "Python"
	case TypeScript:
		return "TypeScript"
	case TSX:
		return "TSX"
	case JavaScript:
		return "JavaScript"
	case Java:
		return "Java"
	case C:
		return "C"
	case CPP:
		return "C++"
	case CSharp:
		return "C#"
	case Ruby:
		return "Ruby"
	case PHP:
		return "PHP"
	case Bash:
		return "Shell"
	default:
		return "Unknown"
	}
}

// extensions is the closed classification table. Unrecognized extensions
// fall through to the shebang check, then to Unknown.
var extensions = map[string]Language{
	".go":   Go,
	".rs":   Rust,
	".py":   Python,
	".pyw":  Python,
	".pyi":  Python,
	".ts":   TypeScript,
	".tsx":  TSX,
	".js":   JavaScript,
	".mjs":  JavaScript,
	".cjs":  JavaScript,
	".jsx":  TSX,
	".java": Java,
	".c":    C,
	".h":    C,
	".cpp":  CPP,
	".cc":   CPP,
	".cxx":  CPP,
	".hpp":  CPP,
	".hxx":  CPP,
	".cs":   CSharp,
	".rb":   Ruby,
	".php":  PHP,
	".sh":   Bash,
	".bash": Bash,
}

// shebangs maps interpreter base names to languages.
var shebangs = map[string]Language{
	"sh":      Bash,
	"bash":    Bash,
	"zsh":     Bash,
	"python":  Python,
	"python2": Python,
	"python3": Python,
	"node":    JavaScript,
	"ruby":    Ruby,
	"php":     PHP,
}

// DetectByExtension classifies a path by its extension alone.
func DetectByExtension(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	if l, ok := extensions[ext]; ok {
		return l
	}
	return Unknown
}

// Detect classifies a file by extension, falling back to the shebang line
// for extensionless scripts. Content may be nil when unavailable.
func Detect(path string, content []byte) Language {
	if l := DetectByExtension(path); l != Unknown {
		return l
	}
	return detectShebang(content)
}

// detectShebang resolves "#!/usr/bin/env python3" style interpreter lines.
func detectShebang(content []byte) Language {
	if !bytes.HasPrefix(content, []byte("#!")) {
		return Unknown
	}
	line := content[2:]
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(strings.TrimSpace(string(line)))
	if len(fields) == 0 {
		return Unknown
	}
	interp := filepath.Base(fields[0])
	if interp == "env" && len(fields) > 1 {
		interp = filepath.Base(fields[1])
	}
	// Strip trailing version digits: python3.11 -> python3 -> python.
	if l, ok := shebangs[interp]; ok {
		return l
	}
	trimmed := strings.TrimRight(interp, "0123456789.")
	if l, ok := shebangs[trimmed]; ok {
		return l
	}
	return Unknown
}

// CountLines counts line-terminator-delimited records. A trailing
// unterminated line counts as one line; an empty file has zero.
func CountLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := bytes.Count(content, []byte{'\n'})
	if content[len(content)-1] != '\n' {
		n++
	}
	return n
}
