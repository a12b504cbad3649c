// Package walker enumerates candidate files under a root path.
//
// Each Walk re-reads the tree from disk; no state is cached across calls.
// Traversal uses filepath.WalkDir, which visits entries in lexical order,
// so the produced slice is deterministic for a given filesystem snapshot.
package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/loupe-dev/loupe/pkg/config"
	"github.com/loupe-dev/loupe/pkg/models"
)

// ErrPathNotFound is returned when the root path does not exist. It is
// the only fatal walker condition; everything else degrades to warnings.
var ErrPathNotFound = errors.New("path not found")

// binarySniffLen is how many leading bytes are sampled for binary
// detection. 8 KiB matches the common git heuristic.
const binarySniffLen = 8192

// Entry is one file discovered by a walk.
type Entry struct {
	Path    string // absolute
	Rel     string // slash-separated, relative to root
	Size    int64
	Symlink bool
}

// Result carries discovered files and non-fatal walk warnings.
type Result struct {
	Files    []Entry
	Warnings []models.Warning
}

// Walker finds files in a directory tree, applying exclusion rules.
type Walker struct {
	cfg      *config.Config
	matchers []gitignore.Matcher
}

// New creates a walker for the given configuration.
func New(cfg *config.Config) *Walker {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Walker{cfg: cfg}
}

// findGitRoot finds the enclosing git repository root, or "".
func findGitRoot(start string) string {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns combines config patterns with .gitignore files.
func (w *Walker) loadExcludePatterns(root string) {
	var patterns []gitignore.Pattern

	for _, pattern := range w.cfg.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}

	if w.cfg.Exclude.Gitignore {
		if gitRoot := findGitRoot(root); gitRoot != "" {
			fsys := osfs.New(gitRoot)
			if gitPatterns, err := gitignore.ReadPatterns(fsys, nil); err == nil {
				patterns = append(patterns, gitPatterns...)
			}
		}
	}

	w.matchers = nil
	if len(patterns) > 0 {
		w.matchers = append(w.matchers, gitignore.NewMatcher(patterns))
	}
}

// isExcluded checks a relative path against all exclusion matchers.
func (w *Walker) isExcluded(rel string, isDir bool) bool {
	if len(w.matchers) == 0 {
		return false
	}
	parts := strings.Split(rel, "/")
	for _, m := range w.matchers {
		if m.Match(parts, isDir) {
			return true
		}
	}
	return false
}

// isExcludedDir checks a directory base name against the config dir list.
func (w *Walker) isExcludedDir(base string) bool {
	for _, d := range w.cfg.Exclude.Dirs {
		if base == d {
			return true
		}
	}
	return false
}

// Walk enumerates files under root. Unreadable directories become
// warnings; symlinks are recorded but never followed.
func (w *Walker) Walk(root string) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(absRoot); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, root)
		}
		return nil, err
	}

	w.loadExcludePatterns(absRoot)

	res := &Result{}
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if err != nil {
			res.Warnings = append(res.Warnings, models.Warning{
				Path:    rel,
				Message: fmt.Sprintf("cannot read entry: %v", err),
			})
			return nil
		}

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if w.isExcludedDir(d.Name()) || w.isExcluded(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if w.isExcluded(rel, false) {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			// Recorded, never followed: avoids cycles and double counting.
			var size int64
			if info, infoErr := d.Info(); infoErr == nil {
				size = info.Size()
			}
			res.Files = append(res.Files, Entry{Path: path, Rel: rel, Size: size, Symlink: true})
			res.Warnings = append(res.Warnings, models.Warning{
				Path:    rel,
				Message: "symlink not followed",
			})
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			res.Warnings = append(res.Warnings, models.Warning{
				Path:    rel,
				Message: fmt.Sprintf("cannot stat file: %v", infoErr),
			})
			return nil
		}
		if w.cfg.MaxFileSize > 0 && info.Size() > w.cfg.MaxFileSize {
			res.Warnings = append(res.Warnings, models.Warning{
				Path:    rel,
				Message: fmt.Sprintf("skipped: size %d exceeds limit %d", info.Size(), w.cfg.MaxFileSize),
			})
			return nil
		}

		res.Files = append(res.Files, Entry{Path: path, Rel: rel, Size: info.Size()})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return res, nil
}

// IsBinary reports whether a content sample looks like binary data:
// a null byte, or more than 30% of bytes outside the text range.
func IsBinary(sample []byte) bool {
	if len(sample) > binarySniffLen {
		sample = sample[:binarySniffLen]
	}
	if len(sample) == 0 {
		return false
	}

	nonText := 0
	for _, b := range sample {
		if b == 0 {
			return true
		}
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' && b != 0x0c {
			nonText++
		}
	}
	return nonText*10 > len(sample)*3
}
