package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/loupe-dev/loupe/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func relPaths(res *Result) []string {
	var rels []string
	for _, f := range res.Files {
		rels = append(rels, f.Rel)
	}
	return rels
}

func TestWalkBasic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "src/util.rs", "fn main() {}\n")
	writeFile(t, root, "README.md", "# hi\n")

	res, err := New(config.DefaultConfig()).Walk(root)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"main.go", "src/util.rs", "README.md"}, relPaths(res))
	assert.Empty(t, res.Warnings)
}

func TestWalkMissingRoot(t *testing.T) {
	_, err := New(nil).Walk(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestWalkExcludesDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "node_modules/pkg/index.js", "x\n")
	writeFile(t, root, "target/debug/out.rs", "x\n")
	writeFile(t, root, "nested/node_modules/d/f.js", "x\n")

	res, err := New(config.DefaultConfig()).Walk(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"main.go"}, relPaths(res))
}

func TestWalkExcludePatterns(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Exclude.Patterns = append(cfg.Exclude.Patterns, "*.log")

	root := t.TempDir()
	writeFile(t, root, "app.py", "x = 1\n")
	writeFile(t, root, "debug.log", "noise\n")
	writeFile(t, root, "bundle.min.js", "minified\n")

	res, err := New(cfg).Walk(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"app.py"}, relPaths(res))
}

func TestWalkSymlink(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "real.go", "package main\n")
	require.NoError(t, os.Symlink(filepath.Join(root, "real.go"), filepath.Join(root, "link.go")))

	res, err := New(config.DefaultConfig()).Walk(root)
	require.NoError(t, err)

	var link *Entry
	for i := range res.Files {
		if res.Files[i].Rel == "link.go" {
			link = &res.Files[i]
		}
	}
	require.NotNil(t, link, "symlink should be recorded")
	assert.True(t, link.Symlink)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "link.go", res.Warnings[0].Path)
	assert.Contains(t, res.Warnings[0].Message, "symlink")
}

func TestWalkMaxFileSize(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxFileSize = 10

	root := t.TempDir()
	writeFile(t, root, "small.go", "short\n")
	writeFile(t, root, "big.go", "this file is larger than ten bytes\n")

	res, err := New(cfg).Walk(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"small.go"}, relPaths(res))
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "big.go", res.Warnings[0].Path)
}

func TestWalkDeterministic(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"b.go", "a.go", "z/x.go", "a/y.go", "m.rs"} {
		writeFile(t, root, rel, "content\n")
	}

	w := New(config.DefaultConfig())
	first, err := w.Walk(root)
	require.NoError(t, err)
	second, err := w.Walk(root)
	require.NoError(t, err)

	assert.Equal(t, relPaths(first), relPaths(second))
}

func TestIsBinary(t *testing.T) {
	assert.False(t, IsBinary(nil))
	assert.False(t, IsBinary([]byte("plain text\nwith lines\n")))
	assert.False(t, IsBinary([]byte("tabs\tand\rcarriage returns\r\n")))
	assert.True(t, IsBinary([]byte("has a null\x00byte")))

	// Mostly control characters trips the 30% rule without a null.
	ctrl := make([]byte, 100)
	for i := range ctrl {
		if i < 40 {
			ctrl[i] = 0x01
		} else {
			ctrl[i] = 'a'
		}
	}
	assert.True(t, IsBinary(ctrl))
}
