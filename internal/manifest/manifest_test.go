package manifest

import (
	"testing"

	"github.com/loupe-dev/loupe/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findDep(records []models.DependencyRecord, name string) *models.DependencyRecord {
	for i := range records {
		if records[i].Name == name {
			return &records[i]
		}
	}
	return nil
}

func TestLookup(t *testing.T) {
	for _, base := range []string{"Cargo.toml", "package.json", "pyproject.toml", "requirements.txt", "go.mod"} {
		_, ok := Lookup(base)
		assert.True(t, ok, "expected parser for %s", base)
		assert.True(t, IsManifest(base))
	}

	_, ok := Lookup("Gemfile")
	assert.False(t, ok)
	assert.False(t, IsManifest("main.go"))
	assert.False(t, IsManifest("cargo.toml"), "manifest names are case sensitive")
}

func TestCargoParse(t *testing.T) {
	data := []byte(`
[package]
name = "demo"

[dependencies]
serde = { version = "1.0", features = ["derive"] }
anyhow = "1.0.86"
local-util = { path = "../util" }

[dev-dependencies]
criterion = "0.5"

[build-dependencies]
cc = "1.0"
`)
	parser, ok := Lookup("Cargo.toml")
	require.True(t, ok)

	records, warnings := parser.Parse("Cargo.toml", data)
	require.Empty(t, warnings)
	require.Len(t, records, 5)

	serde := findDep(records, "serde")
	require.NotNil(t, serde)
	assert.Equal(t, models.EcosystemCargo, serde.Ecosystem)
	assert.Equal(t, "1.0", serde.Version)
	assert.Equal(t, models.ScopeRuntime, serde.Scope)

	local := findDep(records, "local-util")
	require.NotNil(t, local)
	assert.Empty(t, local.Version, "path deps carry no version constraint")

	criterion := findDep(records, "criterion")
	require.NotNil(t, criterion)
	assert.Equal(t, models.ScopeDev, criterion.Scope)

	cc := findDep(records, "cc")
	require.NotNil(t, cc)
	assert.Equal(t, models.ScopeDev, cc.Scope, "build deps are tagged dev")
}

func TestCargoParseMalformed(t *testing.T) {
	parser, _ := Lookup("Cargo.toml")
	records, warnings := parser.Parse("Cargo.toml", []byte("[dependencies\nbroken"))
	assert.Empty(t, records)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Cargo.toml", warnings[0].Path)
}

func TestPackageJSONParse(t *testing.T) {
	data := []byte(`{
  "name": "demo",
  "dependencies": {"react": "^18.2.0", "lodash": "4.17.21"},
  "devDependencies": {"vitest": "^1.0.0"},
  "optionalDependencies": {"fsevents": "^2.3.0"}
}`)
	parser, _ := Lookup("package.json")
	records, warnings := parser.Parse("package.json", data)
	require.Empty(t, warnings)
	require.Len(t, records, 4)

	react := findDep(records, "react")
	require.NotNil(t, react)
	assert.Equal(t, models.EcosystemNPM, react.Ecosystem)
	assert.Equal(t, "^18.2.0", react.Version)
	assert.Equal(t, models.ScopeRuntime, react.Scope)

	vitest := findDep(records, "vitest")
	require.NotNil(t, vitest)
	assert.Equal(t, models.ScopeDev, vitest.Scope)

	fsevents := findDep(records, "fsevents")
	require.NotNil(t, fsevents)
	assert.Equal(t, models.ScopeOptional, fsevents.Scope)
}

func TestPackageJSONMalformedEntry(t *testing.T) {
	data := []byte(`{"dependencies": {"good": "1.0.0", "bad": {"nested": true}}}`)
	parser, _ := Lookup("package.json")
	records, warnings := parser.Parse("web/package.json", data)

	require.Len(t, records, 1)
	assert.Equal(t, "good", records[0].Name)
	require.Len(t, warnings, 1)
	assert.Equal(t, "web/package.json", warnings[0].Path)
	assert.Contains(t, warnings[0].Message, "bad")
}

func TestRequirementsParse(t *testing.T) {
	data := []byte(`# comment
requests>=2.28,<3
flask==2.3.2

numpy
-r other.txt
uvicorn[standard]>=0.20 ; python_version > "3.8"
`)
	parser, _ := Lookup("requirements.txt")
	records, warnings := parser.Parse("requirements.txt", data)
	require.Empty(t, warnings)
	require.Len(t, records, 4)

	requests := findDep(records, "requests")
	require.NotNil(t, requests)
	assert.Equal(t, ">=2.28,<3", requests.Version)
	assert.Equal(t, models.EcosystemPyPI, requests.Ecosystem)

	numpy := findDep(records, "numpy")
	require.NotNil(t, numpy)
	assert.Empty(t, numpy.Version)

	uvicorn := findDep(records, "uvicorn")
	require.NotNil(t, uvicorn)
	assert.Equal(t, ">=0.20", uvicorn.Version, "extras and markers are stripped")
}

func TestPyprojectParse(t *testing.T) {
	data := []byte(`
[project]
name = "demo"
dependencies = ["httpx>=0.24", "pydantic==2.5.0"]

[project.optional-dependencies]
test = ["pytest>=7"]

[tool.poetry.dependencies]
rich = "^13.0"
`)
	parser, _ := Lookup("pyproject.toml")
	records, warnings := parser.Parse("pyproject.toml", data)
	require.Empty(t, warnings)
	require.Len(t, records, 4)

	httpx := findDep(records, "httpx")
	require.NotNil(t, httpx)
	assert.Equal(t, models.ScopeRuntime, httpx.Scope)

	pytest := findDep(records, "pytest")
	require.NotNil(t, pytest)
	assert.Equal(t, models.ScopeOptional, pytest.Scope)

	rich := findDep(records, "rich")
	require.NotNil(t, rich)
	assert.Equal(t, "^13.0", rich.Version)
}

func TestGoModParse(t *testing.T) {
	data := []byte(`module example.com/demo

go 1.22

require (
	github.com/stretchr/testify v1.9.0
	golang.org/x/sync v0.7.0 // indirect
)

require github.com/urfave/cli/v2 v2.27.0
`)
	parser, _ := Lookup("go.mod")
	records, warnings := parser.Parse("go.mod", data)
	require.Empty(t, warnings)
	require.Len(t, records, 3)

	testify := findDep(records, "github.com/stretchr/testify")
	require.NotNil(t, testify)
	assert.Equal(t, models.EcosystemGo, testify.Ecosystem)
	assert.Equal(t, "v1.9.0", testify.Version)
	assert.Equal(t, models.ScopeRuntime, testify.Scope)

	sync := findDep(records, "golang.org/x/sync")
	require.NotNil(t, sync)
	assert.Equal(t, models.ScopeOptional, sync.Scope, "indirect requires are optional")

	cliDep := findDep(records, "github.com/urfave/cli/v2")
	require.NotNil(t, cliDep)
	assert.Equal(t, "v2.27.0", cliDep.Version)
}

func TestGoModMalformedRequire(t *testing.T) {
	data := []byte("module m\n\nrequire (\n\tbroken-line-without-version\n)\n")
	parser, _ := Lookup("go.mod")
	records, warnings := parser.Parse("go.mod", data)

	assert.Empty(t, records)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "malformed")
}
