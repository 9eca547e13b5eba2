package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const libraryTOML = `
name = "library"
description = "TypeScript library"

[format]
go = true

[[placeholders]]
name = "keywords"
type = "list"
description = "npm keywords"

[[placeholders]]
name = "author"
required = false
default = "NextNode"
files = ["package.json"]

[[rules]]
placeholder = "project_name"
token = "@nextnode/template"
files = ["package.json", "src/**"]

[[rules]]
placeholder = "keywords"
kind = "json"
key = "keywords"
files = ["package.json"]
`

func writeTemplate(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	return dir
}

func TestLoadTOML(t *testing.T) {
	dir := writeTemplate(t, "template.toml", libraryTOML)

	m, err := LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, "library", m.Name)
	assert.Equal(t, "template.toml", m.FileName())
	assert.True(t, m.FormatGo)
	assert.Equal(t, Delimiters{Open: "{{", Close: "}}"}, m.Delimiters)
	assert.Equal(t, []string{"keywords", "author", "project_name"}, m.Names())
	assert.Equal(t, []string{"keywords"}, m.ListNames())

	author, ok := m.Placeholder("author")
	require.True(t, ok)
	assert.False(t, author.Required)
	assert.True(t, author.HasDefault)
	assert.Equal(t, "NextNode", author.Default)

	projectName, ok := m.Placeholder("project_name")
	require.True(t, ok)
	assert.Equal(t, TypeString, projectName.Type)
	assert.True(t, projectName.Required)

	require.Len(t, m.Rules, 2)
	assert.Equal(t, "@nextnode/template", m.TokenFor(m.Rules[0]))
	assert.Equal(t, KindText, m.Rules[0].Kind)
	assert.Equal(t, KindJSON, m.Rules[1].Kind)
	assert.Equal(t, "{{keywords}}", m.TokenFor(m.Rules[1]))
	assert.True(t, m.Rules[0].Applies("src/index.ts"))
	assert.False(t, m.Rules[0].Applies("README.md"))
}

func TestEffectiveRules(t *testing.T) {
	m, err := Parse("template.toml", []byte(libraryTOML))
	require.NoError(t, err)

	rules := m.EffectiveRules()
	require.Len(t, rules, 5)

	// implicit rules come first, in declaration order
	assert.Equal(t, "keywords", rules[0].Placeholder)
	assert.Equal(t, []string{"**"}, rules[0].Files)
	assert.Equal(t, []string{"package.json"}, rules[1].Files)
	assert.Equal(t, -1, rules[2].Order)
	assert.Equal(t, 0, rules[3].Order)
	assert.Equal(t, 1, rules[4].Order)
}

func TestLoadYAML(t *testing.T) {
	dir := writeTemplate(t, "template.yaml", `
name: site
delimiters: ["<%", "%>"]
placeholders:
  - name: pages
    type: list
rules:
  - placeholder: project_name
    files: ["astro.config.mjs"]
`)

	m, err := LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, "site", m.Name)
	assert.Equal(t, "<%pages%>", m.Delimiters.Token("pages"))
	assert.Equal(t, "<%#pages%>", m.Delimiters.BlockStart("pages"))
	assert.Equal(t, "<%/pages%>", m.Delimiters.BlockEnd("pages"))
	assert.Equal(t, []string{"pages", "project_name"}, m.Names())
}

func TestLoadHCL(t *testing.T) {
	dir := writeTemplate(t, "template.hcl", `
name = "service"
description = "Go service"

format {
  go = true
}

placeholder "module_path" {
  description = "Go module path"
}

placeholder "features" {
  type     = "list"
  required = false
  default  = "http,grpc"
}

rule "module_path" {
  token = "example.com/template"
  files = ["go.mod", "**/*.go"]
}
`)

	m, err := LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, "service", m.Name)
	assert.True(t, m.FormatGo)
	assert.Equal(t, []string{"module_path", "features"}, m.Names())

	features, ok := m.Placeholder("features")
	require.True(t, ok)
	assert.True(t, features.IsList())
	assert.Equal(t, "http,grpc", features.Default)

	require.Len(t, m.Rules, 1)
	assert.Equal(t, "example.com/template", m.Rules[0].Token)
	assert.True(t, m.Rules[0].Applies("internal/server/server.go"))
}

func TestFindOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "template.yml"), []byte("name: b"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "template.toml"), []byte(`name = "a"`), 0644))

	path, err := Find(dir)
	require.NoError(t, err)
	assert.Equal(t, "template.toml", filepath.Base(path))
}

func TestLoadNotFound(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestNotFound))
	assert.Equal(t, errors.ExitManifest, errors.ExitCode(err))

	_, err = Load(filepath.Join(t.TempDir(), "template.toml"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestNotFound))
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		file string
		doc  string
	}{
		{"syntax", "template.toml", `name = [`},
		{"yaml syntax", "template.yaml", "placeholders: [\n"},
		{"hcl syntax", "template.hcl", `placeholder {`},
		{"unknown format", "template.json", `{}`},
		{"empty rule placeholder", "template.toml", "[[rules]]\nplaceholder = \"\"\n"},
		{"invalid placeholder name", "template.toml", "[[placeholders]]\nname = \"project.name\"\n"},
		{"duplicate placeholder", "template.toml", "[[placeholders]]\nname = \"a\"\n[[placeholders]]\nname = \"a\"\n"},
		{"unknown type", "template.toml", "[[placeholders]]\nname = \"a\"\ntype = \"map\"\n"},
		{"unknown kind", "template.toml", "[[rules]]\nplaceholder = \"a\"\nkind = \"csv\"\n"},
		{"json rule without key", "template.toml", "[[rules]]\nplaceholder = \"a\"\nkind = \"json\"\n"},
		{"conflicting types", "template.toml", "[[placeholders]]\nname = \"a\"\ntype = \"list\"\n[[rules]]\nplaceholder = \"a\"\ntype = \"string\"\n"},
		{"one delimiter", "template.toml", "delimiters = [\"{{\"]\n"},
		{"empty delimiter", "template.toml", "delimiters = [\"{{\", \"\"]\n"},
		{"bad pattern", "template.toml", "[[rules]]\nplaceholder = \"a\"\nfiles = [\"[\"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.file, []byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrManifestMalformed), "got %v", err)
			assert.True(t, errors.IsKind(err, errors.KindManifest))
		})
	}
}

func TestRuleRestatingTypeIsAccepted(t *testing.T) {
	m, err := Parse("template.toml", []byte(`
[[placeholders]]
name = "tags"
type = "list"

[[rules]]
placeholder = "tags"
type = "array"
`))
	require.NoError(t, err)
	p, _ := m.Placeholder("tags")
	assert.True(t, p.IsList())
}
