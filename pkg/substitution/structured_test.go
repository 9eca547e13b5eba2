package substitution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/NextNodeSolutions/project-generator/pkg/types"
)

func TestApplyJSONRules(t *testing.T) {
	m := parseManifest(t, `
[[placeholders]]
name = "keywords"
type = "list"

[[rules]]
placeholder = "project_name"
kind = "json"
key = "name"
files = ["package.json"]

[[rules]]
placeholder = "keywords"
kind = "json"
key = "$.keywords"
files = ["package.json"]

[[rules]]
placeholder = "description"
kind = "json"
key = "repository.description"
files = ["package.json"]
`)
	src := newSource(t, map[string]string{
		"package.json": `{
  "name": "@nextnode/template",
  "version": "0.0.0",
  "private": true,
  "scripts": {"test": "vitest", "build": "tsc"},
  "dependencies": {"zod": "^3.0.0", "axios": "^1.0.0"},
  "files": []
}
`,
	})

	tree, err := Apply(defaultContext(), m, src)
	require.NoError(t, err)

	assert.Equal(t, `{
  "name": "demo",
  "keywords": [
    "a",
    "b",
    "c"
  ],
  "repository": {
    "description": "A demo"
  },
  "version": "0.0.0",
  "private": true,
  "scripts": {
    "test": "vitest",
    "build": "tsc"
  },
  "dependencies": {
    "zod": "^3.0.0",
    "axios": "^1.0.0"
  },
  "files": []
}
`, content(t, tree, "package.json"))
}

func TestApplyJSONRulesKeepKeyOrder(t *testing.T) {
	m := parseManifest(t, `
[[rules]]
placeholder = "project_name"
kind = "json"
key = "name"
files = ["*.json"]

[[rules]]
placeholder = "description"
kind = "json"
key = "meta.summary"
files = ["*.json"]
`)
	src := newSource(t, map[string]string{
		"package.json": `{"version": "0.0.0", "name": "x", "meta": {"z": 1, "a": 2}, "dependencies": {}}`,
		"app.json":     `{"version": 2, "meta": {"z": 1}}`,
	})

	tree, err := Apply(defaultContext(), m, src)
	require.NoError(t, err)

	assert.Equal(t, `{
  "version": "0.0.0",
  "name": "demo",
  "meta": {
    "z": 1,
    "a": 2,
    "summary": "A demo"
  },
  "dependencies": {}
}`, content(t, tree, "package.json"))

	// no "name" key: new keys go last
	assert.Equal(t, `{
  "version": 2,
  "meta": {
    "z": 1,
    "summary": "A demo"
  },
  "name": "demo"
}`, content(t, tree, "app.json"))
}

func TestApplyJSONRuleOnInvalidDocument(t *testing.T) {
	m := parseManifest(t, `
[[rules]]
placeholder = "project_name"
kind = "json"
key = "name"
files = ["*.json"]
`)
	src := newSource(t, map[string]string{"broken.json": "{"})

	_, err := Apply(defaultContext(), m, src)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSubstStructured))
	assert.Equal(t, "broken.json", errors.GetErrorDetails(err)["path"])
}

func TestApplyXMLRules(t *testing.T) {
	m := parseManifest(t, `
[[rules]]
placeholder = "project_name"
kind = "xml"
key = "project/artifactId"
files = ["pom.xml"]

[[rules]]
placeholder = "description"
kind = "xml"
key = "project/info/@summary"
files = ["pom.xml"]
`)
	src := newSource(t, map[string]string{
		"pom.xml": "<project><artifactId>template</artifactId></project>",
	})

	tree, err := Apply(defaultContext(), m, src)
	require.NoError(t, err)

	assert.Equal(t, `<project><artifactId>demo</artifactId><info summary="A demo"/></project>`,
		content(t, tree, "pom.xml"))
}

func TestApplyXMLRuleRejectsLists(t *testing.T) {
	m := parseManifest(t, `
[[placeholders]]
name = "keywords"
type = "list"
files = ["README.md"]

[[rules]]
placeholder = "keywords"
kind = "xml"
key = "project/keywords"
files = ["pom.xml"]
`)
	ctx := newContext(
		map[string]types.Value{"project_name": types.String("demo")},
		map[string]types.Value{"keywords": types.List("a")},
	)
	src := newSource(t, map[string]string{"pom.xml": "<project/>"})

	_, err := Apply(ctx, m, src)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSubstMalformedList))
}
