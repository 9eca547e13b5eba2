package testutil

import (
	"path/filepath"
	"testing"
)

// LibraryManifest declares a list placeholder and a literal token rule
const LibraryManifest = `name = "library"
description = "A reusable package"

[[placeholders]]
name = "project_name"

[[placeholders]]
name = "description"

[[placeholders]]
name = "license"

[[placeholders]]
name = "keywords"
type = "list"
description = "Search keywords"

[[rules]]
placeholder = "project_name"
token = "@nextnode/template"
files = ["package.json"]
`

// LibraryFiles is a small template tree matching LibraryManifest
func LibraryFiles() FileTree {
	return FileTree{
		"README.md":    "# {{project_name}}\n\n{{description}}\n\nKeywords:\n- {{keywords}}\n",
		"package.json": "{\n  \"name\": \"@nextnode/template\",\n  \"license\": \"{{license}}\"\n}\n",
		"src": FileTree{
			"{{project_name}}.ts": "export const name = '{{project_name}}'\n",
		},
	}
}

// WriteTemplate creates <root>/<category>/<name> with a template.toml and
// files, returning the template directory
func WriteTemplate(t *testing.T, root, category, name, manifest string, files FileTree) string {
	t.Helper()

	dir := filepath.Join(root, category, name)
	tree := FileTree{"template.toml": manifest}
	for k, v := range files {
		tree[k] = v
	}
	WriteTree(t, dir, tree)
	return dir
}
