package templates

import (
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
)

func newCatalogFS(t *testing.T) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	files := map[string]string{
		"packages/library/template.toml": "description = \"TypeScript library\"\n",
		"packages/library/src/index.ts":  "export {}\n",
		"apps/web/template.yaml":         "description: Web app\n",
		"apps/library/template.toml":     "description = \"App library\"\n",
		"services/api/template.hcl":      "description = \"Go API\"\n",
		"services/broken/template.toml":  "description = [\n",
		"tools/not-a-template/README.md": "nothing here\n",
		".git/HEAD":                      "ref: refs/heads/main\n",
	}
	for name, content := range files {
		require.NoError(t, util.WriteFile(fs, name, []byte(content), 0644))
	}
	return fs
}

func TestList(t *testing.T) {
	c := NewWithFS("/templates", newCatalogFS(t))

	all, err := c.List()
	require.NoError(t, err)

	var refs []string
	for _, tpl := range all {
		refs = append(refs, tpl.Identity.String())
	}
	assert.Equal(t, []string{
		"apps/library",
		"apps/web",
		"packages/library",
		"services/api",
		"services/broken",
	}, refs)

	assert.Equal(t, "Web app", all[1].Description)
	assert.Equal(t, "/templates/packages/library", all[2].Dir)
	assert.Equal(t, "Go API", all[3].Description)
	assert.Empty(t, all[4].Description)
}

func TestFind(t *testing.T) {
	c := NewWithFS("/templates", newCatalogFS(t))

	t.Run("bare name", func(t *testing.T) {
		tpl, err := c.Find("web")
		require.NoError(t, err)
		assert.Equal(t, "apps", tpl.Identity.Category)
		assert.Equal(t, "apps/web/template.yaml", tpl.Manifest)
	})

	t.Run("qualified name", func(t *testing.T) {
		tpl, err := c.Find("packages/library")
		require.NoError(t, err)
		assert.Equal(t, "TypeScript library", tpl.Description)
	})

	t.Run("ambiguous", func(t *testing.T) {
		_, err := c.Find("library")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrManifestAmbiguous))
		assert.Equal(t, []string{"apps/library", "packages/library"}, errors.GetErrorDetails(err)["allowed"])
	})

	t.Run("unknown with suggestions", func(t *testing.T) {
		_, err := c.Find("libary")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrManifestNotFound))
		suggestions, ok := errors.GetErrorDetails(err)["suggestions"].([]string)
		require.True(t, ok)
		assert.Contains(t, suggestions, "packages/library")
		assert.LessOrEqual(t, len(suggestions), maxSuggestions)
	})

	t.Run("empty reference", func(t *testing.T) {
		_, err := c.Find(" ")
		assert.True(t, errors.IsErrorCode(err, errors.ErrManifestNotFound))
	})
}

func TestListMissingRoot(t *testing.T) {
	c := New(t.TempDir() + "/absent")
	_, err := c.List()
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindManifest))
}
