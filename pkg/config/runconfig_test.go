package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadRunConfig(t *testing.T) {
	t.Run("toml", func(t *testing.T) {
		path := writeFile(t, "run.toml", `
project_name = "demo"
create_develop_branch = true

[extensions]
keywords = ["a", "b"]
`)
		raw, err := ReadRunConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "demo", raw["project_name"])
		assert.Equal(t, true, raw["create_develop_branch"])
		ext, ok := raw[ExtensionsKey].(map[string]interface{})
		require.True(t, ok)
		assert.Len(t, ext["keywords"], 2)
	})

	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, "run.yml", "project_name: demo\nextensions:\n  author: me\n")
		raw, err := ReadRunConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "demo", raw["project_name"])
		ext, ok := raw[ExtensionsKey].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "me", ext["author"])
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, "run.json", `{}`)
		_, err := ReadRunConfig(path)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadRunConfig(filepath.Join(t.TempDir(), "absent.toml"))
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindConfig))
	})

	t.Run("malformed", func(t *testing.T) {
		path := writeFile(t, "run.toml", "project_name = ")
		_, err := ReadRunConfig(path)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
	})
}
