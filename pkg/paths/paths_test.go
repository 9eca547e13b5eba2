package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name         string
		templatesDir string
		envSetup     map[string]string
		validate     func(t *testing.T, p Paths)
	}{
		{
			name:         "explicit templates dir",
			templatesDir: "/tmp/templates",
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/tmp/templates", p.TemplatesDir())
			},
		},
		{
			name: "templates dir from env",
			envSetup: map[string]string{
				EnvTemplatesDir: "/env/templates",
			},
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/env/templates", p.TemplatesDir())
			},
		},
		{
			name: "custom XDG directories",
			envSetup: map[string]string{
				EnvDataDir:   "/custom/data",
				EnvConfigDir: "/custom/config",
				EnvCacheDir:  "/custom/cache",
				EnvStateDir:  "/custom/state",
			},
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/custom/data", p.DataDir())
				assert.Equal(t, filepath.Join("/custom/data", TemplatesDirName), p.TemplatesDir())
				assert.Equal(t, filepath.Join("/custom/config", ConfigFileName), p.ConfigFilePath())
				assert.Equal(t, filepath.Join("/custom/cache", WorkspacesDirName), p.WorkspacesDir())
				assert.Equal(t, filepath.Join("/custom/state", LogFileName), p.LogFilePath())
				assert.Equal(t, filepath.Join("/custom/state", HistoryFileName), p.HistoryPath())
			},
		},
		{
			name: "defaults are namespaced",
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, AppDirName, filepath.Base(p.DataDir()))
				assert.Equal(t, AppDirName, filepath.Base(p.StateDir()))
				assert.True(t, filepath.IsAbs(p.TemplatesDir()))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, env := range []string{EnvTemplatesDir, EnvDataDir, EnvConfigDir, EnvCacheDir, EnvStateDir} {
				t.Setenv(env, "")
			}
			for k, v := range tt.envSetup {
				t.Setenv(k, v)
			}

			p, err := New(tt.templatesDir)
			require.NoError(t, err)
			tt.validate(t, p)
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "", ExpandHome(""))
	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, "templates"), ExpandHome("~/templates"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
	assert.Equal(t, "~other/x", ExpandHome("~other/x"))
}
