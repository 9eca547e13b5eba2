package paths

import (
	"os"
	"path/filepath"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvTemplatesDir overrides the templates root
	EnvTemplatesDir = "PROJGEN_TEMPLATES_DIR"

	// EnvDataDir overrides the XDG data directory
	EnvDataDir = "PROJGEN_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory
	EnvConfigDir = "PROJGEN_CONFIG_DIR"

	// EnvCacheDir overrides the XDG cache directory
	EnvCacheDir = "PROJGEN_CACHE_DIR"

	// EnvStateDir overrides the XDG state directory
	EnvStateDir = "PROJGEN_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// AppDirName is the directory name used under every XDG base directory
	AppDirName = "project-generator"

	// TemplatesDirName is the subdirectory of the data dir holding templates
	TemplatesDirName = "templates"

	// WorkspacesDirName is the subdirectory of the cache dir holding remote scratch trees
	WorkspacesDirName = "workspaces"

	// ConfigFileName is the user settings file inside the config dir
	ConfigFileName = "config.toml"

	// LogFileName is the name of the log file
	LogFileName = "project-generator.log"

	// HistoryFileName is the sqlite database recording past runs
	HistoryFileName = "history.db"
)

// Paths provides centralized path management
type Paths interface {
	DataDir() string
	ConfigDir() string
	CacheDir() string
	StateDir() string
	TemplatesDir() string
	WorkspacesDir() string
	ConfigFilePath() string
	LogFilePath() string
	HistoryPath() string
}

type paths struct {
	templatesDir string
	xdgData      string
	xdgConfig    string
	xdgCache     string
	xdgState     string
}

// New creates a Paths instance. A non-empty templatesDir takes precedence over
// the environment and the XDG default.
func New(templatesDir string) (Paths, error) {
	p := &paths{}
	p.setupXDGDirs()

	switch {
	case templatesDir != "":
		p.templatesDir = ExpandHome(templatesDir)
	case os.Getenv(EnvTemplatesDir) != "":
		p.templatesDir = ExpandHome(os.Getenv(EnvTemplatesDir))
	default:
		p.templatesDir = filepath.Join(p.xdgData, TemplatesDirName)
	}

	abs, err := filepath.Abs(p.templatesDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal, "failed to get absolute path for templates dir")
	}
	p.templatesDir = abs

	return p, nil
}

// setupXDGDirs initializes XDG directories, respecting environment overrides
func (p *paths) setupXDGDirs() {
	p.xdgData = dirFromEnv(EnvDataDir, xdg.DataHome)
	p.xdgConfig = dirFromEnv(EnvConfigDir, xdg.ConfigHome)
	p.xdgCache = dirFromEnv(EnvCacheDir, xdg.CacheHome)
	p.xdgState = dirFromEnv(EnvStateDir, xdg.StateHome)
}

func dirFromEnv(envVar, base string) string {
	if dir := os.Getenv(envVar); dir != "" {
		return ExpandHome(dir)
	}
	return filepath.Join(base, AppDirName)
}

func (p *paths) DataDir() string        { return p.xdgData }
func (p *paths) ConfigDir() string      { return p.xdgConfig }
func (p *paths) CacheDir() string       { return p.xdgCache }
func (p *paths) StateDir() string       { return p.xdgState }
func (p *paths) TemplatesDir() string   { return p.templatesDir }
func (p *paths) WorkspacesDir() string  { return filepath.Join(p.xdgCache, WorkspacesDirName) }
func (p *paths) ConfigFilePath() string { return filepath.Join(p.xdgConfig, ConfigFileName) }
func (p *paths) LogFilePath() string    { return filepath.Join(p.xdgState, LogFileName) }
func (p *paths) HistoryPath() string    { return filepath.Join(p.xdgState, HistoryFileName) }

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to HOME env var
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
