package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
)

// ExtensionsKey is the run-config table holding template extension fields
const ExtensionsKey = "extensions"

// ReadRunConfig parses a run configuration file. The format follows the
// extension: .toml, .yaml or .yml. The returned map is nested as in the file.
func ReadRunConfig(path string) (map[string]interface{}, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read run configuration %s", path).
			WithDetail("path", path)
	}

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	default:
		return nil, errors.Newf(errors.ErrConfigLoad, "unsupported run configuration format %q", filepath.Ext(path)).
			WithDetail("path", path).
			WithDetail("allowed", []string{".toml", ".yaml", ".yml"})
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to parse run configuration %s", path).
			WithDetail("path", path)
	}
	return k.Raw(), nil
}
