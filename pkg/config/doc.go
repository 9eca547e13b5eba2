// Package config loads application settings and run configuration files.
//
// Settings are layered with koanf, lowest priority first:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the user settings file, $XDG_CONFIG_HOME/project-generator/config.toml
//  3. PROJGEN_* environment variables
//
// Run configuration files (TOML or YAML) carry the values of a single
// generation run; ReadRunConfig returns them as a raw map that the resolver
// merges with its other sources.
package config
