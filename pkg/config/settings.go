package config

import (
	_ "embed"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/NextNodeSolutions/project-generator/pkg/logging"
	"github.com/NextNodeSolutions/project-generator/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	generrors "github.com/NextNodeSolutions/project-generator/pkg/errors"
)

// EnvPrefix is the prefix of environment variables read as settings
const EnvPrefix = "PROJGEN_"

//go:embed embedded/defaults.toml
var defaultSettings []byte

// sections are the nested tables; PROJGEN_<SECTION>_<KEY> maps to section.key
var sections = []string{"author", "workflows", "history"}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Settings are the ambient application settings
type Settings struct {
	TemplatesDir  string    `koanf:"templates_dir"`
	Organization  string    `koanf:"organization"`
	WebsiteDomain string    `koanf:"website_domain"`
	TokenEnv      string    `koanf:"token_env"`
	APIURL        string    `koanf:"api_url"`
	Author        Author    `koanf:"author"`
	Workflows     Workflows `koanf:"workflows"`
	History       History   `koanf:"history"`
}

// Author is the identity used for the initial commit of published repositories
type Author struct {
	Name  string `koanf:"name"`
	Email string `koanf:"email"`
}

// Workflows controls deploy workflow dispatch after publishing
type Workflows struct {
	Delay time.Duration `koanf:"delay"`
}

// History controls the local run log
type History struct {
	Enabled bool `koanf:"enabled"`
}

// Token returns the hosting token from the configured environment variable
func (s *Settings) Token() string {
	return strings.TrimSpace(os.Getenv(s.TokenEnv))
}

// LoadSettings loads the settings for p, layering defaults, the user file and the environment
func LoadSettings(p paths.Paths) (*Settings, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultSettings}, toml.Parser()); err != nil {
		return nil, generrors.Wrap(err, generrors.ErrConfigLoad, "failed to load default settings")
	}

	if p != nil {
		settingsPath := p.ConfigFilePath()
		if _, err := os.Stat(settingsPath); err == nil {
			if err := k.Load(file.Provider(settingsPath), toml.Parser()); err != nil {
				return nil, generrors.Wrapf(err, generrors.ErrConfigLoad, "failed to load settings from %s", settingsPath).
					WithDetail("path", settingsPath)
			}
			logger.Debug().Str("path", settingsPath).Msg("Loaded user settings")
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, generrors.Wrap(err, generrors.ErrConfigLoad, "failed to load environment settings")
	}

	var s Settings
	if err := unmarshal(k, &s); err != nil {
		return nil, generrors.Wrap(err, generrors.ErrConfigLoad, "failed to decode settings")
	}

	if s.TokenEnv == "" {
		s.TokenEnv = "GITHUB_TOKEN"
	}
	s.APIURL = strings.TrimRight(s.APIURL, "/")

	return &s, nil
}

// envKey maps PROJGEN_WEBSITE_DOMAIN to website_domain and PROJGEN_AUTHOR_NAME to author.name
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

func unmarshal(k *koanf.Koanf, out interface{}) error {
	return k.UnmarshalWithConf("", out, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           out,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	})
}
