package resolver

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cast"

	"github.com/NextNodeSolutions/project-generator/pkg/config"
	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/NextNodeSolutions/project-generator/pkg/logging"
	"github.com/NextNodeSolutions/project-generator/pkg/manifest"
	"github.com/NextNodeSolutions/project-generator/pkg/schema"
	"github.com/NextNodeSolutions/project-generator/pkg/types"
)

// System field names with computed defaults
const (
	FieldProjectName         = "project_name"
	FieldDescription         = "description"
	FieldCategory            = "category"
	FieldRepositoryURL       = "repository_url"
	FieldWebsiteURL          = "website_url"
	FieldBranchName          = "branch_name"
	FieldCreateDevelopBranch = "create_develop_branch"
	FieldVisibility          = "visibility"
)

const (
	systemKey    = "system"
	extensionKey = config.ExtensionsKey
)

// Sources are the raw inputs of one run
type Sources struct {
	// ConfigFile is an optional run configuration path, read when File is nil
	ConfigFile string
	// File is an already parsed run configuration
	File map[string]interface{}
	// Flags and Answers are flat key/value maps; list placeholders may be
	// given as comma separated strings
	Flags   map[string]interface{}
	Answers map[string]interface{}

	Template  types.Identity
	Timestamp time.Time

	// Organization and WebsiteDomain feed the derived URLs
	Organization  string
	WebsiteDomain string
}

// layer is one normalized source
type layer struct {
	name       string
	system     map[string]interface{}
	extensions map[string]interface{}
	collisions []string
}

func (l layer) tree() map[string]interface{} {
	return map[string]interface{}{
		systemKey:    l.system,
		extensionKey: l.extensions,
	}
}

// Resolve merges src into a validated GenerationContext
func Resolve(src Sources, m *manifest.Manifest, s *schema.Schema) (*types.GenerationContext, error) {
	logger := logging.GetLogger("resolver")

	if s == nil {
		return nil, errors.New(errors.ErrInternal, "no field schema given")
	}
	if src.Timestamp.IsZero() {
		src.Timestamp = time.Now()
	}

	fileData := src.File
	if fileData == nil && src.ConfigFile != "" {
		var err error
		if fileData, err = config.ReadRunConfig(src.ConfigFile); err != nil {
			return nil, err
		}
	}

	flags, err := normalize("flags", src.Flags, m, s, true)
	if err != nil {
		return nil, err
	}
	answers, err := normalize("answers", src.Answers, m, s, true)
	if err != nil {
		return nil, err
	}
	file, err := normalize("file", fileData, m, s, false)
	if err != nil {
		return nil, err
	}
	explicit := []layer{flags, answers, file}

	// the derived URLs use whichever project name wins among explicit layers
	slugName := DefaultProjectName(src)
	for _, l := range explicit {
		if v, ok := l.system[FieldProjectName]; ok {
			if name := strings.TrimSpace(cast.ToString(v)); name != "" {
				slugName = name
			}
		}
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(src, m, s, slugName), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to load computed defaults")
	}
	for _, l := range explicit {
		if err := k.Load(confmap.Provider(l.tree(), "."), nil); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to merge %s", l.name)
		}
	}

	merged := k.Raw()
	systemRaw, _ := merged[systemKey].(map[string]interface{})
	extRaw, _ := merged[extensionKey].(map[string]interface{})

	system, err := validateSystem(systemRaw, s)
	if err != nil {
		return nil, err
	}

	for _, l := range explicit {
		if len(l.collisions) > 0 {
			key := l.collisions[0]
			return nil, errors.Newf(errors.ErrConfigKeyCollision,
				"%q is a system field and cannot be set as an extension (%s)", key, l.name).
				WithDetail("field", key).
				WithDetail("source", l.name)
		}
	}

	extensions, err := validateExtensions(extRaw, m, s)
	if err != nil {
		return nil, err
	}
	if err := rejectTokens(system, extensions, m); err != nil {
		return nil, err
	}

	ctx := types.NewGenerationContext(src.Template, src.Timestamp, system, extensions)
	logger.Debug().
		Str("template", src.Template.String()).
		Str("project_name", ctx.SystemString(FieldProjectName)).
		Int("extensions", len(extensions)).
		Msg("Resolved generation context")
	return ctx, nil
}

// normalize splits a raw source into system and extension fields
func normalize(name string, raw map[string]interface{}, m *manifest.Manifest, s *schema.Schema, splitLists bool) (layer, error) {
	l := layer{
		name:       name,
		system:     make(map[string]interface{}),
		extensions: make(map[string]interface{}),
	}

	put := func(key string, v interface{}) {
		if splitLists && isListPlaceholder(m, key) {
			if str, ok := v.(string); ok {
				v = splitList(str)
			}
		}
		l.extensions[key] = v
	}

	for key, v := range raw {
		if key == extensionKey {
			table, ok := v.(map[string]interface{})
			if !ok {
				return l, errors.Newf(errors.ErrConfigInvalidType, "%q must be a table in %s", extensionKey, name).
					WithDetail("field", extensionKey)
			}
			for ek, ev := range table {
				if s.Has(ek) {
					l.collisions = append(l.collisions, ek)
					continue
				}
				put(ek, ev)
			}
			continue
		}
		if s.Has(key) {
			l.system[key] = v
			continue
		}
		put(key, v)
	}

	sort.Strings(l.collisions)
	return l, nil
}

func isListPlaceholder(m *manifest.Manifest, name string) bool {
	if m == nil {
		return false
	}
	p, ok := m.Placeholder(name)
	return ok && p.IsList()
}

func validateSystem(raw map[string]interface{}, s *schema.Schema) (map[string]types.Value, error) {
	// (a) required fields
	for _, name := range s.RequiredNames() {
		v, ok := raw[name]
		if !ok || v == nil || strings.TrimSpace(cast.ToString(v)) == "" {
			return nil, errors.Newf(errors.ErrConfigMissingField, "required field %q is missing", name).
				WithDetail("field", name)
		}
	}

	// (b) types and enumerations, in schema order for stable errors
	out := make(map[string]types.Value, len(raw))
	for _, f := range s.Fields {
		v, ok := raw[f.Name]
		if !ok || v == nil {
			continue
		}

		if f.Type == schema.TypeBool {
			b, err := toBool(v)
			if err != nil {
				return nil, errors.Newf(errors.ErrConfigInvalidType, "field %q must be a boolean, got %v", f.Name, v).
					WithDetail("field", f.Name).
					WithDetail("value", v)
			}
			out[f.Name] = types.Bool(b)
			continue
		}

		str, err := toScalar(v)
		if err != nil {
			return nil, errors.Newf(errors.ErrConfigInvalidType, "field %q must be a string, got %T", f.Name, v).
				WithDetail("field", f.Name).
				WithDetail("value", v)
		}
		if !f.Allows(str) {
			return nil, errors.Newf(errors.ErrConfigInvalidEnum, "invalid value %q for %s, expected one of: %s",
				str, f.Name, strings.Join(f.Values, ", ")).
				WithDetail("field", f.Name).
				WithDetail("value", str).
				WithDetail("allowed", f.Values)
		}
		out[f.Name] = types.String(str)
	}
	return out, nil
}

func validateExtensions(raw map[string]interface{}, m *manifest.Manifest, s *schema.Schema) (map[string]types.Value, error) {
	out := make(map[string]types.Value, len(raw))
	declared := make(map[string]bool)

	// (d) placeholders the manifest declares
	if m != nil {
		for _, p := range m.Placeholders {
			if s.Has(p.Name) {
				if p.IsList() {
					return nil, errors.Newf(errors.ErrConfigInvalidType, "system field %q cannot be a list", p.Name).
						WithDetail("field", p.Name)
				}
				continue
			}
			declared[p.Name] = true

			v, ok := raw[p.Name]
			if ok && v == nil {
				ok = false
			}

			switch {
			case p.IsList():
				if !ok {
					if p.Required {
						return nil, listRequired(p.Name, "is missing")
					}
					out[p.Name] = types.List()
					continue
				}
				items, isList := toList(v)
				if !isList {
					return nil, listRequired(p.Name, "must be a list, got a scalar").WithDetail("value", v)
				}
				if len(items) == 0 && p.Required {
					return nil, listRequired(p.Name, "must not be empty")
				}
				out[p.Name] = types.List(items...)

			case p.Type == manifest.TypeBool:
				if !ok {
					if p.Required {
						return nil, missing(p.Name)
					}
					out[p.Name] = types.Bool(false)
					continue
				}
				b, err := toBool(v)
				if err != nil {
					return nil, errors.Newf(errors.ErrConfigInvalidType, "placeholder %q must be a boolean", p.Name).
						WithDetail("field", p.Name).
						WithDetail("value", v)
				}
				out[p.Name] = types.Bool(b)

			default:
				if !ok {
					if p.Required {
						return nil, missing(p.Name)
					}
					out[p.Name] = types.String("")
					continue
				}
				str, err := toScalar(v)
				if err != nil {
					return nil, errors.Newf(errors.ErrConfigInvalidType, "placeholder %q must be a scalar, got %T", p.Name, v).
						WithDetail("field", p.Name).
						WithDetail("value", v)
				}
				if p.Required && strings.TrimSpace(str) == "" {
					return nil, missing(p.Name)
				}
				out[p.Name] = types.String(str)
			}
		}
	}

	// free-form extension fields keep their shape
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if declared[k] {
			continue
		}
		v := raw[k]
		switch val := v.(type) {
		case bool:
			out[k] = types.Bool(val)
		case []interface{}, []string:
			items, _ := toList(val)
			out[k] = types.List(items...)
		default:
			str, err := toScalar(v)
			if err != nil {
				return nil, errors.Newf(errors.ErrConfigInvalidType, "extension field %q has unsupported type %T", k, v).
					WithDetail("field", k)
			}
			out[k] = types.String(str)
		}
	}
	return out, nil
}

// rejectTokens refuses values that themselves contain a placeholder token.
// Substitution would leave such a token in the output and blame the template.
func rejectTokens(system, extensions map[string]types.Value, m *manifest.Manifest) error {
	d := manifest.Delimiters{Open: manifest.DefaultOpen, Close: manifest.DefaultClose}
	if m != nil && m.Delimiters.Open != "" && m.Delimiters.Close != "" {
		d = m.Delimiters
	}
	re := d.TokenPattern()

	for _, fields := range []map[string]types.Value{system, extensions} {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			v := fields[name]
			values := []string{v.Scalar()}
			if v.IsList() {
				values = v.Items()
			}
			for _, text := range values {
				if token := re.FindString(text); token != "" {
					return errors.Newf(errors.ErrConfigInvalidType,
						"value of %q contains the placeholder token %s", name, token).
						WithDetail("field", name).
						WithDetail("value", text)
				}
			}
		}
	}
	return nil
}

func missing(name string) *errors.GeneratorError {
	return errors.Newf(errors.ErrConfigMissingField, "required placeholder %q is missing", name).
		WithDetail("field", name).
		WithDetail("placeholder", name)
}

func listRequired(name, reason string) *errors.GeneratorError {
	return errors.Newf(errors.ErrConfigListRequired, "list placeholder %q %s", name, reason).
		WithDetail("field", name).
		WithDetail("placeholder", name)
}

// toScalar accepts strings and numbers
func toScalar(v interface{}) (string, error) {
	switch v.(type) {
	case map[string]interface{}, []interface{}, []string, nil:
		return "", fmt.Errorf("not a scalar: %T", v)
	case bool:
		return "", fmt.Errorf("boolean where a string is expected")
	}
	return cast.ToStringE(v)
}

// toBool accepts booleans and their textual forms
func toBool(v interface{}) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(b))
	}
	return false, fmt.Errorf("not a boolean: %T", v)
}

func toList(v interface{}) ([]string, bool) {
	switch items := v.(type) {
	case []string:
		return items, true
	case []interface{}:
		out := make([]string, 0, len(items))
		for _, item := range items {
			str, err := cast.ToStringE(item)
			if err != nil {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	}
	return nil, false
}
