package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/NextNodeSolutions/project-generator/pkg/logging"
)

// FileNames are the accepted declaration files, in lookup order
var FileNames = []string{"template.toml", "template.yaml", "template.yml", "template.hcl"}

// declaration is the on-disk shape shared by the TOML and YAML formats
type declaration struct {
	Name         string            `toml:"name" yaml:"name"`
	Description  string            `toml:"description" yaml:"description"`
	Delimiters   []string          `toml:"delimiters" yaml:"delimiters"`
	Format       formatDecl        `toml:"format" yaml:"format"`
	Placeholders []placeholderDecl `toml:"placeholders" yaml:"placeholders"`
	Rules        []ruleDecl        `toml:"rules" yaml:"rules"`
}

type formatDecl struct {
	Go bool `toml:"go" yaml:"go"`
}

type placeholderDecl struct {
	Name        string      `toml:"name" yaml:"name"`
	Type        string      `toml:"type" yaml:"type"`
	Required    *bool       `toml:"required" yaml:"required"`
	Description string      `toml:"description" yaml:"description"`
	Default     interface{} `toml:"default" yaml:"default"`
	Files       []string    `toml:"files" yaml:"files"`
}

type ruleDecl struct {
	Placeholder string   `toml:"placeholder" yaml:"placeholder"`
	Type        string   `toml:"type" yaml:"type"`
	Token       string   `toml:"token" yaml:"token"`
	Files       []string `toml:"files" yaml:"files"`
	Kind        string   `toml:"kind" yaml:"kind"`
	Key         string   `toml:"key" yaml:"key"`
}

// HCL uses labelled blocks:
//
//	placeholder "keywords" { type = "list" }
//	rule "project_name" { token = "@nextnode/template" }
type hclDeclaration struct {
	Name         string           `hcl:"name,optional"`
	Description  string           `hcl:"description,optional"`
	Delimiters   []string         `hcl:"delimiters,optional"`
	Format       *hclFormat       `hcl:"format,block"`
	Placeholders []hclPlaceholder `hcl:"placeholder,block"`
	Rules        []hclRule        `hcl:"rule,block"`
}

type hclFormat struct {
	Go bool `hcl:"go,optional"`
}

type hclPlaceholder struct {
	Name        string   `hcl:"name,label"`
	Type        string   `hcl:"type,optional"`
	Required    *bool    `hcl:"required,optional"`
	Description string   `hcl:"description,optional"`
	Default     *string  `hcl:"default,optional"`
	Files       []string `hcl:"files,optional"`
}

type hclRule struct {
	Placeholder string   `hcl:"placeholder,label"`
	Type        string   `hcl:"type,optional"`
	Token       string   `hcl:"token,optional"`
	Files       []string `hcl:"files,optional"`
	Kind        string   `hcl:"kind,optional"`
	Key         string   `hcl:"key,optional"`
}

// Find returns the declaration file inside templateDir
func Find(templateDir string) (string, error) {
	for _, name := range FileNames {
		candidate := filepath.Join(templateDir, name)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", errors.Newf(errors.ErrManifestNotFound, "no template declaration in %s", templateDir).
		WithDetail("path", templateDir).
		WithDetail("allowed", FileNames)
}

// LoadDir finds and loads the declaration of the template in templateDir
func LoadDir(templateDir string) (*Manifest, error) {
	path, err := Find(templateDir)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Load parses and validates the declaration file at path
func Load(path string) (*Manifest, error) {
	logger := logging.GetLogger("manifest")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrManifestNotFound, "template declaration %s not found", path).
				WithDetail("path", path)
		}
		return nil, errors.Wrapf(err, errors.ErrManifestMalformed, "cannot read template declaration %s", path).
			WithDetail("path", path)
	}

	m, err := Parse(path, data)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("path", path).
		Int("placeholders", len(m.Placeholders)).
		Int("rules", len(m.Rules)).
		Msg("Loaded template declaration")
	return m, nil
}

// Parse decodes a declaration; the format follows the extension of path
func Parse(path string, data []byte) (*Manifest, error) {
	var decl declaration
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &decl)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &decl)
	case ".hcl":
		decl, err = decodeHCL(path, data)
	default:
		return nil, malformed(path, "unsupported declaration format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestMalformed, "failed to parse template declaration %s", path).
			WithDetail("path", path)
	}

	return build(path, decl)
}

func decodeHCL(path string, data []byte) (declaration, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return declaration{}, diags
	}

	var h hclDeclaration
	if diags := gohcl.DecodeBody(file.Body, nil, &h); diags.HasErrors() {
		return declaration{}, diags
	}

	decl := declaration{
		Name:        h.Name,
		Description: h.Description,
		Delimiters:  h.Delimiters,
	}
	if h.Format != nil {
		decl.Format.Go = h.Format.Go
	}
	for _, p := range h.Placeholders {
		pd := placeholderDecl{
			Name:        p.Name,
			Type:        p.Type,
			Required:    p.Required,
			Description: p.Description,
			Files:       p.Files,
		}
		if p.Default != nil {
			pd.Default = *p.Default
		}
		decl.Placeholders = append(decl.Placeholders, pd)
	}
	for _, r := range h.Rules {
		decl.Rules = append(decl.Rules, ruleDecl(r))
	}
	return decl, nil
}

func build(path string, decl declaration) (*Manifest, error) {
	m := &Manifest{
		Path:        path,
		Name:        decl.Name,
		Description: decl.Description,
		FormatGo:    decl.Format.Go,
		Delimiters:  Delimiters{Open: DefaultOpen, Close: DefaultClose},
	}

	if decl.Delimiters != nil {
		if len(decl.Delimiters) != 2 || decl.Delimiters[0] == "" || decl.Delimiters[1] == "" {
			return nil, malformed(path, "delimiters must be exactly two non-empty strings")
		}
		m.Delimiters = Delimiters{Open: decl.Delimiters[0], Close: decl.Delimiters[1]}
	}

	seen := make(map[string]bool)
	for i, pd := range decl.Placeholders {
		if !NamePattern.MatchString(pd.Name) {
			return nil, malformed(path, "placeholder %d has invalid name %q", i+1, pd.Name).
				WithDetail("placeholder", pd.Name)
		}
		if seen[pd.Name] {
			return nil, malformed(path, "placeholder %q declared twice", pd.Name).
				WithDetail("placeholder", pd.Name)
		}
		seen[pd.Name] = true

		typ, ok := parseType(pd.Type)
		if !ok {
			return nil, malformed(path, "placeholder %q has unknown type %q", pd.Name, pd.Type).
				WithDetail("placeholder", pd.Name)
		}
		if err := checkPatterns(path, pd.Files); err != nil {
			return nil, err
		}

		p := Placeholder{
			Name:        pd.Name,
			Type:        typ,
			Required:    true,
			Description: pd.Description,
			Files:       pd.Files,
		}
		if pd.Required != nil {
			p.Required = *pd.Required
		}
		if pd.Default != nil {
			def, err := defaultText(pd.Default)
			if err != nil {
				return nil, malformed(path, "placeholder %q has invalid default: %v", pd.Name, err).
					WithDetail("placeholder", pd.Name)
			}
			p.Default, p.HasDefault = def, true
		}
		m.Placeholders = append(m.Placeholders, p)
	}
	m.buildIndex()

	for i, rd := range decl.Rules {
		if strings.TrimSpace(rd.Placeholder) == "" {
			return nil, malformed(path, "rule %d has no placeholder", i+1)
		}
		if !NamePattern.MatchString(rd.Placeholder) {
			return nil, malformed(path, "rule %d has invalid placeholder name %q", i+1, rd.Placeholder).
				WithDetail("placeholder", rd.Placeholder)
		}

		kind := RuleKind(strings.ToLower(rd.Kind))
		switch kind {
		case "":
			kind = KindText
		case KindText, KindJSON, KindXML:
		default:
			return nil, malformed(path, "rule %d has unknown kind %q", i+1, rd.Kind)
		}
		if kind != KindText && strings.TrimSpace(rd.Key) == "" {
			return nil, malformed(path, "%s rule %d for %q needs a key", kind, i+1, rd.Placeholder).
				WithDetail("placeholder", rd.Placeholder)
		}
		if err := checkPatterns(path, rd.Files); err != nil {
			return nil, err
		}

		if err := m.registerRulePlaceholder(path, rd); err != nil {
			return nil, err
		}

		files := rd.Files
		if len(files) == 0 {
			files = []string{"**"}
		}
		m.Rules = append(m.Rules, Rule{
			Placeholder: rd.Placeholder,
			Token:       rd.Token,
			Files:       files,
			Kind:        kind,
			Key:         rd.Key,
			Order:       i,
		})
	}

	return m, nil
}

// registerRulePlaceholder adds a placeholder first referenced by a rule, or
// checks a restated type against the existing declaration.
func (m *Manifest) registerRulePlaceholder(path string, rd ruleDecl) error {
	typ, ok := parseType(rd.Type)
	if !ok {
		return malformed(path, "rule for %q has unknown type %q", rd.Placeholder, rd.Type).
			WithDetail("placeholder", rd.Placeholder)
	}

	existing, found := m.Placeholder(rd.Placeholder)
	if !found {
		m.Placeholders = append(m.Placeholders, Placeholder{
			Name:     rd.Placeholder,
			Type:     typ,
			Required: true,
		})
		m.buildIndex()
		return nil
	}

	if rd.Type != "" && existing.Type != typ {
		return malformed(path, "placeholder %q is %s but a rule declares it %s", rd.Placeholder, existing.Type, typ).
			WithDetail("placeholder", rd.Placeholder)
	}
	return nil
}

func parseType(s string) (PlaceholderType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string", "scalar":
		return TypeString, true
	case "bool", "boolean":
		return TypeBool, true
	case "list", "array":
		return TypeList, true
	}
	return "", false
}

func defaultText(v interface{}) (string, error) {
	switch d := v.(type) {
	case []interface{}:
		return strings.Join(cast.ToStringSlice(d), ","), nil
	default:
		return cast.ToStringE(d)
	}
}

func checkPatterns(path string, patterns []string) error {
	for _, p := range patterns {
		if !ValidPattern(p) {
			return malformed(path, "invalid file pattern %q", p)
		}
	}
	return nil
}

func malformed(path, format string, args ...interface{}) *errors.GeneratorError {
	return errors.New(errors.ErrManifestMalformed, fmt.Sprintf(format, args...)).
		WithDetail("path", path)
}
