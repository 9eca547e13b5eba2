package schema

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/pelletier/go-toml/v2"
)

//go:embed embedded/schema.toml
var defaultSchema []byte

// CurrentVersion is the only schema_version this build understands
const CurrentVersion = 1

// FieldKind classifies a system field
type FieldKind string

const (
	Required   FieldKind = "required"
	Optional   FieldKind = "optional"
	Enumerated FieldKind = "enumerated"
)

// FieldType is the value type of a system field
type FieldType string

const (
	TypeString FieldType = "string"
	TypeBool   FieldType = "bool"
)

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Field describes one system field
type Field struct {
	Name        string      `toml:"name"`
	Kind        FieldKind   `toml:"kind"`
	Type        FieldType   `toml:"type"`
	Values      []string    `toml:"values"`
	Default     interface{} `toml:"default"`
	Description string      `toml:"description"`
}

// Allows reports whether value is legal for an enumerated field.
// Non-enumerated fields allow everything.
func (f Field) Allows(value string) bool {
	if f.Kind != Enumerated {
		return true
	}
	for _, v := range f.Values {
		if v == value {
			return true
		}
	}
	return false
}

// Schema is an ordered set of system fields
type Schema struct {
	Version int     `toml:"schema_version"`
	Fields  []Field `toml:"fields"`

	index map[string]int
}

// Default returns the schema shipped with the binary
func Default() (*Schema, error) {
	return Parse(defaultSchema)
}

// MustDefault is Default for package-level use in tests and commands
func MustDefault() *Schema {
	s, err := Default()
	if err != nil {
		panic(err)
	}
	return s
}

// Parse decodes and validates a schema document
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to parse field schema")
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Schema) validate() error {
	if s.Version != CurrentVersion {
		return errors.Newf(errors.ErrInternal, "unsupported schema_version %d", s.Version).
			WithDetail("version", s.Version)
	}

	s.index = make(map[string]int, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		if !fieldNamePattern.MatchString(f.Name) {
			return errors.Newf(errors.ErrInternal, "invalid schema field name %q", f.Name)
		}
		if _, dup := s.index[f.Name]; dup {
			return errors.Newf(errors.ErrInternal, "duplicate schema field %q", f.Name)
		}
		if f.Type == "" {
			f.Type = TypeString
		}
		switch f.Kind {
		case Required, Optional:
		case Enumerated:
			if len(f.Values) == 0 {
				return errors.Newf(errors.ErrInternal, "enumerated field %q has no values", f.Name)
			}
		default:
			return errors.Newf(errors.ErrInternal, "field %q has unknown kind %q", f.Name, f.Kind)
		}
		if f.Type != TypeString && f.Type != TypeBool {
			return errors.Newf(errors.ErrInternal, "field %q has unknown type %q", f.Name, f.Type)
		}
		if f.Default != nil {
			if err := checkDefault(*f); err != nil {
				return err
			}
		}
		s.index[f.Name] = i
	}
	return nil
}

func checkDefault(f Field) error {
	switch d := f.Default.(type) {
	case bool:
		if f.Type != TypeBool {
			return errors.Newf(errors.ErrInternal, "field %q has a boolean default but type %s", f.Name, f.Type)
		}
	case string:
		if f.Type != TypeString {
			return errors.Newf(errors.ErrInternal, "field %q has a string default but type %s", f.Name, f.Type)
		}
		if !f.Allows(d) {
			return errors.Newf(errors.ErrInternal, "default %q of field %q is not an allowed value", d, f.Name)
		}
	default:
		return errors.Newf(errors.ErrInternal, "field %q has unsupported default %v", f.Name, fmt.Sprint(d))
	}
	return nil
}

// Field returns the named field
func (s *Schema) Field(name string) (Field, bool) {
	if s.index == nil {
		return Field{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// Has reports whether name is a system field
func (s *Schema) Has(name string) bool {
	_, ok := s.Field(name)
	return ok
}

// Names returns the field names in declaration order
func (s *Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// RequiredNames returns required field names sorted lexically
func (s *Schema) RequiredNames() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Kind == Required {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	return names
}
