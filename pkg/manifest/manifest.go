package manifest

import (
	"regexp"
)

// Default token delimiters
const (
	DefaultOpen  = "{{"
	DefaultClose = "}}"
)

// NamePattern is the grammar of placeholder names
var NamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PlaceholderType is the value type of a placeholder
type PlaceholderType string

const (
	TypeString PlaceholderType = "string"
	TypeBool   PlaceholderType = "bool"
	TypeList   PlaceholderType = "list"
)

// RuleKind selects how a rule rewrites the files it matches
type RuleKind string

const (
	// KindText replaces the rule token in text content and path names
	KindText RuleKind = "text"
	// KindJSON sets the field at Key in JSON documents
	KindJSON RuleKind = "json"
	// KindXML sets the element at Key in XML documents
	KindXML RuleKind = "xml"
)

// Delimiters open and close a placeholder token
type Delimiters struct {
	Open  string
	Close string
}

// Token returns the delimited marker for name
func (d Delimiters) Token(name string) string {
	return d.Open + name + d.Close
}

// BlockStart returns the marker opening a list block for name
func (d Delimiters) BlockStart(name string) string {
	return d.Open + "#" + name + d.Close
}

// BlockEnd returns the marker closing a list block for name
func (d Delimiters) BlockEnd(name string) string {
	return d.Open + "/" + name + d.Close
}

// TokenPattern matches a delimited token: the open delimiter, an optional
// block sigil, an identifier, the close delimiter. The identifier is the
// first submatch. Text such as "${{ secrets.TOKEN }}" is not a token.
func (d Delimiters) TokenPattern() *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(d.Open) + `[#/]?([A-Za-z_][A-Za-z0-9_]*)` + regexp.QuoteMeta(d.Close))
}

// Placeholder is a value the template expects
type Placeholder struct {
	Name        string
	Type        PlaceholderType
	Required    bool
	Description string
	// Default is the raw default text; empty when none was declared
	Default    string
	HasDefault bool
	// Files restricts where the delimited token is replaced
	Files []string
}

// IsList reports whether the placeholder is list-typed
func (p Placeholder) IsList() bool {
	return p.Type == TypeList
}

// Rule binds a placeholder to a token and the files it governs
type Rule struct {
	Placeholder string
	// Token is a literal string to replace; empty means the delimited marker
	Token string
	Files []string
	Kind  RuleKind
	// Key is the field path of structured rules
	Key string
	// Order is the rule's position in the manifest; later rules win ties
	Order int
}

// Applies reports whether the rule governs relPath (slash separated)
func (r Rule) Applies(relPath string) bool {
	return MatchAny(r.Files, relPath)
}

// Manifest is a parsed template declaration
type Manifest struct {
	// Path is the declaration file the manifest was loaded from
	Path        string
	Name        string
	Description string
	Delimiters  Delimiters
	FormatGo    bool

	Placeholders []Placeholder
	Rules        []Rule

	index map[string]int
}

// FileName returns the base name of the declaration file
func (m *Manifest) FileName() string {
	return baseName(m.Path)
}

// Placeholder returns the named placeholder
func (m *Manifest) Placeholder(name string) (Placeholder, bool) {
	i, ok := m.index[name]
	if !ok {
		return Placeholder{}, false
	}
	return m.Placeholders[i], true
}

// Names returns the distinct placeholder names in order of first declaration
func (m *Manifest) Names() []string {
	names := make([]string, len(m.Placeholders))
	for i, p := range m.Placeholders {
		names[i] = p.Name
	}
	return names
}

// ListNames returns the names of list-typed placeholders
func (m *Manifest) ListNames() []string {
	var names []string
	for _, p := range m.Placeholders {
		if p.IsList() {
			names = append(names, p.Name)
		}
	}
	return names
}

// TokenFor returns the literal text a text rule replaces
func (m *Manifest) TokenFor(r Rule) string {
	if r.Token != "" {
		return r.Token
	}
	return m.Delimiters.Token(r.Placeholder)
}

// EffectiveRules returns every rule in precedence order, lowest first: one
// implicit text rule per placeholder for its delimited token, followed by the
// declared rules in manifest order.
func (m *Manifest) EffectiveRules() []Rule {
	rules := make([]Rule, 0, len(m.Placeholders)+len(m.Rules))
	for _, p := range m.Placeholders {
		files := p.Files
		if len(files) == 0 {
			files = []string{"**"}
		}
		rules = append(rules, Rule{
			Placeholder: p.Name,
			Files:       files,
			Kind:        KindText,
			Order:       -1,
		})
	}
	return append(rules, m.Rules...)
}

func (m *Manifest) buildIndex() {
	m.index = make(map[string]int, len(m.Placeholders))
	for i, p := range m.Placeholders {
		m.index[p.Name] = i
	}
}
