package types

import (
	"sort"
	"time"
)

// Identity names a template: its category directory and its own name
type Identity struct {
	Category string
	Name     string
}

// String returns "category/name", or just the name when no category is set
func (i Identity) String() string {
	if i.Category == "" {
		return i.Name
	}
	return i.Category + "/" + i.Name
}

// GenerationContext is the merged, validated set of values driving one run.
// It is built once by the resolver and must not be modified afterwards.
type GenerationContext struct {
	Template  Identity
	Timestamp time.Time

	system     map[string]Value
	extensions map[string]Value
}

// NewGenerationContext builds a context from already validated field maps.
// The maps are copied.
func NewGenerationContext(id Identity, ts time.Time, system, extensions map[string]Value) *GenerationContext {
	c := &GenerationContext{
		Template:   id,
		Timestamp:  ts,
		system:     make(map[string]Value, len(system)),
		extensions: make(map[string]Value, len(extensions)),
	}
	for k, v := range system {
		c.system[k] = v
	}
	for k, v := range extensions {
		c.extensions[k] = v
	}
	return c
}

// Lookup returns the value bound to name, searching system fields first
func (c *GenerationContext) Lookup(name string) (Value, bool) {
	if v, ok := c.system[name]; ok {
		return v, true
	}
	v, ok := c.extensions[name]
	return v, ok
}

// System returns a system field value
func (c *GenerationContext) System(name string) (Value, bool) {
	v, ok := c.system[name]
	return v, ok
}

// Extension returns an extension field value
func (c *GenerationContext) Extension(name string) (Value, bool) {
	v, ok := c.extensions[name]
	return v, ok
}

// SystemString returns the scalar text of a system field, or "" when absent
func (c *GenerationContext) SystemString(name string) string {
	if v, ok := c.system[name]; ok {
		return v.Scalar()
	}
	return ""
}

// SystemNames returns the system field keys in lexical order
func (c *GenerationContext) SystemNames() []string {
	return sortedKeys(c.system)
}

// ExtensionNames returns the extension field keys in lexical order
func (c *GenerationContext) ExtensionNames() []string {
	return sortedKeys(c.extensions)
}

// Equal compares two contexts field by field, including the timestamp
func (c *GenerationContext) Equal(other *GenerationContext) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.Template != other.Template || !c.Timestamp.Equal(other.Timestamp) {
		return false
	}
	return valuesEqual(c.system, other.system) && valuesEqual(c.extensions, other.extensions)
}

func valuesEqual(a, b map[string]Value) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || !v.Equal(w) {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
