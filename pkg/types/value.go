package types

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value
type ValueKind string

const (
	KindString ValueKind = "string"
	KindBool   ValueKind = "bool"
	KindList   ValueKind = "list"
)

// Value is a context value: a string, a boolean or an ordered list of strings.
// The zero Value is an empty string.
type Value struct {
	kind ValueKind
	str  string
	b    bool
	list []string
}

// String creates a string value
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Bool creates a boolean value
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// List creates a list value. The elements are copied.
func List(items ...string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

// Kind returns the variant tag
func (v Value) Kind() ValueKind {
	if v.kind == "" {
		return KindString
	}
	return v.kind
}

// IsList reports whether the value is a list
func (v Value) IsList() bool {
	return v.kind == KindList
}

// Scalar renders a non-list value as text. Lists render comma-separated.
func (v Value) Scalar() string {
	switch v.Kind() {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		return strings.Join(v.list, ",")
	default:
		return v.str
	}
}

// BoolValue returns the boolean held by the value
func (v Value) BoolValue() bool {
	return v.kind == KindBool && v.b
}

// Items returns a copy of the list elements; nil for scalars
func (v Value) Items() []string {
	if v.kind != KindList {
		return nil
	}
	cp := make([]string, len(v.list))
	copy(cp, v.list)
	return cp
}

// IsEmpty reports whether a string is empty or a list has no elements.
// Booleans are never empty.
func (v Value) IsEmpty() bool {
	switch v.Kind() {
	case KindBool:
		return false
	case KindList:
		return len(v.list) == 0
	default:
		return strings.TrimSpace(v.str) == ""
	}
}

// Interface returns the value as a plain Go value (string, bool or []string)
func (v Value) Interface() interface{} {
	switch v.Kind() {
	case KindBool:
		return v.b
	case KindList:
		return v.Items()
	default:
		return v.str
	}
}

// Equal reports whether two values hold the same variant and content
func (v Value) Equal(other Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case KindBool:
		return v.b == other.b
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != other.list[i] {
				return false
			}
		}
		return true
	default:
		return v.str == other.str
	}
}

// GoString is used by %#v in test failure output
func (v Value) GoString() string {
	return fmt.Sprintf("types.Value{%s: %q}", v.Kind(), v.Scalar())
}
