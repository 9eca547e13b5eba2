package substitution

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// jsonLayout remembers the key order of every object in a JSON document so
// a modified document can be written back in the order it was read. Objects
// are identified by their location: the chain of keys and indexes from the
// root.
type jsonLayout struct {
	order map[string][]string
	added map[string][]string
	stack []jsonFrame
}

type jsonFrame struct {
	loc    string
	object bool
	key    string
	index  int
}

var _ oj.TokenHandler = (*jsonLayout)(nil)

func readJSONLayout(content []byte) (*jsonLayout, error) {
	l := &jsonLayout{
		order: make(map[string][]string),
		added: make(map[string][]string),
	}
	if err := oj.Tokenize(content, l); err != nil {
		return nil, err
	}
	l.stack = nil
	return l, nil
}

func childLoc(loc, key string) string { return loc + "\x00" + key }

func indexLoc(loc string, i int) string { return loc + "\x01" + strconv.Itoa(i) }

// next returns the location of the value being read and advances the
// enclosing array
func (l *jsonLayout) next() string {
	if len(l.stack) == 0 {
		return ""
	}
	top := &l.stack[len(l.stack)-1]
	if top.object {
		return childLoc(top.loc, top.key)
	}
	loc := indexLoc(top.loc, top.index)
	top.index++
	return loc
}

func (l *jsonLayout) push(object bool) {
	l.stack = append(l.stack, jsonFrame{loc: l.next(), object: object})
}

func (l *jsonLayout) pop() { l.stack = l.stack[:len(l.stack)-1] }

func (l *jsonLayout) Null() { l.next() }
func (l *jsonLayout) Bool(bool) { l.next() }
func (l *jsonLayout) Int(int64) { l.next() }
func (l *jsonLayout) Float(float64) { l.next() }
func (l *jsonLayout) Number(string) { l.next() }
func (l *jsonLayout) String(string) { l.next() }
func (l *jsonLayout) ObjectStart() { l.push(true) }
func (l *jsonLayout) ObjectEnd() { l.pop() }
func (l *jsonLayout) ArrayStart() { l.push(false) }
func (l *jsonLayout) ArrayEnd() { l.pop() }
func (l *jsonLayout) Key(key string) {
	top := &l.stack[len(l.stack)-1]
	top.key = key
	l.order[top.loc] = append(l.order[top.loc], key)
}

// noteSet records the keys a rule's path may create, in rule order. Paths
// using anything but plain children and indexes are left to the fallback
// ordering.
func (l *jsonLayout) noteSet(x jp.Expr) {
	loc := ""
	for _, frag := range x {
		switch f := frag.(type) {
		case jp.Root, jp.Bracket:
		case jp.Child:
			key := string(f)
			if !containsString(l.added[loc], key) {
				l.added[loc] = append(l.added[loc], key)
			}
			loc = childLoc(loc, key)
		case jp.Nth:
			if f < 0 {
				return
			}
			loc = indexLoc(loc, int(f))
		default:
			return
		}
	}
}

// keys orders the keys of obj at loc: keys read from the source first; keys
// created by rules next, in rule order; anything else sorted. At the root,
// created keys follow "name" when the document has one.
func (l *jsonLayout) keys(loc string, obj map[string]interface{}) []string {
	out := make([]string, 0, len(obj))
	seen := make(map[string]bool, len(obj))
	add := func(k string) {
		if _, ok := obj[k]; ok && !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}

	original := l.order[loc]
	var created []string
	for _, k := range l.added[loc] {
		if !containsString(original, k) {
			created = append(created, k)
		}
	}

	for _, k := range original {
		add(k)
		if loc == "" && k == "name" {
			for _, c := range created {
				add(c)
			}
		}
	}
	for _, c := range created {
		add(c)
	}

	var rest []string
	for k := range obj {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// write renders v with two space indentation
func (l *jsonLayout) write(b *strings.Builder, v interface{}, loc string, depth int) {
	switch tv := v.(type) {
	case map[string]interface{}:
		if len(tv) == 0 {
			b.WriteString("{}")
			return
		}
		keys := l.keys(loc, tv)
		b.WriteString("{\n")
		for i, k := range keys {
			indent(b, depth+1)
			b.WriteString(oj.JSON(k))
			b.WriteString(": ")
			l.write(b, tv[k], childLoc(loc, k), depth+1)
			if i < len(keys)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		indent(b, depth)
		b.WriteByte('}')
	case []interface{}:
		if len(tv) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for i, item := range tv {
			indent(b, depth+1)
			l.write(b, item, indexLoc(loc, i), depth+1)
			if i < len(tv)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		indent(b, depth)
		b.WriteByte(']')
	default:
		b.WriteString(oj.JSON(tv))
	}
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
