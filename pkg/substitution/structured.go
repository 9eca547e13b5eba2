package substitution

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/NextNodeSolutions/project-generator/pkg/manifest"
	"github.com/NextNodeSolutions/project-generator/pkg/types"
)

// applyStructured runs the json and xml rules governing rel, in manifest
// order so that a later rule setting the same field wins.
func (e *engine) applyStructured(rel string, content []byte) ([]byte, error) {
	var jsonRules, xmlRules []manifest.Rule
	for _, r := range e.rules {
		if !r.Applies(rel) {
			continue
		}
		switch r.Kind {
		case manifest.KindJSON:
			jsonRules = append(jsonRules, r)
		case manifest.KindXML:
			xmlRules = append(xmlRules, r)
		}
	}

	var err error
	if len(jsonRules) > 0 {
		if content, err = e.setJSON(rel, content, jsonRules); err != nil {
			return nil, err
		}
	}
	if len(xmlRules) > 0 {
		if content, err = e.setXML(rel, content, xmlRules); err != nil {
			return nil, err
		}
	}
	return content, nil
}

func (e *engine) value(r manifest.Rule, rel string) (types.Value, error) {
	v, ok := e.ctx.Lookup(r.Placeholder)
	if !ok {
		return types.Value{}, unresolved(r.Placeholder, rel)
	}
	return v, nil
}

func structuredError(err error, r manifest.Rule, rel, format string) *errors.GeneratorError {
	return errors.Wrapf(err, errors.ErrSubstStructured, format, rel).
		WithDetail("path", rel).
		WithDetail("placeholder", r.Placeholder).
		WithDetail("key", r.Key)
}

// setJSON sets each rule's JSONPath in the document. Keys without a leading
// "$" are taken relative to the root. The document keeps its key order; new
// top level keys go right after "name", or last when there is none.
func (e *engine) setJSON(rel string, content []byte, rules []manifest.Rule) ([]byte, error) {
	doc, err := oj.Parse(content)
	if err != nil {
		return nil, structuredError(err, rules[0], rel, "cannot parse %s as JSON")
	}
	layout, err := readJSONLayout(content)
	if err != nil {
		return nil, structuredError(err, rules[0], rel, "cannot parse %s as JSON")
	}

	for _, r := range rules {
		v, err := e.value(r, rel)
		if err != nil {
			return nil, err
		}
		x, err := jp.ParseString(jsonPath(r.Key))
		if err != nil {
			return nil, structuredError(err, r, rel, "invalid JSON path in rule for %s")
		}
		if err := x.Set(doc, jsonValue(v)); err != nil {
			return nil, structuredError(err, r, rel, "cannot set JSON field in %s")
		}
		layout.noteSet(x)
	}

	var b strings.Builder
	layout.write(&b, doc, "", 0)
	if strings.HasSuffix(string(content), "\n") {
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

func jsonPath(key string) string {
	if strings.HasPrefix(key, "$") {
		return key
	}
	return "$." + key
}

func jsonValue(v types.Value) interface{} {
	switch v.Kind() {
	case types.KindList:
		items := v.Items()
		out := make([]interface{}, len(items))
		for i, item := range items {
			out[i] = item
		}
		return out
	case types.KindBool:
		return v.BoolValue()
	default:
		return v.Scalar()
	}
}

// setXML sets the text of the element at each rule's slash separated path,
// or an attribute when the last segment starts with "@". Missing elements
// are created.
func (e *engine) setXML(rel string, content []byte, rules []manifest.Rule) ([]byte, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	if err := doc.ReadFromBytes(content); err != nil {
		return nil, structuredError(err, rules[0], rel, "cannot parse %s as XML")
	}
	root := doc.Root()
	if root == nil {
		return nil, structuredError(errors.New(errors.ErrSubstStructured, "no root element"), rules[0], rel, "cannot parse %s as XML")
	}

	for _, r := range rules {
		v, err := e.value(r, rel)
		if err != nil {
			return nil, err
		}
		if v.IsList() {
			return nil, errors.Newf(errors.ErrSubstMalformedList,
				"list placeholder %q cannot be written to an XML field (%s)", r.Placeholder, rel).
				WithDetail("placeholder", r.Placeholder).
				WithDetail("path", rel)
		}

		segments := strings.Split(strings.Trim(r.Key, "/"), "/")
		if segments[0] == root.Tag {
			segments = segments[1:]
		}

		el := root
		for i, seg := range segments {
			if strings.HasPrefix(seg, "@") {
				if i != len(segments)-1 {
					return nil, structuredError(errors.Newf(errors.ErrSubstStructured, "attribute %s must be last", seg),
						r, rel, "invalid XML key in rule for %s")
				}
				el.CreateAttr(strings.TrimPrefix(seg, "@"), v.Scalar())
				el = nil
				break
			}
			child := el.SelectElement(seg)
			if child == nil {
				child = el.CreateElement(seg)
			}
			el = child
		}
		if el != nil {
			el.SetText(v.Scalar())
		}
	}

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, structuredError(err, rules[0], rel, "cannot write %s")
	}
	return out, nil
}
