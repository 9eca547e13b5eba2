package substitution

import (
	"sort"
	"strings"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/NextNodeSolutions/project-generator/pkg/manifest"
	"github.com/NextNodeSolutions/project-generator/pkg/types"
)

// binding is the winning rule for one token within one file
type binding struct {
	token       string
	placeholder string
	value       types.Value
	bound       bool
	literal     bool
}

// bindings returns the text rule bindings governing rel, longest token first.
// When several rules share a token the later one wins.
func (e *engine) bindings(rel string) []binding {
	byToken := make(map[string]binding)
	for _, r := range e.rulesFor(rel, manifest.KindText) {
		v, ok := e.ctx.Lookup(r.Placeholder)
		byToken[e.manifest.TokenFor(r)] = binding{
			token:       e.manifest.TokenFor(r),
			placeholder: r.Placeholder,
			value:       v,
			bound:       ok,
			literal:     r.Token != "",
		}
	}

	out := make([]binding, 0, len(byToken))
	for _, b := range byToken {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].token) != len(out[j].token) {
			return len(out[i].token) > len(out[j].token)
		}
		return out[i].token < out[j].token
	})
	return out
}

// scalarPairs builds strings.Replacer arguments; bindings are already ordered
// so the longest token is tried first at each position.
func scalarPairs(bs []binding) []string {
	var pairs []string
	for _, b := range bs {
		if b.bound && !b.value.IsList() {
			pairs = append(pairs, b.token, b.value.Scalar())
		}
	}
	return pairs
}

// checkLiterals fails when a literal token has no value to replace it with.
// Unbound delimited tokens are left for the residual scan.
func checkLiterals(bs []binding, text, rel string) error {
	for _, b := range bs {
		if b.literal && !b.bound && strings.Contains(text, b.token) {
			return unresolved(b.placeholder, rel)
		}
	}
	return nil
}

// resolveName substitutes one path segment
func (e *engine) resolveName(rel, name string) (string, error) {
	bs := e.bindings(rel)
	if err := checkLiterals(bs, name, rel); err != nil {
		return "", err
	}

	for _, b := range bs {
		if b.bound && b.value.IsList() && strings.Contains(name, b.token) {
			return "", errors.Newf(errors.ErrSubstListInPath,
				"list placeholder %q cannot be used in a path name (%s)", b.placeholder, rel).
				WithDetail("placeholder", b.placeholder).
				WithDetail("path", rel)
		}
	}

	out := name
	if pairs := scalarPairs(bs); len(pairs) > 0 {
		out = strings.NewReplacer(pairs...).Replace(name)
	}

	if placeholder, found := e.scanner.find(out); found {
		return "", unresolved(placeholder, rel)
	}
	if out == "" || out == "." || out == ".." || strings.ContainsAny(out, `/\`) {
		return "", errors.Newf(errors.ErrSubstInvalidPath, "%s resolves to the invalid name %q", rel, out).
			WithDetail("path", rel).
			WithDetail("value", out)
	}
	return out, nil
}

// listGroup collects every token of one list placeholder within a file
type listGroup struct {
	placeholder string
	tokens      []string
	items       []string
}

func listGroups(bs []binding) []listGroup {
	index := make(map[string]int)
	var groups []listGroup
	for _, b := range bs {
		if !b.bound || !b.value.IsList() {
			continue
		}
		i, ok := index[b.placeholder]
		if !ok {
			i = len(groups)
			index[b.placeholder] = i
			groups = append(groups, listGroup{placeholder: b.placeholder, items: b.value.Items()})
		}
		groups[i].tokens = append(groups[i].tokens, b.token)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].placeholder < groups[j].placeholder })
	return groups
}

func (g listGroup) in(line string) bool {
	for _, t := range g.tokens {
		if strings.Contains(line, t) {
			return true
		}
	}
	return false
}

func (g listGroup) replace(line, item string) string {
	pairs := make([]string, 0, len(g.tokens)*2)
	for _, t := range g.tokens {
		pairs = append(pairs, t, item)
	}
	return strings.NewReplacer(pairs...).Replace(line)
}

// substituteText resolves the content of one text file
func (e *engine) substituteText(rel, content string) (string, error) {
	bs := e.bindings(rel)
	if err := checkLiterals(bs, content, rel); err != nil {
		return "", err
	}

	lines := strings.SplitAfter(content, "\n")
	groups := listGroups(bs)

	var err error
	for _, g := range groups {
		if lines, err = expandBlocks(lines, g, e.manifest.Delimiters, rel); err != nil {
			return "", err
		}
	}

	var scalar *strings.Replacer
	if pairs := scalarPairs(bs); len(pairs) > 0 {
		scalar = strings.NewReplacer(pairs...)
	}

	var b strings.Builder
	b.Grow(len(content))
	for _, line := range lines {
		var hit []listGroup
		for _, g := range groups {
			if g.in(line) {
				hit = append(hit, g)
			}
		}

		switch len(hit) {
		case 0:
			b.WriteString(replaceWith(scalar, line))
		case 1:
			for _, copied := range replicate(line, hit[0]) {
				b.WriteString(replaceWith(scalar, copied))
			}
		default:
			return "", errors.Newf(errors.ErrSubstMalformedList,
				"list placeholders %q and %q share a line in %s", hit[0].placeholder, hit[1].placeholder, rel).
				WithDetail("placeholder", hit[0].placeholder).
				WithDetail("path", rel)
		}
	}
	return b.String(), nil
}

// replicate copies line once per element of g, keeping line breaks between copies
func replicate(line string, g listGroup) []string {
	out := make([]string, 0, len(g.items))
	for i, item := range g.items {
		copied := g.replace(line, item)
		if i < len(g.items)-1 && !strings.HasSuffix(copied, "\n") {
			copied += "\n"
		}
		out = append(out, copied)
	}
	return out
}

// expandBlocks replaces every block of g with one copy of its body per element
func expandBlocks(lines []string, g listGroup, d manifest.Delimiters, rel string) ([]string, error) {
	start, end := d.BlockStart(g.placeholder), d.BlockEnd(g.placeholder)
	malformed := func(reason string) error {
		return errors.Newf(errors.ErrSubstMalformedList, "%s for %q in %s", reason, g.placeholder, rel).
			WithDetail("placeholder", g.placeholder).
			WithDetail("path", rel)
	}

	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		hasStart, hasEnd := strings.Contains(line, start), strings.Contains(line, end)

		switch {
		case hasStart && hasEnd:
			return nil, malformed("block markers must be on separate lines")
		case hasEnd:
			return nil, malformed("closing block marker without an opening one")
		case !hasStart:
			out = append(out, line)
			continue
		}

		closing := -1
		for j := i + 1; j < len(lines); j++ {
			if strings.Contains(lines[j], start) {
				return nil, malformed("nested block")
			}
			if strings.Contains(lines[j], end) {
				closing = j
				break
			}
		}
		if closing < 0 {
			return nil, malformed("unterminated block")
		}

		body := lines[i+1 : closing]
		for _, item := range g.items {
			for _, bodyLine := range body {
				out = append(out, g.replace(bodyLine, item))
			}
		}
		i = closing
	}
	return out, nil
}

func replaceWith(r *strings.Replacer, s string) string {
	if r == nil {
		return s
	}
	return r.Replace(s)
}
