// Package prompt asks for missing values on an interactive terminal. It only
// produces a raw answer mapping; validation is left to the resolver.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cast"

	"github.com/NextNodeSolutions/project-generator/pkg/config"
	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/NextNodeSolutions/project-generator/pkg/manifest"
	"github.com/NextNodeSolutions/project-generator/pkg/output"
	"github.com/NextNodeSolutions/project-generator/pkg/schema"
)

// maxAttempts bounds re-prompting after an invalid answer
const maxAttempts = 3

// Field is one question
type Field struct {
	Name        string
	Description string
	Default     string
	Choices     []string
	Required    bool
	Bool        bool
	List        bool
}

// Fields builds the questions for the schema fields followed by the template
// placeholders. defaults is the computed defaults tree with "system" and
// "extensions" tables.
func Fields(s *schema.Schema, m *manifest.Manifest, defaults map[string]interface{}) []Field {
	system := cast.ToStringMap(defaults["system"])
	ext := cast.ToStringMap(defaults[config.ExtensionsKey])

	var fields []Field
	if s != nil {
		for _, f := range s.Fields {
			fields = append(fields, Field{
				Name:        f.Name,
				Description: f.Description,
				Default:     display(system[f.Name]),
				Choices:     f.Values,
				Required:    f.Kind == schema.Required,
				Bool:        f.Type == schema.TypeBool,
			})
		}
	}

	if m != nil {
		for _, p := range m.Placeholders {
			if s != nil && s.Has(p.Name) {
				continue
			}
			fields = append(fields, Field{
				Name:        p.Name,
				Description: p.Description,
				Default:     display(ext[p.Name]),
				Required:    p.Required,
				Bool:        p.Type == manifest.TypeBool,
				List:        p.IsList(),
			})
		}
	}
	return fields
}

func display(v interface{}) string {
	if v == nil {
		return ""
	}
	if items, err := cast.ToStringSliceE(v); err == nil {
		if _, isString := v.(string); !isString {
			return strings.Join(items, ", ")
		}
	}
	return cast.ToString(v)
}

// Prompter reads answers from in and writes questions to out
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	styles output.Styles
}

// New creates a prompter
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:     bufio.NewReader(in),
		out:    out,
		styles: output.NewStyles(lipgloss.NewRenderer(out)),
	}
}

// Ask asks every field not already in supplied. An empty answer keeps the
// default and leaves the key out of the result. Input ending early stops the
// questions without an error.
func (p *Prompter) Ask(fields []Field, supplied map[string]interface{}) (map[string]interface{}, error) {
	answers := make(map[string]interface{})

	for _, f := range fields {
		if _, ok := supplied[f.Name]; ok {
			continue
		}

		value, done, err := p.askOne(f)
		if err != nil {
			return nil, err
		}
		if value != nil {
			answers[f.Name] = value
		}
		if done {
			break
		}
	}
	return answers, nil
}

// askOne returns the answer for f, or nil to keep the default. done reports
// that the input is exhausted.
func (p *Prompter) askOne(f Field) (interface{}, bool, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if _, err := fmt.Fprint(p.out, p.question(f)); err != nil {
			return nil, true, errors.Wrap(err, errors.ErrInternal, "failed to write prompt")
		}

		line, err := p.in.ReadString('\n')
		eof := err == io.EOF
		if err != nil && !eof {
			return nil, true, errors.Wrap(err, errors.ErrInvalidInput, "failed to read answer").
				WithDetail("field", f.Name)
		}

		answer := strings.TrimSpace(line)
		if answer == "" {
			return nil, eof, nil
		}

		value, problem := parse(f, answer)
		if problem == "" {
			return value, eof, nil
		}
		if eof {
			return nil, true, nil
		}
		_, _ = fmt.Fprintln(p.out, p.styles.Muted.Render("  "+problem))
	}
	return nil, false, nil
}

func parse(f Field, answer string) (interface{}, string) {
	switch {
	case f.Bool:
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, ""
		case "n", "no":
			return false, ""
		}
		b, err := strconv.ParseBool(answer)
		if err != nil {
			return nil, "answer yes or no"
		}
		return b, ""
	case len(f.Choices) > 0:
		for _, c := range f.Choices {
			if strings.EqualFold(c, answer) {
				return c, ""
			}
		}
		return nil, "choose one of " + strings.Join(f.Choices, ", ")
	default:
		// list answers stay comma separated strings
		return answer, ""
	}
}

func (p *Prompter) question(f Field) string {
	var b strings.Builder
	b.WriteString(p.styles.Bold.Render(f.Name))
	if f.Description != "" {
		b.WriteString(" " + p.styles.Muted.Render("("+f.Description+")"))
	}
	switch {
	case len(f.Choices) > 0:
		b.WriteString(" " + p.styles.Accent.Render("["+strings.Join(f.Choices, "/")+"]"))
	case f.Bool:
		b.WriteString(" " + p.styles.Accent.Render("[y/n]"))
	case f.List:
		b.WriteString(" " + p.styles.Accent.Render("[comma separated]"))
	}
	if f.Default != "" {
		b.WriteString(" " + p.styles.Muted.Render("default: "+f.Default))
	}
	b.WriteString(": ")
	return b.String()
}
