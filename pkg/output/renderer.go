package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/ohler55/ojg/oj"
	"github.com/pterm/pterm"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/NextNodeSolutions/project-generator/pkg/history"
	"github.com/NextNodeSolutions/project-generator/pkg/logging"
	"github.com/NextNodeSolutions/project-generator/pkg/manifest"
	"github.com/NextNodeSolutions/project-generator/pkg/templates"
)

// Summary describes a finished generation run
type Summary struct {
	Template  string
	Project   string
	Mode      string
	Target    string
	URL       string
	Workspace string
	DryRun    bool
	Paths     []string
}

// Renderer writes command results in one output format
type Renderer struct {
	writer io.Writer
	format Format
	styles Styles
	width  int
}

// NewRenderer creates a renderer for w. FormatAuto is treated as text unless
// the caller resolved it with DetectFormat.
func NewRenderer(w io.Writer, format Format) *Renderer {
	log := logging.GetLogger("output")

	if format == FormatAuto {
		format = FormatText
	}

	lip := lipgloss.NewRenderer(w)
	if format != FormatTerminal {
		lip.SetColorProfile(termenv.Ascii)
	}
	log.Debug().
		Str("format", format.String()).
		Str("colorProfile", fmt.Sprintf("%v", lip.ColorProfile())).
		Msg("Created renderer")

	return &Renderer{
		writer: w,
		format: format,
		styles: NewStyles(lip),
		width:  80,
	}
}

// Format returns the effective output format
func (r *Renderer) Format() Format {
	return r.format
}

// Templates renders the template catalog
func (r *Renderer) Templates(list []templates.Template) error {
	if r.format == FormatJSON {
		out := make([]interface{}, 0, len(list))
		for _, t := range list {
			out = append(out, map[string]interface{}{
				"category":    t.Identity.Category,
				"name":        t.Identity.Name,
				"description": t.Description,
				"dir":         t.Dir,
			})
		}
		return r.json(out)
	}

	if len(list) == 0 {
		return r.line(r.styles.Muted.Render("No templates found"))
	}

	data := pterm.TableData{{"TEMPLATE", "DESCRIPTION"}}
	for _, t := range list {
		data = append(data, []string{t.Identity.String(), t.Description})
	}
	return r.table(data)
}

// TemplateDetail renders one template and its declared placeholders
func (r *Renderer) TemplateDetail(t templates.Template, m *manifest.Manifest) error {
	if r.format == FormatJSON {
		placeholders := make([]interface{}, 0, len(m.Placeholders))
		for _, p := range m.Placeholders {
			entry := map[string]interface{}{
				"name":     p.Name,
				"type":     string(p.Type),
				"required": p.Required,
			}
			if p.Description != "" {
				entry["description"] = p.Description
			}
			if p.HasDefault {
				entry["default"] = p.Default
			}
			placeholders = append(placeholders, entry)
		}
		return r.json(map[string]interface{}{
			"template":     t.Identity.String(),
			"description":  m.Description,
			"manifest":     t.Manifest,
			"placeholders": placeholders,
			"rules":        len(m.Rules),
		})
	}

	md := templateMarkdown(t, m)
	if r.format != FormatTerminal {
		return r.line(md)
	}

	tr, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(r.width))
	if err != nil {
		return r.line(md)
	}
	rendered, err := tr.Render(md)
	if err != nil {
		return r.line(md)
	}
	_, err = io.WriteString(r.writer, rendered)
	return err
}

func templateMarkdown(t templates.Template, m *manifest.Manifest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", t.Identity.String())
	if m.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", m.Description)
	}
	fmt.Fprintf(&b, "Declared in `%s`, tokens `%s`.\n\n", t.Manifest, m.Delimiters.Token("name"))

	if len(m.Placeholders) == 0 {
		b.WriteString("No placeholders.\n")
		return b.String()
	}

	b.WriteString("| Placeholder | Type | Required | Default | Description |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, p := range m.Placeholders {
		def := ""
		if p.HasDefault {
			def = "`" + p.Default + "`"
		}
		req := "no"
		if p.Required {
			req = "yes"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", p.Name, p.Type, req, def, p.Description)
	}
	return b.String()
}

// History renders recorded runs
func (r *Renderer) History(entries []history.Entry) error {
	if r.format == FormatJSON {
		out := make([]interface{}, 0, len(entries))
		for _, e := range entries {
			out = append(out, map[string]interface{}{
				"id":         e.ID,
				"template":   e.Template,
				"project":    e.Project,
				"mode":       e.Mode,
				"target":     e.Target,
				"status":     e.Status,
				"error_kind": e.ErrorKind,
				"created_at": e.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		return r.json(out)
	}

	if len(entries) == 0 {
		return r.line(r.styles.Muted.Render("No runs recorded"))
	}

	data := pterm.TableData{{"WHEN", "TEMPLATE", "PROJECT", "MODE", "STATUS", "TARGET"}}
	for _, e := range entries {
		status := e.Status
		if e.ErrorKind != "" {
			status = fmt.Sprintf("%s (%s)", e.Status, e.ErrorKind)
		}
		data = append(data, []string{
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.Template,
			e.Project,
			e.Mode,
			status,
			e.Target,
		})
	}
	return r.table(data)
}

// Generated renders the outcome of a successful run
func (r *Renderer) Generated(s Summary) error {
	if r.format == FormatJSON {
		out := map[string]interface{}{
			"template": s.Template,
			"project":  s.Project,
			"mode":     s.Mode,
			"dry_run":  s.DryRun,
		}
		if s.Target != "" {
			out["target"] = s.Target
		}
		if s.URL != "" {
			out["url"] = s.URL
		}
		if s.DryRun {
			out["paths"] = s.Paths
		}
		return r.json(out)
	}

	if s.DryRun {
		if err := r.line(r.styles.Heading.Render(fmt.Sprintf("%s from %s (dry run)", s.Project, s.Template))); err != nil {
			return err
		}
		for _, p := range s.Paths {
			if err := r.line("  " + r.styles.Path.Render(p)); err != nil {
				return err
			}
		}
		return nil
	}

	where := s.Target
	if s.URL != "" {
		where = s.URL
	}
	return r.line(fmt.Sprintf("%s %s from %s at %s",
		r.styles.Success.Render("Created"),
		r.styles.Bold.Render(s.Project),
		s.Template,
		r.styles.Path.Render(where)))
}

// Error renders err with its code and details
func (r *Renderer) Error(err error) error {
	if err == nil {
		return nil
	}

	code := errors.GetErrorCode(err)
	details := errors.GetErrorDetails(err)

	if r.format == FormatJSON {
		out := map[string]interface{}{
			"error": err.Error(),
			"code":  string(code),
			"kind":  string(errors.GetKind(err)),
		}
		if len(details) > 0 {
			out["details"] = details
		}
		return r.json(out)
	}

	var msg string
	if r.format == FormatTerminal {
		msg = pterm.Error.Sprintf("%s", err.Error())
	} else {
		msg = "Error: " + err.Error()
	}
	if err := r.line(msg); err != nil {
		return err
	}

	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := r.line(fmt.Sprintf("  %s: %v", r.styles.Muted.Render(k), details[k])); err != nil {
			return err
		}
	}
	return nil
}

// Warn renders a warning line
func (r *Renderer) Warn(message string) error {
	if r.format == FormatJSON {
		return nil
	}
	if r.format == FormatTerminal {
		return r.line(pterm.Warning.Sprintf("%s", message))
	}
	return r.line("Warning: " + message)
}

func (r *Renderer) table(data pterm.TableData) error {
	table := pterm.DefaultTable.WithHasHeader().WithData(data)
	if r.format != FormatTerminal {
		plain := pterm.NewStyle()
		table = table.WithHeaderStyle(plain).WithSeparatorStyle(plain).WithHeaderRowSeparatorStyle(plain)
	}
	out, err := table.Srender()
	if err != nil {
		return err
	}
	return r.line(out)
}

func (r *Renderer) json(v interface{}) error {
	return r.line(oj.JSON(v, &oj.Options{Indent: 2, Sort: true}))
}

func (r *Renderer) line(s string) error {
	_, err := fmt.Fprintln(r.writer, s)
	return err
}
