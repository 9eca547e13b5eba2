package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/NextNodeSolutions/project-generator/pkg/history"
	"github.com/NextNodeSolutions/project-generator/pkg/manifest"
	"github.com/NextNodeSolutions/project-generator/pkg/templates"
	"github.com/NextNodeSolutions/project-generator/pkg/types"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatAuto, false},
		{"auto", FormatAuto, false},
		{"terminal", FormatTerminal, false},
		{"TEXT", FormatText, false},
		{"plain", FormatText, false},
		{"json", FormatJSON, false},
		{"yaml", FormatAuto, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotEqual(t, "unknown", got.String())
		})
	}
}

func TestIsTerminal_Nil(t *testing.T) {
	assert.False(t, IsTerminal(nil))
}

func sampleTemplates() []templates.Template {
	return []templates.Template{
		{Identity: types.Identity{Category: "apps", Name: "web"}, Dir: "/t/apps/web", Manifest: "apps/web/template.toml", Description: "Web app"},
		{Identity: types.Identity{Category: "packages", Name: "library"}, Dir: "/t/packages/library", Manifest: "packages/library/template.toml"},
	}
}

func TestRenderer_TemplatesText(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, FormatText)
	assert.Equal(t, FormatText, r.Format())

	require.NoError(t, r.Templates(sampleTemplates()))
	out := buf.String()
	assert.Contains(t, out, "TEMPLATE")
	assert.Contains(t, out, "apps/web")
	assert.Contains(t, out, "Web app")
	assert.Contains(t, out, "packages/library")
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderer_TemplatesEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatText).Templates(nil))
	assert.Equal(t, "No templates found\n", buf.String())
}

func TestRenderer_TemplatesJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatJSON).Templates(sampleTemplates()))

	parsed, err := oj.ParseString(buf.String())
	require.NoError(t, err)
	list, ok := parsed.([]interface{})
	require.True(t, ok)
	require.Len(t, list, 2)
	first := list[0].(map[string]interface{})
	assert.Equal(t, "apps", first["category"])
	assert.Equal(t, "web", first["name"])
}

func TestRenderer_TemplateDetailText(t *testing.T) {
	m := &manifest.Manifest{
		Name:        "library",
		Description: "A library",
		Delimiters:  manifest.Delimiters{Open: "{{", Close: "}}"},
		Placeholders: []manifest.Placeholder{
			{Name: "keywords", Type: manifest.TypeList, Required: true, Description: "Search keywords"},
			{Name: "port", Type: manifest.TypeString, Default: "8080", HasDefault: true},
		},
	}
	tmpl := sampleTemplates()[1]

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatText).TemplateDetail(tmpl, m))
	out := buf.String()
	assert.Contains(t, out, "# packages/library")
	assert.Contains(t, out, "A library")
	assert.Contains(t, out, "`{{name}}`")
	assert.Contains(t, out, "| keywords | list | yes |  | Search keywords |")
	assert.Contains(t, out, "| port | string | no | `8080` |  |")
}

func TestRenderer_TemplateDetailJSON(t *testing.T) {
	m := &manifest.Manifest{
		Placeholders: []manifest.Placeholder{{Name: "port", Type: manifest.TypeString, Default: "8080", HasDefault: true}},
	}
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatJSON).TemplateDetail(sampleTemplates()[0], m))

	parsed, err := oj.ParseString(buf.String())
	require.NoError(t, err)
	doc := parsed.(map[string]interface{})
	assert.Equal(t, "apps/web", doc["template"])
	placeholders := doc["placeholders"].([]interface{})
	require.Len(t, placeholders, 1)
	assert.Equal(t, "8080", placeholders[0].(map[string]interface{})["default"])
}

func TestRenderer_History(t *testing.T) {
	entries := []history.Entry{
		{ID: 2, Template: "apps/web", Project: "web", Mode: "remote", Status: history.StatusFailed, ErrorKind: "publish", CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		{ID: 1, Template: "packages/library", Project: "lib", Mode: "local", Target: "/tmp/lib", Status: history.StatusDone, CreatedAt: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatText).History(entries))
	out := buf.String()
	assert.Contains(t, out, "failed (publish)")
	assert.Contains(t, out, "/tmp/lib")

	buf.Reset()
	require.NoError(t, NewRenderer(&buf, FormatJSON).History(entries))
	parsed, err := oj.ParseString(buf.String())
	require.NoError(t, err)
	list := parsed.([]interface{})
	require.Len(t, list, 2)
	assert.Equal(t, "2025-03-01T10:00:00Z", list[0].(map[string]interface{})["created_at"])

	buf.Reset()
	require.NoError(t, NewRenderer(&buf, FormatText).History(nil))
	assert.Equal(t, "No runs recorded\n", buf.String())
}

func TestRenderer_Generated(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, FormatText)

	require.NoError(t, r.Generated(Summary{Template: "apps/web", Project: "web", Mode: "local", Target: "/tmp/web"}))
	assert.Equal(t, "Created web from apps/web at /tmp/web\n", buf.String())

	buf.Reset()
	require.NoError(t, r.Generated(Summary{Template: "apps/web", Project: "web", Mode: "remote", URL: "https://github.example/acme/web"}))
	assert.Contains(t, buf.String(), "at https://github.example/acme/web")

	buf.Reset()
	require.NoError(t, r.Generated(Summary{Template: "apps/web", Project: "web", DryRun: true, Paths: []string{"README.md", "src"}}))
	assert.Equal(t, "web from apps/web (dry run)\n  README.md\n  src\n", buf.String())
}

func TestRenderer_Error(t *testing.T) {
	err := errors.New(errors.ErrConfigInvalidEnum, "license is not allowed").
		WithDetail("field", "license").
		WithDetail("value", "WTFPL")

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatText).Error(err))
	assert.Equal(t, "Error: [CONFIG_INVALID_ENUM] license is not allowed\n  field: license\n  value: WTFPL\n", buf.String())

	buf.Reset()
	require.NoError(t, NewRenderer(&buf, FormatJSON).Error(err))
	parsed, perr := oj.ParseString(buf.String())
	require.NoError(t, perr)
	doc := parsed.(map[string]interface{})
	assert.Equal(t, "CONFIG_INVALID_ENUM", doc["code"])
	assert.Equal(t, "config", doc["kind"])

	buf.Reset()
	require.NoError(t, NewRenderer(&buf, FormatText).Error(nil))
	assert.Empty(t, buf.String())
}

func TestRenderer_Warn(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatText).Warn("workspace kept"))
	assert.Equal(t, "Warning: workspace kept\n", buf.String())

	buf.Reset()
	require.NoError(t, NewRenderer(&buf, FormatJSON).Warn("ignored"))
	assert.Empty(t, buf.String())
}
