package topics

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"manifest.md":        {Data: []byte("# Manifest\n\nDeclares placeholders")},
		"option-dry-run.txt": {Data: []byte("Dry run resolves without writing")},
		"notes/lists.txt":    {Data: []byte("List placeholders")},
		"ignored.json":       {Data: []byte("{}")},
	}
}

func TestLoad(t *testing.T) {
	m, err := Load(testFS(), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"lists", "manifest", "option-dry-run"}, m.Names())

	custom, err := Load(testFS(), Options{Extensions: []string{".json"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"ignored"}, custom.Names())
}

func TestGet(t *testing.T) {
	m, err := Load(testFS(), Options{})
	require.NoError(t, err)

	tests := []struct {
		name   string
		exists bool
	}{
		{"manifest", true},
		{"dry-run", true},
		{"--dry-run", true},
		{"-dry-run", true},
		{"lists", true},
		{"unknown", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := m.Get(tt.name)
			assert.Equal(t, tt.exists, ok)
		})
	}
}

func TestList(t *testing.T) {
	m, err := Load(testFS(), Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.List(&buf, "gen"))
	assert.Equal(t, `Available help topics:

General topics:
  lists
  manifest

Option topics:
  --dry-run

Use 'gen help <topic>' to read about a specific topic.
`, buf.String())

	empty, err := Load(fstest.MapFS{}, Options{})
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, empty.List(&buf, "gen"))
	assert.Equal(t, "No help topics available.\n", buf.String())
}

func TestInstall(t *testing.T) {
	m, err := Load(testFS(), Options{})
	require.NoError(t, err)

	newRoot := func() (*cobra.Command, *bytes.Buffer) {
		root := &cobra.Command{Use: "gen", SilenceErrors: true, SilenceUsage: true}
		root.AddCommand(&cobra.Command{Use: "new", Short: "Generate a project", Run: func(*cobra.Command, []string) {}})
		Install(root, m)
		var out bytes.Buffer
		root.SetOut(&out)
		return root, &out
	}

	root, out := newRoot()
	root.SetArgs([]string{"help", "manifest"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "# Manifest\n\nDeclares placeholders", out.String())

	root, out = newRoot()
	root.SetArgs([]string{"help", "topics"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "--dry-run")

	root, out = newRoot()
	root.SetArgs([]string{"help", "new"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Generate a project")

	root, _ = newRoot()
	root.SetArgs([]string{"help", "nothing-here"})
	assert.Error(t, root.Execute())
}

func TestRenderers(t *testing.T) {
	assert.Equal(t, "# x", PlainRenderer{}.Render("# x", ".md"))
	assert.Equal(t, "plain text", GlamourRenderer{}.Render("plain text", ".txt"))
	assert.Contains(t, GlamourRenderer{Width: 40}.Render("# Title", ".md"), "Title")
}
