// Package topics adds file-backed help topics to a cobra command tree.
// `help <topic>` renders a topic; `help topics` lists them; anything else
// falls back to the regular command help.
package topics

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
)

// ListKeyword lists every topic when passed to help
const ListKeyword = "topics"

// optionPrefix marks topics documenting a flag; `help --force` finds option-force
const optionPrefix = "option-"

// Topic is one help document
type Topic struct {
	Name    string
	Path    string
	Content string
}

// Options configures Load
type Options struct {
	// Extensions of topic files; defaults to .txt and .md
	Extensions []string
	// Renderer formats topic content; defaults to PlainRenderer
	Renderer Renderer
}

// Manager holds the loaded topics
type Manager struct {
	topics   map[string]Topic
	renderer Renderer
}

// Load reads every topic file under fsys
func Load(fsys fs.FS, opts Options) (*Manager, error) {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".txt", ".md"}
	}
	m := &Manager{topics: make(map[string]Topic), renderer: opts.Renderer}
	if m.renderer == nil {
		m.renderer = PlainRenderer{}
	}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := path.Ext(p)
		if !contains(exts, ext) {
			return nil
		}
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(path.Base(p), ext)
		m.topics[name] = Topic{Name: name, Path: p, Content: string(content)}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to load help topics")
	}
	return m, nil
}

// Get finds a topic by name; flag spellings like --dry-run also match option-dry-run
func (m *Manager) Get(name string) (Topic, bool) {
	name = strings.TrimLeft(name, "-")
	if t, ok := m.topics[name]; ok {
		return t, true
	}
	t, ok := m.topics[optionPrefix+name]
	return t, ok
}

// Names returns the topic names sorted
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.topics))
	for name := range m.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render writes topic t to w
func (m *Manager) Render(w io.Writer, t Topic) error {
	_, err := fmt.Fprint(w, m.renderer.Render(t.Content, path.Ext(t.Path)))
	return err
}

// List writes the topic index to w
func (m *Manager) List(w io.Writer, program string) error {
	names := m.Names()
	if len(names) == 0 {
		_, err := fmt.Fprintln(w, "No help topics available.")
		return err
	}

	var general, options []string
	for _, name := range names {
		if strings.HasPrefix(name, optionPrefix) {
			options = append(options, "--"+strings.TrimPrefix(name, optionPrefix))
		} else {
			general = append(general, name)
		}
	}

	var b strings.Builder
	b.WriteString("Available help topics:\n")
	if len(general) > 0 {
		b.WriteString("\nGeneral topics:\n")
		for _, name := range general {
			fmt.Fprintf(&b, "  %s\n", name)
		}
	}
	if len(options) > 0 {
		b.WriteString("\nOption topics:\n")
		for _, name := range options {
			fmt.Fprintf(&b, "  %s\n", name)
		}
	}
	fmt.Fprintf(&b, "\nUse '%s help <topic>' to read about a specific topic.\n", program)

	_, err := io.WriteString(w, b.String())
	return err
}

// Install replaces the help command of root with one that also knows topics
func Install(root *cobra.Command, m *Manager) {
	originalHelp := root.HelpFunc()

	helpCmd := &cobra.Command{
		Use:   "help [command or topic]",
		Short: "Help about any command or topic",
		Long: `Help provides help for any command or topic in the application.

To see all available help topics:
  ` + root.Name() + ` help ` + ListKeyword,
		// `help --force` names the topic of a flag
		DisableFlagParsing: true,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			completions := []string{ListKeyword}
			for _, c := range root.Commands() {
				if !c.Hidden {
					completions = append(completions, c.Name())
				}
			}
			completions = append(completions, m.Names()...)
			return completions, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				originalHelp(root, nil)
				return nil
			}
			if args[0] == ListKeyword {
				return m.List(cmd.OutOrStdout(), root.Name())
			}
			if t, ok := m.Get(args[0]); ok {
				return m.Render(cmd.OutOrStdout(), t)
			}

			target, _, err := root.Find(args)
			if err != nil || target == nil {
				return errors.Newf(errors.ErrInvalidInput, "unknown help topic %q", strings.Join(args, " ")).
					WithDetail("value", args[0])
			}
			originalHelp(target, nil)
			return nil
		},
	}
	root.SetHelpCommand(helpCmd)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
