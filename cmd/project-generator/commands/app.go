package commands

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/NextNodeSolutions/project-generator/pkg/config"
	"github.com/NextNodeSolutions/project-generator/pkg/dispatcher"
	"github.com/NextNodeSolutions/project-generator/pkg/history"
	"github.com/NextNodeSolutions/project-generator/pkg/logging"
	"github.com/NextNodeSolutions/project-generator/pkg/output"
	"github.com/NextNodeSolutions/project-generator/pkg/paths"
	"github.com/NextNodeSolutions/project-generator/pkg/publish"
	"github.com/NextNodeSolutions/project-generator/pkg/schema"
	"github.com/NextNodeSolutions/project-generator/pkg/templates"
)

// app holds what a command needs once flags are parsed
type app struct {
	paths    paths.Paths
	settings *config.Settings
	schema   *schema.Schema
	catalog  *templates.Catalog
	out      *output.Renderer
	logger   zerolog.Logger
}

func newApp(cmd *cobra.Command, opts *globalOptions) (*app, error) {
	logger := logging.GetLogger("cli")

	p, err := paths.New(opts.templatesDir)
	if err != nil {
		return nil, err
	}
	settings, err := config.LoadSettings(p)
	if err != nil {
		return nil, err
	}
	// flag > PROJGEN_TEMPLATES_DIR > settings file > XDG default
	if opts.templatesDir == "" && settings.TemplatesDir != "" {
		if p, err = paths.New(settings.TemplatesDir); err != nil {
			return nil, err
		}
	}

	s, err := schema.Default()
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("templates", p.TemplatesDir()).
		Str("config", p.ConfigFilePath()).
		Msg("Environment ready")

	return &app{
		paths:    p,
		settings: settings,
		schema:   s,
		catalog:  templates.New(p.TemplatesDir()),
		out:      renderer(cmd.OutOrStdout(), opts.format),
		logger:   logger,
	}, nil
}

// newDispatcher wires the collaborators of one run. The returned func
// releases them.
func (a *app) newDispatcher(remote, dryRun bool) (*dispatcher.Dispatcher, func()) {
	cfg := dispatcher.Config{
		Schema:        a.schema,
		WorkspacesDir: a.paths.WorkspacesDir(),
	}
	var closers []func() error

	if remote && !dryRun {
		gh := publish.NewGitHub(publish.Options{
			APIURL:        a.settings.APIURL,
			Organization:  a.settings.Organization,
			AuthorName:    a.settings.Author.Name,
			AuthorEmail:   a.settings.Author.Email,
			WorkflowDelay: a.settings.Workflows.Delay,
		})
		cfg.Publisher = gh
		closers = append(closers, gh.Close)
	}

	if store := a.openHistory(); store != nil {
		cfg.Recorder = store
		closers = append(closers, store.Close)
	}

	return dispatcher.New(cfg), func() {
		for _, c := range closers {
			if err := c(); err != nil {
				a.logger.Warn().Err(err).Msg("Failed to release resource")
			}
		}
	}
}

// openHistory returns nil when history is disabled or unavailable; a broken
// history database never blocks generation
func (a *app) openHistory() *history.Store {
	if !a.settings.History.Enabled {
		return nil
	}
	store, err := history.Open(a.paths.HistoryPath())
	if err != nil {
		a.logger.Warn().Err(err).Str("path", a.paths.HistoryPath()).Msg("History unavailable")
		return nil
	}
	return store
}

// renderer picks the output format; auto detects the terminal when w is one
func renderer(w io.Writer, format string) *output.Renderer {
	f, err := output.ParseFormat(format)
	if err != nil {
		f = output.FormatAuto
	}
	if f == output.FormatAuto {
		if file, ok := w.(*os.File); ok {
			f = output.DetectFormat(file)
		}
	}
	return output.NewRenderer(w, f)
}

func stderrRenderer(cmd *cobra.Command, format string) *output.Renderer {
	return renderer(cmd.ErrOrStderr(), format)
}
