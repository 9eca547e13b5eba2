package commands

import (
	"embed"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/NextNodeSolutions/project-generator/internal/version"
	"github.com/NextNodeSolutions/project-generator/pkg/cobrax/topics"
	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/NextNodeSolutions/project-generator/pkg/logging"
	"github.com/NextNodeSolutions/project-generator/pkg/output"
)

//go:embed topics
var topicFiles embed.FS

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	verbosity    int
	debug        bool
	format       string
	templatesDir string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "project-generator",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbosity := opts.verbosity
			if opts.debug && verbosity < 2 {
				verbosity = 2
			}
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")

			if _, err := output.ParseFormat(opts.format); err != nil {
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, MsgFlagDebug)
	rootCmd.PersistentFlags().StringVarP(&opts.format, "output", "o", "auto", MsgFlagOutput)
	rootCmd.PersistentFlags().StringVar(&opts.templatesDir, "templates-dir", "", MsgFlagTemplatesDir)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newNewCmd(opts))
	rootCmd.AddCommand(newTemplatesCmd(opts))
	rootCmd.AddCommand(newHistoryCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	rootCmd.SetHelpCommandGroupID("misc")
	installTopics(rootCmd)

	return rootCmd
}

// installTopics serves the embedded documents through `help <topic>`
func installTopics(rootCmd *cobra.Command) {
	var renderer topics.Renderer = topics.PlainRenderer{}
	if output.IsTerminal(os.Stdout) {
		renderer = topics.GlamourRenderer{}
	}

	sub, err := fs.Sub(topicFiles, "topics")
	if err != nil {
		return
	}
	tm, err := topics.Load(sub, topics.Options{Extensions: []string{".md", ".txt"}, Renderer: renderer})
	if err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
		return
	}
	topics.Install(rootCmd, tm)
}

// Execute runs the root command and renders any error. It returns the
// process exit code.
func Execute(rootCmd *cobra.Command) int {
	err := rootCmd.Execute()
	if err == nil {
		return errors.ExitOK
	}

	format, _ := rootCmd.PersistentFlags().GetString("output")
	if renderErr := stderrRenderer(rootCmd, format).Error(err); renderErr != nil {
		log.Error().Err(renderErr).Msg("Failed to render error")
	}
	return errors.ExitCode(err)
}
