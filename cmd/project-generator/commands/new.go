package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NextNodeSolutions/project-generator/pkg/config"
	"github.com/NextNodeSolutions/project-generator/pkg/dispatcher"
	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/NextNodeSolutions/project-generator/pkg/manifest"
	"github.com/NextNodeSolutions/project-generator/pkg/output"
	"github.com/NextNodeSolutions/project-generator/pkg/prompt"
	"github.com/NextNodeSolutions/project-generator/pkg/resolver"
	"github.com/NextNodeSolutions/project-generator/pkg/schema"
)

type newOptions struct {
	config        string
	remote        bool
	set           []string
	name          string
	description   string
	category      string
	visibility    string
	developBranch bool
	interactive   bool
	force         bool
	dryRun        bool
}

func newNewCmd(opts *globalOptions) *cobra.Command {
	o := &newOptions{}

	cmd := &cobra.Command{
		Use:               "new <template> [dest]",
		Short:             MsgNewShort,
		Long:              MsgNewLong,
		Example:           MsgNewExample,
		GroupID:           "core",
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: templateNamesCompletion(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}

			tmpl, err := a.catalog.Find(args[0])
			if err != nil {
				return err
			}

			flags, err := o.flagValues(cmd)
			if err != nil {
				return err
			}

			src := resolver.Sources{
				ConfigFile:    o.config,
				Flags:         flags,
				Organization:  a.settings.Organization,
				WebsiteDomain: a.settings.WebsiteDomain,
			}
			if o.config != "" {
				if src.File, err = config.ReadRunConfig(o.config); err != nil {
					return err
				}
			}

			req := dispatcher.Request{
				Template: tmpl,
				Sources:  src,
				Mode:     dispatcher.ModeLocal,
				Force:    o.force,
				DryRun:   o.dryRun,
				Token:    a.settings.Token(),
			}
			if o.remote {
				req.Mode = dispatcher.ModeRemote
			}
			if len(args) == 2 {
				req.Dest = args[1]
			} else if req.BaseDir, err = os.Getwd(); err != nil {
				return errors.Wrap(err, errors.ErrInternal, "cannot determine the current directory")
			}
			if o.interactive {
				req.Answer = askMissing(a.schema, cmd.InOrStdin(), cmd.ErrOrStderr())
			}

			a.logger.Info().
				Str("template", tmpl.Identity.String()).
				Str("mode", string(req.Mode)).
				Bool("dryRun", o.dryRun).
				Msg("Generating project")

			d, release := a.newDispatcher(o.remote, o.dryRun)
			defer release()

			res, err := d.Run(cmd.Context(), req)
			if err != nil {
				if res != nil && res.Workspace != "" {
					_ = a.out.Warn(fmt.Sprintf(MsgWorkspaceKept, res.Workspace))
				}
				return err
			}

			summary := output.Summary{
				Template: tmpl.Identity.String(),
				Project:  res.Context.SystemString(resolver.FieldProjectName),
				Mode:     string(res.Mode),
				Target:   res.Target,
				URL:      res.URL,
				DryRun:   res.DryRun,
			}
			if res.DryRun && res.Tree != nil {
				summary.Paths = res.Tree.Paths()
			}
			return a.out.Generated(summary)
		},
	}

	cmd.Flags().StringVarP(&o.config, "config", "c", "", MsgFlagConfig)
	cmd.Flags().BoolVarP(&o.remote, "remote", "r", false, MsgFlagRemote)
	cmd.Flags().StringArrayVarP(&o.set, "set", "s", nil, MsgFlagSet)
	cmd.Flags().StringVarP(&o.name, "name", "n", "", MsgFlagName)
	cmd.Flags().StringVarP(&o.description, "description", "d", "", MsgFlagDescription)
	cmd.Flags().StringVar(&o.category, "category", "", MsgFlagCategory)
	cmd.Flags().StringVar(&o.visibility, "visibility", "", MsgFlagVisibility)
	cmd.Flags().BoolVar(&o.developBranch, "develop-branch", false, MsgFlagDevelopBranch)
	cmd.Flags().BoolVarP(&o.interactive, "interactive", "i", false, MsgFlagInteractive)
	cmd.Flags().BoolVarP(&o.force, "force", "f", false, MsgFlagForce)
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, MsgFlagDryRun)

	_ = cmd.RegisterFlagCompletionFunc("visibility", cobra.FixedCompletions(
		[]string{"private", "public"}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("category", cobra.FixedCompletions(
		[]string{"apps", "packages", "websites", "services", "tools"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// flagValues collects --set pairs; the named flags win over --set
func (o *newOptions) flagValues(cmd *cobra.Command) (map[string]interface{}, error) {
	values, err := parseSets(o.set)
	if err != nil {
		return nil, err
	}

	named := []struct {
		flag  string
		field string
		value interface{}
	}{
		{"name", resolver.FieldProjectName, o.name},
		{"description", resolver.FieldDescription, o.description},
		{"category", resolver.FieldCategory, o.category},
		{"visibility", resolver.FieldVisibility, o.visibility},
		{"develop-branch", resolver.FieldCreateDevelopBranch, o.developBranch},
	}
	for _, n := range named {
		if cmd.Flags().Changed(n.flag) {
			values[n.field] = n.value
		}
	}
	return values, nil
}

// parseSets turns key=value pairs into a flat map; later pairs win
func parseSets(pairs []string) (map[string]interface{}, error) {
	values := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Newf(errors.ErrConfigLoad, MsgErrSetFormat, pair).
				WithDetail("value", pair)
		}
		values[key] = value
	}
	return values, nil
}

// askMissing prompts for every field the explicit sources leave unset
func askMissing(s *schema.Schema, in io.Reader, out io.Writer) dispatcher.AnswerFunc {
	return func(m *manifest.Manifest, src resolver.Sources) (map[string]interface{}, error) {
		defaults := resolver.Defaults(src, m, s, resolver.DefaultProjectName(src))
		fields := prompt.Fields(s, m, defaults)
		return prompt.New(in, out).Ask(fields, supplied(src))
	}
}

// supplied flattens the flags and the run configuration into one key set
func supplied(src resolver.Sources) map[string]interface{} {
	out := make(map[string]interface{}, len(src.Flags)+len(src.File))
	for k, v := range src.Flags {
		out[k] = v
	}
	for k, v := range src.File {
		if k != config.ExtensionsKey {
			out[k] = v
			continue
		}
		if table, ok := v.(map[string]interface{}); ok {
			for ek, ev := range table {
				out[ek] = ev
			}
		}
	}
	return out
}
