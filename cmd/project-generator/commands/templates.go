package commands

import (
	"github.com/spf13/cobra"

	"github.com/NextNodeSolutions/project-generator/pkg/manifest"
)

func newTemplatesCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Short:   MsgTemplatesShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   MsgTemplatesListShort,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			all, err := a.catalog.List()
			if err != nil {
				return err
			}
			return a.out.Templates(all)
		},
	}

	show := &cobra.Command{
		Use:               "show <template>",
		Short:             MsgTemplatesShowShort,
		Args:              cobra.ExactArgs(1),
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
			m, err := manifest.LoadDir(tmpl.Dir)
			if err != nil {
				return err
			}
			return a.out.TemplateDetail(tmpl, m)
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

// templateNamesCompletion provides shell completion for template references
func templateNamesCompletion(opts *globalOptions) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveDefault
		}
		a, err := newApp(cmd, opts)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		all, err := a.catalog.List()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		names := make([]string, 0, len(all))
		for _, t := range all {
			names = append(names, t.Identity.String())
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
