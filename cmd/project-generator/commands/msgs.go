package commands

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort          = "Create projects from templates"
	MsgNewShort           = "Generate a project from a template"
	MsgTemplatesShort     = "Inspect available templates"
	MsgTemplatesListShort = "List all available templates"
	MsgTemplatesShowShort = "Show the placeholders of a template"
	MsgHistoryShort       = "Show recent generation runs"
	MsgVersionShort       = "Print version information"
	MsgCompletionShort    = "Generate shell completion script"

	// Status messages
	MsgWorkspaceKept   = "Publishing failed; the staged project was kept at %s"
	MsgHistoryDisabled = "History is disabled in the settings"
	MsgVersionFormat   = "project-generator version %s\n"
	MsgCommitFormat    = "Commit: %s\n"
	MsgBuiltFormat     = "Built:  %s\n"

	// Error messages
	MsgErrNoCommand = "no command specified"
	MsgErrSetFormat = "invalid --set value %q, expected key=value"

	// Flag descriptions
	MsgFlagVerbose       = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDebug         = "Enable debug logging (same as -vv)"
	MsgFlagOutput        = "Output format: auto, terminal, text or json"
	MsgFlagTemplatesDir  = "Templates root directory (default $XDG_DATA_HOME/project-generator/templates)"
	MsgFlagConfig        = "Run configuration file (.toml, .yaml or .yml)"
	MsgFlagRemote        = "Publish the project as a new GitHub repository"
	MsgFlagSet           = "Set a field as key=value (repeatable)"
	MsgFlagName          = "Project name"
	MsgFlagDescription   = "Project description"
	MsgFlagCategory      = "Project category"
	MsgFlagVisibility    = "Repository visibility (private or public)"
	MsgFlagDevelopBranch = "Also push a develop branch"
	MsgFlagInteractive   = "Ask for values on the terminal"
	MsgFlagForce         = "Replace a non-empty destination directory"
	MsgFlagDryRun        = "Resolve and print the project tree without writing it"
	MsgFlagLimit         = "Number of runs to show"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/new-long.txt
	msgNewLongRaw string
	MsgNewLong    = strings.TrimSpace(msgNewLongRaw)

	//go:embed msgs/new-example.txt
	msgNewExampleRaw string
	MsgNewExample    = strings.TrimRight(msgNewExampleRaw, "\n")

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
