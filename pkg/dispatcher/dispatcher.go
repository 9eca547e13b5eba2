// Package dispatcher sequences a generation run: load the template manifest,
// resolve the configuration, substitute the template tree and commit the
// result either to a local destination or through the publisher.
package dispatcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/NextNodeSolutions/project-generator/pkg/history"
	"github.com/NextNodeSolutions/project-generator/pkg/logging"
	"github.com/NextNodeSolutions/project-generator/pkg/manifest"
	"github.com/NextNodeSolutions/project-generator/pkg/publish"
	"github.com/NextNodeSolutions/project-generator/pkg/resolver"
	"github.com/NextNodeSolutions/project-generator/pkg/schema"
	"github.com/NextNodeSolutions/project-generator/pkg/staging"
	"github.com/NextNodeSolutions/project-generator/pkg/substitution"
	"github.com/NextNodeSolutions/project-generator/pkg/templates"
	"github.com/NextNodeSolutions/project-generator/pkg/types"
)

// Mode selects where a resolved tree goes
type Mode string

const (
	// ModeLocal writes the tree into a destination directory
	ModeLocal Mode = "local"
	// ModeRemote stages the tree in a workspace and publishes it
	ModeRemote Mode = "remote"
)

// NoDeployField disables deploy workflow dispatch when truthy in the context
const NoDeployField = "no_deploy"

// AnswerFunc gathers interactive answers once the manifest is known
type AnswerFunc func(m *manifest.Manifest, src resolver.Sources) (map[string]interface{}, error)

// Config wires the collaborators of a dispatcher
type Config struct {
	Schema    *schema.Schema
	Writer    *staging.Writer
	Publisher publish.Publisher
	// Recorder is optional; nil disables history
	Recorder history.Recorder
	// WorkspacesDir holds remote-mode scratch workspaces
	WorkspacesDir string
}

// Request is one generation run
type Request struct {
	Template templates.Template
	Sources  resolver.Sources
	Mode     Mode

	// Dest is the local destination; empty means BaseDir/<project slug>
	Dest    string
	BaseDir string
	Force   bool
	DryRun  bool

	// Token authenticates the publisher in remote mode
	Token  string
	Answer AnswerFunc
}

// Result describes a finished run
type Result struct {
	State       State
	Transitions []State
	// ErrorKind is set when State is Failed
	ErrorKind errors.Kind

	Mode    Mode
	DryRun  bool
	Context *types.GenerationContext
	Tree    *types.ResolvedTree

	// Target is the local destination or the staged workspace
	Target string
	// URL is the published repository
	URL string
	// Workspace is kept after a failed publish
	Workspace string
}

// Dispatcher runs generations
type Dispatcher struct {
	cfg    Config
	logger zerolog.Logger
	token  func() string
}

// New creates a dispatcher
func New(cfg Config) *Dispatcher {
	if cfg.Schema == nil {
		cfg.Schema = schema.MustDefault()
	}
	if cfg.Writer == nil {
		cfg.Writer = staging.NewWriter()
	}
	return &Dispatcher{
		cfg:    cfg,
		logger: logging.GetLogger("dispatcher"),
		token:  func() string { return uuid.NewString() },
	}
}

// Run executes req. On failure the returned result is still populated with
// the terminal state, the failing kind and any kept workspace.
func (d *Dispatcher) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Mode == "" {
		req.Mode = ModeLocal
	}
	if req.Sources.Template == (types.Identity{}) {
		req.Sources.Template = req.Template.Identity
	}
	if req.Sources.Timestamp.IsZero() {
		req.Sources.Timestamp = time.Now()
	}

	logger := d.logger.With().
		Str("template", req.Template.Identity.String()).
		Str("mode", string(req.Mode)).
		Bool("dryRun", req.DryRun).
		Logger()
	done := logging.LogOperationStart(logger, "generate")
	defer done()

	m := newMachine()
	res := &Result{Mode: req.Mode, DryRun: req.DryRun}

	err := d.run(ctx, req, m, res, logger)
	if err != nil {
		m.fail(err)
		logger.Debug().Err(err).Str("kind", string(m.kind)).Msg("Run failed")
	}

	res.State = m.current
	res.Transitions = m.history
	res.ErrorKind = m.kind
	d.record(ctx, req, res, logger)
	return res, err
}

func (d *Dispatcher) run(ctx context.Context, req Request, m *machine, res *Result, logger zerolog.Logger) error {
	// Configuring
	tmplManifest, err := manifest.LoadDir(req.Template.Dir)
	if err != nil {
		return err
	}

	if req.Answer != nil {
		answers, err := req.Answer(tmplManifest, req.Sources)
		if err != nil {
			return err
		}
		req.Sources.Answers = answers
	}

	gctx, err := resolver.Resolve(req.Sources, tmplManifest, d.cfg.Schema)
	if err != nil {
		return err
	}
	res.Context = gctx

	if req.Mode == ModeRemote && !req.DryRun {
		if strings.TrimSpace(req.Token) == "" {
			return errors.New(errors.ErrConfigMissingToken, "remote mode needs a hosting token").
				WithDetail("field", "token")
		}
		if d.cfg.Publisher == nil {
			return errors.New(errors.ErrInternal, "remote mode needs a publisher")
		}
	}

	if err := checkCanceled(ctx); err != nil {
		return err
	}
	if err := m.to(StateSubstituting); err != nil {
		return err
	}

	tree, err := substitution.Apply(gctx, tmplManifest, osfs.New(req.Template.Dir))
	if err != nil {
		return err
	}
	res.Tree = tree

	if req.DryRun {
		logger.Info().Int("entries", len(tree.Entries)).Msg("Dry run, nothing written")
		return m.to(StateDone)
	}

	if err := checkCanceled(ctx); err != nil {
		return err
	}
	if err := m.to(StateWriting); err != nil {
		return err
	}

	switch req.Mode {
	case ModeRemote:
		err = d.publish(ctx, req, gctx, tree, res, logger)
	default:
		err = d.writeLocal(ctx, req, gctx, tree, res)
	}
	if err != nil {
		return err
	}
	return m.to(StateDone)
}

func (d *Dispatcher) writeLocal(ctx context.Context, req Request, gctx *types.GenerationContext, tree *types.ResolvedTree, res *Result) error {
	dest := req.Dest
	if dest == "" {
		dest = filepath.Join(req.BaseDir, DirName(gctx))
	}

	target, err := d.cfg.Writer.Commit(ctx, tree, dest, staging.Options{Force: req.Force})
	if err != nil {
		return err
	}
	res.Target = target
	return nil
}

func (d *Dispatcher) publish(ctx context.Context, req Request, gctx *types.GenerationContext, tree *types.ResolvedTree, res *Result, logger zerolog.Logger) error {
	if d.cfg.WorkspacesDir == "" {
		return errors.New(errors.ErrInternal, "no workspaces directory configured")
	}

	root := filepath.Join(d.cfg.WorkspacesDir, d.token())
	workspace := filepath.Join(root, DirName(gctx))

	if err := os.MkdirAll(root, 0755); err != nil {
		return errors.Wrap(err, errors.ErrWriteStage, "cannot create workspace").
			WithDetail("path", root)
	}
	if err := d.cfg.Writer.Stage(ctx, tree, workspace); err != nil {
		removeAll(root, logger)
		return err
	}
	res.Target = workspace

	if err := checkCanceled(ctx); err != nil {
		res.Workspace = workspace
		return errors.Wrap(err, errors.ErrCanceled, "publish canceled").WithDetail("workspace", workspace)
	}

	url, err := d.cfg.Publisher.Publish(ctx, PublishRequest(gctx, workspace, req.Token))
	if err != nil {
		res.Workspace = workspace
		pubErr, ok := errors.As(err)
		if !ok || pubErr.Kind() != errors.KindPublish {
			pubErr = errors.Wrap(err, errors.ErrPublishFailed, "publish failed")
		}
		logger.Warn().Str("workspace", workspace).Msg("Publish failed, workspace kept for inspection")
		return pubErr.WithDetail("workspace", workspace)
	}

	res.URL = url
	removeAll(root, logger)
	return nil
}

// PublishRequest maps a resolved context to the publisher contract
func PublishRequest(gctx *types.GenerationContext, dir, token string) publish.Request {
	req := publish.Request{
		Dir:         dir,
		Token:       token,
		Name:        gctx.SystemString(resolver.FieldProjectName),
		Description: gctx.SystemString(resolver.FieldDescription),
		Private:     gctx.SystemString(resolver.FieldVisibility) != "public",
		Topic:       gctx.SystemString(resolver.FieldCategory),
		Branch:      gctx.SystemString(resolver.FieldBranchName),
		Deploy:      true,
	}
	if v, ok := gctx.System(resolver.FieldCreateDevelopBranch); ok {
		req.Develop = v.BoolValue()
	}
	if v, ok := gctx.Extension(NoDeployField); ok && truthy(v) {
		req.Deploy = false
	}
	return req
}

// DirName is the directory name used for a project: its slug, or the
// template name when the project name has no usable characters
func DirName(gctx *types.GenerationContext) string {
	if slug := resolver.Slug(gctx.SystemString(resolver.FieldProjectName)); slug != "" {
		return slug
	}
	return gctx.Template.Name
}

func truthy(v types.Value) bool {
	switch v.Kind() {
	case types.KindBool:
		return v.BoolValue()
	case types.KindString:
		b, err := cast.ToBoolE(strings.TrimSpace(v.Scalar()))
		return err == nil && b
	default:
		return !v.IsEmpty()
	}
}

func (d *Dispatcher) record(ctx context.Context, req Request, res *Result, logger zerolog.Logger) {
	if d.cfg.Recorder == nil {
		return
	}

	mode := string(req.Mode)
	if req.DryRun {
		mode = "dry-run"
	}
	entry := history.Entry{
		Template: req.Template.Identity.String(),
		Mode:     mode,
		Target:   res.Target,
		Status:   history.StatusDone,
	}
	if res.URL != "" {
		entry.Target = res.URL
	}
	if res.Context != nil {
		entry.Project = res.Context.SystemString(resolver.FieldProjectName)
	}
	if res.State == StateFailed {
		entry.Status = history.StatusFailed
		entry.ErrorKind = string(res.ErrorKind)
	}

	// the run context may be canceled already; the log entry is still wanted
	if _, err := d.cfg.Recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
		logger.Warn().Err(err).Msg("Failed to record run history")
	}
}

func checkCanceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCanceled, "generation canceled")
	}
	return nil
}

func removeAll(dir string, logger zerolog.Logger) {
	if err := os.RemoveAll(dir); err != nil {
		logger.Warn().Err(err).Str("path", dir).Msg("Failed to remove workspace")
	}
}
