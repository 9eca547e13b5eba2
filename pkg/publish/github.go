package publish

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/NextNodeSolutions/project-generator/pkg/logging"
)

const (
	defaultAPIURL  = "https://api.github.com"
	defaultTimeout = 30 * time.Second
	// pause between the two workflow dispatches
	dispatchGap = 2 * time.Second
)

// Options configure the GitHub publisher
type Options struct {
	APIURL        string
	Organization  string
	AuthorName    string
	AuthorEmail   string
	WorkflowDelay time.Duration
	Timeout       time.Duration
}

// GitHub publishes trees as GitHub repositories
type GitHub struct {
	client *resty.Client
	opts   Options
	logger zerolog.Logger

	// hooks replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
	push  func(ctx context.Context, req Request, url string, who author) error
}

type repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
	CloneURL string `json:"clone_url"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
}

type createRepoBody struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Private     bool   `json:"private"`
	AutoInit    bool   `json:"auto_init"`
}

type apiError struct {
	Message string `json:"message"`
}

// NewGitHub creates a publisher talking to the GitHub REST API
func NewGitHub(opts Options) *GitHub {
	if opts.APIURL == "" {
		opts.APIURL = defaultAPIURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.APIURL, "/")).
		SetTimeout(opts.Timeout).
		SetResponseBodyUnlimitedReads(true).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("X-GitHub-Api-Version", "2022-11-28")

	return &GitHub{
		client: client,
		opts:   opts,
		logger: logging.GetLogger("publish"),
		sleep:  sleepContext,
		push:   pushTree,
	}
}

// Close releases the HTTP client
func (g *GitHub) Close() error {
	return g.client.Close()
}

// Publish creates the repository, pushes the tree and dispatches deploy workflows
func (g *GitHub) Publish(ctx context.Context, req Request) (string, error) {
	if req.Token == "" {
		return "", errors.New(errors.ErrPublishAuth, "no hosting token provided")
	}
	if req.Branch == "" {
		req.Branch = DefaultBranch
	}

	logger := g.logger.With().Str("repository", req.Name).Logger()
	done := logging.LogOperationStart(logger, "publish")
	defer done()

	repo, err := g.createRepository(ctx, req)
	if err != nil {
		return "", err
	}
	logger.Info().Str("url", repo.HTMLURL).Msg("Repository created")

	if req.Topic != "" {
		if err := g.setTopics(ctx, req, repo); err != nil {
			logger.Warn().Err(err).Str("topic", req.Topic).Msg("Failed to set repository topics")
		}
	}

	if err := g.push(ctx, req, repo.CloneURL, g.signature()); err != nil {
		return "", errors.Wrap(err, errors.ErrPublishFailed, "failed to push initial commit").
			WithDetail("url", repo.HTMLURL).
			WithDetail("path", req.Dir)
	}
	logger.Info().Str("branch", req.Branch).Bool("develop", req.Develop).Msg("Initial commit pushed")

	if req.Deploy {
		g.dispatchWorkflows(ctx, req, repo, logger)
	}

	return repo.HTMLURL, nil
}

func (g *GitHub) createRepository(ctx context.Context, req Request) (*repository, error) {
	var repo repository
	var apiErr apiError

	r := g.client.R().
		SetContext(ctx).
		SetAuthToken(req.Token).
		SetBody(createRepoBody{
			Name:        req.Name,
			Description: req.Description,
			Private:     req.Private,
		}).
		SetResult(&repo).
		SetError(&apiErr)

	endpoint := "/user/repos"
	if g.opts.Organization != "" {
		endpoint = "/orgs/{org}/repos"
		r.SetPathParam("org", g.opts.Organization)
	}

	resp, err := r.Post(endpoint)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPublishFailed, "repository creation request failed").
			WithDetail("name", req.Name)
	}
	if resp.IsError() {
		return nil, statusError(resp, apiErr.Message, "repository creation rejected").
			WithDetail("name", req.Name)
	}

	if repo.Owner.Login == "" {
		repo.Owner.Login = g.opts.Organization
	}
	if repo.Name == "" {
		repo.Name = req.Name
	}
	return &repo, nil
}

func (g *GitHub) setTopics(ctx context.Context, req Request, repo *repository) error {
	var apiErr apiError
	resp, err := g.client.R().
		SetContext(ctx).
		SetAuthToken(req.Token).
		SetPathParams(map[string]string{"owner": repo.Owner.Login, "repo": repo.Name}).
		SetBody(map[string][]string{"names": {req.Topic}}).
		SetError(&apiErr).
		Put("/repos/{owner}/{repo}/topics")
	if err != nil {
		return errors.Wrap(err, errors.ErrPublishFailed, "topics request failed")
	}
	if resp.IsError() {
		return statusError(resp, apiErr.Message, "topics update rejected")
	}
	return nil
}

// dispatchWorkflows triggers deploy-dev on develop and deploy-prod on the main
// branch. Failures are logged and never fail the publish.
func (g *GitHub) dispatchWorkflows(ctx context.Context, req Request, repo *repository, logger zerolog.Logger) {
	dev := hasWorkflow(req.Dir, DevWorkflow)
	prod := hasWorkflow(req.Dir, ProdWorkflow)
	if !dev || !prod {
		logger.Debug().Bool("dev", dev).Bool("prod", prod).Msg("Deploy workflows not found, skipping dispatch")
		return
	}

	type dispatch struct {
		workflow string
		ref      string
	}
	var queue []dispatch
	if req.Develop {
		queue = append(queue, dispatch{DevWorkflow, DevelopBranch})
	}
	queue = append(queue, dispatch{ProdWorkflow, req.Branch})

	if err := g.sleep(ctx, g.opts.WorkflowDelay); err != nil {
		logger.Warn().Err(err).Msg("Workflow dispatch canceled")
		return
	}

	for i, d := range queue {
		if i > 0 {
			if err := g.sleep(ctx, dispatchGap); err != nil {
				logger.Warn().Err(err).Msg("Workflow dispatch canceled")
				return
			}
		}
		if err := g.dispatch(ctx, req, repo, d.workflow, d.ref); err != nil {
			logger.Warn().Err(err).Str("workflow", d.workflow).Str("ref", d.ref).Msg("Failed to dispatch workflow")
			continue
		}
		logger.Info().Str("workflow", d.workflow).Str("ref", d.ref).Msg("Workflow dispatched")
	}
}

func (g *GitHub) dispatch(ctx context.Context, req Request, repo *repository, workflow, ref string) error {
	var apiErr apiError
	resp, err := g.client.R().
		SetContext(ctx).
		SetAuthToken(req.Token).
		SetPathParams(map[string]string{
			"owner":    repo.Owner.Login,
			"repo":     repo.Name,
			"workflow": workflow,
		}).
		SetBody(map[string]string{"ref": ref}).
		SetError(&apiErr).
		Post("/repos/{owner}/{repo}/actions/workflows/{workflow}/dispatches")
	if err != nil {
		return errors.Wrap(err, errors.ErrPublishFailed, "workflow dispatch request failed")
	}
	if resp.IsError() {
		return statusError(resp, apiErr.Message, "workflow dispatch rejected")
	}
	return nil
}

func (g *GitHub) signature() author {
	a := author{Name: g.opts.AuthorName, Email: g.opts.AuthorEmail}
	if a.Name == "" {
		a.Name = "project-generator"
	}
	if a.Email == "" {
		a.Email = "project-generator@users.noreply.github.com"
	}
	return a
}

// statusError maps an API rejection to a publish error code
func statusError(resp *resty.Response, message, summary string) *errors.GeneratorError {
	code := errors.ErrPublishFailed
	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = errors.ErrPublishAuth
	case http.StatusUnprocessableEntity:
		code = errors.ErrPublishConflict
	}
	if message == "" {
		message = resp.Status()
	}
	return errors.Newf(code, "%s: %s", summary, message).
		WithDetail("status", resp.StatusCode()).
		WithDetail("body", resp.String())
}

func hasWorkflow(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(WorkflowsDir), name))
	return err == nil && !info.IsDir()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
