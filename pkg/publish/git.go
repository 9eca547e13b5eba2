package publish

import (
	"context"
	"fmt"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

const remoteName = "origin"

type author struct {
	Name  string
	Email string
}

// pushTree initializes a repository in req.Dir, records one commit with the
// whole tree and pushes it to url.
func pushTree(ctx context.Context, req Request, url string, who author) error {
	branch := plumbing.NewBranchReferenceName(req.Branch)

	repo, err := git.PlainInitWithOptions(req.Dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: branch},
	})
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("stage files: %w", err)
	}

	_, err = wt.Commit(DefaultCommitMsg, &git.CommitOptions{
		Author: &object.Signature{Name: who.Name, Email: who.Email, When: time.Now()},
	})
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if _, err := repo.CreateRemote(&config.RemoteConfig{Name: remoteName, URLs: []string{url}}); err != nil {
		return fmt.Errorf("add remote: %w", err)
	}

	specs := []config.RefSpec{config.RefSpec(fmt.Sprintf("%s:%s", branch, branch))}
	if req.Develop && req.Branch != DevelopBranch {
		specs = append(specs, config.RefSpec(fmt.Sprintf("%s:%s", branch, plumbing.NewBranchReferenceName(DevelopBranch))))
	}

	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   specs,
		// GitHub accepts any user name alongside a token password
		Auth: &githttp.BasicAuth{Username: "x-access-token", Password: req.Token},
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("push: %w", err)
	}
	return nil
}
