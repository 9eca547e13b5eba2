// Package publish hands a finished project tree to a hosting service.
//
// The GitHub publisher creates the repository through the REST API, commits
// the tree once and pushes it. Optional deploy workflows are dispatched
// afterwards on a best-effort basis.
package publish

import (
	"context"
)

// Request describes one repository to publish
type Request struct {
	// Dir is the local tree to commit and push
	Dir   string
	Token string

	Name        string
	Description string
	Private     bool
	// Topic is added to the repository topics when non-empty
	Topic string
	// Branch receives the initial commit
	Branch string
	// Develop also pushes the initial commit to the develop branch
	Develop bool
	// Deploy dispatches the deploy workflows found in the tree
	Deploy bool
}

// Publisher turns a local tree into a hosted repository
type Publisher interface {
	// Publish returns the URL of the created repository
	Publish(ctx context.Context, req Request) (string, error)
}

// Deploy workflow files dispatched after a successful push
const (
	WorkflowsDir     = ".github/workflows"
	DevWorkflow      = "deploy-dev.yml"
	ProdWorkflow     = "deploy-prod.yml"
	DevelopBranch    = "develop"
	DefaultBranch    = "main"
	DefaultCommitMsg = "Initial commit"
)
