package ports

import (
	"context"

	"go.trai.ch/asmres/internal/core/domain"
)

//go:generate mockgen -source=workspace.go -destination=mocks/mock_workspace.go -package=mocks

// Workspace answers the questions the resolver asks about the open solution.
// Both methods return domain.ErrWorkspaceUnavailable when no solution is open.
type Workspace interface {
	// PackagesRoot returns the package store directory of the solution.
	PackagesRoot(ctx context.Context) (string, error)
	// ReferenceDirectories returns the distinct parent directories of every project reference.
	ReferenceDirectories(ctx context.Context) ([]string, error)
}

// WorkspaceSnapshot is implemented by workspaces that answer both Workspace questions
// from a single read, so the two answers always describe the same version of the solution.
type WorkspaceSnapshot interface {
	// Snapshot returns the package store directory and the reference directories together.
	Snapshot(ctx context.Context) (packagesRoot string, references []string, err error)
}

// WorkspaceLoader finds and parses workspace files.
type WorkspaceLoader interface {
	// Discover walks up from cwd and returns the path of the nearest workspace file.
	Discover(cwd string) (string, error)
	// Load parses the workspace file at path together with its projects.
	Load(path string) (*domain.Workspace, error)
}
