package workspace

import (
	"context"
	"errors"
	"io/fs"

	"go.trai.ch/asmres/internal/core/domain"
	"go.trai.ch/asmres/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.Workspace         = (*Live)(nil)
	_ ports.WorkspaceSnapshot = (*Live)(nil)
)

// Live serves the resolver from a workspace file, re-reading it on every call
// so projects matched by a glob after startup are seen.
type Live struct {
	loader ports.WorkspaceLoader
	path   string
}

// NewLive creates a Live workspace for the file at path.
// An empty path means no workspace is open.
func NewLive(loader ports.WorkspaceLoader, path string) *Live {
	return &Live{loader: loader, path: path}
}

// PackagesRoot returns the package store directory of the workspace.
func (l *Live) PackagesRoot(ctx context.Context) (string, error) {
	ws, err := l.Load(ctx)
	if err != nil {
		return "", err
	}
	return ws.PackagesRoot(), nil
}

// ReferenceDirectories returns the distinct parent directories of every project reference.
func (l *Live) ReferenceDirectories(ctx context.Context) ([]string, error) {
	ws, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return ws.ReferenceDirectories(), nil
}

// Snapshot returns the package store directory and the reference directories
// from one read of the workspace.
func (l *Live) Snapshot(ctx context.Context) (string, []string, error) {
	ws, err := l.Load(ctx)
	if err != nil {
		return "", nil, err
	}
	return ws.PackagesRoot(), ws.ReferenceDirectories(), nil
}

// Load reads the workspace file.
// A missing file is reported as domain.ErrWorkspaceUnavailable.
func (l *Live) Load(ctx context.Context) (*domain.Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.path == "" {
		return nil, zerr.Wrap(domain.ErrWorkspaceUnavailable, "no workspace open")
	}

	ws, err := l.loader.Load(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Join(domain.ErrWorkspaceUnavailable, err)
		}
		return nil, err
	}
	return ws, nil
}
