package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.trai.ch/asmres/internal/adapters/workspace" //nolint:depguard // Wired in app layer
	"go.trai.ch/asmres/internal/core/domain"
	"go.trai.ch/asmres/internal/engine/resolver"
	"go.trai.ch/zerr"
)

// Options are the per command settings taken from the command line.
type Options struct {
	// Workspace is the workspace file to open. When empty it is discovered from Dir.
	Workspace string
	// Dir is the directory discovery starts from. Empty means the working directory.
	Dir string
	// Verbose turns on resolver trace output.
	Verbose bool
	// JSONLog switches the logger to JSON output.
	JSONLog bool
	// Timeout overrides the recompute timeout of the workspace when positive.
	Timeout time.Duration
	// Inspect resolves for metadata inspection: the native loader is not asked.
	Inspect bool
}

// jsonSwitch is implemented by loggers that support JSON output.
type jsonSwitch interface {
	SetJSON(enabled bool)
}

// session is one opened workspace and the Coordinator serving it.
type session struct {
	workspace   *domain.Workspace
	live        *workspace.Live
	coordinator *resolver.Coordinator
	root        string
	extensions  []string
}

// Close stops the Coordinator.
func (s *session) Close() {
	_ = s.coordinator.Close()
}

// open configures diagnostics, loads the workspace and starts a Coordinator for it.
// A missing workspace is not an error: the session then has no directories to search.
func (a *App) open(ctx context.Context, opts Options) (*session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Timeout < 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidTimeout, "invalid --timeout"), "timeout", opts.Timeout.String())
	}

	if js, ok := a.logger.(jsonSwitch); ok {
		js.SetJSON(opts.JSONLog)
	}
	a.trace.SetEnabled(opts.Verbose)

	path, err := a.workspacePath(opts)
	if err != nil {
		return nil, err
	}

	s := &session{}
	settings := domain.ResolverSettings{}
	if path != "" {
		ws, err := a.workspaces.Load(path)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to open workspace")
		}
		s.workspace = ws
		s.root = ws.Root()
		settings = ws.Resolver
		a.trace.Tracef("Opened workspace %s (%d projects)", ws.Path, len(ws.Projects))
	} else {
		dir, err := filepath.Abs(opts.Dir)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "cannot resolve directory"), "dir", opts.Dir)
		}
		s.root = dir
	}

	timeout := settings.RecomputeTimeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	s.extensions = settings.Extensions
	if len(s.extensions) == 0 {
		s.extensions = []string{domain.DefaultExtension}
	}

	var probeDirs []string
	if s.workspace != nil {
		probeDirs = s.workspace.ProbeDirectories()
		path = s.workspace.Path
	}

	s.live = workspace.NewLive(a.workspaces, path)
	s.coordinator = a.resolvers.New(s.live, a.loaders.New(probeDirs, s.extensions), resolver.Options{
		Extensions:       s.extensions,
		RecomputeTimeout: timeout,
	})
	return s, nil
}

// workspacePath returns the workspace file to open, or an empty string when none exists.
func (a *App) workspacePath(opts Options) (string, error) {
	if opts.Workspace != "" {
		return opts.Workspace, nil
	}

	path, err := a.workspaces.Discover(opts.Dir)
	if errors.Is(err, domain.ErrWorkspaceNotFound) {
		a.logger.Warn(fmt.Sprintf("no %s found, resolving without a workspace", domain.WorkFileName))
		return "", nil
	}
	return path, err
}
