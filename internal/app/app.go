// Package app implements the application layer for asmres.
package app

import (
	"context"
	"runtime"
	"strings"
	"time"

	"go.trai.ch/asmres/internal/adapters/loader"  //nolint:depguard // Wired in app layer
	"go.trai.ch/asmres/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/asmres/internal/core/domain"
	"go.trai.ch/asmres/internal/core/ports"
	"go.trai.ch/asmres/internal/engine/resolver"
	"golang.org/x/sync/errgroup"
)

// TraceSwitch is a trace sink that verbose runs turn on.
type TraceSwitch interface {
	ports.TraceSink
	SetEnabled(enabled bool)
}

// App runs the asmres commands. Each command opens its own resolution session.
type App struct {
	workspaces ports.WorkspaceLoader
	resolvers  *resolver.Factory
	loaders    *loader.Factory
	watchers   *watcher.Factory
	logger     ports.Logger
	trace      TraceSwitch
	debounce   time.Duration
}

// New creates a new App instance.
func New(
	workspaces ports.WorkspaceLoader,
	resolvers *resolver.Factory,
	loaders *loader.Factory,
	watchers *watcher.Factory,
	log ports.Logger,
	trace TraceSwitch,
) *App {
	return &App{
		workspaces: workspaces,
		resolvers:  resolvers,
		loaders:    loaders,
		watchers:   watchers,
		logger:     log,
		trace:      trace,
		debounce:   watcher.DefaultDebounceWindow,
	}
}

// WithDebounce sets the quiet period serve waits before acting on file changes.
func (a *App) WithDebounce(window time.Duration) *App {
	a.debounce = window
	return a
}

// Result is the outcome of resolving one identity.
type Result struct {
	Identity string
	Path     string
	Found    bool
	Err      error
}

// String formats the result as a single tab separated line.
func (r Result) String() string {
	switch {
	case r.Err != nil:
		return r.Identity + "\terror: " + strings.ReplaceAll(r.Err.Error(), "\n", ": ")
	case r.Found:
		return r.Identity + "\t" + r.Path
	default:
		return r.Identity + "\tnot found"
	}
}

// Resolve resolves identities concurrently and returns the results in input order.
// A malformed identity is reported in its Result and does not stop the others.
func (a *App) Resolve(ctx context.Context, identities []string, opts Options) ([]Result, error) {
	if len(identities) == 0 {
		return nil, domain.ErrNoIdentities
	}

	s, err := a.open(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	resolve := s.coordinator.Resolve
	if opts.Inspect {
		resolve = s.coordinator.ResolveForInspection
	}

	results := make([]Result, len(identities))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, identity := range identities {
		g.Go(func() error {
			path, ok, err := resolve(gctx, identity)
			results[i] = Result{Identity: identity, Path: path, Found: ok, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// Dirs returns the directory set of the workspace.
func (a *App) Dirs(ctx context.Context, opts Options) (*domain.DirectorySet, error) {
	s, err := a.open(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	return s.coordinator.Directories(ctx), nil
}

// Scan lists every binary below the directory set with its identity.
func (a *App) Scan(ctx context.Context, opts Options) ([]resolver.InventoryEntry, error) {
	s, err := a.open(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	return s.coordinator.Inventory(ctx), nil
}
