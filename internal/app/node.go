package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/asmres/internal/adapters/loader"    //nolint:depguard // Wired in app layer
	"go.trai.ch/asmres/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/asmres/internal/adapters/trace"     //nolint:depguard // Wired in app layer
	"go.trai.ch/asmres/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/asmres/internal/adapters/workspace" //nolint:depguard // Wired in app layer
	"go.trai.ch/asmres/internal/core/ports"
	"go.trai.ch/asmres/internal/engine/resolver"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			workspace.NodeID,
			resolver.NodeID,
			loader.NodeID,
			watcher.NodeID,
			logger.NodeID,
			trace.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			trace.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	workspaces, err := graft.Dep[ports.WorkspaceLoader](ctx)
	if err != nil {
		return nil, err
	}

	resolvers, err := graft.Dep[*resolver.Factory](ctx)
	if err != nil {
		return nil, err
	}

	loaders, err := graft.Dep[*loader.Factory](ctx)
	if err != nil {
		return nil, err
	}

	watchers, err := graft.Dep[*watcher.Factory](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	sink, err := graft.Dep[*trace.Sink](ctx)
	if err != nil {
		return nil, err
	}

	return New(workspaces, resolvers, loaders, watchers, log, sink), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	sink, err := graft.Dep[*trace.Sink](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:    app,
		Logger: log,
		Trace:  sink,
	}, nil
}
