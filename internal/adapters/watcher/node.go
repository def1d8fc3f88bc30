package watcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/asmres/internal/adapters/logger" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/asmres/internal/core/ports"
)

// NodeID is the unique identifier for the file watcher Graft node.
const NodeID graft.ID = "adapter.watcher"

// Factory creates watchers. Each serve session owns and stops its own watcher.
type Factory struct {
	logger ports.Logger
}

// NewFactory creates a Factory.
func NewFactory(logger ports.Logger) *Factory {
	return &Factory{logger: logger}
}

// New creates a Watcher.
func (f *Factory) New() (ports.Watcher, error) {
	w, err := NewWatcher(f.logger)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Factory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(log), nil
		},
	})
}
