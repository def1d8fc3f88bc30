package trace

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/asmres/internal/adapters/logger" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/asmres/internal/core/ports"
)

// NodeID is the unique identifier for the trace sink Graft node.
const NodeID graft.ID = "adapter.trace"

func init() {
	graft.Register(graft.Node[*Sink]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Sink, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewSink(log.Info), nil
		},
	})
}
