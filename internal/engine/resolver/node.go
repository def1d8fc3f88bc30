package resolver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/asmres/internal/adapters/clr"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/asmres/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/asmres/internal/adapters/trace"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/asmres/internal/core/ports"
)

// NodeID is the unique identifier for the resolver factory Graft node.
const NodeID graft.ID = "engine.resolver"

// Factory builds Coordinators that share the process wide adapters.
type Factory struct {
	reader ports.IdentityReader
	trace  ports.TraceSink
	tracer ports.Tracer
}

// NewFactory creates a Factory.
func NewFactory(reader ports.IdentityReader, trace ports.TraceSink, tracer ports.Tracer) *Factory {
	return &Factory{
		reader: reader,
		trace:  trace,
		tracer: tracer,
	}
}

// New creates a Coordinator for one workspace session.
func (f *Factory) New(workspace ports.Workspace, native ports.NativeLoader, opts Options) *Coordinator {
	return NewCoordinator(workspace, native, f.reader, f.trace, f.tracer, opts)
}

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			clr.NodeID,
			trace.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Factory, error) {
			reader, err := graft.Dep[ports.IdentityReader](ctx)
			if err != nil {
				return nil, err
			}

			sink, err := graft.Dep[*trace.Sink](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			return NewFactory(reader, sink, tracer), nil
		},
	})
}
