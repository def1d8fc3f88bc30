package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/asmres/internal/adapters/trace" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/asmres/internal/core/ports"
)

// TracerNodeID is the unique identifier for the Telemetry adapter Graft node.
const TracerNodeID graft.ID = "adapter.telemetry"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{trace.NodeID},
		Run: func(ctx context.Context) (ports.Tracer, error) {
			sink, err := graft.Dep[*trace.Sink](ctx)
			if err != nil {
				return nil, err
			}
			provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(NewBridge(sink)))
			return NewOTelTracer(provider), nil
		},
	})
}
