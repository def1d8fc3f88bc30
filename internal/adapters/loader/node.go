package loader

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/asmres/internal/adapters/clr"   //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/asmres/internal/adapters/trace" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/asmres/internal/core/ports"
)

// NodeID is the unique identifier for the native loader factory Graft node.
const NodeID graft.ID = "adapter.loader"

// Factory creates Probing loaders sharing the process wide identity reader and trace sink.
type Factory struct {
	reader ports.IdentityReader
	trace  ports.TraceSink
}

// NewFactory creates a Factory.
func NewFactory(reader ports.IdentityReader, trace ports.TraceSink) *Factory {
	return &Factory{reader: reader, trace: trace}
}

// New returns a loader over dirs, or nil when there are no directories to probe.
func (f *Factory) New(dirs, extensions []string) ports.NativeLoader {
	if len(dirs) == 0 {
		return nil
	}
	return NewProbing(f.reader, f.trace, dirs, extensions)
}

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{clr.NodeID, trace.NodeID},
		Run: func(ctx context.Context) (*Factory, error) {
			reader, err := graft.Dep[ports.IdentityReader](ctx)
			if err != nil {
				return nil, err
			}
			sink, err := graft.Dep[*trace.Sink](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(reader, sink), nil
		},
	})
}
