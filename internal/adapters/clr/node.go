package clr

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/asmres/internal/core/ports"
)

// NodeID is the unique identifier for the identity reader Graft node.
const NodeID graft.ID = "adapter.clr"

func init() {
	graft.Register(graft.Node[ports.IdentityReader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.IdentityReader, error) {
			return NewReader(), nil
		},
	})
}
