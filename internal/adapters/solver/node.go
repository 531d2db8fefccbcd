package solver

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/debstrap/debstrap/internal/core/ports"
)

// NodeID is the unique identifier for the solver adapter Graft node.
const NodeID graft.ID = "adapter.solver"

func init() {
	graft.Register(graft.Node[ports.Resolver]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Resolver, error) {
			return New(), nil
		},
	})
}
