package deb

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/debstrap/debstrap/internal/core/ports"
)

// NodeID is the unique identifier for the package extractor Graft node.
const NodeID graft.ID = "adapter.deb"

func init() {
	graft.Register(graft.Node[ports.PackageExtractor]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.PackageExtractor, error) {
			return NewExtractor(), nil
		},
	})
}
