package repofetch

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/debstrap/debstrap/internal/adapters/logger"
	"github.com/debstrap/debstrap/internal/core/ports"
)

// NodeID is the unique identifier for the manifest fetcher Graft node.
const NodeID graft.ID = "adapter.repofetch"

func init() {
	graft.Register(graft.Node[ports.ManifestFetcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ManifestFetcher, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(log), nil
		},
	})
}
