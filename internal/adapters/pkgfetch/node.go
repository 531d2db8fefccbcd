package pkgfetch

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/debstrap/debstrap/internal/adapters/logger"
	"github.com/debstrap/debstrap/internal/core/ports"
)

// NodeID is the unique identifier for the package fetcher Graft node.
const NodeID graft.ID = "adapter.pkgfetch"

func init() {
	graft.Register(graft.Node[ports.PackageFetcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.PackageFetcher, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(log), nil
		},
	})
}
