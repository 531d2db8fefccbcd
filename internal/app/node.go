package app

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/debstrap/debstrap/internal/adapters/archive"   //nolint:depguard // Wired in app layer
	"github.com/debstrap/debstrap/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"github.com/debstrap/debstrap/internal/adapters/deb"       //nolint:depguard // Wired in app layer
	"github.com/debstrap/debstrap/internal/adapters/guest"     //nolint:depguard // Wired in app layer
	"github.com/debstrap/debstrap/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"github.com/debstrap/debstrap/internal/adapters/pkgfetch"  //nolint:depguard // Wired in app layer
	"github.com/debstrap/debstrap/internal/adapters/repofetch" //nolint:depguard // Wired in app layer
	"github.com/debstrap/debstrap/internal/adapters/skeleton"  //nolint:depguard // Wired in app layer
	"github.com/debstrap/debstrap/internal/adapters/solver"    //nolint:depguard // Wired in app layer
	"github.com/debstrap/debstrap/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"github.com/debstrap/debstrap/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components bundles what the CLI layer needs after graph execution.
type Components struct {
	App       *App
	Logger    ports.Logger
	Telemetry ports.Telemetry
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			logger.NodeID,
			telemetry.NodeID,
			config.NodeID,
			repofetch.NodeID,
			solver.NodeID,
			pkgfetch.NodeID,
			deb.NodeID,
			skeleton.NodeID,
			guest.NodeID,
			archive.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			telemetry.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	tel, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}
	recipes, err := graft.Dep[ports.RecipeLoader](ctx)
	if err != nil {
		return nil, err
	}
	manifests, err := graft.Dep[ports.ManifestFetcher](ctx)
	if err != nil {
		return nil, err
	}
	resolver, err := graft.Dep[ports.Resolver](ctx)
	if err != nil {
		return nil, err
	}
	packages, err := graft.Dep[ports.PackageFetcher](ctx)
	if err != nil {
		return nil, err
	}
	extractor, err := graft.Dep[ports.PackageExtractor](ctx)
	if err != nil {
		return nil, err
	}
	builder, err := graft.Dep[ports.SkeletonBuilder](ctx)
	if err != nil {
		return nil, err
	}
	bridge, err := graft.Dep[ports.Guest](ctx)
	if err != nil {
		return nil, err
	}
	exporter, err := graft.Dep[ports.Exporter](ctx)
	if err != nil {
		return nil, err
	}

	return New(Params{
		Logger:       log,
		Telemetry:    tel,
		Recipes:      recipes,
		Manifests:    manifests,
		Resolver:     resolver,
		Packages:     packages,
		Extractor:    extractor,
		Skeleton:     builder,
		Guest:        bridge,
		Exporter:     exporter,
		SelectMirror: selectMirror,
		ReadList:     config.ReadList,
	}), nil
}

// selectMirror builds the per-run mirror policy. Without overlays a single
// fixed mirror claims everything; with overlays the fetched indices decide
// which repository serves each exact package.
func selectMirror(mirror string, set *ports.ManifestSet) (ports.MirrorSelector, error) {
	if len(set.TopicPaths) == 0 {
		return pkgfetch.SingleMirror{Mirror: mirror, Primary: repofetch.DefaultMirror}, nil
	}

	m := pkgfetch.NewIndexedMirrors()
	for _, path := range set.BranchPaths {
		if err := m.AddIndexFile(mirror, path); err != nil {
			return nil, err
		}
	}
	// Overlay indices are added last so they win on overlap.
	for _, path := range set.TopicPaths {
		if err := m.AddIndexFile(repofetch.DefaultMirror, path); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	application, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	tel, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:       application,
		Logger:    log,
		Telemetry: tel,
	}, nil
}
