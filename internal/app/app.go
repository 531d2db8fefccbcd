// Package app implements the staged bootstrap pipeline.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"

	"github.com/debstrap/debstrap/internal/core/domain"
	"github.com/debstrap/debstrap/internal/core/ports"
)

// archivesDir is the raw-artifact cache inside the target. The install
// script expects the packages there.
const archivesDir = "var/cache/apt/archives"

// Params carries everything the pipeline is assembled from.
type Params struct {
	Logger    ports.Logger
	Telemetry ports.Telemetry
	Recipes   ports.RecipeLoader
	Manifests ports.ManifestFetcher
	Resolver  ports.Resolver
	Packages  ports.PackageFetcher
	Extractor ports.PackageExtractor
	Skeleton  ports.SkeletonBuilder
	Guest     ports.Guest
	Exporter  ports.Exporter

	// SelectMirror builds the per-run mirror policy from the fetched
	// manifest set.
	SelectMirror func(mirror string, set *ports.ManifestSet) (ports.MirrorSelector, error)

	// ReadList reads a caller-supplied package list file.
	ReadList func(path string) ([]string, error)
}

// App drives the pipeline.
type App struct {
	p     Params
	stage Stage

	// Injection points for tests.
	availableSpace func(path string) (uint64, error)
	syncFS         func()
}

// New creates an App.
func New(p Params) *App {
	return &App{
		p:              p,
		stage:          StageInit,
		availableSpace: availableSpace,
		syncFS:         unix.Sync,
	}
}

// Stage reports the last completed pipeline state.
func (a *App) Stage() Stage {
	return a.stage
}

// Run executes the pipeline described by opts.
func (a *App) Run(ctx context.Context, opts Options) error {
	if err := a.preflight(&opts); err != nil {
		return err
	}

	// The target must exist before anything can measure or fill it.
	if err := os.MkdirAll(opts.Target, 0o755); err != nil {
		return zerr.Wrap(err, "failed to create target directory")
	}

	recipe, err := a.p.Recipes.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	installNames, err := a.collectInstallNames(recipe, opts)
	if err != nil {
		return err
	}

	// Manifests.
	var set *ports.ManifestSet
	err = a.step(ctx, "download manifests", func(ctx context.Context) error {
		var err error
		set, err = a.p.Manifests.Fetch(ctx, ports.ManifestRequest{
			Mirror:     opts.Mirror,
			Branch:     opts.Branch,
			Arches:     opts.Arches,
			Components: opts.Components,
			Topics:     opts.Topics,
		}, opts.Target, opts.Jobs)
		return err
	})
	if err != nil {
		return err
	}
	a.advance(StageManifestsFetched)

	// Resolution. The pool is populated exactly once; both transactions
	// are computed against it.
	var full, stub *domain.Transaction
	err = a.step(ctx, "resolve dependencies", func(context.Context) error {
		if err := a.p.Resolver.Populate(set.BranchPaths, set.TopicPaths); err != nil {
			return err
		}
		defer a.p.Resolver.Close() //nolint:errcheck // pool teardown is best effort

		var rerr error
		if full, rerr = a.p.Resolver.Resolve(installNames); rerr != nil {
			return rerr
		}
		stub, rerr = a.p.Resolver.Resolve(recipe.StubPackages)
		return rerr
	})
	if err != nil {
		return err
	}
	a.advance(StageResolved)
	a.p.Logger.Info(fmt.Sprintf("resolved %d packages, total installed size %d MiB",
		len(full.Packages), full.SizeDelta/(1024*1024)))

	// Download.
	if err := a.checkDiskSpace(opts.Target, full.SizeDelta); err != nil {
		return err
	}
	err = a.step(ctx, "download packages", func(ctx context.Context) error {
		selector, err := a.p.SelectMirror(opts.Mirror, set)
		if err != nil {
			return err
		}
		return a.p.Packages.FetchAll(ctx, full.Packages, filepath.Join(opts.Target, archivesDir), selector, opts.Jobs)
	})
	if err != nil {
		return err
	}
	a.syncFS()
	a.advance(StageDownloaded)

	if opts.DownloadOnly {
		a.p.Logger.Info("download finished")
		return nil
	}

	// Stage 1: skeleton, stub extraction, install script.
	if err := a.checkDiskSpace(opts.Target, stub.SizeDelta); err != nil {
		return err
	}
	var scriptPath string
	err = a.step(ctx, "stage 1: populate target", func(context.Context) error {
		if err := a.p.Skeleton.Build(opts.Target, ports.SkeletonOptions{
			Mirror:          opts.Mirror,
			Branch:          opts.Branch,
			SourcesListFile: opts.SourcesListFile,
		}); err != nil {
			return err
		}

		if err := a.extractStub(stub, opts.Target); err != nil {
			return err
		}

		if err := a.p.Manifests.PersistTopics(opts.Target, set.Topics); err != nil {
			return err
		}
		if err := a.p.Skeleton.WriteExtendedStates(opts.Target, installNames, full.Packages, mainArch(opts.Arches)); err != nil {
			return err
		}

		var werr error
		scriptPath, werr = a.writeInstallScript(opts.Target, full.FileNames(), opts)
		return werr
	})
	if err != nil {
		return err
	}
	a.syncFS()
	a.advance(StageStage1Done)

	if opts.Stage1Only {
		a.p.Logger.Info("stage 1 finished; to continue, run `bash -e /" +
			filepath.Base(scriptPath) + "` inside the target")
		return nil
	}

	// Stage 2: run the install script in the guest.
	if err := a.checkDiskSpace(opts.Target, full.SizeDelta); err != nil {
		return err
	}
	err = a.step(ctx, "stage 2: install packages", func(ctx context.Context) error {
		return a.p.Guest.Run(ctx, opts.Target, []string{"/usr/bin/bash", "-e", "/" + filepath.Base(scriptPath)})
	})
	if err != nil {
		return err
	}
	if err := os.Remove(scriptPath); err != nil {
		return zerr.Wrap(err, "failed to remove install script")
	}
	a.syncFS()
	a.advance(StageStage2Done)
	a.p.Logger.Info("base system ready")

	// Exports.
	if err := a.export(ctx, opts); err != nil {
		return err
	}
	return nil
}

// preflight validates and normalizes the options before anything mutates the
// filesystem.
func (a *App) preflight(opts *Options) error {
	if _, err := os.Stat(opts.Target); err == nil && !opts.Force {
		return zerr.With(domain.ErrTargetExists, "target", opts.Target)
	}

	// A missing guest capability must fail the run before any download.
	if !opts.DownloadOnly && !opts.Stage1Only && !a.p.Guest.Available() {
		return domain.ErrNoGuestRuntime
	}

	// Architecture-independent packages live under their own pseudo
	// architecture; resolution breaks without it.
	if !slices.Contains(opts.Arches, "all") {
		opts.Arches = append(opts.Arches, "all")
	}
	if !slices.Contains(opts.Components, "main") {
		opts.Components = append(opts.Components, "main")
	}

	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	if opts.TarPath != "" && opts.TarCodec == "" {
		opts.TarCodec = ports.CodecZstd
	}
	return nil
}

// collectInstallNames assembles the full requested set: stub, base, explicit
// includes and include files.
func (a *App) collectInstallNames(recipe *domain.Recipe, opts Options) ([]string, error) {
	names := make([]string, 0, len(recipe.StubPackages)+len(recipe.BasePackages)+len(opts.IncludePackages))
	names = append(names, recipe.StubPackages...)
	names = append(names, recipe.BasePackages...)
	names = append(names, opts.IncludePackages...)

	for _, path := range opts.IncludeFiles {
		extra, err := a.p.ReadList(path)
		if err != nil {
			return nil, err
		}
		names = append(names, extra...)
	}
	if len(opts.IncludeFiles) > 0 {
		a.p.Logger.Info(fmt.Sprintf("read %d extra packages from lists", len(names)-len(recipe.StubPackages)-len(recipe.BasePackages)-len(opts.IncludePackages)))
	}
	return names, nil
}

func (a *App) extractStub(stub *domain.Transaction, target string) error {
	for i, pkg := range stub.Packages {
		a.p.Logger.Info(fmt.Sprintf("[%d/%d] extracting %s", i+1, len(stub.Packages), pkg.Name))
		debPath := filepath.Join(target, archivesDir, pkg.FileName())
		if err := a.p.Extractor.Extract(debPath, target); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) export(ctx context.Context, opts Options) error {
	exported := false

	if opts.TarPath != "" {
		err := a.step(ctx, "export tarball", func(ctx context.Context) error {
			if err := a.p.Exporter.Tar(ctx, opts.Target, opts.TarPath, opts.TarCodec, opts.Jobs); err != nil {
				return err
			}
			return a.p.Exporter.ChecksumTag(opts.TarPath)
		})
		if err != nil {
			return err
		}
		exported = true
	}

	if opts.SquashfsPath != "" {
		err := a.step(ctx, "export squashfs", func(ctx context.Context) error {
			if err := a.p.Exporter.Squashfs(ctx, opts.Target, opts.SquashfsPath, opts.Jobs); err != nil {
				return err
			}
			return a.p.Exporter.ChecksumTag(opts.SquashfsPath)
		})
		if err != nil {
			return err
		}
		exported = true
	}

	if exported {
		a.advance(StageArchived)
	}
	return nil
}

// checkDiskSpace fails before any destructive mutation when the target
// filesystem cannot hold the transaction.
func (a *App) checkDiskSpace(target string, sizeDelta int64) error {
	if sizeDelta <= 0 {
		return nil
	}
	required := uint64(sizeDelta)

	available, err := a.availableSpace(target)
	if err != nil {
		return zerr.Wrap(err, "failed to query free disk space")
	}
	if available < required {
		return zerr.With(zerr.With(zerr.With(domain.ErrDiskSpace,
			"required", required), "available", available), "shortfall", required-available)
	}
	return nil
}

// step wraps one pipeline stage in a telemetry vertex.
func (a *App) step(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, vertex := a.p.Telemetry.Record(ctx, name)
	err := fn(ctx)
	vertex.Complete(err)
	return err
}

func (a *App) advance(s Stage) {
	a.stage = s
	a.p.Logger.Info("pipeline stage: " + s.String())
}

// mainArch is the primary architecture of the run: the first requested one
// that is not the architecture-independent pseudo entry.
func mainArch(arches []string) string {
	for _, arch := range arches {
		if arch != "all" {
			return arch
		}
	}
	return "all"
}

func availableSpace(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return st.Bavail * uint64(st.Bsize), nil //nolint:gosec // Bsize is never negative
}
