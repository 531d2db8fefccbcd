package ports

import (
	"context"

	"github.com/debstrap/debstrap/internal/core/domain"
)

// MirrorSelector decides which repository serves a given package.
type MirrorSelector interface {
	// URL returns the repository base URL for the package, or false when
	// no known mirror provides it.
	URL(pkg domain.PackageMeta) (string, bool)
}

// PackageFetcher downloads resolved package artifacts.
//
//go:generate go run go.uber.org/mock/mockgen -source=packages.go -destination=mocks/mock_packages.go -package=mocks
type PackageFetcher interface {
	// FetchAll downloads every package into dest, verifying checksums.
	// Artifacts already present in dest are trusted and skipped. On any
	// failure the entire batch is retried after a short backoff, up to
	// three total attempts.
	FetchAll(ctx context.Context, pkgs []domain.PackageMeta, dest string, mirrors MirrorSelector, jobs int) error
}
