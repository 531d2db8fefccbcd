package ports

import "github.com/debstrap/debstrap/internal/core/domain"

// SkeletonOptions parameterize the minimal root layout.
type SkeletonOptions struct {
	// Mirror and Branch synthesize the default source list entry.
	Mirror string
	Branch string

	// SourcesListFile, when set, is copied into the target verbatim
	// instead of synthesizing one from Mirror and Branch.
	SourcesListFile string
}

// SkeletonBuilder creates the minimal filesystem layout that makes the
// target look like a valid empty installation.
type SkeletonBuilder interface {
	// Build creates package-manager state directories and status files,
	// baseline configuration, device nodes, and extracts the bundled
	// baseline archive. Sensitive files get exact permission bits
	// regardless of the process umask.
	Build(root string, opts SkeletonOptions) error

	// WriteExtendedStates records which installed packages were
	// automatically pulled in, so the package manager can offer them for
	// autoremoval later.
	WriteExtendedStates(root string, manual []string, all []domain.PackageMeta, arch string) error
}
