package ports

// PackageExtractor unpacks a package artifact's data payload directly into a
// root filesystem, bypassing the package manager. Used for the stub set that
// must exist before the package manager itself can run.
type PackageExtractor interface {
	Extract(debPath, root string) error
}
