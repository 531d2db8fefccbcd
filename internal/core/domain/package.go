package domain

import "strings"

// PackageMeta describes one resolved package artifact as reported by the
// dependency solver. Values are immutable once produced by a Transaction.
type PackageMeta struct {
	// Name is the package name (e.g., "glibc").
	Name string

	// Version is the full version string, including the epoch if any
	// (e.g., "1:2.37-1").
	Version string

	// SHA256 is the hex-encoded checksum of the package artifact.
	SHA256 string

	// Path is the artifact location relative to the repository root
	// (e.g., "pool/stable/main/g/glibc/...").
	Path string

	// Arch is the package architecture (e.g., "amd64", "all").
	Arch string

	// FromTopic marks packages that originate from an overlay repository
	// rather than the main distribution branch.
	FromTopic bool
}

// escapeVersion escapes characters that are reserved in artifact file names.
// The epoch separator ':' is not allowed in file names served by the
// repository, so it is stored percent-encoded.
func escapeVersion(version string) string {
	return strings.ReplaceAll(version, ":", "%3a")
}

// FileName derives the on-disk artifact name for the package. The derivation
// is a pure function of (name, version, arch): identical inputs always yield
// identical output.
func (p PackageMeta) FileName() string {
	return p.Name + "_" + escapeVersion(p.Version) + "_" + p.Arch + ".deb"
}
