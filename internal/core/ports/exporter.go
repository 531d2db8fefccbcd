package ports

import "context"

// TarCodec selects the compression codec for tar exports.
type TarCodec string

const (
	// CodecZstd is the multi-threaded, high-ratio codec.
	CodecZstd TarCodec = "zstd"
	// CodecGzip is the simple single-threaded codec.
	CodecGzip TarCodec = "gzip"
)

// Exporter serializes a finished root filesystem into distributable formats.
type Exporter interface {
	// Tar streams the tree at root into a compressed tar archive at out,
	// preserving ownership, timestamps and permission bits, and recording
	// symbolic links as links.
	Tar(ctx context.Context, root, out string, codec TarCodec, jobs int) error

	// Squashfs invokes the external image builder with the given
	// parallelism. A non-zero tool exit is an error.
	Squashfs(ctx context.Context, root, out string, jobs int) error

	// ChecksumTag writes the sidecar checksum-tag file for an artifact.
	ChecksumTag(path string) error
}
