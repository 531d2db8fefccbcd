package deb

import (
	"archive/tar"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"

	"github.com/debstrap/debstrap/internal/core/ports"
)

var _ ports.PackageExtractor = (*Extractor)(nil)

// Extractor implements ports.PackageExtractor for ar-based package
// artifacts.
type Extractor struct{}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract unpacks the data payload of the package at debPath into root.
func (e *Extractor) Extract(debPath, root string) error {
	f, err := os.Open(debPath) //nolint:gosec // path comes from the package cache
	if err != nil {
		return zerr.Wrap(err, "failed to open package")
	}
	defer f.Close() //nolint:errcheck // best effort close in defer

	if err := extract(f, root); err != nil {
		return zerr.With(err, "package", filepath.Base(debPath))
	}
	return nil
}

func extract(r io.Reader, root string) error {
	archive, err := newArReader(r)
	if err != nil {
		return err
	}

	for {
		name, _, member, err := archive.Next()
		if errors.Is(err, io.EOF) {
			return zerr.New("package carries no data payload")
		}
		if err != nil {
			return err
		}

		switch name {
		case "data.tar.zst":
			dec, err := zstd.NewReader(member)
			if err != nil {
				return zerr.Wrap(err, "failed to open data payload")
			}
			err = unpackTar(dec, root)
			dec.Close()
			return err
		case "data.tar.gz":
			dec, err := gzip.NewReader(member)
			if err != nil {
				return zerr.Wrap(err, "failed to open data payload")
			}
			if err := unpackTar(dec, root); err != nil {
				return err
			}
			return dec.Close()
		case "data.tar":
			return unpackTar(member, root)
		}
		// Other members (debian-binary, control.tar.*) are skipped.
	}
}

// unpackTar materializes a data payload under root, preserving modes,
// symlinks and hard links. Ownership is applied when running privileged and
// skipped otherwise, matching what unprivileged test runs can do.
func unpackTar(r io.Reader, root string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return zerr.Wrap(err, "failed to read data payload")
		}

		name := filepath.Clean(hdr.Name)
		if name == "." {
			continue
		}
		path := filepath.Join(root, name)
		mode := hdr.FileInfo().Mode()

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, mode.Perm()); err != nil {
				return zerr.Wrap(err, "failed to create directory")
			}
			if err := os.Chmod(path, mode); err != nil {
				return zerr.Wrap(err, "failed to set directory mode")
			}
		case tar.TypeReg:
			if err := writeFile(path, mode, tr); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := replaceLink(path, func() error { return os.Symlink(hdr.Linkname, path) }); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to create symlink"), "path", path)
			}
		case tar.TypeLink:
			target := filepath.Join(root, filepath.Clean(hdr.Linkname))
			if err := replaceLink(path, func() error { return os.Link(target, path) }); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to create hard link"), "path", path)
			}
		case tar.TypeChar, tar.TypeBlock:
			flag := uint32(unix.S_IFCHR)
			if hdr.Typeflag == tar.TypeBlock {
				flag = unix.S_IFBLK
			}
			dev := int(unix.Mkdev(uint32(hdr.Devmajor), uint32(hdr.Devminor))) //nolint:gosec // major/minor fit in uint32
			if err := unix.Mknod(path, flag|uint32(mode.Perm()), dev); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to create device node"), "path", path)
			}
		case tar.TypeFifo:
			if err := unix.Mkfifo(path, uint32(mode.Perm())); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to create fifo"), "path", path)
			}
		case tar.TypeXGlobalHeader:
			continue
		default:
			return zerr.With(zerr.New("unsupported entry in data payload"), "name", hdr.Name)
		}

		if hdr.Typeflag != tar.TypeSymlink {
			if err := chownIfRoot(path, hdr.Uid, hdr.Gid); err != nil {
				return err
			}
		}
	}
}

func writeFile(path string, mode os.FileMode, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerr.Wrap(err, "failed to create parent directory")
	}
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm()) //nolint:gosec // path is under the target root
	if err != nil {
		return zerr.Wrap(err, "failed to create file")
	}
	if _, err := io.Copy(out, r); err != nil { //nolint:gosec // payload size is bounded by the artifact
		out.Close() //nolint:errcheck,gosec // the copy error wins
		return zerr.Wrap(err, "failed to write file")
	}
	if err := out.Close(); err != nil {
		return zerr.Wrap(err, "failed to close file")
	}
	// Setuid and setgid bits survive, they matter for privilege-escalation
	// binaries.
	return os.Chmod(path, mode)
}

// replaceLink retries link creation after removing a pre-existing path, so
// re-extraction over a partially populated target works.
func replaceLink(path string, create func() error) error {
	err := create()
	if err == nil {
		return nil
	}
	if !os.IsExist(err) {
		return err
	}
	if err := os.Remove(path); err != nil {
		return err
	}
	return create()
}

func chownIfRoot(path string, uid, gid int) error {
	if os.Geteuid() != 0 {
		return nil
	}
	if err := os.Lchown(path, uid, gid); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to set ownership"), "path", path)
	}
	return nil
}
