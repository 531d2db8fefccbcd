package skeleton

import (
	"archive/tar"
	"bytes"
	_ "embed"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"go.trai.ch/zerr"
)

// baselinePack is the bundled archive of always-required files: passwd,
// group, hosts and the handful of top-level directories every tool assumes.
//
//go:embed assets/baseline.tar.zst
var baselinePack []byte

// extractBaseline unpacks the bundled archive into root.
func extractBaseline(root string) error {
	dec, err := zstd.NewReader(bytes.NewReader(baselinePack))
	if err != nil {
		return zerr.Wrap(err, "failed to open baseline archive")
	}
	defer dec.Close()

	tr := tar.NewReader(dec)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return zerr.Wrap(err, "failed to read baseline archive")
		}

		path := filepath.Join(root, filepath.Clean(hdr.Name))
		mode := hdr.FileInfo().Mode()

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, mode.Perm()); err != nil {
				return zerr.Wrap(err, "failed to create baseline directory")
			}
			// MkdirAll honors umask; sticky and setgid bits need a
			// second pass.
			if err := os.Chmod(path, mode); err != nil {
				return zerr.Wrap(err, "failed to set baseline directory mode")
			}
		case tar.TypeReg:
			if err := writeBaselineFile(path, mode, tr); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.Symlink(hdr.Linkname, path); err != nil {
				return zerr.Wrap(err, "failed to create baseline symlink")
			}
		default:
			return zerr.With(zerr.New("unsupported entry in baseline archive"), "name", hdr.Name)
		}
	}
}

func writeBaselineFile(path string, mode os.FileMode, r io.Reader) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm()) //nolint:gosec // path is under the target root
	if err != nil {
		return zerr.Wrap(err, "failed to create baseline file")
	}
	if _, err := io.Copy(out, r); err != nil { //nolint:gosec // bundled archive, bounded size
		out.Close() //nolint:errcheck,gosec // the copy error wins
		return zerr.Wrap(err, "failed to write baseline file")
	}
	return out.Close()
}
