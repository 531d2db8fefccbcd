// Package archive serializes a finished root filesystem into distributable
// artifacts.
package archive

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.trai.ch/zerr"

	"github.com/debstrap/debstrap/internal/adapters/tarsize"
	"github.com/debstrap/debstrap/internal/core/domain"
	"github.com/debstrap/debstrap/internal/core/ports"
	"github.com/debstrap/debstrap/internal/sums"
)

var _ ports.Exporter = (*Exporter)(nil)

// Exporter implements ports.Exporter.
type Exporter struct {
	logger ports.Logger

	// newCommand is an injection point for tests.
	newCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// New creates an Exporter.
func New(logger ports.Logger) *Exporter {
	return &Exporter{
		logger:     logger,
		newCommand: exec.CommandContext,
	}
}

// Tar streams the tree at root into a compressed archive at out.
func (e *Exporter) Tar(ctx context.Context, root, out string, codec ports.TarCodec, jobs int) error {
	est := &tarsize.Estimator{TrackHardLinks: true}
	total, err := est.Estimate(root, tarsize.DefaultRecordSize)
	if err != nil {
		return err
	}

	f, err := os.Create(out) //nolint:gosec // out is provided by user
	if err != nil {
		return zerr.Wrap(err, "failed to create archive")
	}

	var (
		compressed io.WriteCloser
		cerr       error
	)
	switch codec {
	case ports.CodecZstd:
		compressed, cerr = zstd.NewWriter(f,
			zstd.WithEncoderLevel(zstd.SpeedBestCompression),
			zstd.WithEncoderConcurrency(jobs))
	case ports.CodecGzip:
		compressed = gzip.NewWriter(f)
	default:
		cerr = zerr.With(zerr.New("unknown tar codec"), "codec", string(codec))
	}
	if cerr != nil {
		f.Close() //nolint:errcheck,gosec // the setup error wins
		return zerr.Wrap(cerr, "failed to set up compression")
	}

	// The counter sits on the raw tar stream, where the estimate applies.
	counter := newProgressWriter(ctx, compressed, total)

	if err := writeTree(tar.NewWriter(counter), root); err != nil {
		compressed.Close() //nolint:errcheck,gosec // the write error wins
		f.Close()          //nolint:errcheck,gosec // the write error wins
		return err
	}

	if err := compressed.Close(); err != nil {
		f.Close() //nolint:errcheck,gosec // the flush error wins
		return zerr.Wrap(err, "failed to flush archive")
	}
	if err := f.Sync(); err != nil {
		f.Close() //nolint:errcheck,gosec // the sync error wins
		return zerr.Wrap(err, "failed to sync archive")
	}
	if err := f.Close(); err != nil {
		return zerr.Wrap(err, "failed to close archive")
	}

	e.logger.Info("exported " + out)
	return nil
}

// writeTree walks root and streams every entry. Ownership, timestamps,
// setuid bits and device numbers survive; hard links are recorded as links
// against their first occurrence.
func writeTree(tw *tar.Writer, root string) error {
	inodes := make(map[uint64]string)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		var linkTarget string
		if info.Mode()&os.ModeSymlink != 0 {
			linkTarget, err = os.Readlink(path)
			if err != nil {
				return err
			}
		}

		hdr, err := tar.FileInfoHeader(info, linkTarget)
		if err != nil {
			return err
		}
		hdr.Format = tar.FormatGNU
		hdr.Name = rel
		if info.IsDir() {
			hdr.Name += "/"
		}
		hdr.Uname = ""
		hdr.Gname = ""

		if st, ok := info.Sys().(*syscall.Stat_t); ok {
			hdr.Uid = int(st.Uid)
			hdr.Gid = int(st.Gid)

			if info.Mode().IsRegular() && st.Nlink > 1 {
				if first, seen := inodes[st.Ino]; seen {
					hdr.Typeflag = tar.TypeLink
					hdr.Linkname = first
					hdr.Size = 0
				} else {
					inodes[st.Ino] = rel
				}
			}
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if hdr.Typeflag != tar.TypeReg || hdr.Size == 0 {
			return nil
		}

		src, err := os.Open(path) //nolint:gosec // path is under the exported root
		if err != nil {
			return err
		}
		_, err = io.Copy(tw, src)
		src.Close() //nolint:errcheck,gosec // the copy error wins
		return err
	})
	if err != nil {
		return zerr.Wrap(err, "failed to stream tree")
	}

	if err := tw.Close(); err != nil {
		return zerr.Wrap(err, "failed to finish archive")
	}
	return nil
}

// Squashfs invokes the external image builder.
func (e *Exporter) Squashfs(ctx context.Context, root, out string, jobs int) error {
	cmd := e.newCommand(ctx, "mksquashfs", root, out,
		"-comp", "xz", "-processors", strconv.Itoa(jobs), "-noappend")
	if v, ok := ports.VertexFromContext(ctx); ok {
		cmd.Stdout = v.Stdout()
		cmd.Stderr = v.Stderr()
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return zerr.With(zerr.With(domain.ErrExport, "tool", "mksquashfs"), "status", exitErr.ExitCode())
		}
		return zerr.Wrap(err, "failed to run mksquashfs")
	}

	e.logger.Info("exported " + out)
	return nil
}

// ChecksumTag writes the sidecar checksum-tag file for an artifact.
func (e *Exporter) ChecksumTag(path string) error {
	return sums.WriteTag(path)
}
