// Package tarsize computes the exact size a GNU tar archive of a directory
// tree would occupy, without writing any output.
//
// tar is a block-based format: every archived entry contributes one 512-byte
// header block, regular files add their content padded to whole blocks, and
// names longer than the 100-byte header field add an auxiliary long-name
// entry (one 'L'/'K' header plus the NUL-terminated name, block-padded). The
// finished archive ends with two zero blocks and is padded up to a whole
// number of records.
//
// The estimate is a pure function of filesystem metadata: file contents are
// never read.
package tarsize

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"syscall"

	"go.trai.ch/zerr"

	"github.com/debstrap/debstrap/internal/core/domain"
)

const (
	// blockSize is the tar basic block.
	blockSize = 512

	// nameFieldSize is the capacity of the in-header name and linkname
	// fields. Longer names spill into an auxiliary long-name entry.
	nameFieldSize = 100

	// endMarkerSize is the fixed end-of-archive marker: two zero blocks.
	endMarkerSize = 1024

	// DefaultRecordSize matches tar's compiled-in blocking factor of 20.
	DefaultRecordSize = 20 * blockSize
)

// Estimator models the archive produced by a metadata-preserving tar of a
// directory tree.
type Estimator struct {
	// TrackHardLinks enables the inode table: every occurrence of an
	// already-seen inode is stored as a link entry costing exactly one
	// header block, the way tar deduplicates hard links.
	TrackHardLinks bool
}

// entry is one filesystem object yielded by the traversal.
type entry struct {
	// name is the archive-relative path of the object.
	name string
	// path is the absolute (or caller-relative) path on disk.
	path string
	info os.FileInfo
}

// walk lazily traverses the tree under root in lexical order, without
// following symbolic links and without crossing device boundaries. The
// returned sequence is finite and can be restarted from the beginning by
// ranging over it again.
func walk(root string) iter.Seq2[entry, error] {
	return func(yield func(entry, error) bool) {
		rootDev, devKnown := deviceOf(root)

		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if !yield(entry{}, err) {
					return filepath.SkipAll
				}
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				if !yield(entry{}, err) {
					return filepath.SkipAll
				}
				return nil
			}
			if rel == "." {
				// The root itself is not an archive member; tar
				// archives the tree relative to it.
				return nil
			}

			info, err := d.Info()
			if err != nil {
				if !yield(entry{}, err) {
					return filepath.SkipAll
				}
				return nil
			}

			if d.IsDir() && devKnown {
				if dev, ok := statDev(info); ok && dev != rootDev {
					return filepath.SkipDir
				}
			}

			if !yield(entry{name: rel, path: path, info: info}, nil) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func deviceOf(path string) (uint64, bool) {
	info, err := os.Lstat(path)
	if err != nil {
		return 0, false
	}
	return statDev(info)
}

func statDev(info os.FileInfo) (uint64, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return uint64(st.Dev), true //nolint:unconvert // Dev width differs across platforms
}

// padBlocks returns the number of whole blocks needed to hold n bytes.
func padBlocks(n uint64) uint64 {
	return (n + blockSize - 1) / blockSize
}

// longNameBlocks is the cost of one auxiliary long-name entry: a header
// block plus the NUL-terminated name padded to whole blocks.
func longNameBlocks(nameLen int) uint64 {
	return 1 + padBlocks(uint64(nameLen)+1)
}

// entryBlocks returns the number of blocks the entry occupies in the
// archive. Sockets and unknown types are not archivable and contribute
// nothing.
func entryBlocks(ent entry) (uint64, error) {
	mode := ent.info.Mode()

	var blocks uint64
	nameLen := len(ent.name)

	switch {
	case mode.IsRegular():
		blocks = 1 + padBlocks(uint64(ent.info.Size()))
	case mode&fs.ModeSymlink != 0:
		blocks = 1
		target, err := os.Readlink(ent.path)
		if err != nil {
			return 0, zerr.With(zerr.Wrap(err, "failed to read link target"), "path", ent.path)
		}
		if len(target) > nameFieldSize {
			// Long targets get a 'K' entry prepended.
			blocks += longNameBlocks(len(target))
		}
	case mode.IsDir():
		// Directories are stored with a trailing separator, which
		// counts against the name field.
		blocks = 1
		nameLen++
	case mode&(fs.ModeDevice|fs.ModeCharDevice|fs.ModeNamedPipe) != 0:
		// Header only: the "content" is the device numbers in the
		// header itself.
		blocks = 1
	default:
		// Sockets and anything unrecognized are skipped by tar.
		return 0, nil
	}

	if nameLen > nameFieldSize {
		// Long paths get an 'L' entry prepended.
		blocks += longNameBlocks(nameLen)
	}

	return blocks, nil
}

// Estimate returns the exact byte size a tar archive of the tree at root
// would occupy, padded up to recordSize. recordSize must be a positive
// multiple of 512; use DefaultRecordSize for tar's default blocking factor.
func (e *Estimator) Estimate(root string, recordSize uint64) (uint64, error) {
	if recordSize == 0 || recordSize%blockSize != 0 {
		return 0, zerr.With(domain.ErrBadRecordSize, "record_size", recordSize)
	}

	inodes := make(map[uint64]string)

	var total uint64
	for ent, err := range walk(root) {
		if err != nil {
			return 0, zerr.Wrap(err, "traversal failed")
		}

		if e.TrackHardLinks {
			if st, ok := ent.info.Sys().(*syscall.Stat_t); ok && st.Nlink > 1 {
				if _, seen := inodes[st.Ino]; seen {
					// Later occurrences are stored as link
					// entries: one header block, no content.
					total++
					continue
				}
				inodes[st.Ino] = ent.name
			}
		}

		blocks, err := entryBlocks(ent)
		if err != nil {
			return 0, err
		}
		total += blocks
	}

	bytes := total*blockSize + endMarkerSize
	records := (bytes + recordSize - 1) / recordSize
	return records * recordSize, nil
}
