// Package skeleton creates the minimal filesystem layout that makes a target
// look like a valid empty installation.
package skeleton

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"

	"github.com/debstrap/debstrap/internal/core/domain"
	"github.com/debstrap/debstrap/internal/core/ports"
)

var _ ports.SkeletonBuilder = (*Builder)(nil)

// Builder implements ports.SkeletonBuilder.
type Builder struct {
	logger ports.Logger
}

// New creates a Builder.
func New(logger ports.Logger) *Builder {
	return &Builder{logger: logger}
}

// stateDirs are created before anything else. The archives directory doubles
// as the raw-artifact cache the package fetcher downloads into.
var stateDirs = []string{
	"var/lib/dpkg",
	"var/lib/apt/lists",
	"var/cache/apt/archives",
	"etc/apt",
	"dev",
}

// Build creates the package-manager state, baseline configuration, device
// nodes, and unpacks the bundled baseline archive.
func (b *Builder) Build(root string, opts ports.SkeletonOptions) error {
	for _, dir := range stateDirs {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to create state directory"), "dir", dir)
		}
	}

	if err := extractBaseline(root); err != nil {
		return err
	}

	if err := writeManagerState(root); err != nil {
		return err
	}
	if err := writeSourcesList(root, opts); err != nil {
		return err
	}
	if err := makeDeviceNodes(root); err != nil {
		return err
	}

	b.logger.Info("created filesystem skeleton in " + root)
	return nil
}

// writeManagerState lays down empty dpkg databases plus the baseline locale
// and shadow entries. The shadow entry has no usable password: console login
// stays disabled until the operator sets one.
func writeManagerState(root string) error {
	for _, name := range []string{"var/lib/dpkg/available", "var/lib/dpkg/status"} {
		f, err := os.Create(filepath.Join(root, name)) //nolint:gosec // fixed relative path under root
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to create dpkg database"), "file", name)
		}
		if err := f.Close(); err != nil {
			return zerr.Wrap(err, "failed to close dpkg database")
		}
	}

	if err := os.WriteFile(filepath.Join(root, "etc/locale.conf"), []byte("LANG=C.UTF-8\n"), 0o644); err != nil { //nolint:gosec // world-readable
		return zerr.Wrap(err, "failed to write locale configuration")
	}

	shadow := filepath.Join(root, "etc/shadow")
	if err := os.WriteFile(shadow, []byte("root:x:1:0:99999:7:::\n"), 0o600); err != nil {
		return zerr.Wrap(err, "failed to write shadow file")
	}
	// Exact bits, regardless of umask.
	if err := os.Chmod(shadow, 0o000); err != nil {
		return zerr.Wrap(err, "failed to lock down shadow file")
	}
	return nil
}

// writeSourcesList synthesizes the source list from mirror and branch, or
// copies the caller-provided file verbatim.
func writeSourcesList(root string, opts ports.SkeletonOptions) error {
	path := filepath.Join(root, "etc/apt/sources.list")

	var data []byte
	if opts.SourcesListFile != "" {
		var err error
		data, err = os.ReadFile(opts.SourcesListFile) //nolint:gosec // path is provided by user
		if err != nil {
			return zerr.Wrap(err, "failed to read caller source list")
		}
	} else {
		data = []byte(fmt.Sprintf("deb %s %s main\n", opts.Mirror, opts.Branch))
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // world-readable
		return zerr.Wrap(err, "failed to write source list")
	}
	return os.Chmod(path, 0o644)
}

// makeDeviceNodes creates the character devices the maintainer scripts need
// before the target can mount its own /dev.
func makeDeviceNodes(root string) error {
	nodes := []struct {
		path  string
		major uint32
		minor uint32
	}{
		{"dev/null", 1, 3},
		{"dev/console", 5, 1},
	}
	for _, n := range nodes {
		path := filepath.Join(root, n.path)
		dev := int(unix.Mkdev(n.major, n.minor))
		if err := unix.Mknod(path, unix.S_IFCHR|0o666, dev); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to create device node"), "node", n.path)
		}
	}

	shm := filepath.Join(root, "dev/shm")
	if err := os.Mkdir(shm, 0o777|os.ModeSticky); err != nil {
		return zerr.Wrap(err, "failed to create shared memory directory")
	}
	return os.Chmod(shm, 0o777|os.ModeSticky)
}

// WriteExtendedStates marks every installed package that was not explicitly
// requested as automatically installed, so the package manager can offer it
// for autoremoval later.
func (b *Builder) WriteExtendedStates(root string, manual []string, all []domain.PackageMeta, arch string) error {
	if err := os.MkdirAll(filepath.Join(root, "var/lib/apt"), 0o755); err != nil {
		return zerr.Wrap(err, "failed to create apt state directory")
	}

	f, err := os.Create(filepath.Join(root, "var/lib/apt/extended_states")) //nolint:gosec // fixed relative path under root
	if err != nil {
		return zerr.Wrap(err, "failed to create extended states file")
	}

	requested := make(map[string]bool, len(manual))
	for _, name := range manual {
		requested[name] = true
	}

	w := bufio.NewWriter(f)
	for _, pkg := range all {
		if requested[pkg.Name] {
			continue
		}
		fmt.Fprintf(w, "Package: %s\nArchitecture: %s\nAuto-Installed: 1\n\n", pkg.Name, arch) //nolint:errcheck // flushed below
	}
	if err := w.Flush(); err != nil {
		f.Close() //nolint:errcheck,gosec // the flush error wins
		return zerr.Wrap(err, "failed to write extended states")
	}
	return f.Close()
}
