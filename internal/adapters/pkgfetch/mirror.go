package pkgfetch

import (
	"bufio"
	"io"
	"os"
	"strings"

	"go.trai.ch/zerr"

	"github.com/debstrap/debstrap/internal/core/domain"
	"github.com/debstrap/debstrap/internal/core/ports"
)

var (
	_ ports.MirrorSelector = SingleMirror{}
	_ ports.MirrorSelector = (*IndexedMirrors)(nil)
)

// SingleMirror serves every package from one branch mirror. Overlay packages
// are pinned to the primary repository, which is the only one that carries
// topic suites.
type SingleMirror struct {
	Mirror  string
	Primary string
}

// URL always succeeds: a fixed mirror claims everything.
func (m SingleMirror) URL(pkg domain.PackageMeta) (string, bool) {
	if pkg.FromTopic && m.Primary != "" {
		return m.Primary, true
	}
	return m.Mirror, true
}

// IndexedMirrors picks a mirror per package by scanning the loaded package
// indices for the exact name, version and architecture.
type IndexedMirrors struct {
	providers map[indexKey]string
}

type indexKey struct {
	name    string
	version string
	arch    string
}

// NewIndexedMirrors creates an empty selector. Indices are attached with
// AddIndex or AddIndexFile.
func NewIndexedMirrors() *IndexedMirrors {
	return &IndexedMirrors{providers: make(map[indexKey]string)}
}

// AddIndexFile scans the package index at path and attributes every listed
// package to mirror.
func (m *IndexedMirrors) AddIndexFile(mirror, path string) error {
	f, err := os.Open(path) //nolint:gosec // path comes from the manifest set
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open package index"), "path", path)
	}
	defer f.Close() //nolint:errcheck // best effort close in defer

	if err := m.AddIndex(mirror, f); err != nil {
		return zerr.With(err, "path", path)
	}
	return nil
}

// AddIndex scans a package index and attributes every listed package to
// mirror. Later indices win on overlap, so overlay indices should be added
// after branch indices.
func (m *IndexedMirrors) AddIndex(mirror string, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var key indexKey
	flush := func() {
		if key.name != "" && key.version != "" && key.arch != "" {
			m.providers[key] = mirror
		}
		key = indexKey{}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			flush()
			continue
		}
		switch {
		case strings.HasPrefix(line, "Package: "):
			key.name = strings.TrimPrefix(line, "Package: ")
		case strings.HasPrefix(line, "Version: "):
			key.version = strings.TrimPrefix(line, "Version: ")
		case strings.HasPrefix(line, "Architecture: "):
			key.arch = strings.TrimPrefix(line, "Architecture: ")
		}
	}
	if err := scanner.Err(); err != nil {
		return zerr.Wrap(err, "failed to read package index")
	}
	flush()

	return nil
}

// URL returns the mirror whose index lists the exact package, or false.
func (m *IndexedMirrors) URL(pkg domain.PackageMeta) (string, bool) {
	mirror, ok := m.providers[indexKey{name: pkg.Name, version: pkg.Version, arch: pkg.Arch}]
	return mirror, ok
}
