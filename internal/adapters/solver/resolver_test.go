package solver_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/debstrap/debstrap/internal/adapters/solver"
)

const testIndex = `Package: libexample
Version: 1:2.0-1
Architecture: amd64
Installed-Size: 128
Filename: pool/stable/main/libe/libexample/libexample_2.0-1_amd64.deb
Size: 4096
SHA256: 1111111111111111111111111111111111111111111111111111111111111111

Package: example
Version: 1.0-1
Architecture: amd64
Installed-Size: 64
Depends: libexample
Filename: pool/stable/main/e/example/example_1.0-1_amd64.deb
Size: 2048
SHA256: 2222222222222222222222222222222222222222222222222222222222222222

Package: standalone
Version: 3.0
Architecture: amd64
Installed-Size: 32
Filename: pool/stable/main/s/standalone/standalone_3.0_amd64.deb
Size: 1024
SHA256: 3333333333333333333333333333333333333333333333333333333333333333
`

func writeIndex(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repo.example.com_dists_stable_main_binary-amd64_Packages")
	require.NoError(t, os.WriteFile(path, []byte(testIndex), 0o644))
	return path
}

func TestResolve_OrdersDependenciesFirst(t *testing.T) {
	r := solver.New()
	defer r.Close() //nolint:errcheck // released again on test exit is harmless

	require.NoError(t, r.Populate([]string{writeIndex(t)}, nil))

	tr, err := r.Resolve([]string{"example"})
	require.NoError(t, err)

	names := make([]string, 0, len(tr.Packages))
	for _, pkg := range tr.Packages {
		names = append(names, pkg.Name)
	}
	require.Contains(t, names, "example")
	require.Contains(t, names, "libexample")

	var depIdx, pkgIdx int
	for i, name := range names {
		switch name {
		case "libexample":
			depIdx = i
		case "example":
			pkgIdx = i
		}
	}
	require.Less(t, depIdx, pkgIdx, "dependency must be ordered before its dependent")
}

func TestResolve_Reentrant(t *testing.T) {
	r := solver.New()
	defer r.Close() //nolint:errcheck

	require.NoError(t, r.Populate([]string{writeIndex(t)}, nil))

	first, err := r.Resolve([]string{"example"})
	require.NoError(t, err)

	second, err := r.Resolve([]string{"standalone"})
	require.NoError(t, err)
	require.Len(t, second.Packages, 1)
	require.Equal(t, "standalone", second.Packages[0].Name)

	// The pool is never mutated by resolving: the same query yields the
	// same independent transaction.
	again, err := r.Resolve([]string{"example"})
	require.NoError(t, err)
	require.Equal(t, first.Packages, again.Packages)
	require.Equal(t, first.SizeDelta, again.SizeDelta)
}

func TestResolve_MetadataExtraction(t *testing.T) {
	r := solver.New()
	defer r.Close() //nolint:errcheck

	require.NoError(t, r.Populate([]string{writeIndex(t)}, nil))

	tr, err := r.Resolve([]string{"libexample"})
	require.NoError(t, err)
	require.Len(t, tr.Packages, 1)

	pkg := tr.Packages[0]
	require.Equal(t, "libexample", pkg.Name)
	require.Equal(t, "1:2.0-1", pkg.Version)
	require.Equal(t, "amd64", pkg.Arch)
	require.Equal(t, strings.Repeat("1", 64), pkg.SHA256)
	require.Equal(t, "pool/stable/main/libe/libexample/libexample_2.0-1_amd64.deb", pkg.Path)
	require.False(t, pkg.FromTopic)
	require.Positive(t, tr.SizeDelta)
}

func TestResolve_UnknownNameFails(t *testing.T) {
	r := solver.New()
	defer r.Close() //nolint:errcheck

	require.NoError(t, r.Populate([]string{writeIndex(t)}, nil))

	_, err := r.Resolve([]string{"no-such-package"})
	require.Error(t, err)
}

func TestResolve_ConflictCarriesProblems(t *testing.T) {
	broken := `Package: broken
Version: 1.0
Architecture: amd64
Installed-Size: 1
Depends: missing-dependency
Filename: pool/stable/main/b/broken/broken_1.0_amd64.deb
Size: 512
SHA256: 4444444444444444444444444444444444444444444444444444444444444444
`
	path := filepath.Join(t.TempDir(), "broken_Packages")
	require.NoError(t, os.WriteFile(path, []byte(broken), 0o644))

	r := solver.New()
	defer r.Close() //nolint:errcheck

	require.NoError(t, r.Populate([]string{path}, nil))

	_, err := r.Resolve([]string{"broken"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unable to resolve dependencies")
}

func TestPopulate_RejectsSecondCall(t *testing.T) {
	r := solver.New()
	defer r.Close() //nolint:errcheck

	require.NoError(t, r.Populate([]string{writeIndex(t)}, nil))
	require.Error(t, r.Populate([]string{writeIndex(t)}, nil))
}

func TestResolve_RequiresPopulate(t *testing.T) {
	r := solver.New()
	defer r.Close() //nolint:errcheck

	_, err := r.Resolve([]string{"example"})
	require.Error(t, err)
}
