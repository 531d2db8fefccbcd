package skeleton

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debstrap/debstrap/internal/core/domain"
	"github.com/debstrap/debstrap/internal/core/ports"
)

type testLogger struct{}

func (testLogger) Info(string) {}
func (testLogger) Warn(string) {}
func (testLogger) Error(error) {}

func TestBuild(t *testing.T) {
	if os.Geteuid() != 0 {
		t.Skip("device node creation requires root")
	}

	root := t.TempDir()
	b := New(testLogger{})
	require.NoError(t, b.Build(root, ports.SkeletonOptions{
		Mirror: "https://repo.example.com/debs",
		Branch: "stable",
	}))

	for _, name := range []string{"var/lib/dpkg/available", "var/lib/dpkg/status"} {
		info, err := os.Stat(filepath.Join(root, name))
		require.NoError(t, err)
		assert.Zero(t, info.Size())
	}

	shadow, err := os.Stat(filepath.Join(root, "etc/shadow"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0), shadow.Mode().Perm())

	null, err := os.Stat(filepath.Join(root, "dev/null"))
	require.NoError(t, err)
	assert.Equal(t, os.ModeCharDevice, null.Mode()&os.ModeCharDevice)

	shm, err := os.Stat(filepath.Join(root, "dev/shm"))
	require.NoError(t, err)
	assert.Equal(t, os.ModeSticky, shm.Mode()&os.ModeSticky)
}

func TestWriteManagerState(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "var/lib/dpkg"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "etc"), 0o755))

	require.NoError(t, writeManagerState(root))

	locale, err := os.ReadFile(filepath.Join(root, "etc/locale.conf"))
	require.NoError(t, err)
	assert.Equal(t, "LANG=C.UTF-8\n", string(locale))

	info, err := os.Stat(filepath.Join(root, "etc/shadow"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0), info.Mode().Perm())
}

func TestWriteSourcesList_Synthesized(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "etc/apt"), 0o755))

	require.NoError(t, writeSourcesList(root, ports.SkeletonOptions{
		Mirror: "https://repo.example.com/debs",
		Branch: "stable",
	}))

	data, err := os.ReadFile(filepath.Join(root, "etc/apt/sources.list"))
	require.NoError(t, err)
	assert.Equal(t, "deb https://repo.example.com/debs stable main\n", string(data))

	info, err := os.Stat(filepath.Join(root, "etc/apt/sources.list"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWriteSourcesList_CallerFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "etc/apt"), 0o755))

	custom := filepath.Join(t.TempDir(), "sources.list")
	content := "deb https://mirror-a.example.com/debs stable main\ndeb https://mirror-b.example.com/debs stable main\n"
	require.NoError(t, os.WriteFile(custom, []byte(content), 0o600))

	require.NoError(t, writeSourcesList(root, ports.SkeletonOptions{SourcesListFile: custom}))

	data, err := os.ReadFile(filepath.Join(root, "etc/apt/sources.list"))
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	// Copied verbatim but still forced world-readable.
	info, err := os.Stat(filepath.Join(root, "etc/apt/sources.list"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestExtractBaseline(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, extractBaseline(root))

	passwd, err := os.ReadFile(filepath.Join(root, "etc/passwd"))
	require.NoError(t, err)
	assert.Contains(t, string(passwd), "root:x:0:0:")

	tmp, err := os.Stat(filepath.Join(root, "tmp"))
	require.NoError(t, err)
	assert.Equal(t, os.ModeSticky, tmp.Mode()&os.ModeSticky)

	home, err := os.Stat(filepath.Join(root, "root"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), home.Mode().Perm())
}

func TestWriteExtendedStates(t *testing.T) {
	root := t.TempDir()
	b := New(testLogger{})

	all := []domain.PackageMeta{
		{Name: "systemd"},
		{Name: "glibc"},
		{Name: "zlib"},
	}
	require.NoError(t, b.WriteExtendedStates(root, []string{"systemd"}, all, "amd64"))

	data, err := os.ReadFile(filepath.Join(root, "var/lib/apt/extended_states"))
	require.NoError(t, err)

	content := string(data)
	assert.NotContains(t, content, "Package: systemd")
	assert.Contains(t, content, "Package: glibc\nArchitecture: amd64\nAuto-Installed: 1\n\n")
	assert.Contains(t, content, "Package: zlib\nArchitecture: amd64\nAuto-Installed: 1\n\n")
}
