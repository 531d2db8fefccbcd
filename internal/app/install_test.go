package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scriptApp() *App {
	return New(Params{Logger: &testLogger{}})
}

func TestWriteInstallScript_QuotedFileList(t *testing.T) {
	target := t.TempDir()

	path, err := scriptApp().writeInstallScript(target,
		[]string{"glibc_1%3a2.37-1_amd64.deb", "bash_5.2-0_amd64.deb"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, target, filepath.Dir(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	script := string(body)
	assert.True(t, strings.HasPrefix(script, "#!/bin/bash\n"))
	assert.Contains(t, script, "for p in 'glibc_1%3a2.37-1_amd64.deb' 'bash_5.2-0_amd64.deb'; do")
	assert.Contains(t, script, "dpkg --configure -a")
	assert.NotContains(t, script, "{}")
	assert.NotContains(t, script, "factory reset")
	assert.NotContains(t, script, "Running additional scripts")
}

func TestWriteInstallScript_Clean(t *testing.T) {
	target := t.TempDir()

	path, err := scriptApp().writeInstallScript(target, []string{"a_1_all.deb"}, Options{Clean: true})
	require.NoError(t, err)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	script := string(body)
	assert.Contains(t, script, "factory reset")

	// Cleanup runs after installation.
	assert.Less(t, strings.Index(script, "dpkg --configure -a"), strings.Index(script, "factory reset"))
}

func TestWriteInstallScript_CallerScripts(t *testing.T) {
	target := t.TempDir()
	dir := t.TempDir()
	first := filepath.Join(dir, "users.sh")
	second := filepath.Join(dir, "locale.sh")
	require.NoError(t, os.WriteFile(first, []byte("useradd -m dev\n"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("locale-gen\n"), 0o644))

	path, err := scriptApp().writeInstallScript(target, []string{"a_1_all.deb"},
		Options{Scripts: []string{first, second}})
	require.NoError(t, err)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	script := string(body)

	// Each caller script is spliced in under a marker naming its origin,
	// after the install body.
	assert.Contains(t, script, "echo 'Running additional scripts ...';")
	assert.Contains(t, script, "# === "+first+"\nuseradd -m dev\n")
	assert.Contains(t, script, "# === "+second+"\nlocale-gen\n")
	assert.Less(t, strings.Index(script, first), strings.Index(script, second))
}

func TestWriteInstallScript_MissingCallerScript(t *testing.T) {
	target := t.TempDir()

	_, err := scriptApp().writeInstallScript(target, []string{"a_1_all.deb"},
		Options{Scripts: []string{filepath.Join(t.TempDir(), "absent.sh")}})
	require.Error(t, err)

	// The partial script must not linger in the target.
	leftovers, globErr := filepath.Glob(filepath.Join(target, "install-*.sh"))
	require.NoError(t, globErr)
	assert.Empty(t, leftovers)
}
