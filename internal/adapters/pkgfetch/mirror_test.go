package pkgfetch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debstrap/debstrap/internal/core/domain"
)

const testIndex = `Package: glibc
Version: 1:2.37-1
Architecture: amd64
Filename: pool/stable/main/glibc.deb

Package: bash
Version: 5.2-0
Architecture: amd64
Filename: pool/stable/main/bash.deb
`

func TestSingleMirror(t *testing.T) {
	m := SingleMirror{Mirror: "https://mirror.example.com/debs", Primary: "https://repo.example.com/debs"}

	url, ok := m.URL(domain.PackageMeta{Name: "glibc"})
	require.True(t, ok)
	assert.Equal(t, "https://mirror.example.com/debs", url)

	// Overlay packages only exist on the primary repository.
	url, ok = m.URL(domain.PackageMeta{Name: "gcc", FromTopic: true})
	require.True(t, ok)
	assert.Equal(t, "https://repo.example.com/debs", url)
}

func TestIndexedMirrors_ExactMatch(t *testing.T) {
	m := NewIndexedMirrors()
	require.NoError(t, m.AddIndex("https://mirror-a.example.com/debs", strings.NewReader(testIndex)))

	url, ok := m.URL(domain.PackageMeta{Name: "glibc", Version: "1:2.37-1", Arch: "amd64"})
	require.True(t, ok)
	assert.Equal(t, "https://mirror-a.example.com/debs", url)

	// A different version of the same package is not claimed.
	_, ok = m.URL(domain.PackageMeta{Name: "glibc", Version: "1:2.38-0", Arch: "amd64"})
	assert.False(t, ok)

	_, ok = m.URL(domain.PackageMeta{Name: "glibc", Version: "1:2.37-1", Arch: "arm64"})
	assert.False(t, ok)
}

func TestIndexedMirrors_LaterIndexWins(t *testing.T) {
	m := NewIndexedMirrors()
	require.NoError(t, m.AddIndex("https://branch.example.com/debs", strings.NewReader(testIndex)))
	require.NoError(t, m.AddIndex("https://overlay.example.com/debs", strings.NewReader(testIndex)))

	url, ok := m.URL(domain.PackageMeta{Name: "bash", Version: "5.2-0", Arch: "amd64"})
	require.True(t, ok)
	assert.Equal(t, "https://overlay.example.com/debs", url)
}

func TestIndexedMirrors_FinalStanzaWithoutTrailingBlank(t *testing.T) {
	m := NewIndexedMirrors()
	index := strings.TrimRight(testIndex, "\n")
	require.NoError(t, m.AddIndex("https://mirror.example.com/debs", strings.NewReader(index)))

	_, ok := m.URL(domain.PackageMeta{Name: "bash", Version: "5.2-0", Arch: "amd64"})
	assert.True(t, ok)
}
