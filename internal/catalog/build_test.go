package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"awesomearcade/internal/models"
)

func TestBuild_WritesArtifacts(t *testing.T) {
	public := t.TempDir()
	opts := BuildOptions{
		SourcePath:      "testdata/extensions.xml",
		PublicDir:       public,
		SiteTitle:       "Awesome Arcade Extensions",
		SiteDescription: "A list",
	}

	cat, err := NewLoader(testRenderer()).Build(opts)
	require.NoError(t, err)

	snap, err := ReadSnapshot(filepath.Join(public, SnapshotFile))
	require.NoError(t, err)
	if diff := cmp.Diff(cat, snap); diff != "" {
		t.Errorf("snapshot differs from built catalog (-built +snapshot):\n%s", diff)
	}

	raw, err := os.ReadFile(filepath.Join(public, SnapshotFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"Extensions\": [", "snapshot is indented and keyed by category")

	var m Manifest
	data, err := os.ReadFile(filepath.Join(public, ManifestFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "Awesome Arcade Extensions", m.Name)
	assert.Equal(t, "/", m.StartURL)
}

func TestBuild_MalformedSourceWritesNothing(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "extensions.xml")
	require.NoError(t, os.WriteFile(src, []byte("<catalog><category"), 0o644))

	public := filepath.Join(dir, "public")
	_, err := NewLoader(testRenderer()).Build(BuildOptions{SourcePath: src, PublicDir: public})
	require.ErrorIs(t, err, ErrMalformedSource)

	_, statErr := os.Stat(filepath.Join(public, SnapshotFile))
	assert.True(t, os.IsNotExist(statErr), "no snapshot should be published for a malformed source")
}

func TestHolder_Replace(t *testing.T) {
	first, err := NewLoader(testRenderer()).LoadFile("testdata/extensions.xml")
	require.NoError(t, err)

	h := NewHolder(first)
	old := h.Get()

	h.Replace(nil)
	assert.Same(t, old, h.Get(), "nil replacement is ignored")

	second := first.Clone()
	second.Categories = second.Categories[:1]
	h.Replace(second)

	assert.Same(t, second, h.Get())
	assert.Len(t, old.Categories, 2, "previous catalog is untouched")
}

func TestHolder_Empty(t *testing.T) {
	h := NewHolder(nil)
	assert.Nil(t, h.Get())

	cat := &models.Catalog{}
	h.Replace(cat)
	assert.Same(t, cat, h.Get())
}
