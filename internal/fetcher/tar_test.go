package fetcher

import (
	"archive/tar"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTar builds a plain tar archive from name→content pairs.
func writeTar(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	tw := tar.NewWriter(f)
	for name, content := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
}

func TestExtractTarBz2_PlainTar(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "catalog.tar")
	writeTar(t, archive, map[string]string{
		"cache/epub/7/pg7.rdf": "<rdf/>",
		"README":               "hello",
	})

	dest := filepath.Join(dir, "out")
	n, err := ExtractTarBz2(archive, dest)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	content, err := os.ReadFile(filepath.Join(dest, "cache/epub/7/pg7.rdf"))
	require.NoError(t, err)
	assert.Equal(t, "<rdf/>", string(content))
}

func TestExtractTarBz2_Bzip2Fixture(t *testing.T) {
	dest := t.TempDir()
	n, err := ExtractTarBz2(filepath.Join("testdata", "catalog.tar.bz2"), dest)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.FileExists(t, filepath.Join(dest, "cache/epub/7/pg7.rdf"))
	assert.FileExists(t, filepath.Join(dest, "cache/epub/11/readme.txt"))
}

func TestExtractTarBz2_RejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.tar")
	writeTar(t, archive, map[string]string{
		"../escape.txt": "nope",
	})

	_, err := ExtractTarBz2(archive, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal path")
	assert.NoFileExists(t, filepath.Join(dir, "escape.txt"))
}

func TestExtractTarBz2_MissingArchive(t *testing.T) {
	_, err := ExtractTarBz2(filepath.Join(t.TempDir(), "absent.tar"), t.TempDir())
	require.Error(t, err)
}
