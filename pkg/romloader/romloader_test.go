package romloader

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadPassesThroughUncompressedROM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.gb")
	want := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	require.NoError(t, os.WriteFile(path, want, 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLoadDecompressesGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.gb.gz")
	want := []byte("a game boy rom, honest")

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(want)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLoadDecompressesZipFirstEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.zip")
	want := []byte("the only entry in the archive")

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	entry, err := w.Create("game.gb")
	require.NoError(t, err)
	_, err = entry.Write(want)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.gb"))
	require.Error(t, err)
}
