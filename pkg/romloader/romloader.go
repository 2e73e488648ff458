// Package romloader reads a ROM image from disk, transparently
// decompressing it first if its extension names a supported archive
// format. Everything downstream only ever sees a raw ROM byte slice.
package romloader

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bodgit/sevenzip"
)

// Load reads path and, if its extension is .7z, .zip, or .gz, returns
// the decompressed contents of the first entry inside the archive
// instead of the raw archive bytes. Any other extension (.gb, .gbc,
// .bin, or no extension at all) is returned unchanged.
func Load(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	switch ext := filepath.Ext(path); ext {
	case ".gz":
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("romloader: gzip: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)

	case ".zip":
		r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("romloader: zip: %w", err)
		}
		if len(r.File) == 0 {
			return nil, fmt.Errorf("romloader: zip archive %q is empty", path)
		}
		rc, err := r.File[0].Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)

	case ".7z":
		r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("romloader: 7z: %w", err)
		}
		if len(r.File) == 0 {
			return nil, fmt.Errorf("romloader: 7z archive %q is empty", path)
		}
		rc, err := r.File[0].Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)

	default:
		return data, nil
	}
}
