package fetcher

import (
	"archive/tar"
	"compress/bzip2"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ExtractTarBz2 extracts a tar archive (bzip2-compressed when the path ends
// in .bz2) into destDir. Returns the number of files written.
func ExtractTarBz2(archivePath, destDir string) (int, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return 0, eris.Wrap(err, "tar: open archive")
	}
	defer f.Close() //nolint:errcheck

	var r io.Reader = f
	if strings.HasSuffix(archivePath, ".bz2") {
		r = bzip2.NewReader(f)
	}

	var written int
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, eris.Wrap(err, "tar: read header")
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if _, err := extractEntry(hdr, nil, destDir); err != nil {
				return written, err
			}
		case tar.TypeReg:
			if _, err := extractEntry(hdr, tr, destDir); err != nil {
				return written, err
			}
			written++
		}
	}
}

// extractEntry writes one tar entry under destDir, guarding against path
// traversal. Returns the written path, or empty string for directories.
func extractEntry(hdr *tar.Header, r io.Reader, destDir string) (string, error) {
	destPath := filepath.Join(destDir, hdr.Name) //nolint:gosec // checked below
	if !strings.HasPrefix(filepath.Clean(destPath), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", eris.Errorf("tar: illegal path %q", hdr.Name)
	}

	if hdr.Typeflag == tar.TypeDir {
		if err := os.MkdirAll(destPath, 0o755); err != nil {
			return "", eris.Wrap(err, "tar: create directory")
		}
		return "", nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", eris.Wrap(err, "tar: create parent directory")
	}

	out, err := os.Create(destPath)
	if err != nil {
		return "", eris.Wrap(err, "tar: create file")
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, r); err != nil { //nolint:gosec // trusted catalog archive
		return "", eris.Wrap(err, "tar: write file")
	}
	return destPath, nil
}
