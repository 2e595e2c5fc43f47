package fetcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Catalog acquires and unpacks the raw metadata archive.
type Catalog struct {
	URL         string
	ArchivePath string
	Dir         string
	Downloader  *Downloader
}

// Ensure makes the raw records available on local storage, idempotently:
// the archive is downloaded only when absent and extracted only when the
// catalog directory does not exist yet.
func (c *Catalog) Ensure(ctx context.Context) error {
	if _, err := os.Stat(c.ArchivePath); err == nil {
		zap.L().Info("catalog archive already downloaded", zap.String("path", c.ArchivePath))
	} else {
		zap.L().Info("downloading catalog archive",
			zap.String("url", c.URL),
			zap.String("path", c.ArchivePath),
		)
		if err := c.Downloader.Download(ctx, c.URL, c.ArchivePath); err != nil {
			return err
		}
	}

	if _, err := os.Stat(c.Dir); err == nil {
		zap.L().Info("catalog already extracted", zap.String("dir", c.Dir))
		return nil
	}

	zap.L().Info("extracting catalog archive", zap.String("dir", c.Dir))
	n, err := ExtractTarBz2(c.ArchivePath, c.Dir)
	if err != nil {
		return err
	}
	zap.L().Info("catalog extracted", zap.Int("files", n))
	return nil
}

// ListRecords walks the catalog directory and returns every .rdf file path.
func (c *Catalog) ListRecords() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(c.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".rdf" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: walk catalog")
	}
	return paths, nil
}
