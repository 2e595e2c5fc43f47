// Package fetcher acquires the raw metadata catalog: a one-shot archive
// download plus extraction to a local directory tree.
package fetcher

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DownloadOptions configures the catalog downloader.
type DownloadOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RatePerSec float64
}

// Downloader fetches large files over HTTP with retry and rate limiting.
type Downloader struct {
	client  *http.Client
	opts    DownloadOptions
	limiter *rate.Limiter
}

// NewDownloader creates a Downloader with the given options.
func NewDownloader(opts DownloadOptions) *Downloader {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Minute
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "gutenlist/1.0"
	}
	if opts.RatePerSec == 0 {
		opts.RatePerSec = 1
	}
	return &Downloader{
		client:  &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
	}
}

// Download fetches url into destPath. The body streams to a partial file that
// is renamed into place only on success, so an interrupted download never
// leaves a truncated archive behind.
func (d *Downloader) Download(ctx context.Context, url, destPath string) error {
	var lastErr error
	for attempt := range d.opts.MaxRetries {
		if err := d.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "fetcher: rate limiter wait")
		}

		if err := d.fetchOnce(ctx, url, destPath); err != nil {
			lastErr = err
			zap.L().Warn("fetcher: download failed, retrying",
				zap.String("url", url),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			d.backoff(ctx, attempt)
			continue
		}
		return nil
	}
	return eris.Wrapf(lastErr, "fetcher: download %s after %d attempts", url, d.opts.MaxRetries)
}

func (d *Downloader) fetchOnce(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", d.opts.UserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "fetcher: do request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("fetcher: status %d", resp.StatusCode)
	}

	partial := destPath + ".partial"
	out, err := os.Create(partial)
	if err != nil {
		return eris.Wrap(err, "fetcher: create partial file")
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(partial)
		return eris.Wrap(err, "fetcher: write body")
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(partial)
		return eris.Wrap(err, "fetcher: close partial file")
	}
	if err := os.Rename(partial, destPath); err != nil {
		return eris.Wrap(err, "fetcher: rename partial file")
	}
	return nil
}

// backoff sleeps with exponential backoff and jitter between attempts.
func (d *Downloader) backoff(ctx context.Context, attempt int) {
	base := time.Duration(math.Pow(2, float64(attempt))) * time.Second
	jitter := time.Duration(rand.Int64N(int64(time.Second)))
	select {
	case <-time.After(base + jitter):
	case <-ctx.Done():
	}
}
