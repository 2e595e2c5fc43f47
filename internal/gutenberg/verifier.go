// Package gutenberg verifies copyright status against the book's catalog page.
package gutenberg

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

// VerdictCache persists positive verification results between builds.
type VerdictCache interface {
	GetCachedVerdict(ctx context.Context, id string) (bool, error)
	SetCachedVerdict(ctx context.Context, id string, ttl time.Duration) error
}

// Options configures the verifier.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RatePerSec float64
	Cache      VerdictCache
	CacheTTL   time.Duration
}

// Client scrapes a book's catalog page for an explicit copyright-status row.
// All failure modes (timeout, transport error, missing confirmation element)
// are reported as errors and treated identically by the caller: inconclusive.
type Client struct {
	baseURL  string
	client   *http.Client
	limiter  *rate.Limiter
	cache    VerdictCache
	cacheTTL time.Duration
}

// New creates a verifier client.
func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RatePerSec == 0 {
		opts.RatePerSec = 2
	}
	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		client:   &http.Client{Timeout: opts.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
	}
}

// Confirm fetches the book page and reports whether its copyright-status row
// declares public domain. Previously confirmed ids are answered from the
// cache without a network call; negative results are never cached.
func (c *Client) Confirm(ctx context.Context, id string) (bool, error) {
	if c.cache != nil {
		hit, err := c.cache.GetCachedVerdict(ctx, id)
		if err != nil {
			zap.L().Warn("gutenberg: verdict cache read failed", zap.Error(err))
		} else if hit {
			return true, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return false, eris.Wrap(err, "gutenberg: rate limiter wait")
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, eris.Wrap(err, "gutenberg: create request")
	}
	req.Header.Set("User-Agent", "gutenlist/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, eris.Wrapf(err, "gutenberg: fetch %s", url)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return false, eris.Errorf("gutenberg: status %d for %s", resp.StatusCode, url)
	}

	confirmed, err := confirmationInHTML(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, err
	}

	if confirmed && c.cache != nil {
		if err := c.cache.SetCachedVerdict(ctx, id, c.cacheTTL); err != nil {
			zap.L().Warn("gutenberg: verdict cache write failed", zap.Error(err))
		}
	}
	return confirmed, nil
}

// confirmationInHTML walks the page for a table cell labeled "copyright
// status" whose sibling value cell contains "public domain".
func confirmationInHTML(r io.Reader) (bool, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return false, eris.Wrap(err, "gutenberg: parse html")
	}

	var confirmed bool
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if confirmed {
			return
		}
		if isCell(n) && strings.Contains(strings.ToLower(nodeText(n)), "copyright status") {
			if sib := nextCell(n); sib != nil &&
				strings.Contains(strings.ToLower(nodeText(sib)), "public domain") {
				confirmed = true
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return confirmed, nil
}

func isCell(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.Data == "td" || n.Data == "th")
}

// nextCell returns the next td sibling, skipping text nodes.
func nextCell(n *html.Node) *html.Node {
	for sib := n.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type == html.ElementNode && sib.Data == "td" {
			return sib
		}
	}
	return nil
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}
