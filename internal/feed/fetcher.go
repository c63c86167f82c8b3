// Package feed fetches remote feeds and normalizes them into entries.
//
// Everything downstream of this package sees only models.Entry; the raw
// RSS/Atom item shape never leaves the normalizer.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// Fetcher retrieves feeds over HTTP with a fixed per-request timeout.
type Fetcher struct {
	client *http.Client
	parser *gofeed.Parser
}

// NewFetcher creates a Fetcher. A fetch that exceeds timeout fails with
// apperr.FetchError like any other network failure.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		parser: gofeed.NewParser(),
	}
}

// Fetch retrieves and parses one feed, returning entries in the feed's
// native order (typically newest first).
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]models.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, &apperr.FetchError{URL: feedURL, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &apperr.FetchError{URL: feedURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &apperr.FetchError{URL: feedURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, &apperr.ParseError{URL: feedURL, Err: err}
	}
	return normalize(parsed, feedURL), nil
}

func normalize(parsed *gofeed.Feed, fetchURL string) []models.Entry {
	domain := siteDomain(parsed.Link, fetchURL)
	out := make([]models.Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil || item.Link == "" {
			continue
		}
		out = append(out, models.Entry{
			Link:      item.Link,
			Title:     strings.TrimSpace(item.Title),
			Published: publishedAt(item),
			Domain:    domain,
		})
	}
	return out
}

// publishedAt resolves the entry timestamp, preferring the publish date
// over the update date. Entries with neither get epoch zero, which makes
// them stale against any realistic watermark.
func publishedAt(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Unix(0, 0).UTC()
}

// siteDomain derives the source domain from the feed's self-declared link,
// falling back to the fetch URL, with any www. prefix stripped.
func siteDomain(selfLink, fetchURL string) string {
	for _, candidate := range []string{selfLink, fetchURL} {
		if candidate == "" {
			continue
		}
		u, err := url.Parse(candidate)
		if err != nil || u.Host == "" {
			continue
		}
		return strings.TrimPrefix(u.Host, "www.")
	}
	return ""
}
