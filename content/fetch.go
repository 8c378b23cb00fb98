// Package content fetches rendering inputs (body fragments, metadata,
// head markup) from a content base URL.
package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/rs/zerolog/log"
)

// ErrNotFound marks a resource the content source does not have. It is
// permanent: not retried, not cached.
var ErrNotFound = errors.New("content not found")

type Options struct {
	// BaseURL is the content source root; fetch paths are resolved
	// against it.
	BaseURL string
	// Client defaults to http.DefaultClient.
	Client *http.Client
	// Retries bounds transient-failure retries per fetch.
	Retries int
	// TTL expires cached resources. Zero caches forever.
	TTL time.Duration
}

type Fetcher struct {
	Options

	base  *url.URL
	cache *xsync.Map[string, cacheEntry]
}

type cacheEntry struct {
	body    []byte
	fetched time.Time
}

func NewFetcher(opt Options) (*Fetcher, error) {
	base, err := url.Parse(opt.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("content: invalid base url %q: %w", opt.BaseURL, err)
	}
	if opt.Client == nil {
		opt.Client = http.DefaultClient
	}
	return &Fetcher{
		Options: opt,
		base:    base,
		cache:   xsync.NewMap[string, cacheEntry](),
	}, nil
}

// Fetch returns the resource at path relative to the base URL, serving
// from cache while the entry is fresh. Transient failures are retried
// with exponential backoff up to the configured budget; a 404 fails
// immediately with ErrNotFound.
func (f *Fetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("content: invalid path %q: %w", path, err)
	}
	target := f.base.ResolveReference(ref).String()

	if entry, ok := f.cache.Load(target); ok {
		if f.TTL == 0 || time.Since(entry.fetched) <= f.TTL {
			return entry.body, nil
		}
	}

	body, err := f.fetchRetry(ctx, target)
	if err != nil {
		return nil, err
	}
	f.cache.Store(target, cacheEntry{body: body, fetched: time.Now()})
	return body, nil
}

func (f *Fetcher) fetchRetry(ctx context.Context, target string) ([]byte, error) {
	body, err := f.fetchOnce(ctx, target)
	retries := f.Retries
	bo := backoff.NewExponentialBackOff()

retriesLoop:
	for err != nil && retries > 0 {
		if errors.Is(err, ErrNotFound) {
			break
		}
		select {
		case <-ctx.Done():
			return nil, context.Cause(ctx)
		default:
			retries--
			time.Sleep(bo.NextBackOff())

			log.Debug().Str("url", target).Err(err).Msg("retrying fetch")
			body, err = f.fetchOnce(ctx, target)
			if err == nil {
				break retriesLoop
			}
		}
	}
	return body, err
}

func (f *Fetcher) fetchOnce(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content: fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, target)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("content: fetch %s: unexpected status %d", target, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("content: read %s: %w", target, err)
	}
	return body, nil
}
