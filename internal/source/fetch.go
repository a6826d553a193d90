package source

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bionetlab/interactome/internal/logger"
)

const (
	defaultRetries = 6
	retryBaseDelay = 2 * time.Second
)

// Fetcher is the shared download plumbing for source clients: retries with
// backoff on transient failures and transparent gzip and zip decompression.
type Fetcher struct {
	client  *http.Client
	retries int
	delay   time.Duration
	log     *logger.Logger
}

func NewFetcher(client *http.Client, retries int, log *logger.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	if retries <= 0 {
		retries = defaultRetries
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Fetcher{client: client, retries: retries, delay: retryBaseDelay, log: log}
}

// Get downloads url, retrying transient failures. The returned body is
// decompressed when the URL names a gzip file; the caller must close it.
func (f *Fetcher) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	var lastErr error

	for attempt := 1; attempt <= f.retries; attempt++ {
		if attempt > 1 {
			delay := time.Duration(attempt-1) * f.delay
			f.log.Warn("retrying download", "url", url, "attempt", attempt, "delay", delay.String())
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, retryable, err := f.get(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed to fetch %s after %d attempts: %w", url, f.retries, lastErr)
}

func (f *Fetcher) get(ctx context.Context, url string) (io.ReadCloser, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("request failed: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		resp.Body.Close()
		return nil, true, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	default:
		resp.Body.Close()
		return nil, false, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	if isGzip(url, resp) {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, true, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return &gzipBody{Reader: gz, underlying: resp.Body}, false, nil
	}

	if isZip(url) {
		body, err := openZip(resp.Body)
		if err != nil {
			return nil, true, err
		}
		return body, false, nil
	}

	return resp.Body, false, nil
}

func isGzip(url string, resp *http.Response) bool {
	if strings.Contains(resp.Header.Get("Content-Type"), "gzip") {
		return true
	}
	return strings.HasSuffix(urlPath(url), ".gz")
}

func isZip(url string) bool {
	return strings.HasSuffix(urlPath(url), ".zip")
}

func urlPath(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		return url[:i]
	}
	return url
}

// openZip buffers the archive (zip needs random access) and returns a reader
// over its first .txt entry. Consumes and closes body.
func openZip(body io.ReadCloser) (io.ReadCloser, error) {
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to buffer zip archive: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive: %w", err)
	}

	for _, entry := range zr.File {
		if strings.HasSuffix(entry.Name, ".txt") {
			return entry.Open()
		}
	}
	if len(zr.File) > 0 {
		return zr.File[0].Open()
	}

	return nil, fmt.Errorf("zip archive has no entries")
}

// gzipBody closes the decompressor and the wrapped network body together.
type gzipBody struct {
	*gzip.Reader
	underlying io.Closer
}

func (b *gzipBody) Close() error {
	err := b.Reader.Close()
	if cerr := b.underlying.Close(); err == nil {
		err = cerr
	}
	return err
}
