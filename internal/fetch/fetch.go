// Package fetch resolves document sources: local paths pass through, remote
// URLs are downloaded once into a content cache on disk and reused.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/Ahzem/ocr-agent/internal/cache"
	"github.com/Ahzem/ocr-agent/internal/common"
)

const userAgent = "ocr-agent/1.0"

// IsURL reports whether source names a remote document. Only http and https
// schemes qualify; anything else is treated as a local path.
func IsURL(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetcher downloads remote documents into a directory keyed by URL hash, so
// repeated requests for the same URL hit the disk instead of the network.
type Fetcher struct {
	dir     string
	maxSize int64
	client  *http.Client
	log     *slog.Logger
}

// New builds a Fetcher writing into dir. maxSize caps the downloaded body in
// bytes; zero disables the gate.
func New(dir string, maxSize int64, timeout time.Duration, log *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Fetcher{
		dir:     dir,
		maxSize: maxSize,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Fetch returns a local path for rawURL, downloading it if no cached copy
// exists. The second return reports whether the disk cache served it.
// Cached files are permanent; callers must not delete them.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, bool, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", false, common.NewAppError("DOWNLOAD_CACHE_FAILED", "create download directory", err)
	}

	cachePath := filepath.Join(f.dir, cache.HashBytes([]byte(rawURL))+".pdf")
	if _, err := os.Stat(cachePath); err == nil {
		f.log.Info("fetch.cache.hit", "url", rawURL, "path", cachePath)
		return cachePath, true, nil
	}

	start := time.Now()
	n, err := f.download(ctx, rawURL, cachePath)
	if err != nil {
		f.log.Warn("fetch.fail", "url", rawURL, "error", err)
		return "", false, err
	}
	f.log.Info("fetch.done", "url", rawURL, "bytes", n, "duration_ms", time.Since(start).Milliseconds())
	return cachePath, false, nil
}

func (f *Fetcher) download(ctx context.Context, rawURL, dst string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, common.NewAppError("DOWNLOAD_FAILED", "build request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/pdf,application/octet-stream,*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, common.NewAppError("DOWNLOAD_FAILED", "fetch remote document", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, common.NewAppError("DOWNLOAD_FAILED", fmt.Sprintf("remote returned %s", resp.Status), nil)
	}
	if f.maxSize > 0 && resp.ContentLength > f.maxSize {
		return 0, fmt.Errorf("remote document is %d bytes: %w", resp.ContentLength, common.ErrFileTooLarge)
	}

	// Download to a temp name and rename, so a concurrent reader never sees
	// a half-written cache file.
	tmp, err := os.CreateTemp(f.dir, "download-*.tmp")
	if err != nil {
		return 0, common.NewAppError("DOWNLOAD_CACHE_FAILED", "create temp file", err)
	}
	defer os.Remove(tmp.Name())

	body := io.Reader(resp.Body)
	if f.maxSize > 0 {
		body = io.LimitReader(resp.Body, f.maxSize+1)
	}
	n, err := io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, common.NewAppError("DOWNLOAD_FAILED", "stream remote document", err)
	}
	if f.maxSize > 0 && n > f.maxSize {
		return 0, fmt.Errorf("remote document exceeds %d bytes: %w", f.maxSize, common.ErrFileTooLarge)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return 0, common.NewAppError("DOWNLOAD_CACHE_FAILED", "publish cache file", err)
	}
	return n, nil
}
