// Package media talks to the external media service: resolving media
// references, managing uploads, and fetching file content for the
// digital-download pipeline.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	pkgerrors "github.com/glorpus-work/schoolyard/pkg/errors"
	"github.com/glorpus-work/schoolyard/pkg/fsutil"
	"github.com/glorpus-work/schoolyard/pkg/model"
)

// HTTPFetcher is a simple HTTP-based media fetcher. It is intentionally
// minimal and can be extended later with retries, backoff, and mirror
// selection.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a new fetcher with the given timeout and user agent.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if userAgent == "" {
		userAgent = "schoolyard/1.0"
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch downloads the media's file into destDir and returns the path to the
// downloaded file. The on-disk name is the media's original file name, so
// two lessons sharing a file name overwrite each other (last writer wins).
func (f *HTTPFetcher) Fetch(ctx context.Context, media *model.Media, destDir string) (string, error) {
	if media == nil || media.File == "" {
		return "", fmt.Errorf("media has no file location: %w", pkgerrors.ErrFetchFailed)
	}
	if media.OriginalFileName == "" {
		return "", fmt.Errorf("media %s has no file name: %w", media.MediaID, pkgerrors.ErrFetchFailed)
	}
	if err := fsutil.EnsureDir(destDir); err != nil {
		return "", pkgerrors.Wrap(err, "could not create download dir")
	}

	resp, err := f.doRequest(ctx, media.File)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	absPath := filepath.Join(destDir, media.OriginalFileName)
	tmpPath, err := writeBodyToTemp(resp.Body, destDir)
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, absPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", pkgerrors.Wrap(err, "could not finalize file")
	}
	return absPath, nil
}

func (f *HTTPFetcher) doRequest(ctx context.Context, fileURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, http.NoBody)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrFetchFailed, err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d: %w", resp.StatusCode, pkgerrors.ErrFetchFailed)
	}
	return resp, nil
}

// writeBodyToTemp streams the response body into a temp file next to the
// final location. The temp file is removed on any failure so a broken
// transfer never leaves a partial file behind.
func writeBodyToTemp(body io.Reader, destDir string) (string, error) {
	tmp, err := os.CreateTemp(destDir, "dl-*.tmp")
	if err != nil {
		return "", pkgerrors.Wrap(err, "could not create temp file")
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", pkgerrors.Wrap(pkgerrors.ErrFetchFailed, err.Error())
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", pkgerrors.Wrap(err, "could not sync file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", pkgerrors.Wrap(err, "could not close file")
	}
	return tmpPath, nil
}
