// Package media downloads collection summary images for the cluster page.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"clusterdash/internal/config"
	"clusterdash/internal/logger"
	"clusterdash/pkg/utils"
)

// Fetch errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrInvalidURL           = errors.New("invalid image url")
	ErrNotAnImage           = errors.New("response is not an image")
	ErrImageTooLarge        = errors.New("image exceeds buffer size")
)

// Image is a downloaded image.
type Image struct {
	URL         string
	ContentType string
	Data        []byte
}

// DataURI encodes the image for inline use in an img tag.
func (i *Image) DataURI() string {
	return "data:" + i.ContentType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Fetcher downloads images with config-driven retry logic.
type Fetcher struct {
	client       *http.Client
	retryPolicy  config.RetryPolicy
	bufferSizeKb int
	concurrency  int
	helper       *utils.HTTPHelper
	logger       *logger.Logger
	sleep        func(context.Context, time.Duration) error
}

// NewFetcher creates a fetcher from the fetch configuration.
func NewFetcher(cfg config.FetchConfig, log *logger.Logger) *Fetcher {
	if log == nil {
		log = logger.Discard()
	}

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	// Every fetch makes at least one attempt.
	retry := cfg.Retry
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Retry.GetTimeout(),
		},
		retryPolicy:  retry,
		bufferSizeKb: cfg.BufferSizeKb,
		concurrency:  concurrency,
		helper:       utils.NewHTTPHelper(),
		logger:       log.With("component", "media"),
		sleep:        sleepContext,
	}
}

// Fetch downloads one image, retrying transport errors and retryable statuses.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Image, error) {
	if !f.helper.IsValidURL(url) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, url)
	}

	var lastErr error

	for attempt := 1; attempt <= f.retryPolicy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := f.sleep(ctx, f.retryPolicy.GetRetryDelay(attempt)); err != nil {
				return nil, err
			}
		}

		img, retry, err := f.fetchOnce(ctx, url)
		if err == nil {
			return img, nil
		}

		lastErr = fmt.Errorf("fetch %s (attempt %d/%d): %w", url, attempt, f.retryPolicy.MaxAttempts, err)
		if !retry {
			break
		}
	}

	return nil, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (*Image, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = f.helper.BuildHeaders(nil)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, isRetryableStatus(resp.StatusCode), fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	// bufferSizeKb is in KB, convert to bytes
	limit := int64(f.bufferSizeKb) * 1024
	if limit <= 0 {
		limit = 1 << 20
	}

	// One byte past the limit tells a truncated body from one that fits.
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	if int64(len(body)) > limit {
		return nil, false, fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, limit)
	}

	contentType, err := imageType(resp.Header.Get("Content-Type"), body)
	if err != nil {
		return nil, false, err
	}

	return &Image{URL: url, ContentType: contentType, Data: body}, false, nil
}

// FetchAll downloads every url concurrently and returns their data URIs in
// input order. A failed download yields an empty string and is logged.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []string {
	out := make([]string, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, url := range urls {
		g.Go(func() error {
			img, err := f.Fetch(gctx, url)
			if err != nil {
				f.logger.Warn("image fetch failed", "url", url, "error", err)
				return nil
			}

			out[i] = img.DataURI()

			return nil
		})
	}

	_ = g.Wait()

	return out
}

// imageType prefers the declared content type and falls back to sniffing.
func imageType(declared string, body []byte) (string, error) {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && strings.HasPrefix(mt, "image/") {
		return mt, nil
	}

	if sniffed := http.DetectContentType(body); strings.HasPrefix(sniffed, "image/") {
		return sniffed, nil
	}

	return "", fmt.Errorf("%w: %q", ErrNotAnImage, declared)
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests,
		http.StatusRequestTimeout,
		http.StatusBadGateway:
		return true
	}

	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
