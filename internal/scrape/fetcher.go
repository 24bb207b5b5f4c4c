package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/yardlex/lexingest/internal/config"
)

const fetchBaseDelay = 500 * time.Millisecond

// Fetcher downloads pages with exponential backoff. Transient failures
// (network errors, 429, 5xx) are retried; other client errors are not.
type Fetcher struct {
	client        *http.Client
	maxRetries    int
	backoffFactor float64
}

func NewFetcher(cfg config.ScrapeConfig) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		maxRetries:    cfg.MaxRetries,
		backoffFactor: cfg.RetryBackoffFactor,
	}
}

func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("url", url))
	var lastErr error
	delay := fetchBaseDelay
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		body, retryable, err := f.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		if attempt == f.maxRetries {
			break
		}
		logger.Warn("fetch failed, retrying", zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		delay = time.Duration(float64(delay) * f.backoffFactor)
	}
	return nil, fmt.Errorf("fetch %s after %d attempts: %w", url, f.maxRetries, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", "lexingest/1.0")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, false, fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	return body, false, nil
}
