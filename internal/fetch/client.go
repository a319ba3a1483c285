package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"time"
)

const (
	// MinDelay is the minimum spacing between request starts to the same
	// host, and the base unit of the retry backoff.
	MinDelay = 2 * time.Second

	DefaultMaxRetries = 3
	DefaultTimeout    = 30 * time.Second
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// RandomUserAgent picks one entry of the fixed browser pool.
func RandomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// Error is the terminal failure of a Fetch after all retries.
type Error struct {
	URL      string
	Attempts int
	Status   int // last HTTP status, 0 on transport errors
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Options tune a single Fetch call.
type Options struct {
	Referer    string
	MaxRetries int // 0 means DefaultMaxRetries
}

// Client fetches HTML pages politely: per-host rate limiting, rotated
// browser headers and exponential-backoff retries.
type Client struct {
	http    *http.Client
	limiter *Limiter
	sleep   func(context.Context, time.Duration) error
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		limiter: NewLimiter(MinDelay),
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Fetch GETs url and returns the response body as text. Non-2xx responses
// and transport errors are retried with backoff 2s, 4s, 8s, ...; the last
// error is surfaced as *Error.
func (c *Client) Fetch(ctx context.Context, rawURL string, opts Options) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("fetch: invalid url %q", rawURL)
	}

	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	if wait := c.limiter.Reserve(u.Hostname()); wait > 0 {
		if err := c.sleep(ctx, wait); err != nil {
			return "", err
		}
	}

	var lastErr error
	var lastStatus int
	for attempt := 1; attempt <= maxRetries; attempt++ {
		body, status, err := c.get(ctx, rawURL, opts.Referer)
		if err == nil {
			return body, nil
		}
		lastErr = err
		lastStatus = status
		log.Printf("[fetch] %s attempt %d/%d: %v", rawURL, attempt, maxRetries, err)

		if ctx.Err() != nil {
			break
		}
		if attempt < maxRetries {
			backoff := MinDelay * (1 << (attempt - 1))
			if err := c.sleep(ctx, backoff); err != nil {
				return "", err
			}
		}
	}

	return "", &Error{URL: rawURL, Attempts: maxRetries, Status: lastStatus, Err: lastErr}
}

func (c *Client) get(ctx context.Context, rawURL, referer string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", 0, err
	}

	// Accept-Encoding is left to the transport so gzip is decoded
	// transparently.
	req.Header.Set("User-Agent", RandomUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "id-ID,id;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Cache-Control", "max-age=0")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return string(body), resp.StatusCode, nil
}
