package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/common"
	"github.com/ternarybob/conduit/internal/httpclient"
	"golang.org/x/time/rate"
)

// maxPageBytes caps how much of a scraped page is read into memory
const maxPageBytes = 5 << 20

// captchaSignatures are vendor banner substrings that mean the page body is
// a block page, not content, even with HTTP 200
var captchaSignatures = []string{
	"cf-challenge",
	"Attention Required! | Cloudflare",
	"Pardon Our Interruption",
	"Access to this page has been denied",
	"/cdn-cgi/challenge-platform/",
	"PerimeterX",
	"px-captcha",
}

// PageFetcher fetches pages with a browser-spoofed identity and one plain
// fallback attempt when the spoofed request is blocked. Not a retry loop: a
// single fallback, then the failure surfaces.
type PageFetcher struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
	logger    arbor.ILogger
}

// NewPageFetcher creates a fetcher from scraper configuration
func NewPageFetcher(config *common.ScraperConfig, logger arbor.ILogger) *PageFetcher {
	delay := config.RequestDelayDuration()
	var limiter *rate.Limiter
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
	return &PageFetcher{
		client:    httpclient.NewBrowserHTTPClient(config.RequestTimeoutDuration()),
		userAgent: config.UserAgent,
		limiter:   limiter,
		logger:    logger,
	}
}

// Fetch returns the page HTML. Blocked responses (403 or a CAPTCHA
// signature in the body) trigger exactly one retry with plain headers.
func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	html, blocked, err := f.attempt(ctx, pageURL, true)
	if err != nil {
		return "", err
	}
	if !blocked {
		return html, nil
	}

	f.logger.Debug().Str("url", pageURL).Msg("Browser-spoofed request blocked, retrying with plain headers")

	html, blocked, err = f.attempt(ctx, pageURL, false)
	if err != nil {
		return "", err
	}
	if blocked {
		return "", fmt.Errorf("page blocked after fallback attempt: %s", pageURL)
	}
	return html, nil
}

// attempt performs one request and reports whether the response was blocked
func (f *PageFetcher) attempt(ctx context.Context, pageURL string, browser bool) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", false, fmt.Errorf("invalid page URL %s: %w", pageURL, err)
	}
	if browser {
		httpclient.ApplyBrowserHeaders(req, f.userAgent)
	} else {
		httpclient.ApplyPlainHeaders(req)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("page fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return "", true, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", false, fmt.Errorf("page fetch returned HTTP %d for %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", false, fmt.Errorf("failed to read page body: %w", err)
	}

	html := string(body)
	for _, signature := range captchaSignatures {
		if strings.Contains(html, signature) {
			return "", true, nil
		}
	}
	return html, false, nil
}
