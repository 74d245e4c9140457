package httpclient

import (
	"net/http"
	"net/http/cookiejar"
	"time"
)

// NewDefaultHTTPClient creates a simple HTTP client with a timeout
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// NewBrowserHTTPClient creates a client with a cookie jar, used by the
// scraper so session cookies survive across paginated requests
func NewBrowserHTTPClient(timeout time.Duration) *http.Client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return NewDefaultHTTPClient(timeout)
	}
	return &http.Client{
		Jar:     jar,
		Timeout: timeout,
	}
}

// ApplyBrowserHeaders sets browser-spoofed headers on a request
func ApplyBrowserHeaders(req *http.Request, userAgent string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

// ApplyPlainHeaders sets minimal non-browser headers, the fallback identity
// when a site rejects the spoofed request
func ApplyPlainHeaders(req *http.Request) {
	req.Header = http.Header{}
	req.Header.Set("Accept", "text/html")
}
